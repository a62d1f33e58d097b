package domain

import (
	"errors"
)

const (
	MinCookingTime = 1
	MaxCookingTime = 360
	MinAmount      = 1
)

var (
	MessageSuccessGetRecipes      = "success get recipes"
	MessageSuccessGetRecipeDetail = "success get recipe detail"
	MessageSuccessCreateRecipe    = "recipe created successfully"
	MessageSuccessUpdateRecipe    = "recipe updated successfully"
	MessageSuccessDeleteRecipe    = "recipe deleted successfully"
	MessageSuccessAddFavorite     = "recipe added to favorites"
	MessageSuccessRemoveFavorite  = "recipe removed from favorites"
	MessageSuccessAddToCart       = "recipe added to shopping cart"
	MessageSuccessRemoveFromCart  = "recipe removed from shopping cart"

	MessageFailedGetRecipes      = "failed to get recipes"
	MessageFailedGetRecipeDetail = "failed to get recipe detail"
	MessageFailedSaveRecipe      = "failed to save recipe"
	MessageFailedDeleteRecipe    = "failed to delete recipe"
	MessageFailedFavorite        = "failed to update favorites"
	MessageFailedShoppingCart    = "failed to update shopping cart"
	MessageFailedDownloadCart    = "failed to download shopping cart"

	ErrRecipeNotFound       = errors.New("recipe not found")
	ErrNotRecipeAuthor      = errors.New("only the author can modify this recipe")
	ErrCookingTimeRange     = errors.New("cooking time must be between 1 and 360")
	ErrNoTags               = errors.New("recipe needs at least one tag")
	ErrNoIngredients        = errors.New("recipe needs at least one ingredient")
	ErrDuplicateIngredients = errors.New("duplicate ingredients in recipe")
	ErrInvalidAmount        = errors.New("ingredient amount must be positive")
	ErrAlreadyFavorited     = errors.New("recipe already in favorites")
	ErrNotFavorited         = errors.New("recipe is not in favorites")
	ErrAlreadyInCart        = errors.New("recipe already in shopping cart")
	ErrNotInCart            = errors.New("recipe is not in shopping cart")
)

type (
	RecipeIngredientEntry struct {
		ID     string `json:"id" validate:"required,uuid"`
		Amount int    `json:"amount" validate:"required,min=1"`
	}

	CreateRecipeRequest struct {
		Name        string                  `json:"name" validate:"required,max=200"`
		Text        string                  `json:"text" validate:"required"`
		CookingTime int                     `json:"cooking_time" validate:"required"`
		Image       string                  `json:"image" validate:"required"`
		Tags        []string                `json:"tags"`
		Ingredients []RecipeIngredientEntry `json:"ingredients"`
	}

	UpdateRecipeRequest struct {
		Name        string                  `json:"name" validate:"required,max=200"`
		Text        string                  `json:"text" validate:"required"`
		CookingTime int                     `json:"cooking_time" validate:"required"`
		Image       string                  `json:"image,omitempty"`
		Tags        []string                `json:"tags"`
		Ingredients []RecipeIngredientEntry `json:"ingredients"`
	}

	// RecipeFilter carries the list-endpoint query params. Viewer-scoped
	// flags are ignored for anonymous viewers.
	RecipeFilter struct {
		TagSlugs         []string
		AuthorID         string
		IsFavorited      bool
		IsInShoppingCart bool
	}

	RecipeIngredientResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	RecipeResponse struct {
		ID               string                     `json:"id"`
		Tags             []TagResponse              `json:"tags"`
		Author           UserResponse               `json:"author"`
		Ingredients      []RecipeIngredientResponse `json:"ingredients"`
		Name             string                     `json:"name"`
		Text             string                     `json:"text"`
		CookingTime      int                        `json:"cooking_time"`
		ImageURL         string                     `json:"image"`
		IsFavorited      bool                       `json:"is_favorited"`
		IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	}

	// SmallRecipeResponse is the compact shape returned by favorite and
	// shopping-cart adds and embedded in subscription listings.
	SmallRecipeResponse struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		ImageURL    string `json:"image"`
		CookingTime int    `json:"cooking_time"`
	}

	// ShoppingListItem is one aggregated group of the downloaded list.
	ShoppingListItem struct {
		Name            string `json:"name"`
		Amount          int    `json:"amount"`
		MeasurementUnit string `json:"measurement_unit"`
	}
)
