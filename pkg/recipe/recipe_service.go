package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/internal/utils/storage"
	"Foodgram-Backend/pkg/catalog"
	"Foodgram-Backend/pkg/user"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	RecipeService interface {
		CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, authorID string) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, userID, role string) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, recipeID string, userID, role string) error
		GetRecipe(ctx context.Context, recipeID string, viewerID string) (domain.RecipeResponse, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, page, limit int, viewerID string) ([]domain.RecipeResponse, int64, error)

		AddFavorite(ctx context.Context, recipeID, userID string) (domain.SmallRecipeResponse, error)
		RemoveFavorite(ctx context.Context, recipeID, userID string) error
		AddToCart(ctx context.Context, recipeID, userID string) (domain.SmallRecipeResponse, error)
		RemoveFromCart(ctx context.Context, recipeID, userID string) error

		DownloadShoppingCart(ctx context.Context, userID string) (string, error)
	}

	recipeService struct {
		recipeRepository  RecipeRepository
		catalogRepository catalog.CatalogRepository
		userRepository    user.UserRepository
		s3                storage.AwsS3
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	catalogRepository catalog.CatalogRepository,
	userRepository user.UserRepository,
	s3 storage.AwsS3,
) RecipeService {
	return &recipeService{
		recipeRepository:  recipeRepository,
		catalogRepository: catalogRepository,
		userRepository:    userRepository,
		s3:                s3,
	}
}

// validatePayload runs the write-side checks in a fixed order: cooking time
// range, tags non-empty, ingredients non-empty, duplicate ingredient ids,
// positive amounts, tag existence, ingredient existence.
func (s *recipeService) validatePayload(ctx context.Context, cookingTime int, tagIDs []string, ingredients []domain.RecipeIngredientEntry) error {
	if cookingTime < domain.MinCookingTime || cookingTime > domain.MaxCookingTime {
		return domain.ErrCookingTimeRange
	}
	if len(tagIDs) == 0 {
		return domain.ErrNoTags
	}
	if len(ingredients) == 0 {
		return domain.ErrNoIngredients
	}

	seen := make(map[string]struct{}, len(ingredients))
	for _, entry := range ingredients {
		if _, ok := seen[entry.ID]; ok {
			return domain.ErrDuplicateIngredients
		}
		seen[entry.ID] = struct{}{}
	}

	for _, entry := range ingredients {
		if entry.Amount < domain.MinAmount {
			return domain.ErrInvalidAmount
		}
	}

	tags, err := s.catalogRepository.GetTagsByIDs(ctx, tagIDs)
	if err != nil {
		return err
	}
	if len(tags) != len(tagIDs) {
		return domain.ErrTagNotFound
	}

	ids := make([]string, 0, len(ingredients))
	for _, entry := range ingredients {
		ids = append(ids, entry.ID)
	}
	found, err := s.catalogRepository.GetIngredientsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return domain.ErrIngredientNotFound
	}

	return nil
}

func buildAssociations(recipeID uuid.UUID, tagIDs []string, ingredients []domain.RecipeIngredientEntry) ([]*entities.RecipeTag, []*entities.RecipeIngredient, error) {
	tags := make([]*entities.RecipeTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		tagUUID, err := uuid.Parse(id)
		if err != nil {
			return nil, nil, domain.ErrParseUUID
		}
		tags = append(tags, &entities.RecipeTag{
			ID:       uuid.New(),
			RecipeID: recipeID,
			TagID:    tagUUID,
		})
	}

	links := make([]*entities.RecipeIngredient, 0, len(ingredients))
	for _, entry := range ingredients {
		ingredientUUID, err := uuid.Parse(entry.ID)
		if err != nil {
			return nil, nil, domain.ErrParseUUID
		}
		links = append(links, &entities.RecipeIngredient{
			ID:           uuid.New(),
			RecipeID:     recipeID,
			IngredientID: ingredientUUID,
			Amount:       entry.Amount,
		})
	}

	return tags, links, nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, authorID string) (domain.RecipeResponse, error) {
	if err := s.validatePayload(ctx, req.CookingTime, req.Tags, req.Ingredients); err != nil {
		return domain.RecipeResponse{}, err
	}

	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}

	recipeID := uuid.New()

	data, err := storage.DecodeBase64Image(req.Image)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrInvalidImagePayload
	}
	objectKey, err := s.s3.UploadFile(
		fmt.Sprintf("recipe-%s", recipeID.String()),
		data,
		"recipes",
		storage.AllowImage...,
	)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe := &entities.Recipe{
		ID:          recipeID,
		AuthorID:    authorUUID,
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		ImageURL:    s.s3.GetPublicLinkKey(objectKey),
		PubDate:     time.Now(),
	}

	tags, links, err := buildAssociations(recipeID, req.Tags, req.Ingredients)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	if err := s.recipeRepository.CreateRecipe(ctx, recipe, tags, links); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipe(ctx, recipeID.String(), authorID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, userID, role string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	if recipe.AuthorID.String() != userID && role != domain.RoleStaff {
		return domain.RecipeResponse{}, domain.ErrNotRecipeAuthor
	}

	if err := s.validatePayload(ctx, req.CookingTime, req.Tags, req.Ingredients); err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe.Name = req.Name
	recipe.Text = req.Text
	recipe.CookingTime = req.CookingTime

	if req.Image != "" {
		data, err := storage.DecodeBase64Image(req.Image)
		if err != nil {
			return domain.RecipeResponse{}, domain.ErrInvalidImagePayload
		}
		objectKey, err := s.s3.UploadFile(
			fmt.Sprintf("recipe-%s", recipe.ID.String()),
			data,
			"recipes",
			storage.AllowImage...,
		)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		recipe.ImageURL = s.s3.GetPublicLinkKey(objectKey)
	}

	// Preloaded associations must not be re-saved alongside the row.
	recipe.Tags = nil
	recipe.Ingredients = nil
	recipe.Author = nil

	tags, links, err := buildAssociations(recipe.ID, req.Tags, req.Ingredients)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	if err := s.recipeRepository.UpdateRecipe(ctx, recipe, tags, links); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipe(ctx, recipeID, userID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID string, userID, role string) error {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	if recipe.AuthorID.String() != userID && role != domain.RoleStaff {
		return domain.ErrNotRecipeAuthor
	}

	return s.recipeRepository.DeleteRecipe(ctx, recipeID)
}

func (s *recipeService) GetRecipe(ctx context.Context, recipeID string, viewerID string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}
	return s.toRecipeResponse(ctx, recipe, viewerID)
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter, page, limit int, viewerID string) ([]domain.RecipeResponse, int64, error) {
	recipes, count, err := s.recipeRepository.GetRecipes(ctx, filter, viewerID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		res, err := s.toRecipeResponse(ctx, recipe, viewerID)
		if err != nil {
			return nil, 0, err
		}
		responses = append(responses, res)
	}

	return responses, count, nil
}

func (s *recipeService) AddFavorite(ctx context.Context, recipeID, userID string) (domain.SmallRecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.SmallRecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.SmallRecipeResponse{}, err
	}

	if err := s.recipeRepository.AddFavorite(ctx, userID, recipeID); err != nil {
		return domain.SmallRecipeResponse{}, err
	}

	return toSmallRecipeResponse(recipe), nil
}

func (s *recipeService) RemoveFavorite(ctx context.Context, recipeID, userID string) error {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}
	return s.recipeRepository.RemoveFavorite(ctx, userID, recipeID)
}

func (s *recipeService) AddToCart(ctx context.Context, recipeID, userID string) (domain.SmallRecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.SmallRecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.SmallRecipeResponse{}, err
	}

	if err := s.recipeRepository.AddToCart(ctx, userID, recipeID); err != nil {
		return domain.SmallRecipeResponse{}, err
	}

	return toSmallRecipeResponse(recipe), nil
}

func (s *recipeService) RemoveFromCart(ctx context.Context, recipeID, userID string) error {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}
	return s.recipeRepository.RemoveFromCart(ctx, userID, recipeID)
}

// AggregateShoppingList groups association rows by (name, unit), sums the
// amounts within each group and orders by name, then unit. An empty input
// yields an empty list.
func AggregateShoppingList(rows []domain.ShoppingListItem) []domain.ShoppingListItem {
	type key struct {
		name string
		unit string
	}

	totals := make(map[key]int)
	for _, row := range rows {
		totals[key{row.Name, row.MeasurementUnit}] += row.Amount
	}

	items := make([]domain.ShoppingListItem, 0, len(totals))
	for k, amount := range totals {
		items = append(items, domain.ShoppingListItem{
			Name:            k.name,
			Amount:          amount,
			MeasurementUnit: k.unit,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].MeasurementUnit < items[j].MeasurementUnit
	})

	return items
}

// FormatShoppingList renders the downloadable plain-text report.
func FormatShoppingList(items []domain.ShoppingListItem) string {
	var b strings.Builder
	b.WriteString("Shopping list:\n")
	for _, item := range items {
		b.WriteString(fmt.Sprintf("\n%s - %d %s", item.Name, item.Amount, item.MeasurementUnit))
	}
	return b.String()
}

func (s *recipeService) DownloadShoppingCart(ctx context.Context, userID string) (string, error) {
	rows, err := s.recipeRepository.GetCartIngredientRows(ctx, userID)
	if err != nil {
		return "", err
	}
	return FormatShoppingList(AggregateShoppingList(rows)), nil
}

func (s *recipeService) toRecipeResponse(ctx context.Context, recipe *entities.Recipe, viewerID string) (domain.RecipeResponse, error) {
	res := domain.RecipeResponse{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		Text:        recipe.Text,
		CookingTime: recipe.CookingTime,
		ImageURL:    recipe.ImageURL,
		Tags:        make([]domain.TagResponse, 0, len(recipe.Tags)),
		Ingredients: make([]domain.RecipeIngredientResponse, 0, len(recipe.Ingredients)),
	}

	for _, link := range recipe.Tags {
		if link.Tag == nil {
			continue
		}
		res.Tags = append(res.Tags, catalog.ToTagResponse(link.Tag))
	}

	for _, link := range recipe.Ingredients {
		if link.Ingredient == nil {
			continue
		}
		res.Ingredients = append(res.Ingredients, domain.RecipeIngredientResponse{
			ID:              link.Ingredient.ID.String(),
			Name:            link.Ingredient.Name,
			MeasurementUnit: link.Ingredient.MeasurementUnit,
			Amount:          link.Amount,
		})
	}

	if recipe.Author != nil {
		isSubscribed := false
		if viewerID != "" && viewerID != recipe.AuthorID.String() {
			var err error
			isSubscribed, err = s.userRepository.IsSubscribed(ctx, viewerID, recipe.AuthorID.String())
			if err != nil {
				return domain.RecipeResponse{}, err
			}
		}
		res.Author = domain.UserResponse{
			ID:           recipe.Author.ID.String(),
			Email:        recipe.Author.Email,
			Username:     recipe.Author.Username,
			FirstName:    recipe.Author.FirstName,
			LastName:     recipe.Author.LastName,
			AvatarURL:    recipe.Author.AvatarURL,
			IsSubscribed: isSubscribed,
		}
	}

	if viewerID != "" {
		var err error
		res.IsFavorited, err = s.recipeRepository.IsFavorited(ctx, viewerID, recipe.ID.String())
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		res.IsInShoppingCart, err = s.recipeRepository.IsInCart(ctx, viewerID, recipe.ID.String())
		if err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	return res, nil
}

func toSmallRecipeResponse(recipe *entities.Recipe) domain.SmallRecipeResponse {
	return domain.SmallRecipeResponse{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		ImageURL:    recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}
