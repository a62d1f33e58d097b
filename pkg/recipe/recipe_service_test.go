package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"
	"encoding/base64"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRecipeRepository struct {
	recipes       map[string]*entities.Recipe
	favorites     map[string]struct{}
	cart          map[string]struct{}
	cartRows      []domain.ShoppingListItem
	lastTags      []*entities.RecipeTag
	lastLinks     []*entities.RecipeIngredient
	updatedLinks  []*entities.RecipeIngredient
	updatedTags   []*entities.RecipeTag
	updateCalled  bool
	deleteCalled  bool
}

func newFakeRecipeRepository() *fakeRecipeRepository {
	return &fakeRecipeRepository{
		recipes:   make(map[string]*entities.Recipe),
		favorites: make(map[string]struct{}),
		cart:      make(map[string]struct{}),
	}
}

func pairKey(userID, recipeID string) string { return userID + "/" + recipeID }

func (f *fakeRecipeRepository) CreateRecipe(_ context.Context, recipe *entities.Recipe, tags []*entities.RecipeTag, ingredients []*entities.RecipeIngredient) error {
	f.recipes[recipe.ID.String()] = recipe
	f.lastTags = tags
	f.lastLinks = ingredients
	return nil
}

func (f *fakeRecipeRepository) UpdateRecipe(_ context.Context, recipe *entities.Recipe, tags []*entities.RecipeTag, ingredients []*entities.RecipeIngredient) error {
	f.recipes[recipe.ID.String()] = recipe
	f.updatedTags = tags
	f.updatedLinks = ingredients
	f.updateCalled = true
	return nil
}

func (f *fakeRecipeRepository) DeleteRecipe(_ context.Context, id string) error {
	delete(f.recipes, id)
	f.deleteCalled = true
	return nil
}

func (f *fakeRecipeRepository) GetRecipeByID(_ context.Context, id string) (*entities.Recipe, error) {
	recipe, ok := f.recipes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return recipe, nil
}

func (f *fakeRecipeRepository) GetRecipes(_ context.Context, _ domain.RecipeFilter, _ string, _, _ int) ([]*entities.Recipe, int64, error) {
	out := make([]*entities.Recipe, 0, len(f.recipes))
	for _, r := range f.recipes {
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRecipeRepository) AddFavorite(_ context.Context, userID, recipeID string) error {
	key := pairKey(userID, recipeID)
	if _, ok := f.favorites[key]; ok {
		return domain.ErrAlreadyFavorited
	}
	f.favorites[key] = struct{}{}
	return nil
}

func (f *fakeRecipeRepository) RemoveFavorite(_ context.Context, userID, recipeID string) error {
	key := pairKey(userID, recipeID)
	if _, ok := f.favorites[key]; !ok {
		return domain.ErrNotFavorited
	}
	delete(f.favorites, key)
	return nil
}

func (f *fakeRecipeRepository) IsFavorited(_ context.Context, userID, recipeID string) (bool, error) {
	_, ok := f.favorites[pairKey(userID, recipeID)]
	return ok, nil
}

func (f *fakeRecipeRepository) AddToCart(_ context.Context, userID, recipeID string) error {
	key := pairKey(userID, recipeID)
	if _, ok := f.cart[key]; ok {
		return domain.ErrAlreadyInCart
	}
	f.cart[key] = struct{}{}
	return nil
}

func (f *fakeRecipeRepository) RemoveFromCart(_ context.Context, userID, recipeID string) error {
	key := pairKey(userID, recipeID)
	if _, ok := f.cart[key]; !ok {
		return domain.ErrNotInCart
	}
	delete(f.cart, key)
	return nil
}

func (f *fakeRecipeRepository) IsInCart(_ context.Context, userID, recipeID string) (bool, error) {
	_, ok := f.cart[pairKey(userID, recipeID)]
	return ok, nil
}

func (f *fakeRecipeRepository) GetCartIngredientRows(_ context.Context, _ string) ([]domain.ShoppingListItem, error) {
	return f.cartRows, nil
}

type fakeCatalogRepository struct {
	tags        map[string]*entities.Tag
	ingredients map[string]*entities.Ingredient
}

func newFakeCatalogRepository() *fakeCatalogRepository {
	return &fakeCatalogRepository{
		tags:        make(map[string]*entities.Tag),
		ingredients: make(map[string]*entities.Ingredient),
	}
}

func (f *fakeCatalogRepository) addTag() *entities.Tag {
	tag := &entities.Tag{ID: uuid.New(), Name: "tag", Color: "#fff", Slug: "tag"}
	f.tags[tag.ID.String()] = tag
	return tag
}

func (f *fakeCatalogRepository) addIngredient(name, unit string) *entities.Ingredient {
	ingredient := &entities.Ingredient{ID: uuid.New(), Name: name, MeasurementUnit: unit}
	f.ingredients[ingredient.ID.String()] = ingredient
	return ingredient
}

func (f *fakeCatalogRepository) GetTags(_ context.Context) ([]*entities.Tag, error) { return nil, nil }

func (f *fakeCatalogRepository) GetTagByID(_ context.Context, id string) (*entities.Tag, error) {
	tag, ok := f.tags[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return tag, nil
}

func (f *fakeCatalogRepository) GetTagsByIDs(_ context.Context, ids []string) ([]*entities.Tag, error) {
	var out []*entities.Tag
	for _, id := range ids {
		if tag, ok := f.tags[id]; ok {
			out = append(out, tag)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepository) GetIngredients(_ context.Context, _ string) ([]*entities.Ingredient, error) {
	return nil, nil
}

func (f *fakeCatalogRepository) GetIngredientByID(_ context.Context, id string) (*entities.Ingredient, error) {
	ingredient, ok := f.ingredients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ingredient, nil
}

func (f *fakeCatalogRepository) GetIngredientsByIDs(_ context.Context, ids []string) ([]*entities.Ingredient, error) {
	var out []*entities.Ingredient
	for _, id := range ids {
		if ingredient, ok := f.ingredients[id]; ok {
			out = append(out, ingredient)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepository) GetOrCreateIngredient(_ context.Context, name, unit string) (*entities.Ingredient, error) {
	return f.addIngredient(name, unit), nil
}

type fakeUserRepository struct {
	users map[string]*entities.User
}

func (f *fakeUserRepository) CreateUser(_ context.Context, _ *entities.User) error { return nil }

func (f *fakeUserRepository) GetUserByID(_ context.Context, id string) (*entities.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepository) GetUserByEmail(_ context.Context, _ string) (*entities.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepository) GetUserByUsername(_ context.Context, _ string) (*entities.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepository) UpdateUser(_ context.Context, _ *entities.User) error { return nil }

func (f *fakeUserRepository) GetUsers(_ context.Context, _, _ int) ([]*entities.User, int64, error) {
	return nil, 0, nil
}

func (f *fakeUserRepository) IsSubscribed(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

type fakeS3 struct{}

func (fakeS3) UploadFile(fileName string, _ []byte, dir string, _ ...string) (string, error) {
	return dir + "/" + fileName + ".png", nil
}

func (fakeS3) DeleteFile(_ string) error { return nil }

func (fakeS3) GetPublicLinkKey(objectKey string) string {
	return "https://cdn.test/" + objectKey
}

func testImage() string {
	return base64.StdEncoding.EncodeToString([]byte("not really a png"))
}

func newTestService(t *testing.T) (*recipeService, *fakeRecipeRepository, *fakeCatalogRepository) {
	t.Helper()
	repo := newFakeRecipeRepository()
	catalogRepo := newFakeCatalogRepository()
	users := &fakeUserRepository{users: make(map[string]*entities.User)}
	svc := NewRecipeService(repo, catalogRepo, users, fakeS3{}).(*recipeService)
	return svc, repo, catalogRepo
}

func validCreateRequest(catalogRepo *fakeCatalogRepository) domain.CreateRecipeRequest {
	tag := catalogRepo.addTag()
	flour := catalogRepo.addIngredient("flour", "g")
	egg := catalogRepo.addIngredient("egg", "pcs")
	return domain.CreateRecipeRequest{
		Name:        "pancakes",
		Text:        "mix and fry",
		CookingTime: 20,
		Image:       testImage(),
		Tags:        []string{tag.ID.String()},
		Ingredients: []domain.RecipeIngredientEntry{
			{ID: flour.ID.String(), Amount: 200},
			{ID: egg.ID.String(), Amount: 2},
		},
	}
}

func TestCreateRecipeCookingTimeBounds(t *testing.T) {
	svc, _, catalogRepo := newTestService(t)
	author := uuid.New().String()

	cases := []struct {
		cookingTime int
		wantErr     error
	}{
		{0, domain.ErrCookingTimeRange},
		{361, domain.ErrCookingTimeRange},
		{1, nil},
		{360, nil},
	}

	for _, tc := range cases {
		req := validCreateRequest(catalogRepo)
		req.CookingTime = tc.cookingTime
		_, err := svc.CreateRecipe(context.Background(), req, author)
		if tc.wantErr != nil {
			assert.ErrorIs(t, err, tc.wantErr, "cooking_time=%d", tc.cookingTime)
		} else {
			assert.NoError(t, err, "cooking_time=%d", tc.cookingTime)
		}
	}
}

func TestCreateRecipeValidationOrder(t *testing.T) {
	svc, _, catalogRepo := newTestService(t)
	author := uuid.New().String()

	t.Run("no tags", func(t *testing.T) {
		req := validCreateRequest(catalogRepo)
		req.Tags = nil
		_, err := svc.CreateRecipe(context.Background(), req, author)
		assert.ErrorIs(t, err, domain.ErrNoTags)
	})

	t.Run("no ingredients", func(t *testing.T) {
		req := validCreateRequest(catalogRepo)
		req.Ingredients = nil
		_, err := svc.CreateRecipe(context.Background(), req, author)
		assert.ErrorIs(t, err, domain.ErrNoIngredients)
	})

	t.Run("duplicate ingredient ids", func(t *testing.T) {
		req := validCreateRequest(catalogRepo)
		req.Ingredients = append(req.Ingredients, req.Ingredients[0])
		_, err := svc.CreateRecipe(context.Background(), req, author)
		assert.ErrorIs(t, err, domain.ErrDuplicateIngredients)
	})

	t.Run("unknown tag", func(t *testing.T) {
		req := validCreateRequest(catalogRepo)
		req.Tags = []string{uuid.New().String()}
		_, err := svc.CreateRecipe(context.Background(), req, author)
		assert.ErrorIs(t, err, domain.ErrTagNotFound)
	})

	t.Run("unknown ingredient", func(t *testing.T) {
		req := validCreateRequest(catalogRepo)
		req.Ingredients = []domain.RecipeIngredientEntry{{ID: uuid.New().String(), Amount: 1}}
		_, err := svc.CreateRecipe(context.Background(), req, author)
		assert.ErrorIs(t, err, domain.ErrIngredientNotFound)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		req := validCreateRequest(catalogRepo)
		req.Ingredients[0].Amount = 0
		_, err := svc.CreateRecipe(context.Background(), req, author)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})
}

func TestCreateRecipePersistsAssociations(t *testing.T) {
	svc, repo, catalogRepo := newTestService(t)
	author := uuid.New().String()

	req := validCreateRequest(catalogRepo)
	res, err := svc.CreateRecipe(context.Background(), req, author)
	require.NoError(t, err)

	assert.Equal(t, "pancakes", res.Name)
	assert.Len(t, repo.lastTags, 1)
	assert.Len(t, repo.lastLinks, 2)

	amounts := map[string]int{}
	for _, link := range repo.lastLinks {
		amounts[link.IngredientID.String()] = link.Amount
	}
	assert.Equal(t, map[string]int{
		req.Ingredients[0].ID: 200,
		req.Ingredients[1].ID: 2,
	}, amounts)
}

func TestUpdateRecipeReplacesIngredientsWholesale(t *testing.T) {
	svc, repo, catalogRepo := newTestService(t)
	author := uuid.New().String()

	created, err := svc.CreateRecipe(context.Background(), validCreateRequest(catalogRepo), author)
	require.NoError(t, err)

	flour := catalogRepo.addIngredient("flour", "g")
	tag := catalogRepo.addTag()
	update := domain.UpdateRecipeRequest{
		Name:        "pancakes v2",
		Text:        "less egg",
		CookingTime: 25,
		Tags:        []string{tag.ID.String()},
		Ingredients: []domain.RecipeIngredientEntry{{ID: flour.ID.String(), Amount: 150}},
	}

	_, err = svc.UpdateRecipe(context.Background(), created.ID, update, author, domain.RoleUser)
	require.NoError(t, err)

	require.True(t, repo.updateCalled)
	require.Len(t, repo.updatedLinks, 1)
	assert.Equal(t, flour.ID, repo.updatedLinks[0].IngredientID)
	assert.Equal(t, 150, repo.updatedLinks[0].Amount)
}

func TestUpdateRecipeAuthorization(t *testing.T) {
	svc, _, catalogRepo := newTestService(t)
	author := uuid.New().String()

	created, err := svc.CreateRecipe(context.Background(), validCreateRequest(catalogRepo), author)
	require.NoError(t, err)

	stranger := uuid.New().String()
	_, err = svc.UpdateRecipe(context.Background(), created.ID, domain.UpdateRecipeRequest{
		Name:        "hijack",
		Text:        "x",
		CookingTime: 10,
	}, stranger, domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrNotRecipeAuthor)

	// Staff may modify regardless of authorship, so validation runs next.
	_, err = svc.UpdateRecipe(context.Background(), created.ID, domain.UpdateRecipeRequest{
		Name:        "moderated",
		Text:        "x",
		CookingTime: 10,
	}, stranger, domain.RoleStaff)
	assert.ErrorIs(t, err, domain.ErrNoTags)

	err = svc.DeleteRecipe(context.Background(), created.ID, stranger, domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrNotRecipeAuthor)

	err = svc.DeleteRecipe(context.Background(), created.ID, stranger, domain.RoleStaff)
	assert.NoError(t, err)
}

func TestFavoriteDuplicateAdd(t *testing.T) {
	svc, repo, catalogRepo := newTestService(t)
	author := uuid.New().String()
	viewer := uuid.New().String()

	created, err := svc.CreateRecipe(context.Background(), validCreateRequest(catalogRepo), author)
	require.NoError(t, err)

	res, err := svc.AddFavorite(context.Background(), created.ID, viewer)
	require.NoError(t, err)
	assert.Equal(t, created.ID, res.ID)
	assert.Equal(t, created.CookingTime, res.CookingTime)

	_, err = svc.AddFavorite(context.Background(), created.ID, viewer)
	assert.ErrorIs(t, err, domain.ErrAlreadyFavorited)
	assert.Len(t, repo.favorites, 1)

	require.NoError(t, svc.RemoveFavorite(context.Background(), created.ID, viewer))
	err = svc.RemoveFavorite(context.Background(), created.ID, viewer)
	assert.ErrorIs(t, err, domain.ErrNotFavorited)
}

func TestShoppingCartDuplicateAdd(t *testing.T) {
	svc, repo, catalogRepo := newTestService(t)
	author := uuid.New().String()
	viewer := uuid.New().String()

	created, err := svc.CreateRecipe(context.Background(), validCreateRequest(catalogRepo), author)
	require.NoError(t, err)

	_, err = svc.AddToCart(context.Background(), created.ID, viewer)
	require.NoError(t, err)

	_, err = svc.AddToCart(context.Background(), created.ID, viewer)
	assert.ErrorIs(t, err, domain.ErrAlreadyInCart)
	assert.Len(t, repo.cart, 1)

	err = svc.RemoveFromCart(context.Background(), created.ID, viewer)
	assert.NoError(t, err)

	err = svc.RemoveFromCart(context.Background(), created.ID, viewer)
	assert.ErrorIs(t, err, domain.ErrNotInCart)
}

func TestInteractionSetsMissingRecipe(t *testing.T) {
	svc, _, _ := newTestService(t)
	viewer := uuid.New().String()
	missing := uuid.New().String()

	_, err := svc.AddFavorite(context.Background(), missing, viewer)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)

	_, err = svc.AddToCart(context.Background(), missing, viewer)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestAggregateShoppingListEmpty(t *testing.T) {
	assert.Empty(t, AggregateShoppingList(nil))
}

func TestAggregateShoppingListSumsWithinGroup(t *testing.T) {
	items := AggregateShoppingList([]domain.ShoppingListItem{
		{Name: "flour", Amount: 200, MeasurementUnit: "g"},
		{Name: "flour", Amount: 150, MeasurementUnit: "g"},
	})

	require.Len(t, items, 1)
	assert.Equal(t, 350, items[0].Amount)
}

func TestAggregateShoppingListUnitIsPartOfKey(t *testing.T) {
	items := AggregateShoppingList([]domain.ShoppingListItem{
		{Name: "milk", Amount: 200, MeasurementUnit: "ml"},
		{Name: "milk", Amount: 1, MeasurementUnit: "l"},
	})

	require.Len(t, items, 2)
	// Same name, different unit: two groups, unit ascending.
	assert.Equal(t, "l", items[0].MeasurementUnit)
	assert.Equal(t, "ml", items[1].MeasurementUnit)
}

func TestAggregateShoppingListOrdersByName(t *testing.T) {
	items := AggregateShoppingList([]domain.ShoppingListItem{
		{Name: "flour", Amount: 200, MeasurementUnit: "g"},
		{Name: "egg", Amount: 2, MeasurementUnit: "pcs"},
	})

	require.Len(t, items, 2)
	assert.Equal(t, "egg", items[0].Name)
	assert.Equal(t, "flour", items[1].Name)
}

func TestDownloadShoppingCartFormat(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.cartRows = []domain.ShoppingListItem{
		{Name: "flour", Amount: 200, MeasurementUnit: "g"},
		{Name: "egg", Amount: 2, MeasurementUnit: "pcs"},
	}

	content, err := svc.DownloadShoppingCart(context.Background(), uuid.New().String())
	require.NoError(t, err)

	assert.Equal(t, "Shopping list:\n\negg - 2 pcs\nflour - 200 g", content)
}

func TestDownloadShoppingCartEmpty(t *testing.T) {
	svc, _, _ := newTestService(t)

	content, err := svc.DownloadShoppingCart(context.Background(), uuid.New().String())
	require.NoError(t, err)
	assert.Equal(t, "Shopping list:\n", content)
}

func TestGetRecipeAnnotatesViewer(t *testing.T) {
	svc, _, catalogRepo := newTestService(t)
	author := uuid.New().String()
	viewer := uuid.New().String()

	created, err := svc.CreateRecipe(context.Background(), validCreateRequest(catalogRepo), author)
	require.NoError(t, err)

	_, err = svc.AddFavorite(context.Background(), created.ID, viewer)
	require.NoError(t, err)

	res, err := svc.GetRecipe(context.Background(), created.ID, viewer)
	require.NoError(t, err)
	assert.True(t, res.IsFavorited)
	assert.False(t, res.IsInShoppingCart)

	// Anonymous viewers always see false.
	anon, err := svc.GetRecipe(context.Background(), created.ID, "")
	require.NoError(t, err)
	assert.False(t, anon.IsFavorited)
	assert.False(t, anon.IsInShoppingCart)
}
