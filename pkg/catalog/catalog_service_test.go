package catalog

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeCatalogRepository struct {
	tags        map[string]*entities.Tag
	ingredients []*entities.Ingredient
}

func newFakeCatalogRepository() *fakeCatalogRepository {
	return &fakeCatalogRepository{tags: make(map[string]*entities.Tag)}
}

func (f *fakeCatalogRepository) GetTags(_ context.Context) ([]*entities.Tag, error) {
	out := make([]*entities.Tag, 0, len(f.tags))
	for _, tag := range f.tags {
		out = append(out, tag)
	}
	return out, nil
}

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

func (f *fakeCatalogRepository) GetIngredients(_ context.Context, name string) ([]*entities.Ingredient, error) {
	var out []*entities.Ingredient
	for _, ingredient := range f.ingredients {
		if name == "" || strings.Contains(strings.ToLower(ingredient.Name), strings.ToLower(name)) {
			out = append(out, ingredient)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepository) GetIngredientByID(_ context.Context, id string) (*entities.Ingredient, error) {
	for _, ingredient := range f.ingredients {
		if ingredient.ID.String() == id {
			return ingredient, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCatalogRepository) GetIngredientsByIDs(_ context.Context, ids []string) ([]*entities.Ingredient, error) {
	var out []*entities.Ingredient
	for _, id := range ids {
		if ingredient, err := f.GetIngredientByID(context.Background(), id); err == nil {
			out = append(out, ingredient)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepository) GetOrCreateIngredient(_ context.Context, name, measurementUnit string) (*entities.Ingredient, error) {
	for _, ingredient := range f.ingredients {
		if ingredient.Name == name && ingredient.MeasurementUnit == measurementUnit {
			return ingredient, nil
		}
	}
	ingredient := &entities.Ingredient{ID: uuid.New(), Name: name, MeasurementUnit: measurementUnit}
	f.ingredients = append(f.ingredients, ingredient)
	return ingredient, nil
}

func TestImportIngredients(t *testing.T) {
	repo := newFakeCatalogRepository()
	svc := NewCatalogService(repo)

	csv := strings.Join([]string{
		"flour,g",
		"egg,pcs",
		"only-one-field",
		" , ",
		"milk,ml",
		"flour,g",
	}, "\n")

	imported, err := svc.ImportIngredients(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	// The duplicate row still counts as imported; get-or-create keeps one row.
	assert.Equal(t, 4, imported)
	assert.Len(t, repo.ingredients, 3)
}

func TestImportIngredientsTrimsWhitespace(t *testing.T) {
	repo := newFakeCatalogRepository()
	svc := NewCatalogService(repo)

	imported, err := svc.ImportIngredients(context.Background(), strings.NewReader(" sugar , g \n"))
	require.NoError(t, err)
	require.Equal(t, 1, imported)
	assert.Equal(t, "sugar", repo.ingredients[0].Name)
	assert.Equal(t, "g", repo.ingredients[0].MeasurementUnit)
}

func TestGetIngredientsSubstringFilter(t *testing.T) {
	repo := newFakeCatalogRepository()
	svc := NewCatalogService(repo)

	_, err := svc.ImportIngredients(context.Background(), strings.NewReader("flour,g\nwholemeal flour,g\negg,pcs\n"))
	require.NoError(t, err)

	found, err := svc.GetIngredients(context.Background(), "flour")
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestGetTagMissing(t *testing.T) {
	svc := NewCatalogService(newFakeCatalogRepository())

	_, err := svc.GetTag(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrTagNotFound)
}

func TestGetIngredientMissing(t *testing.T) {
	svc := NewCatalogService(newFakeCatalogRepository())

	_, err := svc.GetIngredient(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrIngredientNotFound)
}

func TestGetTag(t *testing.T) {
	repo := newFakeCatalogRepository()
	svc := NewCatalogService(repo)

	tag := &entities.Tag{ID: uuid.New(), Name: "breakfast", Color: "#E26C2D", Slug: "breakfast"}
	repo.tags[tag.ID.String()] = tag

	res, err := svc.GetTag(context.Background(), tag.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "breakfast", res.Name)
	assert.Equal(t, "#E26C2D", res.Color)
	assert.Equal(t, "breakfast", res.Slug)
}
