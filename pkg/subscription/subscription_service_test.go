package subscription

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeSubscriptionRepository struct {
	follows map[string]struct{}
	recipes map[string][]*entities.Recipe
	authors map[string]*entities.User
}

func newFakeSubscriptionRepository() *fakeSubscriptionRepository {
	return &fakeSubscriptionRepository{
		follows: make(map[string]struct{}),
		recipes: make(map[string][]*entities.Recipe),
		authors: make(map[string]*entities.User),
	}
}

func followKey(followerID, authorID string) string { return followerID + "/" + authorID }

func (f *fakeSubscriptionRepository) CreateFollow(_ context.Context, followerID, authorID string) error {
	key := followKey(followerID, authorID)
	if _, ok := f.follows[key]; ok {
		return domain.ErrAlreadySubscribed
	}
	f.follows[key] = struct{}{}
	return nil
}

func (f *fakeSubscriptionRepository) DeleteFollow(_ context.Context, followerID, authorID string) error {
	key := followKey(followerID, authorID)
	if _, ok := f.follows[key]; !ok {
		return domain.ErrNotSubscribed
	}
	delete(f.follows, key)
	return nil
}

func (f *fakeSubscriptionRepository) GetFollowedAuthors(_ context.Context, followerID string, _, _ int) ([]*entities.User, int64, error) {
	var out []*entities.User
	for key := range f.follows {
		if len(key) > len(followerID) && key[:len(followerID)] == followerID {
			authorID := key[len(followerID)+1:]
			if author, ok := f.authors[authorID]; ok {
				out = append(out, author)
			}
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeSubscriptionRepository) CountAuthorRecipes(_ context.Context, authorID string) (int64, error) {
	return int64(len(f.recipes[authorID])), nil
}

func (f *fakeSubscriptionRepository) GetAuthorRecipes(_ context.Context, authorID string, limit int) ([]*entities.Recipe, error) {
	recipes := f.recipes[authorID]
	if limit < len(recipes) {
		recipes = recipes[:limit]
	}
	return recipes, nil
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

func (f *fakeUserRepository) IsSubscribed(_ context.Context, followerID, authorID string) (bool, error) {
	return false, nil
}

func newTestService(t *testing.T) (SubscriptionService, *fakeSubscriptionRepository, *fakeUserRepository) {
	t.Helper()
	repo := newFakeSubscriptionRepository()
	users := &fakeUserRepository{users: make(map[string]*entities.User)}
	return NewSubscriptionService(repo, users), repo, users
}

func addAuthor(repo *fakeSubscriptionRepository, users *fakeUserRepository, recipeCount int) *entities.User {
	author := &entities.User{
		ID:       uuid.New(),
		Email:    "author@example.com",
		Username: "author",
	}
	users.users[author.ID.String()] = author
	repo.authors[author.ID.String()] = author
	for i := 0; i < recipeCount; i++ {
		repo.recipes[author.ID.String()] = append(repo.recipes[author.ID.String()], &entities.Recipe{
			ID:          uuid.New(),
			AuthorID:    author.ID,
			Name:        "dish",
			CookingTime: 15,
			PubDate:     time.Now(),
		})
	}
	return author
}

func TestSubscribeSelfRejected(t *testing.T) {
	svc, repo, users := newTestService(t)
	author := addAuthor(repo, users, 0)

	_, err := svc.Subscribe(context.Background(), author.ID.String(), author.ID.String(), 0)
	assert.ErrorIs(t, err, domain.ErrSelfSubscribe)
	assert.Empty(t, repo.follows)
}

func TestSubscribeUnknownAuthor(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Subscribe(context.Background(), uuid.New().String(), uuid.New().String(), 0)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSubscribeDuplicate(t *testing.T) {
	svc, repo, users := newTestService(t)
	author := addAuthor(repo, users, 0)
	follower := uuid.New().String()

	_, err := svc.Subscribe(context.Background(), follower, author.ID.String(), 0)
	require.NoError(t, err)

	_, err = svc.Subscribe(context.Background(), follower, author.ID.String(), 0)
	assert.ErrorIs(t, err, domain.ErrAlreadySubscribed)
	assert.Len(t, repo.follows, 1)
}

func TestSubscribeResponseShape(t *testing.T) {
	svc, repo, users := newTestService(t)
	author := addAuthor(repo, users, 3)
	follower := uuid.New().String()

	t.Run("limit zero embeds no recipes", func(t *testing.T) {
		res, err := svc.Subscribe(context.Background(), follower, author.ID.String(), 0)
		require.NoError(t, err)
		assert.True(t, res.IsSubscribed)
		assert.Equal(t, int64(3), res.RecipesCount)
		assert.Empty(t, res.Recipes)
	})

	t.Run("limit caps embedded recipes", func(t *testing.T) {
		subs, count, err := svc.GetSubscriptions(context.Background(), follower, 1, 20, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		require.Len(t, subs, 1)
		assert.Len(t, subs[0].Recipes, 2)
		assert.Equal(t, int64(3), subs[0].RecipesCount)
	})
}

func TestUnsubscribe(t *testing.T) {
	svc, repo, users := newTestService(t)
	author := addAuthor(repo, users, 0)
	follower := uuid.New().String()

	err := svc.Unsubscribe(context.Background(), follower, author.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotSubscribed)

	_, err = svc.Subscribe(context.Background(), follower, author.ID.String(), 0)
	require.NoError(t, err)

	assert.NoError(t, svc.Unsubscribe(context.Background(), follower, author.ID.String()))
	assert.Empty(t, repo.follows)
}

func TestUnsubscribeUnknownAuthor(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.Unsubscribe(context.Background(), uuid.New().String(), uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
