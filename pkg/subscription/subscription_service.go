package subscription

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/pkg/user"
	"context"
	"errors"

	"gorm.io/gorm"
)

type (
	SubscriptionService interface {
		Subscribe(ctx context.Context, userID, authorID string, recipesLimit int) (domain.SubscriptionResponse, error)
		Unsubscribe(ctx context.Context, userID, authorID string) error
		GetSubscriptions(ctx context.Context, userID string, page, limit, recipesLimit int) ([]domain.SubscriptionResponse, int64, error)
	}

	subscriptionService struct {
		subscriptionRepository SubscriptionRepository
		userRepository         user.UserRepository
	}
)

func NewSubscriptionService(subscriptionRepository SubscriptionRepository, userRepository user.UserRepository) SubscriptionService {
	return &subscriptionService{
		subscriptionRepository: subscriptionRepository,
		userRepository:         userRepository,
	}
}

func (s *subscriptionService) Subscribe(ctx context.Context, userID, authorID string, recipesLimit int) (domain.SubscriptionResponse, error) {
	// The self check runs before the uniqueness constraint is ever touched.
	if userID == authorID {
		return domain.SubscriptionResponse{}, domain.ErrSelfSubscribe
	}

	author, err := s.userRepository.GetUserByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.SubscriptionResponse{}, domain.ErrUserNotFound
		}
		return domain.SubscriptionResponse{}, err
	}

	if err := s.subscriptionRepository.CreateFollow(ctx, userID, authorID); err != nil {
		return domain.SubscriptionResponse{}, err
	}

	return s.toSubscriptionResponse(ctx, author, recipesLimit)
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, userID, authorID string) error {
	if _, err := s.userRepository.GetUserByID(ctx, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}
	return s.subscriptionRepository.DeleteFollow(ctx, userID, authorID)
}

func (s *subscriptionService) GetSubscriptions(ctx context.Context, userID string, page, limit, recipesLimit int) ([]domain.SubscriptionResponse, int64, error) {
	authors, count, err := s.subscriptionRepository.GetFollowedAuthors(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]domain.SubscriptionResponse, 0, len(authors))
	for _, author := range authors {
		res, err := s.toSubscriptionResponse(ctx, author, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		responses = append(responses, res)
	}

	return responses, count, nil
}

func (s *subscriptionService) toSubscriptionResponse(ctx context.Context, author *entities.User, recipesLimit int) (domain.SubscriptionResponse, error) {
	count, err := s.subscriptionRepository.CountAuthorRecipes(ctx, author.ID.String())
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}

	// recipesLimit <= 0 means no recipes are embedded.
	recipes := make([]domain.SmallRecipeResponse, 0)
	if recipesLimit > 0 {
		recent, err := s.subscriptionRepository.GetAuthorRecipes(ctx, author.ID.String(), recipesLimit)
		if err != nil {
			return domain.SubscriptionResponse{}, err
		}
		for _, recipe := range recent {
			recipes = append(recipes, domain.SmallRecipeResponse{
				ID:          recipe.ID.String(),
				Name:        recipe.Name,
				ImageURL:    recipe.ImageURL,
				CookingTime: recipe.CookingTime,
			})
		}
	}

	return domain.SubscriptionResponse{
		UserResponse: domain.UserResponse{
			ID:        author.ID.String(),
			Email:     author.Email,
			Username:  author.Username,
			FirstName: author.FirstName,
			LastName:  author.LastName,
			AvatarURL: author.AvatarURL,
			// This shape is only built for authors the caller follows.
			IsSubscribed: true,
		},
		Recipes:      recipes,
		RecipesCount: count,
	}, nil
}
