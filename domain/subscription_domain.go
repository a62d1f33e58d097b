package domain

import "errors"

var (
	MessageSuccessSubscribe        = "subscribed successfully"
	MessageSuccessUnsubscribe      = "unsubscribed successfully"
	MessageSuccessGetSubscriptions = "success get subscriptions"
	MessageFailedSubscribe         = "failed to subscribe"
	MessageFailedUnsubscribe       = "failed to unsubscribe"
	MessageFailedGetSubscriptions  = "failed to get subscriptions"

	ErrSelfSubscribe     = errors.New("cannot subscribe to yourself")
	ErrAlreadySubscribed = errors.New("already subscribed to this user")
	ErrNotSubscribed     = errors.New("not subscribed to this user")
)

type (
	// SubscriptionResponse is an author profile annotated with the author's
	// recipe count and up to recipes_limit recent recipes.
	SubscriptionResponse struct {
		UserResponse
		Recipes      []SmallRecipeResponse `json:"recipes"`
		RecipesCount int64                 `json:"recipes_count"`
	}
)
