package domain

import (
	"errors"
)

var (
	MessageSuccessRegister     = "user registered successfully"
	MessageSuccessLogin        = "login success"
	MessageSuccessGetUser      = "success get user"
	MessageSuccessGetUsers     = "success get users"
	MessageSuccessUpdateUser   = "user updated successfully"
	MessageSuccessSetPassword  = "password updated successfully"
	MessageSuccessVerifyEmail  = "email verified successfully"
	MessageFailedRegister      = "failed to register user"
	MessageFailedLogin         = "failed to login"
	MessageFailedGetUser       = "failed to get user"
	MessageFailedUpdateUser    = "failed to update user"
	MessageFailedSetPassword   = "failed to update password"
	MessageFailedVerifyEmail   = "failed to verify email"

	ErrUserNotFound         = errors.New("user not found")
	ErrEmailAlreadyExists   = errors.New("email already registered")
	ErrUsernameAlreadyTaken = errors.New("username already taken")
	ErrUsernameInvalid      = errors.New("username contains invalid characters")
	ErrUsernameReserved     = errors.New("username is reserved")
	ErrCredentialsInvalid   = errors.New("invalid email or password")
	ErrPasswordWrong        = errors.New("current password is wrong")
	ErrInvalidImagePayload  = errors.New("invalid image payload")
)

type (
	RegisterRequest struct {
		Email     string `json:"email" validate:"required,email,max=254"`
		Username  string `json:"username" validate:"required,min=3,max=150"`
		FirstName string `json:"first_name" validate:"required,max=150"`
		LastName  string `json:"last_name" validate:"required,max=150"`
		Password  string `json:"password" validate:"required,min=8,max=150"`
	}

	RegisterResponse struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"auth_token"`
		Role  string `json:"role"`
	}

	SetPasswordRequest struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=8,max=150"`
	}

	UpdateUserRequest struct {
		FirstName string `json:"first_name,omitempty"`
		LastName  string `json:"last_name,omitempty"`
		Avatar    string `json:"avatar,omitempty"`
	}

	// UserResponse is the profile representation, annotated per viewer.
	UserResponse struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		Username     string `json:"username"`
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		AvatarURL    string `json:"avatar_url,omitempty"`
		IsSubscribed bool   `json:"is_subscribed"`
	}
)
