package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessRegister       = "registration successful, verification code sent"
	MessageSuccessVerifyEmail    = "email verified successfully"
	MessageSuccessLogin          = "login successful"
	MessageSuccessGetProfile     = "profile retrieved successfully"
	MessageSuccessUpdateProfile  = "profile updated successfully"
	MessageSuccessSaveToken      = "provider token saved successfully"
	MessageSuccessGetSettings    = "settings retrieved successfully"
	MessageSuccessUpdateSettings = "settings updated successfully"

	MessageFailedRegister       = "failed to register user"
	MessageFailedVerifyEmail    = "failed to verify email"
	MessageFailedLogin          = "failed to login"
	MessageFailedGetProfile     = "failed to retrieve profile"
	MessageFailedUpdateProfile  = "failed to update profile"
	MessageFailedSaveToken      = "failed to save provider token"
	MessageFailedGetSettings    = "failed to retrieve settings"
	MessageFailedUpdateSettings = "failed to update settings"

	ErrUserAlreadyExists       = errors.New("user with this username or email already exists")
	ErrUserNotFound            = errors.New("user not found")
	ErrCredentialsInvalid      = errors.New("invalid username or password")
	ErrEmailNotVerified        = errors.New("email not verified")
	ErrVerificationCodeInvalid = errors.New("invalid or expired verification code")
	ErrUnknownMusicService     = errors.New("unknown music service")
)

type (
	RegisterRequest struct {
		Username    string `json:"username" validate:"required,min=3,max=80"`
		DisplayName string `json:"display_name" validate:"omitempty,max=80"`
		Email       string `json:"email" validate:"required,email"`
		Password    string `json:"password" validate:"required,min=6"`
	}

	VerifyEmailRequest struct {
		Email string `json:"email" validate:"required,email"`
		Code  string `json:"code" validate:"required,len=6"`
	}

	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}

	UserProfile struct {
		ID             string    `json:"id"`
		Username       string    `json:"username"`
		DisplayName    string    `json:"display_name,omitempty"`
		Email          string    `json:"email"`
		AvatarURL      string    `json:"avatar_url,omitempty"`
		Bio            string    `json:"bio,omitempty"`
		IsAdmin        bool      `json:"is_admin"`
		HasYandexToken bool      `json:"has_yandex_token"`
		HasVKToken     bool      `json:"has_vk_token"`
		CreatedAt      time.Time `json:"created_at"`
	}

	UpdateProfileRequest struct {
		DisplayName *string `json:"display_name" validate:"omitempty,max=80"`
		Bio         *string `json:"bio" validate:"omitempty,max=500"`
		AvatarURL   *string `json:"avatar_url" validate:"omitempty,url"`
	}

	SaveTokenRequest struct {
		Service string `json:"service" validate:"required,oneof=yandex vk"`
		Token   string `json:"token" validate:"required"`
	}

	UserSettingsResponse struct {
		Theme        string `json:"theme"`
		Language     string `json:"language"`
		AutoPlay     bool   `json:"auto_play"`
		ShowExplicit bool   `json:"show_explicit"`
		MusicService string `json:"music_service"`
	}

	UpdateSettingsRequest struct {
		Theme        *string `json:"theme" validate:"omitempty,max=50"`
		Language     *string `json:"language" validate:"omitempty,max=10"`
		AutoPlay     *bool   `json:"auto_play"`
		ShowExplicit *bool   `json:"show_explicit"`
		MusicService *string `json:"music_service" validate:"omitempty,oneof=yandex vk"`
	}
)
