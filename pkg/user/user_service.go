package user

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"itired-backend/domain"
	"itired-backend/entities"
	"itired-backend/internal/utils/mailing"
	"itired-backend/pkg/jwt"
	"itired-backend/pkg/provider"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const verificationCodeTTL = 10 * time.Minute

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) error
		VerifyEmail(ctx context.Context, req domain.VerifyEmailRequest) error
		Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
		Me(ctx context.Context, userID string) (*domain.UserProfile, error)
		UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.UserProfile, error)
		SaveToken(ctx context.Context, userID string, req domain.SaveTokenRequest) error
		GetSettings(ctx context.Context, userID string) (*domain.UserSettingsResponse, error)
		UpdateSettings(ctx context.Context, userID string, req domain.UpdateSettingsRequest) (*domain.UserSettingsResponse, error)

		provider.CredentialSource
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
	}
)

func NewUserService(userRepository UserRepository, jwtService jwt.JWTService) UserService {
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) error {
	count, err := s.userRepository.CountByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	code, err := generateVerificationCode()
	if err != nil {
		return err
	}
	expires := time.Now().Add(verificationCodeTTL)

	user := &entities.User{
		ID:                      uuid.New(),
		Username:                req.Username,
		Email:                   req.Email,
		PasswordHash:            string(hash),
		DisplayName:             req.DisplayName,
		VerificationCode:        code,
		VerificationCodeExpires: &expires,
		Settings:                &entities.UserSettings{},
	}
	user.Settings.UserID = user.ID

	if err := s.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrUserAlreadyExists
		}
		return err
	}

	go func() {
		body := fmt.Sprintf("<p>Your itired verification code is <b>%s</b>. It expires in 10 minutes.</p>", code)
		if err := mailing.SendMail(user.Email, "Verify your itired account", body); err != nil {
			log.Errorf("send verification mail to %s: %v", user.Email, err)
		}
	}()
	return nil
}

func (s *userService) VerifyEmail(ctx context.Context, req domain.VerifyEmailRequest) error {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}
	if user.EmailVerified {
		return nil
	}
	if user.VerificationCode != req.Code ||
		user.VerificationCodeExpires == nil ||
		time.Now().After(*user.VerificationCodeExpires) {
		return domain.ErrVerificationCodeInvalid
	}

	user.EmailVerified = true
	user.VerificationCode = ""
	user.VerificationCodeExpires = nil
	return s.userRepository.UpdateUser(ctx, user)
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.userRepository.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCredentialsInvalid
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrCredentialsInvalid
	}
	if !user.EmailVerified {
		return nil, domain.ErrEmailNotVerified
	}

	role := domain.RoleUser
	if user.IsAdmin {
		role = domain.RoleAdmin
	}
	token := s.jwtService.GenerateTokenUser(user.ID.String(), role)
	return &domain.LoginResponse{Token: token, Role: role}, nil
}

func (s *userService) Me(ctx context.Context, userID string) (*domain.UserProfile, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profileFromEntity(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.UserProfile, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}
	if err := s.userRepository.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return profileFromEntity(user), nil
}

func (s *userService) SaveToken(ctx context.Context, userID string, req domain.SaveTokenRequest) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	switch req.Service {
	case provider.ServiceYandex:
		user.YandexToken = strings.TrimSpace(req.Token)
	case provider.ServiceVK:
		user.VKToken = extractVKToken(req.Token)
	default:
		return domain.ErrUnknownMusicService
	}
	return s.userRepository.UpdateUser(ctx, user)
}

func (s *userService) GetSettings(ctx context.Context, userID string) (*domain.UserSettingsResponse, error) {
	settings, err := s.settingsFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return settingsFromEntity(settings), nil
}

func (s *userService) UpdateSettings(ctx context.Context, userID string, req domain.UpdateSettingsRequest) (*domain.UserSettingsResponse, error) {
	settings, err := s.settingsFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Theme != nil {
		settings.Theme = *req.Theme
	}
	if req.Language != nil {
		settings.Language = *req.Language
	}
	if req.AutoPlay != nil {
		settings.AutoPlay = *req.AutoPlay
	}
	if req.ShowExplicit != nil {
		settings.ShowExplicit = *req.ShowExplicit
	}
	if req.MusicService != nil {
		settings.MusicService = *req.MusicService
	}
	if err := s.userRepository.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settingsFromEntity(settings), nil
}

// ProviderCredentials resolves the token for the user's active music service.
func (s *userService) ProviderCredentials(ctx context.Context, userID string) (string, string, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return "", "", err
	}

	service := provider.ServiceYandex
	if user.Settings != nil && user.Settings.MusicService != "" {
		service = user.Settings.MusicService
	}

	switch service {
	case provider.ServiceYandex:
		return service, user.YandexToken, nil
	case provider.ServiceVK:
		return service, user.VKToken, nil
	default:
		return "", "", domain.ErrUnknownMusicService
	}
}

func (s *userService) getUser(ctx context.Context, userID string) (*entities.User, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	user, err := s.userRepository.GetUserByID(ctx, userUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) settingsFor(ctx context.Context, userID string) (*entities.UserSettings, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	settings, err := s.userRepository.GetSettings(ctx, userUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &entities.UserSettings{
				UserID:       userUUID,
				Theme:        "dark",
				Language:     "ru",
				AutoPlay:     true,
				ShowExplicit: true,
				MusicService: provider.ServiceYandex,
			}, nil
		}
		return nil, err
	}
	return settings, nil
}

func profileFromEntity(user *entities.User) *domain.UserProfile {
	return &domain.UserProfile{
		ID:             user.ID.String(),
		Username:       user.Username,
		DisplayName:    user.DisplayName,
		Email:          user.Email,
		AvatarURL:      user.AvatarURL,
		Bio:            user.Bio,
		IsAdmin:        user.IsAdmin,
		HasYandexToken: user.YandexToken != "",
		HasVKToken:     user.VKToken != "",
		CreatedAt:      user.CreatedAt,
	}
}

func settingsFromEntity(settings *entities.UserSettings) *domain.UserSettingsResponse {
	return &domain.UserSettingsResponse{
		Theme:        settings.Theme,
		Language:     settings.Language,
		AutoPlay:     settings.AutoPlay,
		ShowExplicit: settings.ShowExplicit,
		MusicService: settings.MusicService,
	}
}

func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// extractVKToken accepts either a bare token or a pasted OAuth redirect URL
// containing access_token in its fragment.
func extractVKToken(raw string) string {
	raw = strings.TrimSpace(raw)
	idx := strings.Index(raw, "access_token=")
	if idx == -1 {
		return raw
	}
	token := raw[idx+len("access_token="):]
	if amp := strings.IndexByte(token, '&'); amp != -1 {
		token = token[:amp]
	}
	return token
}
