package user

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"itired-backend/domain"
	"itired-backend/entities"
	"itired-backend/pkg/jwt"
	"itired-backend/pkg/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newUserFixture(t *testing.T) (UserService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entities.User{},
		&entities.UserSettings{},
	))
	return NewUserService(NewUserRepository(db), jwt.NewJWTService()), db
}

func register(t *testing.T, service UserService, db *gorm.DB, username string) *entities.User {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, service.Register(ctx, domain.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
	}))

	var user entities.User
	require.NoError(t, db.Where("username = ?", username).First(&user).Error)
	require.NoError(t, service.VerifyEmail(ctx, domain.VerifyEmailRequest{
		Email: user.Email,
		Code:  user.VerificationCode,
	}))
	return &user
}

func TestRegisterVerifyLogin(t *testing.T) {
	service, db := newUserFixture(t)
	ctx := context.Background()
	register(t, service, db, "alice")

	res, err := service.Login(ctx, domain.LoginRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, domain.RoleUser, res.Role)

	_, err = service.Login(ctx, domain.LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrCredentialsInvalid)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	service, db := newUserFixture(t)
	ctx := context.Background()
	register(t, service, db, "alice")

	err := service.Register(ctx, domain.RegisterRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	err = service.Register(ctx, domain.RegisterRequest{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestLoginRequiresVerifiedEmail(t *testing.T) {
	service, _ := newUserFixture(t)
	ctx := context.Background()
	require.NoError(t, service.Register(ctx, domain.RegisterRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "secret123",
	}))

	_, err := service.Login(ctx, domain.LoginRequest{Username: "bob", Password: "secret123"})
	assert.ErrorIs(t, err, domain.ErrEmailNotVerified)
}

func TestVerifyEmailRejectsWrongCode(t *testing.T) {
	service, _ := newUserFixture(t)
	ctx := context.Background()
	require.NoError(t, service.Register(ctx, domain.RegisterRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "secret123",
	}))

	err := service.VerifyEmail(ctx, domain.VerifyEmailRequest{Email: "bob@example.com", Code: "000000"})
	assert.ErrorIs(t, err, domain.ErrVerificationCodeInvalid)
}

func TestProviderCredentialsFollowActiveService(t *testing.T) {
	service, db := newUserFixture(t)
	ctx := context.Background()
	user := register(t, service, db, "alice")
	userID := user.ID.String()

	// No token stored yet.
	svc, token, err := service.ProviderCredentials(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, provider.ServiceYandex, svc)
	assert.Empty(t, token)

	require.NoError(t, service.SaveToken(ctx, userID, domain.SaveTokenRequest{
		Service: provider.ServiceYandex,
		Token:   "y0_token",
	}))
	_, token, err = service.ProviderCredentials(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "y0_token", token)

	require.NoError(t, service.SaveToken(ctx, userID, domain.SaveTokenRequest{
		Service: provider.ServiceVK,
		Token:   "https://oauth.vk.com/blank.html#access_token=vk1.abc&expires_in=0&user_id=1",
	}))
	vkService := provider.ServiceVK
	_, err = service.UpdateSettings(ctx, userID, domain.UpdateSettingsRequest{MusicService: &vkService})
	require.NoError(t, err)

	svc, token, err = service.ProviderCredentials(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, provider.ServiceVK, svc)
	assert.Equal(t, "vk1.abc", token)
}

func TestExtractVKToken(t *testing.T) {
	assert.Equal(t, "plain-token", extractVKToken("plain-token"))
	assert.Equal(t, "vk1.abc", extractVKToken("https://oauth.vk.com/blank.html#access_token=vk1.abc&expires_in=0"))
	assert.Equal(t, "vk1.abc", extractVKToken("access_token=vk1.abc"))
}

func TestUpdateProfilePartial(t *testing.T) {
	service, db := newUserFixture(t)
	ctx := context.Background()
	user := register(t, service, db, "alice")

	bio := "night listener"
	profile, err := service.UpdateProfile(ctx, user.ID.String(), domain.UpdateProfileRequest{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "night listener", profile.Bio)
	assert.Equal(t, "alice", profile.Username)
}
