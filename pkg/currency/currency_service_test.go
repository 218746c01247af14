package currency

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"itired-backend/domain"
	"itired-backend/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entities.User{},
		&entities.UserSettings{},
		&entities.CurrencyAccount{},
		&entities.CurrencyTransaction{},
	))
	return db
}

func newTestService(t *testing.T) (CurrencyService, CurrencyRepository) {
	repo := NewCurrencyRepository(newTestDB(t))
	return NewCurrencyService(repo, rand.New(rand.NewSource(42))), repo
}

func TestCreditDebitConservation(t *testing.T) {
	service, repo := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := service.Credit(ctx, userID.String(), 100, "test_credit")
	require.NoError(t, err)
	_, err = service.Debit(ctx, userID.String(), 30, "test_debit")
	require.NoError(t, err)
	balance, err := service.Credit(ctx, userID.String(), 5, domain.ReasonListenTrack)
	require.NoError(t, err)
	assert.Equal(t, 75, balance)

	sum, err := repo.SumTransactions(ctx, userID)
	require.NoError(t, err)
	stored, err := repo.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, stored, sum)
}

func TestDebitInsufficientFundsLeavesNoState(t *testing.T) {
	service, repo := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := service.Credit(ctx, userID.String(), 20, "test_credit")
	require.NoError(t, err)

	_, err = service.Debit(ctx, userID.String(), 50, "test_debit")
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	balance, err := repo.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 20, balance)

	_, count, err := repo.GetTransactions(ctx, userID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestNonPositiveAmountsRejected(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New().String()

	_, err := service.Credit(ctx, userID, 0, "x")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = service.Credit(ctx, userID, -5, "x")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = service.Debit(ctx, userID, -5, "x")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestDailyRewardIdempotency(t *testing.T) {
	service, repo := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	day1 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	svc := service.(*currencyService)
	svc.now = func() time.Time { return day1 }

	res, err := service.ClaimDailyReward(ctx, userID.String())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Amount, domain.DailyRewardMin)
	assert.LessOrEqual(t, res.Amount, domain.DailyRewardMax)
	assert.Equal(t, res.Amount, res.Balance)

	// Same calendar day, later hour.
	svc.now = func() time.Time { return day1.Add(10 * time.Hour) }
	_, err = service.ClaimDailyReward(ctx, userID.String())
	assert.ErrorIs(t, err, domain.ErrRewardAlreadyClaimed)

	// Date rollover opens a new claim.
	svc.now = func() time.Time { return day1.AddDate(0, 0, 1) }
	res2, err := service.ClaimDailyReward(ctx, userID.String())
	require.NoError(t, err)

	sum, err := repo.SumTransactions(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, res.Amount+res2.Amount, sum)
	assert.Equal(t, sum, res2.Balance)
}

func TestRewardDayUniqueIndexBacksTheGate(t *testing.T) {
	repo := NewCurrencyRepository(newTestDB(t))
	ctx := context.Background()
	userID := uuid.New()
	day := "2025-03-10"

	_, err := repo.Apply(ctx, userID, 15, domain.ReasonDailyReward, &day)
	require.NoError(t, err)

	// Bypasses the service-level precheck entirely; the index still refuses.
	_, err = repo.Apply(ctx, userID, 15, domain.ReasonDailyReward, &day)
	assert.ErrorIs(t, err, domain.ErrRewardAlreadyClaimed)

	balance, err := repo.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 15, balance)

	// Reward rows for other users and NULL reward days never collide.
	_, err = repo.Apply(ctx, uuid.New(), 15, domain.ReasonDailyReward, &day)
	require.NoError(t, err)
	_, err = repo.Apply(ctx, userID, 1, domain.ReasonListenTrack, nil)
	require.NoError(t, err)
	_, err = repo.Apply(ctx, userID, 1, domain.ReasonListenTrack, nil)
	require.NoError(t, err)
}

func TestGrantCurrencyDefaultsReason(t *testing.T) {
	service, repo := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	balance, err := service.GrantCurrency(ctx, domain.GrantCurrencyRequest{
		UserID: userID.String(),
		Amount: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, 500, balance)

	transactions, _, err := repo.GetTransactions(ctx, userID, 1, 10)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, domain.ReasonAdminGrant, transactions[0].Reason)
}
