package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"itired-backend/domain"
	"itired-backend/entities"
	"itired-backend/pkg/currency"
	"itired-backend/pkg/provider"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Mirrors the app wiring: the recommendation and currency services each hold
// their own rand.Rand. Run under the race detector, this catches any return
// to a single instance shared across services.
func TestConcurrentShuffleAndRewardDraws(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entities.User{},
		&entities.UserSettings{},
		&entities.CurrencyAccount{},
		&entities.CurrencyTransaction{},
	))

	currencyService := currency.NewCurrencyService(
		currency.NewCurrencyRepository(db),
		rand.New(rand.NewSource(1)),
	)
	adapter := &fakeAdapter{name: provider.ServiceVK, recommended: tracks("vkrec_", 10)}
	recommendService := NewRecommendService(
		&fakeResolver{adapter: adapter},
		&fakeHistory{},
		nil,
		rand.New(rand.NewSource(2)),
	)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		userID := uuid.New().String()
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := recommendService.GetRecommendations(context.Background(), testUserID)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			res, err := currencyService.ClaimDailyReward(context.Background(), userID)
			if assert.NoError(t, err) {
				assert.GreaterOrEqual(t, res.Amount, domain.DailyRewardMin)
				assert.LessOrEqual(t, res.Amount, domain.DailyRewardMax)
			}
		}()
	}
	wg.Wait()
}
