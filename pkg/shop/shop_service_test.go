package shop

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"itired-backend/domain"
	"itired-backend/entities"
	"itired-backend/pkg/currency"
	"itired-backend/pkg/history"
	"itired-backend/pkg/social"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type shopFixture struct {
	db              *gorm.DB
	service         ShopService
	currencyService currency.CurrencyService
	categoryID      uuid.UUID
}

func newShopFixture(t *testing.T) *shopFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entities.User{},
		&entities.UserSettings{},
		&entities.CurrencyAccount{},
		&entities.CurrencyTransaction{},
		&entities.ShopCategory{},
		&entities.ShopItem{},
		&entities.UserInventory{},
		&entities.ListeningHistory{},
		&entities.Friend{},
		&entities.UserActivity{},
	))

	currencyRepository := currency.NewCurrencyRepository(db)
	currencyService := currency.NewCurrencyService(currencyRepository, rand.New(rand.NewSource(7)))
	socialService := social.NewSocialService(social.NewSocialRepository(db), history.NewHistoryRepository(db))
	shopRepository := NewShopRepository(db, currencyRepository)

	category := &entities.ShopCategory{ID: uuid.New(), Name: "Themes", Description: "test"}
	require.NoError(t, db.Create(category).Error)

	return &shopFixture{
		db:              db,
		service:         NewShopService(shopRepository, nil, socialService),
		currencyService: currencyService,
		categoryID:      category.ID,
	}
}

func (f *shopFixture) addItem(t *testing.T, name, itemType string, price int) uuid.UUID {
	t.Helper()
	item := &entities.ShopItem{
		ID:         uuid.New(),
		Name:       name,
		Type:       itemType,
		CategoryID: f.categoryID,
		Price:      price,
		Data:       `{"primary":"#000"}`,
		Rarity:     "common",
		IsActive:   true,
	}
	require.NoError(t, f.db.Create(item).Error)
	return item.ID
}

func (f *shopFixture) fund(t *testing.T, userID uuid.UUID, amount int) {
	t.Helper()
	_, err := f.currencyService.Credit(context.Background(), userID.String(), amount, "test_fund")
	require.NoError(t, err)
}

func TestPurchaseAtExactBalance(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	itemID := f.addItem(t, "Neon Night", "theme", 50)
	f.fund(t, userID, 50)

	res, err := f.service.Purchase(ctx, userID.String(), itemID.String())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Balance)

	var tx entities.CurrencyTransaction
	require.NoError(t, f.db.Where("user_id = ? AND amount < 0", userID).First(&tx).Error)
	assert.Equal(t, -50, tx.Amount)
	assert.Equal(t, "purchase_Neon Night", tx.Reason)

	var entry entities.UserInventory
	require.NoError(t, f.db.Where("user_id = ? AND item_id = ?", userID, itemID).First(&entry).Error)
	assert.False(t, entry.Equipped)
}

func TestPurchaseInsufficientFundsLeavesNoState(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	itemID := f.addItem(t, "Golden Hour", "theme", 200)
	f.fund(t, userID, 100)

	_, err := f.service.Purchase(ctx, userID.String(), itemID.String())
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	var inventoryCount, txCount int64
	require.NoError(t, f.db.Model(&entities.UserInventory{}).Where("user_id = ?", userID).Count(&inventoryCount).Error)
	require.NoError(t, f.db.Model(&entities.CurrencyTransaction{}).Where("user_id = ? AND amount < 0", userID).Count(&txCount).Error)
	assert.Zero(t, inventoryCount)
	assert.Zero(t, txCount)
}

func TestPurchaseTwiceAlreadyOwned(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	itemID := f.addItem(t, "Neon Night", "theme", 50)
	f.fund(t, userID, 200)

	_, err := f.service.Purchase(ctx, userID.String(), itemID.String())
	require.NoError(t, err)

	_, err = f.service.Purchase(ctx, userID.String(), itemID.String())
	assert.ErrorIs(t, err, domain.ErrItemAlreadyOwned)

	balance, err := f.currencyService.GetBalance(ctx, userID.String())
	require.NoError(t, err)
	assert.Equal(t, 150, balance.Balance)
}

func TestPurchaseInactiveAndMissingItems(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	itemID := f.addItem(t, "Retired Theme", "theme", 10)
	f.fund(t, userID, 100)

	require.NoError(t, f.service.DeactivateItem(ctx, itemID.String()))

	_, err := f.service.Purchase(ctx, userID.String(), itemID.String())
	assert.ErrorIs(t, err, domain.ErrItemInactive)

	_, err = f.service.Purchase(ctx, userID.String(), uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestEquipSlotExclusivity(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	themeA := f.addItem(t, "Theme A", "theme", 10)
	themeB := f.addItem(t, "Theme B", "theme", 10)
	badge := f.addItem(t, "Badge", "badge", 10)
	f.fund(t, userID, 100)

	for _, id := range []uuid.UUID{themeA, themeB, badge} {
		_, err := f.service.Purchase(ctx, userID.String(), id.String())
		require.NoError(t, err)
	}

	require.NoError(t, f.service.Equip(ctx, userID.String(), domain.EquipRequest{ItemID: themeA.String()}))
	require.NoError(t, f.service.Equip(ctx, userID.String(), domain.EquipRequest{ItemID: badge.String()}))
	require.NoError(t, f.service.Equip(ctx, userID.String(), domain.EquipRequest{ItemID: themeB.String()}))

	var equippedThemes int64
	require.NoError(t, f.db.Model(&entities.UserInventory{}).
		Where("user_id = ? AND equipped = ? AND item_id IN ?", userID, true, []uuid.UUID{themeA, themeB}).
		Count(&equippedThemes).Error)
	assert.EqualValues(t, 1, equippedThemes)

	equipped, err := f.service.GetEquipped(ctx, userID.String())
	require.NoError(t, err)
	require.Contains(t, equipped, "theme")
	require.Contains(t, equipped, "badge")
	assert.Equal(t, themeB.String(), equipped["theme"].ItemID)
	assert.Equal(t, "Theme B", equipped["theme"].Name)
}

func TestConcurrentPurchaseSingleDebit(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	itemID := f.addItem(t, "Neon Night", "theme", 50)
	f.fund(t, userID, 50)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.Purchase(ctx, userID.String(), itemID.String())
		}(i)
	}
	wg.Wait()

	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}
	require.Len(t, failed, 1, "exactly one purchase must win")
	assert.True(t,
		errors.Is(failed[0], domain.ErrItemAlreadyOwned) || errors.Is(failed[0], domain.ErrInsufficientFunds),
		"unexpected loser error: %v", failed[0])

	balance, err := f.currencyService.GetBalance(ctx, userID.String())
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Balance)

	var inventoryCount, debitCount int64
	require.NoError(t, f.db.Model(&entities.UserInventory{}).Where("user_id = ?", userID).Count(&inventoryCount).Error)
	require.NoError(t, f.db.Model(&entities.CurrencyTransaction{}).Where("user_id = ? AND amount < 0", userID).Count(&debitCount).Error)
	assert.EqualValues(t, 1, inventoryCount)
	assert.EqualValues(t, 1, debitCount)
}

func TestConcurrentEquipKeepsSlotExclusive(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	themeA := f.addItem(t, "Theme A", "theme", 10)
	themeB := f.addItem(t, "Theme B", "theme", 10)
	f.fund(t, userID, 100)
	for _, id := range []uuid.UUID{themeA, themeB} {
		_, err := f.service.Purchase(ctx, userID.String(), id.String())
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for _, id := range []uuid.UUID{themeA, themeB} {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			assert.NoError(t, f.service.Equip(ctx, userID.String(), domain.EquipRequest{ItemID: id.String()}))
		}(id)
	}
	wg.Wait()

	var equipped int64
	require.NoError(t, f.db.Model(&entities.UserInventory{}).
		Where("user_id = ? AND equipped = ?", userID, true).
		Count(&equipped).Error)
	assert.EqualValues(t, 1, equipped)
}

func TestEquipNotOwned(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	itemID := f.addItem(t, "Theme A", "theme", 10)

	err := f.service.Equip(ctx, userID.String(), domain.EquipRequest{ItemID: itemID.String()})
	assert.ErrorIs(t, err, domain.ErrItemNotOwned)
}

func TestCatalogOwnedAnnotation(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	owned := f.addItem(t, "Owned Theme", "theme", 10)
	f.addItem(t, "Other Theme", "theme", 10)
	inactive := f.addItem(t, "Hidden Theme", "theme", 10)
	f.fund(t, userID, 100)

	_, err := f.service.Purchase(ctx, userID.String(), owned.String())
	require.NoError(t, err)
	require.NoError(t, f.service.DeactivateItem(ctx, inactive.String()))

	catalog, err := f.service.GetCatalog(ctx, userID.String())
	require.NoError(t, err)
	require.Len(t, catalog, 2)
	for _, item := range catalog {
		assert.Equal(t, item.ID == owned.String(), item.Owned)
		assert.Equal(t, "Themes", item.Category)
	}
}

func TestInventoryListsPurchases(t *testing.T) {
	f := newShopFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	itemID := f.addItem(t, "Neon Night", "theme", 10)
	f.fund(t, userID, 50)

	_, err := f.service.Purchase(ctx, userID.String(), itemID.String())
	require.NoError(t, err)

	inventory, err := f.service.GetInventory(ctx, userID.String())
	require.NoError(t, err)
	require.Len(t, inventory, 1)
	assert.Equal(t, "Neon Night", inventory[0].Name)
	assert.Equal(t, "theme", inventory[0].Type)
	assert.False(t, inventory[0].Equipped)
}
