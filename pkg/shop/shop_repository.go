package shop

import (
	"context"
	"errors"
	"time"

	"itired-backend/domain"
	"itired-backend/entities"
	"itired-backend/pkg/currency"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	ShopRepository interface {
		// Catalog
		GetCategories(ctx context.Context) ([]*entities.ShopCategory, error)
		GetCategoryByID(ctx context.Context, id uuid.UUID) (*entities.ShopCategory, error)
		CreateCategory(ctx context.Context, category *entities.ShopCategory) error
		GetActiveItems(ctx context.Context) ([]*entities.ShopItem, error)
		GetItemByID(ctx context.Context, id uuid.UUID) (*entities.ShopItem, error)
		CreateItem(ctx context.Context, item *entities.ShopItem) error
		DeactivateItem(ctx context.Context, id uuid.UUID) error

		// Inventory
		GetUserInventory(ctx context.Context, userID uuid.UUID) ([]*entities.UserInventory, error)
		GetOwnedItemIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error)
		GetEquipped(ctx context.Context, userID uuid.UUID) ([]*entities.UserInventory, error)

		// Purchase debits the ledger and grants the item as one transaction;
		// any check failing leaves no partial state.
		Purchase(ctx context.Context, userID, itemID uuid.UUID) (int, error)
		// Equip flips the target entry on and every same-type entry off,
		// atomically per user.
		Equip(ctx context.Context, userID, itemID uuid.UUID) error
	}

	shopRepository struct {
		db                 *gorm.DB
		currencyRepository currency.CurrencyRepository
	}
)

func NewShopRepository(db *gorm.DB, currencyRepository currency.CurrencyRepository) ShopRepository {
	return &shopRepository{
		db:                 db,
		currencyRepository: currencyRepository,
	}
}

func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *shopRepository) GetCategories(ctx context.Context) ([]*entities.ShopCategory, error) {
	var categories []*entities.ShopCategory
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *shopRepository) GetCategoryByID(ctx context.Context, id uuid.UUID) (*entities.ShopCategory, error) {
	var category entities.ShopCategory
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *shopRepository) CreateCategory(ctx context.Context, category *entities.ShopCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *shopRepository) GetActiveItems(ctx context.Context) ([]*entities.ShopItem, error) {
	var items []*entities.ShopItem
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("is_active = ?", true).
		Order("price ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *shopRepository) GetItemByID(ctx context.Context, id uuid.UUID) (*entities.ShopItem, error) {
	var item entities.ShopItem
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *shopRepository) CreateItem(ctx context.Context, item *entities.ShopItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *shopRepository) DeactivateItem(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&entities.ShopItem{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *shopRepository) GetUserInventory(ctx context.Context, userID uuid.UUID) ([]*entities.UserInventory, error) {
	var inventory []*entities.UserInventory
	if err := r.db.WithContext(ctx).
		Preload("Item").
		Where("user_id = ?", userID).
		Order("purchased_at DESC").
		Find(&inventory).Error; err != nil {
		return nil, err
	}
	return inventory, nil
}

func (r *shopRepository) GetOwnedItemIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	var itemIDs []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&entities.UserInventory{}).
		Where("user_id = ?", userID).
		Pluck("item_id", &itemIDs).Error; err != nil {
		return nil, err
	}

	owned := make(map[uuid.UUID]bool, len(itemIDs))
	for _, id := range itemIDs {
		owned[id] = true
	}
	return owned, nil
}

func (r *shopRepository) GetEquipped(ctx context.Context, userID uuid.UUID) ([]*entities.UserInventory, error) {
	var equipped []*entities.UserInventory
	if err := r.db.WithContext(ctx).
		Preload("Item").
		Where("user_id = ? AND equipped = ?", userID, true).
		Find(&equipped).Error; err != nil {
		return nil, err
	}
	return equipped, nil
}

func (r *shopRepository) Purchase(ctx context.Context, userID, itemID uuid.UUID) (int, error) {
	var balance int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item entities.ShopItem
		if err := tx.Where("id = ?", itemID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrItemNotFound
			}
			return err
		}
		if !item.IsActive {
			return domain.ErrItemInactive
		}

		var owned int64
		if err := tx.Model(&entities.UserInventory{}).
			Where("user_id = ? AND item_id = ?", userID, itemID).
			Count(&owned).Error; err != nil {
			return err
		}
		if owned > 0 {
			return domain.ErrItemAlreadyOwned
		}

		// Debit locks the account row, so concurrent purchases by the same
		// user serialize here.
		var err error
		balance, err = r.currencyRepository.ApplyTx(tx, userID, -item.Price, "purchase_"+item.Name, nil)
		if err != nil {
			return err
		}

		entry := &entities.UserInventory{
			ID:          uuid.New(),
			UserID:      userID,
			ItemID:      itemID,
			PurchasedAt: time.Now(),
			Equipped:    false,
		}
		if err := tx.Create(entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrItemAlreadyOwned
			}
			return err
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *shopRepository) Equip(ctx context.Context, userID, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item entities.ShopItem
		if err := tx.Where("id = ?", itemID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrItemNotOwned
			}
			return err
		}

		// Lock every inventory row in the slot in a single statement, so
		// concurrent equips for the same (user, type) queue here and the
		// un-equip below works on the latest committed state.
		sameType := tx.Session(&gorm.Session{NewDB: true}).
			Model(&entities.ShopItem{}).
			Select("id").
			Where("type = ?", item.Type)
		var slot []*entities.UserInventory
		if err := lockForUpdate(tx).
			Where("user_id = ? AND item_id IN (?)", userID, sameType).
			Order("id ASC").
			Find(&slot).Error; err != nil {
			return err
		}

		var target *entities.UserInventory
		unequip := make([]uuid.UUID, 0, len(slot))
		for _, entry := range slot {
			if entry.ItemID == itemID {
				target = entry
				continue
			}
			if entry.Equipped {
				unequip = append(unequip, entry.ID)
			}
		}
		if target == nil {
			return domain.ErrItemNotOwned
		}

		if len(unequip) > 0 {
			if err := tx.Model(&entities.UserInventory{}).
				Where("id IN ?", unequip).
				Updates(map[string]any{"equipped": false, "equipped_at": nil}).Error; err != nil {
				return err
			}
		}

		now := time.Now()
		return tx.Model(&entities.UserInventory{}).
			Where("id = ?", target.ID).
			Updates(map[string]any{"equipped": true, "equipped_at": now}).Error
	})
}
