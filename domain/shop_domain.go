package domain

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"time"
)

var (
	MessageSuccessGetCatalog     = "shop catalog retrieved successfully"
	MessageSuccessGetCategories  = "shop categories retrieved successfully"
	MessageSuccessPurchase       = "item purchased successfully"
	MessageSuccessEquip          = "item equipped successfully"
	MessageSuccessGetEquipped    = "equipped items retrieved successfully"
	MessageSuccessGetInventory   = "inventory retrieved successfully"
	MessageSuccessCreateItem     = "shop item created successfully"
	MessageSuccessCreateCategory = "shop category created successfully"
	MessageSuccessDeactivateItem = "shop item deactivated successfully"

	MessageFailedGetCatalog     = "failed to retrieve shop catalog"
	MessageFailedGetCategories  = "failed to retrieve shop categories"
	MessageFailedPurchase       = "failed to purchase item"
	MessageFailedEquip          = "failed to equip item"
	MessageFailedGetEquipped    = "failed to retrieve equipped items"
	MessageFailedGetInventory   = "failed to retrieve inventory"
	MessageFailedCreateItem     = "failed to create shop item"
	MessageFailedCreateCategory = "failed to create shop category"
	MessageFailedDeactivateItem = "failed to deactivate shop item"

	ErrItemNotFound     = errors.New("shop item not found")
	ErrItemInactive     = errors.New("shop item is no longer available")
	ErrItemAlreadyOwned = errors.New("item already owned")
	ErrItemNotOwned     = errors.New("item not owned")
	ErrCategoryNotFound = errors.New("shop category not found")
)

type (
	ShopItem struct {
		ID       string          `json:"id"`
		Name     string          `json:"name"`
		Type     string          `json:"type"`
		Category string          `json:"category"`
		Price    int             `json:"price"`
		Data     json.RawMessage `json:"data,omitempty"`
		Rarity   string          `json:"rarity"`
		Owned    bool            `json:"owned"`
	}

	ShopCategory struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Icon        string `json:"icon,omitempty"`
	}

	PurchaseResponse struct {
		Balance int `json:"balance"`
	}

	EquipRequest struct {
		ItemID string `json:"item_id" validate:"required,uuid"`
	}

	EquippedItem struct {
		ItemID string          `json:"item_id"`
		Name   string          `json:"name"`
		Data   json.RawMessage `json:"data,omitempty"`
	}

	InventoryEntry struct {
		ItemID      string          `json:"item_id"`
		Name        string          `json:"name"`
		Type        string          `json:"type"`
		Rarity      string          `json:"rarity"`
		Data        json.RawMessage `json:"data,omitempty"`
		Equipped    bool            `json:"equipped"`
		PurchasedAt time.Time       `json:"purchased_at"`
	}

	CreateCategoryRequest struct {
		Name        string `json:"name" validate:"required,max=50"`
		Description string `json:"description" validate:"required,max=200"`
		Icon        string `json:"icon" validate:"omitempty,max=50"`
	}

	CreateItemRequest struct {
		Name       string                `json:"name" form:"name" validate:"required,max=100"`
		Type       string                `json:"type" form:"type" validate:"required,oneof=theme avatar profile_banner badge effect animation"`
		CategoryID string                `json:"category_id" form:"category_id" validate:"required,uuid"`
		Price      int                   `json:"price" form:"price" validate:"min=0"`
		Data       string                `json:"data" form:"data" validate:"omitempty,json"`
		Rarity     string                `json:"rarity" form:"rarity" validate:"omitempty,oneof=common rare epic legendary"`
		Icon       *multipart.FileHeader `json:"-" form:"-"`
	}
)
