package entities

import (
	"time"

	"github.com/google/uuid"
)

type ShopCategory struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name        string    `gorm:"uniqueIndex" json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon,omitempty"`

	Items []*ShopItem `gorm:"foreignKey:CategoryID"`
	Timestamp
}

type ShopItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"` // theme, avatar, profile_banner, badge, effect, animation
	CategoryID uuid.UUID `gorm:"type:uuid" json:"category_id"`
	Price      int       `json:"price"`
	Data       string    `json:"data,omitempty"` // opaque JSON rendering payload
	Rarity     string    `gorm:"default:common" json:"rarity"` // common, rare, epic, legendary
	IsActive   bool      `gorm:"default:true" json:"is_active"`

	Category *ShopCategory `gorm:"foreignKey:CategoryID"`
	Timestamp
}

type UserInventory struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_user_item" json:"user_id"`
	ItemID      uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_user_item" json:"item_id"`
	PurchasedAt time.Time  `json:"purchased_at"`
	Equipped    bool       `gorm:"default:false" json:"equipped"`
	EquippedAt  *time.Time `json:"equipped_at,omitempty"`

	User *User     `gorm:"foreignKey:UserID"`
	Item *ShopItem `gorm:"foreignKey:ItemID"`
	Timestamp
}
