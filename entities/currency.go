package entities

import (
	"github.com/google/uuid"
)

type CurrencyAccount struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	Balance int       `json:"balance"`

	User *User `gorm:"foreignKey:UserID"`
	Timestamp
}

// RewardDay is set only on daily_reward transactions; the composite unique
// index backs the one-claim-per-day rule at the storage layer.
type CurrencyTransaction struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_user_reward_day" json:"user_id"`
	Amount    int       `json:"amount"`
	Reason    string    `json:"reason"` // daily_reward, listen_track, purchase_<item>, admin_grant
	RewardDay *string   `gorm:"uniqueIndex:idx_user_reward_day" json:"-"`

	User *User `gorm:"foreignKey:UserID"`
	Timestamp
}
