package entities

import (
	"github.com/google/uuid"
)

type Friend struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_friend" json:"user_id"`
	FriendID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_friend" json:"friend_id"`
	Status     string    `gorm:"default:pending" json:"status"` // pending, accepted
	TasteMatch int       `json:"taste_match"`

	User       *User `gorm:"foreignKey:UserID"`
	FriendUser *User `gorm:"foreignKey:FriendID"`
	Timestamp
}

type UserActivity struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	ActivityType string    `json:"activity_type"` // track_played, item_purchased, reward_claimed, friend_added
	ActivityData string    `json:"activity_data,omitempty"`

	User *User `gorm:"foreignKey:UserID"`
	Timestamp
}
