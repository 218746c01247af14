package entities

import (
	"time"

	"github.com/google/uuid"
)

// TrackData holds the normalized track record serialized at play time, so
// history survives tracks disappearing upstream.
type ListeningHistory struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	TrackID   string    `json:"track_id"`
	TrackData string    `json:"track_data"`
	PlayedAt  time.Time `gorm:"index" json:"played_at"`

	User *User `gorm:"foreignKey:UserID"`
	Timestamp
}
