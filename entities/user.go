package entities

import (
	"time"

	"github.com/google/uuid"
)

type Timestamp struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	ID                      uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Username                string     `gorm:"uniqueIndex" json:"username"`
	Email                   string     `gorm:"uniqueIndex" json:"email"`
	PasswordHash            string     `json:"-"`
	DisplayName             string     `json:"display_name,omitempty"`
	AvatarURL               string     `json:"avatar_url,omitempty"`
	Bio                     string     `json:"bio,omitempty"`
	YandexToken             string     `json:"-"`
	VKToken                 string     `json:"-"`
	IsAdmin                 bool       `json:"is_admin"`
	EmailVerified           bool       `json:"email_verified"`
	VerificationCode        string     `json:"-"`
	VerificationCodeExpires *time.Time `json:"-"`

	Settings *UserSettings `gorm:"foreignKey:UserID" json:"settings,omitempty"`
	Timestamp
}

type UserSettings struct {
	UserID       uuid.UUID `gorm:"type:uuid;primary_key" json:"user_id"`
	Theme        string    `gorm:"default:dark" json:"theme"`
	Language     string    `gorm:"default:ru" json:"language"`
	AutoPlay     bool      `gorm:"default:true" json:"auto_play"`
	ShowExplicit bool      `gorm:"default:true" json:"show_explicit"`
	MusicService string    `gorm:"default:yandex" json:"music_service"` // yandex, vk

	Timestamp
}
