package database

import (
	"time"

	"gorm.io/gorm"
)

// UserField is one preference value of a user, JSON encoded.
type UserField struct {
	gorm.Model
	UserID int64  `gorm:"uniqueIndex:idx_user_field;not null"`
	Name   string `gorm:"uniqueIndex:idx_user_field;not null"`
	Value  string
}

type ProtectedChat struct {
	gorm.Model
	ChatID int64 `gorm:"uniqueIndex;not null"`
}

// UserSession stores a user supplied session string until ExpiresAt.
type UserSession struct {
	gorm.Model
	UserID    int64 `gorm:"uniqueIndex;not null"`
	Session   string
	ExpiresAt time.Time `gorm:"index"`
}

type PremiumUser struct {
	gorm.Model
	UserID    int64     `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"index"`
}
