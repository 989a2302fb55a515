package prefs

import (
	"context"
	"time"
)

// FieldBackend is the durable store behind Store. Values are JSON strings.
type FieldBackend interface {
	GetField(ctx context.Context, userID int64, key string) (string, bool, error)
	SetField(ctx context.Context, userID int64, key, value string) error
	ClearFields(ctx context.Context, userID int64, keys []string) error
	ListProtected(ctx context.Context) ([]int64, error)
	AddProtected(ctx context.Context, chatID int64) error
}

// CredentialBackend keeps user session strings. Expired rows are invisible
// and removed by the backend itself.
type CredentialBackend interface {
	GetSession(ctx context.Context, userID int64) (string, time.Time, bool, error)
	SetSession(ctx context.Context, userID int64, session string, expiresAt time.Time) error
	RemoveSession(ctx context.Context, userID int64) error
}

type PremiumBackend interface {
	GetPremium(ctx context.Context, userID int64) (time.Time, bool, error)
	SetPremium(ctx context.Context, userID int64, expiresAt time.Time) error
	RemovePremium(ctx context.Context, userID int64) error
}

type Backend interface {
	FieldBackend
	CredentialBackend
	PremiumBackend
}
