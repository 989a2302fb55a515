package prefs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/krau/RelayAny-Bot/pkg/relayerr"
)

// SaveSession stores a user session string and returns its expiry.
func (s *Store) SaveSession(ctx context.Context, userID int64, session string) (time.Time, error) {
	session = strings.TrimSpace(session)
	if session == "" {
		return time.Time{}, fmt.Errorf("%w: empty session string", relayerr.ErrValidation)
	}
	expiresAt := s.now().Add(s.credentialTTL)
	if err := s.backend.SetSession(ctx, userID, session, expiresAt); err != nil {
		return time.Time{}, fmt.Errorf("failed to save session of user %d: %w", userID, err)
	}
	return expiresAt, nil
}

func (s *Store) Session(ctx context.Context, userID int64) (string, bool, error) {
	session, _, ok, err := s.backend.GetSession(ctx, userID)
	if err != nil {
		return "", false, fmt.Errorf("failed to get session of user %d: %w", userID, err)
	}
	return session, ok, nil
}

// RemoveSession reports whether a live session existed.
func (s *Store) RemoveSession(ctx context.Context, userID int64) (bool, error) {
	_, ok, err := s.Session(ctx, userID)
	if err != nil {
		return false, err
	}
	if err := s.backend.RemoveSession(ctx, userID); err != nil {
		return false, fmt.Errorf("failed to remove session of user %d: %w", userID, err)
	}
	return ok, nil
}

func (s *Store) GrantPremium(ctx context.Context, userID int64, d time.Duration) (time.Time, error) {
	if d <= 0 {
		return time.Time{}, fmt.Errorf("%w: non-positive premium duration", relayerr.ErrValidation)
	}
	expiresAt := s.now().Add(d)
	if err := s.backend.SetPremium(ctx, userID, expiresAt); err != nil {
		return time.Time{}, fmt.Errorf("failed to grant premium to user %d: %w", userID, err)
	}
	return expiresAt, nil
}

func (s *Store) RevokePremium(ctx context.Context, userID int64) error {
	if err := s.backend.RemovePremium(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke premium of user %d: %w", userID, err)
	}
	return nil
}

// Eligible reports whether the user may pick the high capacity tier.
func (s *Store) Eligible(ctx context.Context, userID int64) (bool, error) {
	if s.IsOwner(userID) {
		return true, nil
	}
	expiresAt, ok, err := s.backend.GetPremium(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get premium of user %d: %w", userID, err)
	}
	return ok && expiresAt.After(s.now()), nil
}
