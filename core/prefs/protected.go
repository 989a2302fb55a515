package prefs

import (
	"context"
	"fmt"
	"slices"

	"github.com/krau/RelayAny-Bot/common/cache"
)

const protectedCacheKey = "protected"

func (s *Store) protected(ctx context.Context) ([]int64, error) {
	if s.cache != nil {
		if ids, ok := cache.Get[[]int64](s.cache, protectedCacheKey); ok {
			return ids, nil
		}
	}
	s.protectedMu.Lock()
	defer s.protectedMu.Unlock()
	if s.cache != nil {
		if ids, ok := cache.Get[[]int64](s.cache, protectedCacheKey); ok {
			return ids, nil
		}
	}
	ids, err := s.backend.ListProtected(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list protected chats: %w", err)
	}
	s.cachePut(protectedCacheKey, ids)
	return ids, nil
}

func (s *Store) IsProtected(ctx context.Context, chatID int64) (bool, error) {
	ids, err := s.protected(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, chatID), nil
}

func (s *Store) AddProtected(ctx context.Context, chatID int64) error {
	s.protectedMu.Lock()
	defer s.protectedMu.Unlock()
	if err := s.backend.AddProtected(ctx, chatID); err != nil {
		return fmt.Errorf("failed to add protected chat %d: %w", chatID, err)
	}
	if s.cache != nil {
		s.cache.Del(protectedCacheKey)
	}
	return nil
}
