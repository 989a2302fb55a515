// Package prefs stores per-user relay preferences, the protected source
// set, user sessions and premium grants.
package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/duke-git/lancet/v2/slice"
	"github.com/krau/RelayAny-Bot/common/cache"
)

const (
	KeyTargetChat       = "target_chat"
	KeyRenameTag        = "rename_tag"
	KeyCustomCaption    = "custom_caption"
	KeyDeleteWords      = "delete_words"
	KeyReplacementWords = "replacement_words"
	KeyUploadTier       = "upload_tier"
	KeyThumbnail        = "thumbnail"
)

// resetKeys are cleared by Reset. Target chat and tier survive.
var resetKeys = []string{
	KeyRenameTag,
	KeyCustomCaption,
	KeyDeleteWords,
	KeyReplacementWords,
	KeyThumbnail,
}

type Store struct {
	backend       Backend
	cache         *cache.Cache
	renameTag     string
	owners        []int64
	credentialTTL time.Duration
	thumbDir      string
	now           func() time.Time

	locks sync.Map // userID -> *sync.Mutex
	// protectedMu orders protected-list refreshes against writes.
	protectedMu sync.Mutex
}

type Option func(*Store)

// WithCache enables read-through caching. Writes go to the backend first
// and then refresh the cached value.
func WithCache(c *cache.Cache) Option {
	return func(s *Store) {
		s.cache = c
	}
}

func WithDefaultRenameTag(tag string) Option {
	return func(s *Store) {
		s.renameTag = tag
	}
}

func WithOwners(owners []int64) Option {
	return func(s *Store) {
		s.owners = owners
	}
}

func WithCredentialTTL(d time.Duration) Option {
	return func(s *Store) {
		s.credentialTTL = d
	}
}

func WithThumbDir(dir string) Option {
	return func(s *Store) {
		s.thumbDir = dir
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:       backend,
		renameTag:     "[relay]",
		credentialTTL: 30 * 24 * time.Hour,
		thumbDir:      "data/thumbs",
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) lock(userID int64) func() {
	v, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *Store) IsOwner(userID int64) bool {
	return slice.Contain(s.owners, userID)
}

func fieldCacheKey(userID int64, key string) string {
	return "pref:" + strconv.FormatInt(userID, 10) + ":" + key
}

// getField decodes the JSON value of key into out. It reports false when
// the user never set key.
func (s *Store) getField(ctx context.Context, userID int64, key string, out any) (bool, error) {
	ck := fieldCacheKey(userID, key)
	if s.cache != nil {
		if raw, ok := cache.Get[string](s.cache, ck); ok {
			if raw == "" {
				return false, nil
			}
			return true, json.Unmarshal([]byte(raw), out)
		}
	}
	raw, ok, err := s.backend.GetField(ctx, userID, key)
	if err != nil {
		return false, fmt.Errorf("failed to get %s of user %d: %w", key, userID, err)
	}
	// empty string caches the miss
	s.cachePut(ck, raw)
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("failed to decode %s of user %d: %w", key, userID, err)
	}
	return true, nil
}

// setField must be called with the user lock held.
func (s *Store) setField(ctx context.Context, userID int64, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := s.backend.SetField(ctx, userID, key, string(data)); err != nil {
		return fmt.Errorf("failed to set %s of user %d: %w", key, userID, err)
	}
	s.cachePut(fieldCacheKey(userID, key), string(data))
	return nil
}

// clearFields must be called with the user lock held.
func (s *Store) clearFields(ctx context.Context, userID int64, keys []string) error {
	if err := s.backend.ClearFields(ctx, userID, keys); err != nil {
		return fmt.Errorf("failed to clear fields of user %d: %w", userID, err)
	}
	if s.cache != nil {
		for _, k := range keys {
			s.cache.Del(fieldCacheKey(userID, k))
		}
	}
	return nil
}

// cachePut drops the key when the cache refuses the new value, so a stale
// entry is never served after a write.
func (s *Store) cachePut(key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(key, value); err != nil {
		s.cache.Del(key)
	}
}
