package prefs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/krau/RelayAny-Bot/common/cache"
	"github.com/krau/RelayAny-Bot/core/transform"
	"github.com/krau/RelayAny-Bot/database"
	"github.com/krau/RelayAny-Bot/pkg/enums/tier"
	"github.com/krau/RelayAny-Bot/pkg/relayerr"
	"github.com/krau/RelayAny-Bot/pkg/tfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	db, err := database.Open(context.Background(), filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	c, err := cache.New(cache.Options{NumCounters: 1000, MaxCost: 100, TTL: time.Minute})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	base := []Option{
		WithCache(c),
		WithDefaultRenameTag("[relay]"),
		WithThumbDir(filepath.Join(t.TempDir(), "thumbs")),
	}
	return New(db, append(base, opts...)...)
}

func TestGetDefaults(t *testing.T) {
	s := newTestStore(t)
	p, err := s.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.UserID)
	assert.Equal(t, "[relay]", p.RenameTag)
	assert.Equal(t, tier.Standard, p.Tier)
	assert.True(t, p.Target.IsZero())
	assert.Equal(t, tfile.Target{ChatID: 7}, p.TargetOr(7))
	assert.Empty(t, p.DeleteWords)
	assert.Empty(t, p.Replacements)
}

func TestSettersRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	target := tfile.Target{ChatID: -1001234, TopicID: 5}
	require.NoError(t, s.SetTarget(ctx, 1, target))
	require.NoError(t, s.SetRenameTag(ctx, 1, "  [mine] "))
	require.NoError(t, s.SetCaption(ctx, 1, "via relay"))
	words, err := s.AddDeleteWords(ctx, 1, []string{"ads", "spam"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ads", "spam"}, words)
	words, err = s.AddDeleteWords(ctx, 1, []string{"spam", "promo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ads", "spam", "promo"}, words)
	require.NoError(t, s.AddReplacement(ctx, 1, "foo", "bar"))
	require.NoError(t, s.AddReplacement(ctx, 1, "x", "y"))
	require.NoError(t, s.AddReplacement(ctx, 1, "foo", "baz"))

	p, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, target, p.Target)
	assert.Equal(t, target, p.TargetOr(99))
	assert.Equal(t, "[mine]", p.RenameTag)
	assert.Equal(t, "via relay", p.CustomCaption)
	assert.Equal(t, []transform.Replacement{{Old: "foo", New: "baz"}, {Old: "x", New: "y"}}, p.Replacements)

	r, err := s.Rules(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, p.Rules(), r)

	other, err := s.Get(ctx, 2)
	require.NoError(t, err)
	assert.True(t, other.Target.IsZero())
}

func TestAddReplacementConflict(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.AddDeleteWords(ctx, 1, []string{"ads"})
	require.NoError(t, err)

	err = s.AddReplacement(ctx, 1, "ads", "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReplaceConflict))
	assert.Equal(t, relayerr.Validation, relayerr.KindOf(err))

	p, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, p.Replacements)

	assert.ErrorIs(t, s.AddReplacement(ctx, 1, "", "x"), relayerr.ErrValidation)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, WithOwners([]int64{1}))
	target := tfile.Target{ChatID: -100555}
	require.NoError(t, s.SetTarget(ctx, 1, target))
	require.NoError(t, s.SetTier(ctx, 1, tier.HighCapacity))
	require.NoError(t, s.SetRenameTag(ctx, 1, "[x]"))
	require.NoError(t, s.SetCaption(ctx, 1, "cap"))
	require.NoError(t, s.AddReplacement(ctx, 1, "a", "b"))
	thumb, err := s.SaveThumbnail(ctx, 1, func(_ context.Context, path string) error {
		return os.WriteFile(path, []byte("jpeg"), 0o644)
	})
	require.NoError(t, err)
	require.FileExists(t, thumb)

	require.NoError(t, s.Reset(ctx, 1))

	p, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, target, p.Target)
	assert.Equal(t, tier.HighCapacity, p.Tier)
	assert.Equal(t, "[relay]", p.RenameTag)
	assert.Empty(t, p.CustomCaption)
	assert.Empty(t, p.Replacements)
	assert.Empty(t, p.ThumbnailPath)
	assert.NoFileExists(t, thumb)
}

func TestThumbnail(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.SaveThumbnail(ctx, 3, func(context.Context, string) error {
		return errors.New("download failed")
	})
	require.Error(t, err)
	p, err := s.Get(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, p.ThumbnailPath)

	path, err := s.SaveThumbnail(ctx, 3, func(_ context.Context, dst string) error {
		return os.WriteFile(dst, []byte("one"), 0o644)
	})
	require.NoError(t, err)
	path2, err := s.SaveThumbnail(ctx, 3, func(_ context.Context, dst string) error {
		return os.WriteFile(dst, []byte("two"), 0o644)
	})
	require.NoError(t, err)
	assert.Equal(t, path, path2)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	removed, err := s.RemoveThumbnail(ctx, 3)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoFileExists(t, path)
	removed, err = s.RemoveThumbnail(ctx, 3)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestProtected(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	ok, err := s.IsProtected(ctx, -1001)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.AddProtected(ctx, -1001))
	require.NoError(t, s.AddProtected(ctx, -1001))
	ok, err = s.IsProtected(ctx, -1001)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.IsProtected(ctx, -1002)
	require.NoError(t, err)
	assert.False(t, ok)
}

type stalledList struct {
	Backend
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *stalledList) ListProtected(ctx context.Context) ([]int64, error) {
	ids, err := b.Backend.ListProtected(ctx)
	b.once.Do(func() {
		close(b.entered)
		<-b.release
	})
	return ids, err
}

func TestProtectedRefreshDoesNotHideLock(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	c, err := cache.New(cache.Options{NumCounters: 1000, MaxCost: 100, TTL: time.Minute})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	backend := &stalledList{Backend: db, entered: make(chan struct{}), release: make(chan struct{})}
	s := New(backend, WithCache(c))

	refreshed := make(chan struct{})
	go func() {
		defer close(refreshed)
		s.IsProtected(ctx, -1001)
	}()
	<-backend.entered

	added := make(chan error, 1)
	go func() { added <- s.AddProtected(ctx, -1001) }()
	time.Sleep(50 * time.Millisecond)
	close(backend.release)
	<-refreshed
	require.NoError(t, <-added)

	ok, err := s.IsProtected(ctx, -1001)
	require.NoError(t, err)
	assert.True(t, ok, "a stale refresh must not outlive the lock")
}

func TestTierEligibility(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newTestStore(t, WithOwners([]int64{1}), WithClock(func() time.Time { return now }))

	require.NoError(t, s.SetTier(ctx, 1, tier.HighCapacity))

	err := s.SetTier(ctx, 2, tier.HighCapacity)
	assert.ErrorIs(t, err, ErrNotEligible)
	assert.ErrorIs(t, err, relayerr.ErrValidation)
	p, err := s.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, tier.Standard, p.Tier)

	expiresAt, err := s.GrantPremium(ctx, 2, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, now.Add(24*time.Hour), expiresAt)
	require.NoError(t, s.SetTier(ctx, 2, tier.HighCapacity))

	require.NoError(t, s.RevokePremium(ctx, 2))
	ok, err := s.Eligible(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.GrantPremium(ctx, 2, 0)
	assert.ErrorIs(t, err, relayerr.ErrValidation)
	assert.ErrorIs(t, s.SetTier(ctx, 2, tier.Tier("turbo")), relayerr.ErrValidation)
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, WithCredentialTTL(time.Hour))

	_, err := s.SaveSession(ctx, 5, "   ")
	assert.ErrorIs(t, err, relayerr.ErrValidation)

	expiresAt, err := s.SaveSession(ctx, 5, " 1Aabc ")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	session, ok, err := s.Session(ctx, 5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1Aabc", session)

	removed, err := s.RemoveSession(ctx, 5)
	require.NoError(t, err)
	assert.True(t, removed)
	_, ok, err = s.Session(ctx, 5)
	require.NoError(t, err)
	assert.False(t, ok)
	removed, err = s.RemoveSession(ctx, 5)
	require.NoError(t, err)
	assert.False(t, removed)
}
