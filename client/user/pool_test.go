package user

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/krau/RelayAny-Bot/common/utils/tgutil"
	"github.com/krau/RelayAny-Bot/core/relay"
	"github.com/krau/RelayAny-Bot/core/upload"
	"github.com/krau/RelayAny-Bot/pkg/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	session string
}

func (s *stubSource) ResolveChat(ctx context.Context, link tgutil.MessageLink) (int64, error) {
	return link.ChatID, nil
}

func (s *stubSource) FetchMessage(ctx context.Context, chatID int64, msgID int) (media.Item, error) {
	return media.Item{}, nil
}

func (s *stubSource) FetchStory(ctx context.Context, chatID int64, storyID int) (media.Item, error) {
	return media.Item{}, nil
}

func (s *stubSource) Download(ctx context.Context, item media.Item, dest string, progress upload.ProgressFunc) error {
	return nil
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[int64]string
	err      error
}

func (m *memSessions) Session(ctx context.Context, userID int64) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", false, m.err
	}
	s, ok := m.sessions[userID]
	return s, ok, nil
}

func (m *memSessions) set(userID int64, s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s == "" {
		delete(m.sessions, userID)
		return
	}
	m.sessions[userID] = s
}

type loginRecorder struct {
	mu      sync.Mutex
	logins  []string
	stopped []string
	fail    bool
}

func (r *loginRecorder) login(ctx context.Context, session string) (relay.Source, func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, nil, errors.New("AUTH_KEY_UNREGISTERED")
	}
	r.logins = append(r.logins, session)
	return &stubSource{session: session}, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.stopped = append(r.stopped, session)
	}, nil
}

func TestPoolNoSession(t *testing.T) {
	rec := &loginRecorder{}
	p := NewPool(&memSessions{sessions: map[int64]string{}}, WithLogin(rec.login))
	src, ok := p.Source(context.Background(), 1)
	assert.False(t, ok)
	assert.Nil(t, src)
	assert.Empty(t, rec.logins)
}

func TestPoolReusesClient(t *testing.T) {
	rec := &loginRecorder{}
	store := &memSessions{sessions: map[int64]string{1: "s1"}}
	p := NewPool(store, WithLogin(rec.login))

	first, ok := p.Source(context.Background(), 1)
	require.True(t, ok)
	second, ok := p.Source(context.Background(), 1)
	require.True(t, ok)
	assert.Same(t, first, second)
	assert.Equal(t, []string{"s1"}, rec.logins)
	assert.Equal(t, 1, p.Len())
}

func TestPoolSessionChangedOrRemoved(t *testing.T) {
	rec := &loginRecorder{}
	store := &memSessions{sessions: map[int64]string{1: "s1"}}
	p := NewPool(store, WithLogin(rec.login))

	_, ok := p.Source(context.Background(), 1)
	require.True(t, ok)

	store.set(1, "s2")
	src, ok := p.Source(context.Background(), 1)
	require.True(t, ok)
	assert.Equal(t, "s2", src.(*stubSource).session)
	assert.Equal(t, []string{"s1"}, rec.stopped)

	store.set(1, "")
	_, ok = p.Source(context.Background(), 1)
	assert.False(t, ok)
	assert.Equal(t, []string{"s1", "s2"}, rec.stopped)
	assert.Zero(t, p.Len())
}

func TestPoolLoginFailure(t *testing.T) {
	rec := &loginRecorder{fail: true}
	p := NewPool(&memSessions{sessions: map[int64]string{1: "bad"}}, WithLogin(rec.login))
	_, ok := p.Source(context.Background(), 1)
	assert.False(t, ok)
	assert.Zero(t, p.Len())
}

func TestPoolStoreError(t *testing.T) {
	rec := &loginRecorder{}
	p := NewPool(&memSessions{err: errors.New("db closed")}, WithLogin(rec.login))
	_, ok := p.Source(context.Background(), 1)
	assert.False(t, ok)
}

func TestPoolClose(t *testing.T) {
	rec := &loginRecorder{}
	p := NewPool(&memSessions{sessions: map[int64]string{1: "a", 2: "b"}}, WithLogin(rec.login))
	p.Source(context.Background(), 1)
	p.Source(context.Background(), 2)
	p.Close()
	assert.ElementsMatch(t, []string{"a", "b"}, rec.stopped)
	assert.Zero(t, p.Len())
}

func TestSessionFromString(t *testing.T) {
	for _, kind := range []string{"", "telethon", "Pyrogram", "gotgproto"} {
		_, err := SessionFromString(kind, "abc")
		assert.NoError(t, err, kind)
	}
	_, err := SessionFromString("telethon", "  ")
	assert.Error(t, err)
	_, err = SessionFromString("tdata", "abc")
	assert.Error(t, err)
}
