package user

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/krau/RelayAny-Bot/core/relay"
)

// SessionStore returns the session string a user submitted, if any.
type SessionStore interface {
	Session(ctx context.Context, userID int64) (string, bool, error)
}

// LoginFunc turns a session string into a source. stop releases it.
type LoginFunc func(ctx context.Context, session string) (src relay.Source, stop func(), err error)

type pooled struct {
	session string
	src     relay.Source
	stop    func()
}

// Pool keeps one logged in client per user with a stored session. Clients
// are created on first use and dropped when the session goes away.
type Pool struct {
	store   SessionStore
	login   LoginFunc
	mu      sync.Mutex
	clients map[int64]*pooled
	// logins serialises logins of the same user.
	logins sync.Map
}

type PoolOption func(*Pool)

func WithLogin(login LoginFunc) PoolOption {
	return func(p *Pool) {
		p.login = login
	}
}

func NewPool(store SessionStore, opts ...PoolOption) *Pool {
	p := &Pool{
		store:   store,
		login:   loginSource,
		clients: make(map[int64]*pooled),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func loginSource(ctx context.Context, session string) (relay.Source, func(), error) {
	client, err := LoginWithString(ctx, "telethon", session)
	if err != nil {
		return nil, nil, err
	}
	return Capability(client), client.Stop, nil
}

// Source implements relay.SourceFunc. ok is false when the user has no
// usable session.
func (p *Pool) Source(ctx context.Context, userID int64) (relay.Source, bool) {
	logger := log.FromContext(ctx)
	session, found, err := p.store.Session(ctx, userID)
	if err != nil {
		logger.Warn("Failed to load user session", "user", userID, "error", err)
		return nil, false
	}
	if !found {
		p.Drop(userID)
		return nil, false
	}

	lock, _ := p.logins.LoadOrStore(userID, &sync.Mutex{})
	lock.(*sync.Mutex).Lock()
	defer lock.(*sync.Mutex).Unlock()

	p.mu.Lock()
	cur, ok := p.clients[userID]
	p.mu.Unlock()
	if ok && cur.session == session {
		return cur.src, true
	}
	if ok {
		p.Drop(userID)
	}

	src, stop, err := p.login(ctx, session)
	if err != nil {
		logger.Warn("Failed to log in with user session", "user", userID, "error", err)
		return nil, false
	}
	p.mu.Lock()
	p.clients[userID] = &pooled{session: session, src: src, stop: stop}
	p.mu.Unlock()
	logger.Info("Logged in user session", "user", userID)
	return src, true
}

// Drop stops and forgets the client of userID.
func (p *Pool) Drop(userID int64) {
	p.mu.Lock()
	cur, ok := p.clients[userID]
	delete(p.clients, userID)
	p.mu.Unlock()
	if ok && cur.stop != nil {
		cur.stop()
	}
}

func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

func (p *Pool) Close() {
	p.mu.Lock()
	clients := p.clients
	p.clients = make(map[int64]*pooled)
	p.mu.Unlock()
	for _, c := range clients {
		if c.stop != nil {
			c.stop()
		}
	}
}
