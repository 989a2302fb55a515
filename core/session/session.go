// Package session tracks the single pending settings prompt of each user.
package session

import (
	"sync"
	"time"
)

type Prompt int

const (
	None Prompt = iota
	AwaitingTargetChat
	AwaitingRenameTag
	AwaitingCaption
	AwaitingReplacementRule
	AwaitingDeleteWords
	AwaitingCredentialString
	AwaitingThumbnailPhoto
)

var promptNames = [...]string{
	None:                     "none",
	AwaitingTargetChat:       "awaiting_target_chat",
	AwaitingRenameTag:        "awaiting_rename_tag",
	AwaitingCaption:          "awaiting_caption",
	AwaitingReplacementRule:  "awaiting_replacement_rule",
	AwaitingDeleteWords:      "awaiting_delete_words",
	AwaitingCredentialString: "awaiting_credential_string",
	AwaitingThumbnailPhoto:   "awaiting_thumbnail_photo",
}

func (p Prompt) String() string {
	if p < 0 || int(p) >= len(promptNames) {
		return promptNames[None]
	}
	return promptNames[p]
}

type Session struct {
	Prompt    Prompt
	ExpiresAt time.Time
}

// Manager holds at most one prompt per user.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]Session
	ttl      time.Duration
	now      func() time.Time
}

type ManagerOption func(*Manager)

func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a manager whose prompts expire after ttl. A ttl <= 0
// disables expiry.
func NewManager(ttl time.Duration, opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions: make(map[int64]Session),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Begin replaces any pending prompt of the user.
func (m *Manager) Begin(userID int64, p Prompt) Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p == None {
		delete(m.sessions, userID)
		return Session{}
	}
	s := Session{Prompt: p}
	if m.ttl > 0 {
		s.ExpiresAt = m.now().Add(m.ttl)
	}
	m.sessions[userID] = s
	return s
}

func (m *Manager) expired(s Session) bool {
	return !s.ExpiresAt.IsZero() && !m.now().Before(s.ExpiresAt)
}

// Peek returns the live prompt of the user without consuming it.
func (m *Manager) Peek(userID int64) Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return None
	}
	if m.expired(s) {
		delete(m.sessions, userID)
		return None
	}
	return s.Prompt
}

// Take consumes the prompt of the user. expired is true when a prompt
// existed but its deadline had passed.
func (m *Manager) Take(userID int64) (p Prompt, expired bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return None, false
	}
	delete(m.sessions, userID)
	if m.expired(s) {
		return None, true
	}
	return s.Prompt, false
}

func (m *Manager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// Sweep drops expired prompts and returns how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}
