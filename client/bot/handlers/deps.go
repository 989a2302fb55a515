package handlers

import (
	"context"

	"github.com/krau/RelayAny-Bot/core"
	"github.com/krau/RelayAny-Bot/core/prefs"
	"github.com/krau/RelayAny-Bot/core/relay"
	"github.com/krau/RelayAny-Bot/core/session"
)

// SessionPool forgets the client logged in with a user's session.
type SessionPool interface {
	Drop(userID int64)
}

// Deps is what the handlers work with. Ctx outlives every update and is
// the parent of queued relays.
type Deps struct {
	Ctx      context.Context
	Core     *core.Core
	Prefs    *prefs.Store
	Prompts  *session.Handler
	Worker   relay.Capability
	Pool     SessionPool
	BatchMax int
	Version  string
}

var deps *Deps
