// Package user logs in user accounts: the operator's userbot, the
// high-capacity uploader and the clients built from session strings that
// users submit.
package user

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/celestix/gotgproto"
	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/celestix/gotgproto/sessionMaker"
	"github.com/charmbracelet/log"
	"github.com/krau/RelayAny-Bot/client/middleware"
	"github.com/krau/RelayAny-Bot/client/tgcap"
	"github.com/krau/RelayAny-Bot/common/utils/tgutil"
	"github.com/krau/RelayAny-Bot/config"
	"github.com/krau/RelayAny-Bot/database"
)

const loginTimeout = 5 * time.Minute

var (
	userbotMu sync.Mutex
	userbot   *gotgproto.Client
)

// Login starts the userbot, asking for the login data on the terminal the
// first time. Later calls return the running client.
func Login(ctx context.Context) (*gotgproto.Client, error) {
	userbotMu.Lock()
	defer userbotMu.Unlock()
	if userbot != nil {
		return userbot, nil
	}
	log.FromContext(ctx).Debug("Logging in userbot")
	session := sessionMaker.SqlSession(database.GetDialect(config.C().Telegram.Userbot.Session))
	client, err := startClient(ctx, session, newTerminalAuthConversator(), false)
	if err != nil {
		return nil, fmt.Errorf("userbot login failed: %w", err)
	}
	userbot = client
	log.FromContext(ctx).Info("Userbot logged in", "name", displayName(client))
	return userbot, nil
}

// Capability wraps a running client for relaying.
func Capability(client *gotgproto.Client, opts ...tgcap.Option) *tgcap.Client {
	opts = append([]tgcap.Option{tgcap.WithThreads(config.C().Threads)}, opts...)
	return tgcap.New(client.CreateContext(), opts...)
}

// SessionFromString builds a session constructor for a session string.
// kind is one of telethon, pyrogram or gotgproto; empty means telethon.
func SessionFromString(kind, value string) (sessionMaker.SessionConstructor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("empty session string")
	}
	switch strings.ToLower(kind) {
	case "", "telethon":
		return sessionMaker.TelethonSession(value), nil
	case "pyrogram":
		return sessionMaker.PyrogramSession(value), nil
	case "gotgproto":
		return sessionMaker.StringSession(value), nil
	}
	return nil, fmt.Errorf("unknown session type %q", kind)
}

// LoginWithString starts a client from a session string. The session is
// kept in memory only.
func LoginWithString(ctx context.Context, kind, value string) (*gotgproto.Client, error) {
	session, err := SessionFromString(kind, value)
	if err != nil {
		return nil, err
	}
	return startClient(ctx, session, nil, true)
}

// startClient runs gotgproto.NewClient in the background so that ctx can
// abort a login that hangs on the network.
func startClient(ctx context.Context, session sessionMaker.SessionConstructor, conv gotgproto.AuthConversator, inMemory bool) (*gotgproto.Client, error) {
	cfg := config.C()
	resolver, err := tgutil.NewProxyResolver(cfg.Proxy, tgProxy(cfg))
	if err != nil {
		return nil, err
	}
	opts := &gotgproto.ClientOpts{
		Session:          session,
		InMemory:         inMemory,
		Context:          ctx,
		DisableCopyright: true,
		Resolver:         resolver,
		MaxRetries:       cfg.Telegram.RpcRetry,
		AutoFetchReply:   true,
		Middlewares:      middleware.NewDefaultMiddlewares(ctx, loginTimeout, cfg.Telegram.RpcRetry, cfg.Telegram.FloodRetry),
		ErrorHandler: func(ctx *ext.Context, u *ext.Update, s string) error {
			log.FromContext(ctx).Errorf("Unhandled error: %s", s)
			return dispatcher.EndGroups
		},
	}
	if conv != nil {
		opts.AuthConversator = conv
	}

	type result struct {
		client *gotgproto.Client
		err    error
	}
	res := make(chan result, 1)
	go func() {
		client, err := gotgproto.NewClient(cfg.Telegram.AppID, cfg.Telegram.AppHash, gotgproto.ClientTypePhone(""), opts)
		res <- result{client, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-res:
		return r.client, r.err
	}
}

func tgProxy(cfg *config.Config) string {
	if cfg.Telegram.Proxy.Enable {
		return cfg.Telegram.Proxy.URL
	}
	return ""
}

func displayName(client *gotgproto.Client) string {
	if client.Self == nil {
		return ""
	}
	return strings.TrimSpace(client.Self.FirstName + " " + client.Self.LastName)
}
