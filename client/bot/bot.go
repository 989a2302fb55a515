// Package bot runs the Telegram bot: the worker account of every relay and
// the front end users talk to.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/celestix/gotgproto"
	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/celestix/gotgproto/sessionMaker"
	"github.com/charmbracelet/log"
	"github.com/gotd/td/tg"
	"github.com/krau/RelayAny-Bot/client/bot/handlers"
	"github.com/krau/RelayAny-Bot/client/middleware"
	"github.com/krau/RelayAny-Bot/client/tgcap"
	"github.com/krau/RelayAny-Bot/common/i18n"
	"github.com/krau/RelayAny-Bot/common/utils/tgutil"
	"github.com/krau/RelayAny-Bot/config"
	"github.com/krau/RelayAny-Bot/database"
)

// Init logs the bot in and publishes its command list. Handlers are added
// later by Serve, once the relay engine is built on top of the client.
func Init(ctx context.Context) (*gotgproto.Client, error) {
	log.FromContext(ctx).Info("Initializing Bot...")
	cfg := config.C()
	type result struct {
		client *gotgproto.Client
		err    error
	}
	res := make(chan result, 1)

	go func() {
		proxyURL := ""
		if cfg.Telegram.Proxy.Enable {
			proxyURL = cfg.Telegram.Proxy.URL
		}
		resolver, err := tgutil.NewProxyResolver(cfg.Proxy, proxyURL)
		if err != nil {
			res <- result{nil, err}
			return
		}
		client, err := gotgproto.NewClient(
			cfg.Telegram.AppID,
			cfg.Telegram.AppHash,
			gotgproto.ClientTypeBot(cfg.Telegram.Token),
			&gotgproto.ClientOpts{
				Session:          sessionMaker.SqlSession(database.GetDialect(cfg.DB.Session)),
				DisableCopyright: true,
				Middlewares:      middleware.NewDefaultMiddlewares(ctx, 5*time.Minute, cfg.Telegram.RpcRetry, cfg.Telegram.FloodRetry),
				Resolver:         resolver,
				Context:          ctx,
				MaxRetries:       cfg.Telegram.RpcRetry,
				AutoFetchReply:   true,
				ErrorHandler: func(ctx *ext.Context, u *ext.Update, s string) error {
					log.FromContext(ctx).Errorf("unhandled error: %s", s)
					return dispatcher.EndGroups
				},
			},
		)
		if err != nil {
			res <- result{nil, err}
			return
		}
		commands := make([]tg.BotCommand, 0, len(handlers.CommandHandlers))
		for _, info := range handlers.CommandHandlers {
			commands = append(commands, tg.BotCommand{Command: info.Cmd, Description: i18n.T(info.Desc)})
		}
		_, err = client.API().BotsSetBotCommands(ctx, &tg.BotsSetBotCommandsRequest{
			Scope:    &tg.BotCommandScopeDefault{},
			Commands: commands,
		})
		if err != nil {
			log.FromContext(ctx).Warn("Failed to set bot commands", "error", err)
		}
		res <- result{client, nil}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("bot initialization cancelled: %w", ctx.Err())
	case r := <-res:
		if r.err != nil {
			return nil, fmt.Errorf("failed to initialize bot: %w", r.err)
		}
		log.FromContext(ctx).Info("Bot initialization completed.", "username", r.client.Self.Username)
		return r.client, nil
	}
}

// Worker wraps the bot client as the relay worker account.
func Worker(client *gotgproto.Client) *tgcap.Client {
	return tgcap.New(client.CreateContext(), tgcap.WithThreads(config.C().Threads))
}

// Serve registers the update handlers.
func Serve(client *gotgproto.Client, d *handlers.Deps) {
	handlers.Register(client.Dispatcher, d)
}
