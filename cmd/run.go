package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/krau/RelayAny-Bot/api"
	"github.com/krau/RelayAny-Bot/client/bot"
	"github.com/krau/RelayAny-Bot/client/bot/handlers"
	"github.com/krau/RelayAny-Bot/client/user"
	"github.com/krau/RelayAny-Bot/common/cache"
	"github.com/krau/RelayAny-Bot/common/i18n"
	"github.com/krau/RelayAny-Bot/common/i18n/i18nk"
	"github.com/krau/RelayAny-Bot/common/utils/fsutil"
	"github.com/krau/RelayAny-Bot/common/utils/tgutil"
	"github.com/krau/RelayAny-Bot/config"
	"github.com/krau/RelayAny-Bot/core"
	"github.com/krau/RelayAny-Bot/core/prefs"
	"github.com/krau/RelayAny-Bot/core/relay"
	"github.com/krau/RelayAny-Bot/core/session"
	"github.com/krau/RelayAny-Bot/core/upload"
	"github.com/krau/RelayAny-Bot/database"
	"github.com/krau/RelayAny-Bot/pkg/consts"
	"github.com/krau/RelayAny-Bot/storage"
	"github.com/spf13/cobra"
)

const (
	reaperInterval = time.Minute
	sweepInterval  = time.Minute
)

func Run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := log.FromContext(ctx)

	if err := config.Init(ctx, config.GetConfigFile(cmd)); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.C()
	setLogLevel(logger, cfg.Log.Level)
	if err := i18n.Init(cfg.Lang); err != nil {
		logger.Warn("Failed to load language, falling back", "lang", cfg.Lang, "error", err)
	}
	logger.Info(i18n.T(i18nk.Initing))

	cache.Init(cache.Options{
		NumCounters: cfg.Cache.NumCounters,
		MaxCost:     cfg.Cache.MaxCost,
		TTL:         time.Duration(cfg.Cache.TTL) * time.Second,
	})

	backend, closeBackend, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer closeBackend()

	store := prefs.New(backend,
		prefs.WithCache(cache.Default()),
		prefs.WithDefaultRenameTag(cfg.Relay.RenameTag),
		prefs.WithOwners(cfg.Owners),
		prefs.WithCredentialTTL(time.Duration(cfg.DB.CredentialTTL)*time.Second),
		prefs.WithThumbDir(cfg.Relay.ThumbDir),
	)

	client, err := bot.Init(ctx)
	if err != nil {
		return err
	}
	defer client.Stop()
	worker := bot.Worker(client)

	sink := relay.NewSink(worker, cfg.Telegram.LogChat)
	execOpts := []upload.Option{
		upload.WithMirror(sink),
		upload.WithLimits(upload.Limits{SizeLimit: cfg.Relay.SizeLimit, PartSize: cfg.Relay.PartSize}),
	}
	if cfg.Telegram.HighCap.Enable {
		hc := user.NewHighCap()
		go hc.Start(ctx)
		defer hc.Stop()
		execOpts = append(execOpts, upload.WithPrivileged(hc))
	}
	executor := upload.NewExecutor(worker, execOpts...)

	pool := user.NewPool(store)
	defer pool.Close()
	sources, err := sourceFunc(ctx, pool)
	if err != nil {
		return err
	}

	engine := relay.New(worker, store,
		relay.WithExecutor(executor),
		relay.WithSink(sink),
		relay.WithSources(sources),
		relay.WithArchiver(storage.LoadArchive(ctx, cfg.Storages)),
		relay.WithTempDir(cfg.Temp.BasePath),
		relay.WithProgressInterval(cfg.Relay.ProgressEvery()),
	)
	relays := core.New(engine, cfg.Workers)
	if err := api.Init(ctx, relays); err != nil {
		return err
	}

	prompts := session.NewManager(cfg.Relay.PromptTimeout())
	go sweepPrompts(ctx, prompts)

	bot.Serve(client, &handlers.Deps{
		Ctx:   ctx,
		Core:  relays,
		Prefs: store,
		Prompts: session.NewHandler(prompts, store, func(ctx context.Context, username string) (int64, error) {
			return worker.ResolveChat(ctx, tgutil.MessageLink{Username: username})
		}),
		Worker:   worker,
		Pool:     pool,
		BatchMax: cfg.Relay.BatchMax,
		Version:  consts.Version,
	})

	err = relays.Run(ctx)
	logger.Info(i18n.T(i18nk.Exiting))
	cleanCache(logger, cfg.Temp.BasePath)
	return err
}

// openBackend picks Redis when an address is configured and SQLite
// otherwise. The SQLite reaper runs until ctx is done.
func openBackend(ctx context.Context) (prefs.Backend, func(), error) {
	cfg := config.C().DB
	if cfg.RedisAddr != "" {
		rdb, err := database.OpenRedis(ctx, database.RedisOptions{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUser,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open redis: %w", err)
		}
		return rdb, func() { rdb.Close() }, nil
	}
	db, err := database.Open(ctx, cfg.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	go db.RunReaper(ctx, reaperInterval)
	return db, func() { db.Close() }, nil
}

// sourceFunc reads through the user's own session first and then through
// the userbot, when one is enabled.
func sourceFunc(ctx context.Context, pool *user.Pool) (relay.SourceFunc, error) {
	if !config.C().Telegram.Userbot.Enable {
		return pool.Source, nil
	}
	ub, err := user.Login(ctx)
	if err != nil {
		return nil, err
	}
	fallback := user.Capability(ub)
	return func(ctx context.Context, userID int64) (relay.Source, bool) {
		if src, ok := pool.Source(ctx, userID); ok {
			return src, true
		}
		return fallback, true
	}, nil
}

func sweepPrompts(ctx context.Context, m *session.Manager) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				log.FromContext(ctx).Debug("Expired prompts removed", "count", n)
			}
		}
	}
}

func setLogLevel(logger *log.Logger, level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		logger.Warn("Unknown log level, keeping info", "level", level)
		return
	}
	logger.SetLevel(lvl)
}

func cleanCache(logger *log.Logger, basePath string) {
	if basePath == "" {
		return
	}
	if slices.Contains([]string{"/", ".", "\\", ".."}, filepath.Clean(basePath)) {
		logger.Error(i18n.T(i18nk.InvalidCacheDir, map[string]any{"Path": basePath}))
		return
	}
	currentDir, err := os.Getwd()
	if err != nil {
		logger.Error(i18n.T(i18nk.GetWorkdirFailed, map[string]any{"Error": err}))
		return
	}
	cachePath := basePath
	if !filepath.IsAbs(cachePath) {
		cachePath = filepath.Join(currentDir, basePath)
	}
	cachePath, err = filepath.Abs(cachePath)
	if err != nil {
		logger.Error(i18n.T(i18nk.GetCacheAbsPathFailed, map[string]any{"Error": err}))
		return
	}
	logger.Info(i18n.T(i18nk.CleaningCache), "path", cachePath)
	if err := fsutil.RemoveAllInDir(cachePath); err != nil {
		logger.Error("Failed to clean cache directory", "error", err)
	}
}
