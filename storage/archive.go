package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/duke-git/lancet/v2/retry"
	sc "github.com/krau/RelayAny-Bot/config/storage"
)

type sink struct {
	storage Storage
	accepts func(userID int64) bool
}

// Archive fans a relayed file out to every storage that accepts the user.
type Archive struct {
	sinks   []sink
	retries uint
}

const defaultArchiveRetries = 3

// LoadArchive initialises the configured storages. A storage that fails to
// start is logged and left out.
func LoadArchive(ctx context.Context, cfgs []sc.StorageConfig) *Archive {
	logger := log.FromContext(ctx)
	logger.Debug("Loading storages...")
	a := &Archive{retries: defaultArchiveRetries}
	for _, cfg := range cfgs {
		s, err := NewStorage(ctx, cfg)
		if err != nil {
			logger.Errorf("Failed to load storage %s: %v", cfg.GetName(), err)
			continue
		}
		a.Add(s, cfg.Accepts)
	}
	logger.Infof("Loaded %d storages", len(a.sinks))
	return a
}

// Add registers s. A nil accepts lets every user through.
func (a *Archive) Add(s Storage, accepts func(userID int64) bool) {
	a.sinks = append(a.sinks, sink{storage: s, accepts: accepts})
}

func (a *Archive) Len() int {
	if a == nil {
		return 0
	}
	return len(a.sinks)
}

// StoragePath is where a user's file lands inside a storage.
func StoragePath(userID int64, localPath string) string {
	return path.Join(strconv.FormatInt(userID, 10), filepath.Base(localPath))
}

// Archive copies localPath into every accepting storage. Failures are
// logged and never returned.
func (a *Archive) Archive(ctx context.Context, userID int64, localPath string) {
	if a.Len() == 0 {
		return
	}
	if _, err := os.Stat(localPath); err != nil {
		log.FromContext(ctx).Warn("Nothing to archive", "path", localPath, "error", err)
		return
	}
	logger := log.FromContext(ctx)
	for _, s := range a.sinks {
		if s.accepts != nil && !s.accepts(userID) {
			continue
		}
		if err := a.save(ctx, s.storage, userID, localPath); err != nil {
			logger.Warn("Archive copy failed", "storage", s.storage.Name(), "error", err)
		}
	}
}

func (a *Archive) save(ctx context.Context, s Storage, userID int64, localPath string) error {
	dest := s.JoinStoragePath(StoragePath(userID, localPath))
	return retry.Retry(func() error {
		f, err := os.Open(localPath)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", localPath, err)
		}
		defer f.Close()
		return s.Save(ctx, f, dest)
	}, retry.RetryTimes(max(a.retries, 1)), retry.RetryDuration(time.Second), retry.Context(ctx))
}
