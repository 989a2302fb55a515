package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/duke-git/lancet/v2/fileutil"
	config "github.com/krau/RelayAny-Bot/config/storage"
	storenum "github.com/krau/RelayAny-Bot/pkg/enums/storage"
)

type Local struct {
	config config.LocalStorageConfig
	logger *log.Logger
}

func (l *Local) Init(ctx context.Context, cfg config.StorageConfig) error {
	localConfig, ok := cfg.(*config.LocalStorageConfig)
	if !ok {
		return fmt.Errorf("failed to cast local config")
	}
	if err := localConfig.Validate(); err != nil {
		return err
	}
	l.config = *localConfig
	l.logger = log.FromContext(ctx).WithPrefix(fmt.Sprintf("local[%s]", l.config.Name))
	if err := os.MkdirAll(localConfig.BasePath, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create local storage directory: %w", err)
	}
	return nil
}

func (l *Local) Type() storenum.StorageType {
	return storenum.Local
}

func (l *Local) Name() string {
	return l.config.Name
}

func (l *Local) JoinStoragePath(p string) string {
	return filepath.Join(l.config.BasePath, filepath.FromSlash(p))
}

// Save writes r to storagePath. An existing file is kept and the copy gets
// a _N suffix.
func (l *Local) Save(ctx context.Context, r io.Reader, storagePath string) error {
	absPath, err := filepath.Abs(storagePath)
	if err != nil {
		return err
	}
	if err := fileutil.CreateDir(filepath.Dir(absPath)); err != nil {
		return err
	}
	ext := filepath.Ext(absPath)
	base := strings.TrimSuffix(absPath, ext)
	candidate := absPath
	for i := 1; l.Exists(ctx, candidate); i++ {
		candidate = fmt.Sprintf("%s_%d%s", base, i, ext)
	}
	l.logger.Infof("Saving file to %s", candidate)

	file, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		os.Remove(candidate)
		return fmt.Errorf("failed to write %s: %w", candidate, err)
	}
	return file.Close()
}

func (l *Local) Exists(ctx context.Context, storagePath string) bool {
	return fileutil.IsExist(storagePath)
}
