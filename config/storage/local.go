package storage

import (
	"errors"
	"path/filepath"

	storenum "github.com/krau/RelayAny-Bot/pkg/enums/storage"
)

// LocalStorageConfig archives into a directory on this machine.
type LocalStorageConfig struct {
	BaseConfig `mapstructure:"-"`
	BasePath   string `toml:"base_path" mapstructure:"base_path" json:"base_path"`
}

func (l *LocalStorageConfig) Validate() error {
	if l.BasePath == "" {
		return errors.New("base_path is required for local storage")
	}
	if filepath.Clean(l.BasePath) == "/" {
		return errors.New("base_path must not be the filesystem root")
	}
	return nil
}

func (l *LocalStorageConfig) GetType() storenum.StorageType {
	return storenum.Local
}
