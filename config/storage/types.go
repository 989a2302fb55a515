package storage

import (
	storenum "github.com/krau/RelayAny-Bot/pkg/enums/storage"
)

// StorageConfig describes an archive sink that relayed files are copied to.
type StorageConfig interface {
	Validate() error
	GetType() storenum.StorageType
	GetName() string
	Accepts(userID int64) bool
}

type BaseConfig struct {
	Name   string `toml:"name" mapstructure:"name" json:"name"`
	Type   string `toml:"type" mapstructure:"type" json:"type"`
	Enable bool   `toml:"enable" mapstructure:"enable" json:"enable"`
	// Users limits which users get their relays archived here. Empty means all.
	Users     []int64        `toml:"users" mapstructure:"users" json:"users"`
	RawConfig map[string]any `toml:"-" mapstructure:",remain"`
}

func (b BaseConfig) GetName() string {
	return b.Name
}

func (b BaseConfig) Accepts(userID int64) bool {
	if len(b.Users) == 0 {
		return true
	}
	for _, u := range b.Users {
		if u == userID {
			return true
		}
	}
	return false
}
