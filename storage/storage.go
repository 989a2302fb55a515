// Package storage copies relayed files into the configured archive sinks.
package storage

import (
	"context"
	"fmt"
	"io"

	sc "github.com/krau/RelayAny-Bot/config/storage"
	storenum "github.com/krau/RelayAny-Bot/pkg/enums/storage"
	"github.com/krau/RelayAny-Bot/storage/local"
	"github.com/krau/RelayAny-Bot/storage/minio"
)

type Storage interface {
	Init(ctx context.Context, cfg sc.StorageConfig) error
	Type() storenum.StorageType
	Name() string
	JoinStoragePath(p string) string
	Save(ctx context.Context, r io.Reader, storagePath string) error
	Exists(ctx context.Context, storagePath string) bool
}

type constructor func() Storage

var constructors = map[storenum.StorageType]constructor{
	storenum.Local: func() Storage { return new(local.Local) },
	storenum.Minio: func() Storage { return new(minio.Minio) },
}

func NewStorage(ctx context.Context, cfg sc.StorageConfig) (Storage, error) {
	newFn, ok := constructors[cfg.GetType()]
	if !ok {
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.GetType())
	}
	s := newFn()
	if err := s.Init(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to init storage %s: %w", cfg.GetName(), err)
	}
	return s, nil
}
