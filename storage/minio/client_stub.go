//go:build no_minio

package minio

import (
	"context"
	"errors"
	"io"

	config "github.com/krau/RelayAny-Bot/config/storage"
	storenum "github.com/krau/RelayAny-Bot/pkg/enums/storage"
)

var errUnsupported = errors.New("minio storage is not supported in this build")

// Minio is a placeholder for builds without the minio client. Init always
// fails, so LoadArchive leaves it out.
type Minio struct{}

func (*Minio) Init(context.Context, config.StorageConfig) error { return errUnsupported }

func (*Minio) Type() storenum.StorageType { return storenum.Minio }

func (*Minio) Name() string { return "" }

func (*Minio) JoinStoragePath(p string) string { return p }

func (*Minio) Save(context.Context, io.Reader, string) error { return errUnsupported }

func (*Minio) Exists(context.Context, string) bool { return false }
