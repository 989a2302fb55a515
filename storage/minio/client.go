//go:build !no_minio

// Package minio archives relayed files into an S3 compatible bucket.
package minio

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	config "github.com/krau/RelayAny-Bot/config/storage"
	storenum "github.com/krau/RelayAny-Bot/pkg/enums/storage"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// maxSuffix bounds the search for a free object key.
const maxSuffix = 1000

type Minio struct {
	cfg    config.MinioStorageConfig
	client *minio.Client
	logger *log.Logger
}

func (m *Minio) Init(ctx context.Context, cfg config.StorageConfig) error {
	mc, ok := cfg.(*config.MinioStorageConfig)
	if !ok {
		return fmt.Errorf("expected minio config, got %T", cfg)
	}
	if err := mc.Validate(); err != nil {
		return err
	}
	m.cfg = *mc
	m.logger = log.FromContext(ctx).WithPrefix("minio[" + mc.Name + "]")

	client, err := minio.New(mc.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(mc.AccessKeyID, mc.SecretAccessKey, ""),
		Secure: mc.UseSSL,
		Region: mc.Region,
	})
	if err != nil {
		return fmt.Errorf("failed to create minio client: %w", err)
	}
	if err := ensureBucket(ctx, client, mc); err != nil {
		return err
	}
	m.client = client
	return nil
}

func ensureBucket(ctx context.Context, client *minio.Client, cfg *config.MinioStorageConfig) error {
	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", cfg.BucketName, err)
	}
	if exists {
		return nil
	}
	if !cfg.CreateBucket {
		return fmt.Errorf("bucket %s does not exist", cfg.BucketName)
	}
	if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", cfg.BucketName, err)
	}
	return nil
}

func (m *Minio) Type() storenum.StorageType {
	return storenum.Minio
}

func (m *Minio) Name() string {
	return m.cfg.Name
}

func (m *Minio) JoinStoragePath(p string) string {
	return strings.TrimPrefix(path.Join(m.cfg.BasePath, p), "/")
}

// Save uploads r under key. An existing object is never overwritten: the
// new one gets the first free _N suffix.
func (m *Minio) Save(ctx context.Context, r io.Reader, key string) error {
	target, err := m.freeKey(ctx, key)
	if err != nil {
		return err
	}
	opts := minio.PutObjectOptions{ContentType: mime.TypeByExtension(path.Ext(target))}
	info, err := m.client.PutObject(ctx, m.cfg.BucketName, target, r, -1, opts)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", target, err)
	}
	m.logger.Debug("Archived", "key", target, "size", info.Size)
	return nil
}

func (m *Minio) freeKey(ctx context.Context, key string) (string, error) {
	if !m.Exists(ctx, key) {
		return key, nil
	}
	ext := path.Ext(key)
	stem := strings.TrimSuffix(key, ext)
	for i := 1; i <= maxSuffix; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if !m.Exists(ctx, candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free key for %s", key)
}

func (m *Minio) Exists(ctx context.Context, key string) bool {
	_, err := m.client.StatObject(ctx, m.cfg.BucketName, key, minio.StatObjectOptions{})
	return err == nil
}
