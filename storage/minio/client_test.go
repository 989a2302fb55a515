//go:build !no_minio

package minio

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
	storconfig "github.com/krau/RelayAny-Bot/config/storage"
	"github.com/minio/minio-go/v7"
)

func newTestContext(t *testing.T) context.Context {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{ReportTimestamp: false})
	return log.WithContext(context.Background(), logger)
}

func newFakeMinio(t *testing.T) *Minio {
	t.Helper()
	backend := s3mem.New()
	ts := httptest.NewServer(gofakes3.New(backend).Server())
	t.Cleanup(ts.Close)
	if err := backend.CreateBucket("relay"); err != nil {
		t.Fatalf("failed to create fake bucket: %v", err)
	}

	cfg := &storconfig.MinioStorageConfig{
		BaseConfig: storconfig.BaseConfig{
			Name:   "test-minio",
			Type:   "minio",
			Enable: true,
		},
		Endpoint:        strings.TrimPrefix(ts.URL, "http://"),
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret",
		BucketName:      "relay",
		BasePath:        "archive",
	}
	m := &Minio{}
	if err := m.Init(newTestContext(t), cfg); err != nil {
		t.Fatalf("init minio failed: %v", err)
	}
	return m
}

func TestMinioSaveAndExists(t *testing.T) {
	m := newFakeMinio(t)
	ctx := newTestContext(t)
	key := m.JoinStoragePath("42/clip [relay].mp4")
	if key != "archive/42/clip [relay].mp4" {
		t.Fatalf("unexpected key %q", key)
	}
	if m.Exists(ctx, key) {
		t.Fatal("key should not exist yet")
	}
	if err := m.Save(ctx, bytes.NewReader([]byte("first")), key); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !m.Exists(ctx, key) {
		t.Fatal("Exists should return true for saved key")
	}
}

func TestMinioSaveKeepsExisting(t *testing.T) {
	m := newFakeMinio(t)
	ctx := newTestContext(t)
	key := m.JoinStoragePath("1/a.txt")
	for _, body := range []string{"one", "two"} {
		if err := m.Save(ctx, strings.NewReader(body), key); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
	obj, err := m.client.GetObject(ctx, "relay", "archive/1/a_1.txt", minio.GetObjectOptions{})
	if err != nil {
		t.Fatalf("GetObject failed: %v", err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "two" {
		t.Fatalf("expected second copy under suffixed key, got %q", data)
	}
}

func TestMinioInitMissingBucket(t *testing.T) {
	backend := s3mem.New()
	ts := httptest.NewServer(gofakes3.New(backend).Server())
	defer ts.Close()
	cfg := &storconfig.MinioStorageConfig{
		BaseConfig:      storconfig.BaseConfig{Name: "x", Type: "minio", Enable: true},
		Endpoint:        strings.TrimPrefix(ts.URL, "http://"),
		AccessKeyID:     "k",
		SecretAccessKey: "s",
		BucketName:      "missing",
	}
	if err := (&Minio{}).Init(newTestContext(t), cfg); err == nil {
		t.Fatal("expected error for missing bucket")
	}
}

func TestMinioInitCreatesBucket(t *testing.T) {
	backend := s3mem.New()
	ts := httptest.NewServer(gofakes3.New(backend).Server())
	defer ts.Close()
	cfg := &storconfig.MinioStorageConfig{
		BaseConfig:      storconfig.BaseConfig{Name: "x", Type: "minio", Enable: true},
		Endpoint:        strings.TrimPrefix(ts.URL, "http://"),
		AccessKeyID:     "k",
		SecretAccessKey: "s",
		BucketName:      "fresh",
		CreateBucket:    true,
	}
	m := &Minio{}
	ctx := newTestContext(t)
	if err := m.Init(ctx, cfg); err != nil {
		t.Fatalf("Init with create_bucket failed: %v", err)
	}
	if ok, err := m.client.BucketExists(ctx, "fresh"); err != nil || !ok {
		t.Fatalf("bucket not created: %v, %v", ok, err)
	}
}
