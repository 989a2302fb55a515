package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	sc "github.com/krau/RelayAny-Bot/config/storage"
)

func testContext() context.Context {
	return log.WithContext(context.Background(), log.NewWithOptions(io.Discard, log.Options{}))
}

func TestArchiveLocal(t *testing.T) {
	ctx := testContext()
	root := t.TempDir()
	cfgs := []sc.StorageConfig{
		&sc.LocalStorageConfig{
			BaseConfig: sc.BaseConfig{Name: "all", Type: "local", Enable: true},
			BasePath:   filepath.Join(root, "all"),
		},
		&sc.LocalStorageConfig{
			BaseConfig: sc.BaseConfig{Name: "vip", Type: "local", Enable: true, Users: []int64{99}},
			BasePath:   filepath.Join(root, "vip"),
		},
	}
	a := LoadArchive(ctx, cfgs)
	if a.Len() != 2 {
		t.Fatalf("expected 2 storages, got %d", a.Len())
	}

	src := filepath.Join(t.TempDir(), "clip [relay].mp4")
	if err := os.WriteFile(src, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	a.Archive(ctx, 7, src)
	a.Archive(ctx, 7, src)

	data, err := os.ReadFile(filepath.Join(root, "all", "7", "clip [relay].mp4"))
	if err != nil || string(data) != "video" {
		t.Fatalf("archived copy = %q, %v", data, err)
	}
	if _, err := os.Stat(filepath.Join(root, "all", "7", "clip [relay]_1.mp4")); err != nil {
		t.Fatalf("second copy should get a suffix: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "vip", "7")); !os.IsNotExist(err) {
		t.Fatalf("vip storage should not accept user 7, stat err = %v", err)
	}
}

func TestArchiveMissingFileIsSwallowed(t *testing.T) {
	ctx := testContext()
	a := LoadArchive(ctx, []sc.StorageConfig{
		&sc.LocalStorageConfig{
			BaseConfig: sc.BaseConfig{Name: "all", Type: "local", Enable: true},
			BasePath:   t.TempDir(),
		},
	})
	a.Archive(ctx, 1, filepath.Join(t.TempDir(), "gone.bin"))
}

func TestLoadArchiveSkipsBrokenStorage(t *testing.T) {
	a := LoadArchive(testContext(), []sc.StorageConfig{
		&sc.MinioStorageConfig{
			BaseConfig: sc.BaseConfig{Name: "broken", Type: "minio", Enable: true},
		},
	})
	if a.Len() != 0 {
		t.Fatalf("expected broken storage to be skipped, got %d", a.Len())
	}
	var nilArchive *Archive
	nilArchive.Archive(testContext(), 1, "x")
}

func TestStoragePath(t *testing.T) {
	if got := StoragePath(42, "/tmp/abc/file.pdf"); got != "42/file.pdf" {
		t.Fatalf("StoragePath = %q", got)
	}
}
