package transform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/krau/RelayAny-Bot/pkg/media"
	"github.com/krau/RelayAny-Bot/pkg/relayerr"
)

const fallbackStem = "file"

// NewName computes the relayed file name for name without touching the disk.
func NewName(name string, r Rules) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	stem = strings.TrimSpace(r.ApplyWords(stem))
	if stem == "" {
		stem = fallbackStem
	}

	bare := strings.ToLower(strings.TrimPrefix(ext, "."))
	if media.IsVideoExt(bare) && bare != media.CanonicalVideoExt {
		ext = "." + media.CanonicalVideoExt
	}

	if tag := strings.TrimSpace(r.RenameTag); tag != "" && stem != tag && !strings.HasSuffix(stem, " "+tag) {
		stem = stem + " " + tag
	}
	return stem + ext
}

// RenameFile renames the file at path to NewName in the same directory and
// returns the new path. It never overwrites an existing file.
func RenameFile(path string, r Rules) (string, error) {
	dir, name := filepath.Split(path)
	target := filepath.Join(dir, NewName(name, r))
	if target == filepath.Clean(path) {
		if _, err := os.Lstat(path); err != nil {
			return "", fmt.Errorf("%w: %w", relayerr.ErrFilesystem, err)
		}
		return path, nil
	}
	if _, err := os.Lstat(target); err == nil {
		return "", fmt.Errorf("%w: rename target %s already exists", relayerr.ErrFilesystem, target)
	}
	if err := os.Rename(path, target); err != nil {
		return "", fmt.Errorf("%w: %w", relayerr.ErrFilesystem, err)
	}
	return target, nil
}
