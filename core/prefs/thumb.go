package prefs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/krau/RelayAny-Bot/common/utils/fsutil"
	"github.com/krau/RelayAny-Bot/pkg/relayerr"
	"github.com/rs/xid"
)

// FetchFunc writes the thumbnail image to path.
type FetchFunc func(ctx context.Context, path string) error

func (s *Store) thumbPath(userID int64) string {
	return filepath.Join(s.thumbDir, strconv.FormatInt(userID, 10)+".jpg")
}

// SaveThumbnail fetches a new thumbnail into a temp file and moves it over
// the user's thumbnail. The returned path is stored in the preferences.
func (s *Store) SaveThumbnail(ctx context.Context, userID int64, fetch FetchFunc) (string, error) {
	if err := os.MkdirAll(s.thumbDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", relayerr.ErrFilesystem, err)
	}
	tmp := filepath.Join(s.thumbDir, xid.New().String()+".tmp")
	if err := fetch(ctx, tmp); err != nil {
		os.Remove(tmp)
		return "", err
	}
	defer s.lock(userID)()
	dst := s.thumbPath(userID)
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("%w: %w", relayerr.ErrFilesystem, err)
	}
	if err := s.setField(ctx, userID, KeyThumbnail, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// RemoveThumbnail reports whether the user had a thumbnail.
func (s *Store) RemoveThumbnail(ctx context.Context, userID int64) (bool, error) {
	defer s.lock(userID)()
	var thumb string
	ok, err := s.getField(ctx, userID, KeyThumbnail, &thumb)
	if err != nil {
		return false, err
	}
	if err := s.clearFields(ctx, userID, []string{KeyThumbnail}); err != nil {
		return false, err
	}
	if err := removeThumbFile(thumb); err != nil {
		return false, err
	}
	return ok && thumb != "", nil
}

func removeThumbFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := fsutil.RemoveIfExists(path); err != nil {
		return fmt.Errorf("%w: %w", relayerr.ErrFilesystem, err)
	}
	return nil
}
