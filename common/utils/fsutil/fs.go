package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
)

const fallbackMIME = "application/octet-stream"

// RemoveAllInDir empties dir but keeps dir itself. Every entry is tried and
// the failures are joined.
func RemoveAllInDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var errs []error
	for _, e := range entries {
		errs = append(errs, os.RemoveAll(filepath.Join(dir, e.Name())))
	}
	return errors.Join(errs...)
}

// DetectFileExt sniffs the content of fp and returns an extension with a
// leading dot, or "" when unknown.
func DetectFileExt(fp string) string {
	if mt, err := mimetype.DetectFile(fp); err == nil {
		return mt.Extension()
	}
	return ""
}

func DetectMIME(fp string) string {
	if mt, err := mimetype.DetectFile(fp); err == nil {
		return mt.String()
	}
	return fallbackMIME
}

// RemoveIfExists removes path and reports whether something was removed.
func RemoveIfExists(path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	switch err := os.Remove(path); {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

const unsafeNameChars = `/\?%*:|"<>`

func unsafeRune(r rune) bool {
	return unicode.IsControl(r) || strings.ContainsRune(unsafeNameChars, r)
}

// NormalizePathname makes name safe to use as a single path element.
func NormalizePathname(name string) string {
	name = strings.TrimLeftFunc(name, unicode.IsSpace)
	name = strings.TrimRightFunc(name, func(r rune) bool {
		return r == ' ' || r == '.' || unicode.IsControl(r)
	})
	return strings.Map(func(r rune) rune {
		if unsafeRune(r) {
			return '_'
		}
		return r
	}, name)
}
