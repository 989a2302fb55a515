//go:build sqlite_glebarez

package database

import (
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// GetDialect opens path with the pure Go SQLite build.
func GetDialect(path string) gorm.Dialector {
	if strings.Contains(path, "?") || path == ":memory:" {
		return sqlite.Open(path)
	}
	return sqlite.Open(path + "?_pragma=" + busyTimeoutPragma)
}
