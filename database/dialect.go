//go:build !sqlite_glebarez

package database

import (
	"strings"

	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"gorm.io/gorm"
)

// GetDialect opens path with the wasm SQLite build. Plain paths get a busy
// timeout, since the bot session and the user data share the process.
func GetDialect(path string) gorm.Dialector {
	if strings.HasPrefix(path, "file:") || path == ":memory:" {
		return gormlite.Open(path)
	}
	return gormlite.Open("file:" + path + "?_pragma=" + busyTimeoutPragma)
}
