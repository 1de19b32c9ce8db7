//go:build cgo_sqlite

package database

// CGO SQLite driver, selected with -tags cgo_sqlite (requires CGO_ENABLED=1).
import (
	_ "github.com/mattn/go-sqlite3" // registers "sqlite3"
)

const sqliteDriverName = "sqlite3"
