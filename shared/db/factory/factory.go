// Package factory picks a database backend from a connection URL.
package factory

import (
	"fmt"
	"strings"

	"github.com/chilisites/postsapi/shared/db"
	"github.com/chilisites/postsapi/shared/db/postgres"
	"github.com/chilisites/postsapi/shared/db/sqlite"
)

// NewDatabase returns an unconnected Database for databaseURL.
//
// Supported forms:
//
//	sqlite:///posts.db          relative path posts.db
//	sqlite:////var/lib/posts.db absolute path
//	postgres://... / postgresql://...
func NewDatabase(databaseURL string) (db.Database, error) {
	switch {
	case strings.HasPrefix(databaseURL, "sqlite://"):
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		path = strings.TrimPrefix(path, "/")
		if path == "" {
			return nil, fmt.Errorf("sqlite url %q has no path", databaseURL)
		}
		return sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: path}), nil
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgres.NewPostgresDB(postgres.PostgresConfig{DSN: databaseURL}), nil
	default:
		return nil, fmt.Errorf("unsupported database url %q", redact(databaseURL))
	}
}

func redact(u string) string {
	if i := strings.Index(u, "://"); i >= 0 {
		return u[:i] + "://..."
	}
	return "..."
}
