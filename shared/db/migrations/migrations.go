// Package migrations bootstraps the posts schema with goose. SQL files are
// embedded per dialect and applied on connect.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/chilisites/postsapi/shared/db"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// goose keeps its dialect and filesystem in package globals.
var gooseMu sync.Mutex

type gooseDialect struct {
	name string
	dir  string
}

var dialects = map[db.Dialect]gooseDialect{
	db.SQLite:   {name: "sqlite3", dir: "sqlite"},
	db.Postgres: {name: "postgres", dir: "postgres"},
}

// Up applies every pending migration for the given dialect.
func Up(ctx context.Context, sqlDB *sql.DB, dialect db.Dialect) error {
	d, ok := dialects[dialect]
	if !ok {
		return fmt.Errorf("no migrations for dialect %q", dialect)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(files)
	goose.SetLogger(zerologAdapter{})
	if err := goose.SetDialect(d.name); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.UpContext(ctx, sqlDB, d.dir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

// Version returns the latest applied migration version.
func Version(ctx context.Context, sqlDB *sql.DB, dialect db.Dialect) (int64, error) {
	d, ok := dialects[dialect]
	if !ok {
		return 0, fmt.Errorf("no migrations for dialect %q", dialect)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := goose.SetDialect(d.name); err != nil {
		return 0, fmt.Errorf("failed to set migration dialect: %w", err)
	}
	return goose.GetDBVersionContext(ctx, sqlDB)
}

type zerologAdapter struct{}

func (zerologAdapter) Fatalf(format string, v ...interface{}) {
	log.Fatal().Msgf(format, v...)
}

func (zerologAdapter) Printf(format string, v ...interface{}) {
	log.Debug().Msgf(format, v...)
}
