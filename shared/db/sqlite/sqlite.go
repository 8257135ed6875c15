package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/chilisites/postsapi/shared/db"
	"github.com/chilisites/postsapi/shared/db/migrations"
	_ "modernc.org/sqlite"
)

// pragmas are passed through the DSN so every pooled connection gets them.
var pragmas = []string{
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

// SQLiteConfig locates the database file. The path comes from DATABASE_URL.
type SQLiteConfig struct {
	Path string
}

// SQLiteDB implements the db.Database interface for SQLite
type SQLiteDB struct {
	dbPath string
	db     *sql.DB
}

func NewSQLiteDB(cfg *SQLiteConfig) *SQLiteDB {
	return &SQLiteDB{
		dbPath: cfg.Path,
	}
}

var _ db.Database = (*SQLiteDB)(nil)

func (s *SQLiteDB) dsn() string {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	return s.dbPath + "?" + q.Encode()
}

// Connect opens the database file and applies pending migrations.
func (s *SQLiteDB) Connect(ctx context.Context) error {
	if s.db != nil {
		return fmt.Errorf("database already connected")
	}

	sqlDB, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrations.Up(ctx, sqlDB, db.SQLite); err != nil {
		sqlDB.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	s.db = sqlDB
	return nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	return err
}

// DB returns the underlying *sql.DB instance
func (s *SQLiteDB) DB() *sql.DB {
	return s.db
}

func (s *SQLiteDB) Dialect() db.Dialect {
	return db.SQLite
}
