package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/chilisites/postsapi/shared/db"
	"github.com/chilisites/postsapi/shared/db/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// PostgresDB implements the db.Database interface on top of the pgx stdlib driver.
type PostgresDB struct {
	cfg PostgresConfig
	db  *sql.DB
}

func NewPostgresDB(cfg PostgresConfig) *PostgresDB {
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 10
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 2
	}
	return &PostgresDB{cfg: cfg}
}

var _ db.Database = (*PostgresDB)(nil)

func (p *PostgresDB) Connect(ctx context.Context) error {
	if p.db != nil {
		return fmt.Errorf("database already connected")
	}

	sqlDB, err := sql.Open("pgx", p.cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(p.cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(p.cfg.MaxIdleConns)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrations.Up(ctx, sqlDB, db.Postgres); err != nil {
		sqlDB.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	p.db = sqlDB
	return nil
}

func (p *PostgresDB) Close() error {
	if p.db == nil {
		return nil
	}

	err := p.db.Close()
	p.db = nil
	return err
}

func (p *PostgresDB) DB() *sql.DB {
	return p.db
}

func (p *PostgresDB) Dialect() db.Dialect {
	return db.Postgres
}
