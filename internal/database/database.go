// package database opens the storage behind the fetch history: postgresql
// through a pgx pool, or an embedded sqlite file.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// sqlitePrefix selects the embedded driver, e.g. sqlite://history.db or
// sqlite://:memory:
const sqlitePrefix = "sqlite://"

// DB wraps a connection pool and GORM instance. Pool is nil for sqlite.
type DB struct {
	Pool *pgxpool.Pool
	GORM *gorm.DB
	sql  *sql.DB
}

// Driver returns the name of the GORM dialect in use.
func (db *DB) Driver() string {
	return db.GORM.Dialector.Name()
}

// New opens the database named by databaseURL.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	switch {
	case databaseURL == "":
		return nil, errors.New("database url cannot be empty")
	case strings.HasPrefix(databaseURL, sqlitePrefix):
		return newSQLite(strings.TrimPrefix(databaseURL, sqlitePrefix))
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return newPostgres(ctx, databaseURL)
	}
	return nil, fmt.Errorf("unsupported database url %q: want postgres:// or sqlite://", databaseURL)
}

func gormConfig() *gorm.Config {
	return &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
}

func newPostgres(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// GORM shares the pgx pool
	sqlDB := stdlib.OpenDBFromPool(pool)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig())
	if err != nil {
		_ = sqlDB.Close()
		pool.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	return &DB{Pool: pool, GORM: gormDB, sql: sqlDB}, nil
}

func newSQLite(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("sqlite path cannot be empty")
	}

	gormDB, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	// one connection: every :memory: connection is a separate database
	sqlDB.SetMaxOpenConns(1)

	return &DB{GORM: gormDB, sql: sqlDB}, nil
}

// Close closes the database connections.
func (db *DB) Close() {
	if db.sql != nil {
		_ = db.sql.Close()
	}
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Ping checks if the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if db.Pool != nil {
		return db.Pool.Ping(ctx)
	}
	return db.sql.PingContext(ctx)
}
