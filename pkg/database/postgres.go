package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
)

// PoolOptions mirrors the database/sql pool knobs.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DBClient holds the PostgreSQL database connection
type DBClient struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresClient opens the pool and verifies connectivity.
func NewPostgresClient(ctx context.Context, dsn string, pool PoolOptions, logger *zap.Logger) (*DBClient, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("connected to PostgreSQL")
	return &DBClient{db: db, logger: logger}, nil
}

// NewDBClient wraps an already opened pool.
func NewDBClient(db *sql.DB, logger *zap.Logger) *DBClient {
	return &DBClient{db: db, logger: logger}
}

// Close closes the database connection
func (c *DBClient) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.logger.Info("PostgreSQL connection closed")
	return err
}

// GetDB returns the underlying *sql.DB instance
func (c *DBClient) GetDB() *sql.DB {
	return c.db
}
