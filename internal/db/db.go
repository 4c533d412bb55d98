// Package db provides PostgreSQL storage for the emotion lexicon.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no lexicon has been stored.
var ErrNotFound = errors.New("not found")

// maxConns caps the pool. The lexicon is read once at startup and written
// only by imports.
const maxConns = 4

// DB holds the connection pool behind the lexicon repository.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL and pings the server before returning.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	if cfg.MaxConns > maxConns {
		cfg.MaxConns = maxConns
	}
	if cfg.ConnConfig.RuntimeParams["application_name"] == "" {
		cfg.ConnConfig.RuntimeParams["application_name"] = "affect-fusion"
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close releases all pooled connections.
func (db *DB) Close() {
	db.pool.Close()
}

// Lexicon returns the lexicon repository.
func (db *DB) Lexicon() *LexiconRepository {
	return &LexiconRepository{pool: db.pool}
}
