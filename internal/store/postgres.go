// Package store provides persistence for marketplace listings.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/musicweb/listing-scout/internal/listing"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresConfig controls the Postgres connection pool used for listing rows.
type PostgresConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

// dbConn is the subset of pgxpool.Pool the store needs; pgxmock satisfies
// it in tests.
type dbConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Postgres implements listing.Store on a pgx connection pool.
type Postgres struct {
	pool  dbConn
	table string
}

// NewPostgres creates a Postgres-backed store using the provided config.
func NewPostgres(ctx context.Context, cfg PostgresConfig) (*Postgres, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "marketplace_items"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Postgres{pool: pool, table: table}, nil
}

// NewPostgresWithPool constructs a store from an existing pool (primarily
// for testing).
func NewPostgresWithPool(pool dbConn, table string) (*Postgres, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "marketplace_items"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Postgres{pool: pool, table: table}, nil
}

// EnsureSchema creates the listing and hit-counter tables when missing and
// seeds the single stats row.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	listingsDDL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id SERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	artist TEXT NOT NULL,
	price TEXT NOT NULL,
	category TEXT NOT NULL,
	image_url TEXT,
	link TEXT NOT NULL,
	condition TEXT NOT NULL,
	seller_email TEXT NOT NULL,
	created_at TIMESTAMPTZ DEFAULT NOW()
)`, s.table)
	if _, err := s.pool.Exec(ctx, listingsDDL); err != nil {
		return fmt.Errorf("create %s table: %w", s.table, err)
	}
	statsDDL := `
CREATE TABLE IF NOT EXISTS site_stats (
	id INT PRIMARY KEY,
	total_hits BIGINT DEFAULT 0
)`
	if _, err := s.pool.Exec(ctx, statsDDL); err != nil {
		return fmt.Errorf("create site_stats table: %w", err)
	}
	seed := `INSERT INTO site_stats (id, total_hits) VALUES (1, 0) ON CONFLICT (id) DO NOTHING`
	if _, err := s.pool.Exec(ctx, seed); err != nil {
		return fmt.Errorf("seed site_stats: %w", err)
	}
	return nil
}

// InsertListing inserts one listing row and returns the store-assigned id.
func (s *Postgres) InsertListing(ctx context.Context, rec listing.Record) (int64, error) {
	query := fmt.Sprintf(`
INSERT INTO %s (title, artist, price, category, image_url, link, condition, seller_email)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`, s.table)

	var id int64
	err := s.pool.QueryRow(ctx, query,
		rec.Title,
		rec.Artist,
		rec.Price,
		string(rec.Category),
		rec.ImageURL,
		rec.Link,
		rec.Condition,
		rec.SellerEmail,
	).Scan(&id)
	if err != nil {
		return 0, &listing.PersistenceError{Err: err}
	}
	return id, nil
}

// ListListings returns every listing row, newest first.
func (s *Postgres) ListListings(ctx context.Context) ([]listing.Record, error) {
	query := fmt.Sprintf(`
SELECT id, title, artist, price, category, image_url, link, condition, seller_email, created_at
FROM %s
ORDER BY id DESC`, s.table)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, &listing.PersistenceError{Err: err}
	}
	defer rows.Close()

	var records []listing.Record
	for rows.Next() {
		var rec listing.Record
		var category string
		if err := rows.Scan(
			&rec.ID,
			&rec.Title,
			&rec.Artist,
			&rec.Price,
			&category,
			&rec.ImageURL,
			&rec.Link,
			&rec.Condition,
			&rec.SellerEmail,
			&rec.CreatedAt,
		); err != nil {
			return nil, &listing.PersistenceError{Err: err}
		}
		rec.Category = listing.Category(category)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &listing.PersistenceError{Err: err}
	}
	return records, nil
}

// DeleteListing removes one row by id; ErrNotFound when no row matched.
func (s *Postgres) DeleteListing(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table)
	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return &listing.PersistenceError{Err: err}
	}
	if tag.RowsAffected() == 0 {
		return listing.ErrNotFound
	}
	return nil
}

// RecordHit increments the site hit counter.
func (s *Postgres) RecordHit(ctx context.Context) error {
	query := `UPDATE site_stats SET total_hits = total_hits + 1 WHERE id = 1`
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return &listing.PersistenceError{Err: err}
	}
	return nil
}

// TotalHits returns the site hit counter.
func (s *Postgres) TotalHits(ctx context.Context) (int64, error) {
	var total int64
	err := s.pool.QueryRow(ctx, `SELECT total_hits FROM site_stats WHERE id = 1`).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, &listing.PersistenceError{Err: err}
	}
	return total, nil
}

// Ping verifies database connectivity.
func (s *Postgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the underlying pool resources.
func (s *Postgres) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}
