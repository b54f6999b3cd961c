// Package store is the DuckDB-backed sales database: schema, demo seeding,
// and the aggregation queries the reports are built from.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2"
)

type Config struct {
	Logger *slog.Logger

	// Path is the database file; empty means in-memory.
	Path string
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

type Store struct {
	log *slog.Logger
	cfg Config
	db  *sql.DB
}

func Open(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Store{
		log: cfg.Logger,
		cfg: cfg,
		db:  db,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

var schemaStatements = []string{
	`CREATE SEQUENCE IF NOT EXISTS products_id_seq`,
	`CREATE SEQUENCE IF NOT EXISTS customers_id_seq`,
	`CREATE SEQUENCE IF NOT EXISTS sales_id_seq`,
	`CREATE TABLE IF NOT EXISTS products (
		id          INTEGER PRIMARY KEY DEFAULT nextval('products_id_seq'),
		name        VARCHAR NOT NULL,
		category    VARCHAR NOT NULL,
		unit_price  DOUBLE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id          INTEGER PRIMARY KEY DEFAULT nextval('customers_id_seq'),
		name        VARCHAR NOT NULL,
		region      VARCHAR NOT NULL,
		segment     VARCHAR NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id           INTEGER PRIMARY KEY DEFAULT nextval('sales_id_seq'),
		sale_date    DATE NOT NULL,
		product_id   INTEGER REFERENCES products(id),
		customer_id  INTEGER REFERENCES customers(id),
		quantity     INTEGER NOT NULL,
		discount     DOUBLE DEFAULT 0.0,
		revenue      DOUBLE NOT NULL
	)`,
}

// Migrate creates the schema when missing. Safe to call repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run schema statement: %w", err)
		}
	}
	s.log.Info("Database schema ready", slog.String("path", s.cfg.Path))
	return nil
}

func (s *Store) CountSales(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sales: %w", err)
	}
	return count, nil
}
