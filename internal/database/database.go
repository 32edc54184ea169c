package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when a row does not exist or is not owned by the caller
	ErrNotFound = errors.New("not found")
	// ErrStoreMismatch is returned when loading a list or recipe saved for another store
	ErrStoreMismatch = errors.New("store mismatch")
)

// DB wraps the connection pool
type DB struct {
	Pool   *pgxpool.Pool
	logger *zap.Logger
}

// Connect creates a new database connection pool
func Connect(ctx context.Context, databaseURL string, logger *zap.Logger) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	logger.Info("database connected",
		zap.Int32("max_conns", poolConfig.MaxConns),
		zap.String("host", poolConfig.ConnConfig.Host),
	)
	return &DB{Pool: pool, logger: logger}, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool.Close()
}

// Ping checks database connectivity
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// RunMigrations applies pending migrations in version order
func (db *DB) RunMigrations(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for i, migration := range migrations {
		version := i + 1

		var exists bool
		err := db.Pool.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)",
			version,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration %d: %w", version, err)
		}
		if exists {
			continue
		}

		db.logger.Info("applying migration", zap.Int("version", version))

		tx, err := db.Pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", version, err)
		}

		if _, err := tx.Exec(ctx, migration); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("failed to apply migration %d: %w", version, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("failed to record migration %d: %w", version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", version, err)
		}
	}

	return nil
}

// ParsePrice converts a display price like "$3.49" to a number
func ParsePrice(price string) (float64, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(price, "$", ""))
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", price, err)
	}
	return v, nil
}

// migrations run in slice order; append only
var migrations = []string{
	migrationUsers,
	migrationCarts,
	migrationListsAndRecipes,
	migrationFrequentAndCache,
}

const migrationUsers = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email VARCHAR(255),
    is_anonymous BOOLEAN NOT NULL DEFAULT FALSE,
    store_number INT NOT NULL DEFAULT 86,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_users_anonymous_created ON users(is_anonymous, created_at);
`

const migrationCarts = `
CREATE TABLE IF NOT EXISTS shopping_carts (
    id SERIAL PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    store_number INT NOT NULL,
    product_name VARCHAR(500) NOT NULL,
    price NUMERIC(10, 2) NOT NULL DEFAULT 0,
    quantity NUMERIC(10, 3) NOT NULL DEFAULT 1,
    aisle VARCHAR(100),
    image_url TEXT,
    search_term VARCHAR(255) NOT NULL DEFAULT '',
    is_sold_by_weight BOOLEAN NOT NULL DEFAULT FALSE,
    unit_price VARCHAR(100),
    added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, store_number, product_name)
);
`

const migrationListsAndRecipes = `
CREATE TABLE IF NOT EXISTS saved_lists (
    id SERIAL PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    store_number INT NOT NULL,
    name VARCHAR(255) NOT NULL,
    is_auto_saved BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS saved_list_items (
    id SERIAL PRIMARY KEY,
    list_id INT NOT NULL REFERENCES saved_lists(id) ON DELETE CASCADE,
    product_name VARCHAR(500) NOT NULL,
    price NUMERIC(10, 2) NOT NULL DEFAULT 0,
    quantity NUMERIC(10, 3) NOT NULL DEFAULT 1,
    aisle VARCHAR(100),
    is_sold_by_weight BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_saved_lists_user_store ON saved_lists(user_id, store_number);

CREATE TABLE IF NOT EXISTS recipes (
    id SERIAL PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    store_number INT NOT NULL,
    name VARCHAR(255) NOT NULL,
    description TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS recipe_items (
    id SERIAL PRIMARY KEY,
    recipe_id INT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
    product_name VARCHAR(500) NOT NULL,
    price NUMERIC(10, 2) NOT NULL DEFAULT 0,
    quantity NUMERIC(10, 3) NOT NULL DEFAULT 1,
    aisle VARCHAR(100),
    image_url TEXT,
    search_term VARCHAR(255) NOT NULL DEFAULT '',
    is_sold_by_weight BOOLEAN NOT NULL DEFAULT FALSE,
    unit_price VARCHAR(100)
);

CREATE INDEX IF NOT EXISTS idx_recipes_user_store ON recipes(user_id, store_number);
`

const migrationFrequentAndCache = `
CREATE TABLE IF NOT EXISTS frequent_items (
    id SERIAL PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    store_number INT NOT NULL,
    product_name VARCHAR(500) NOT NULL,
    price NUMERIC(10, 2) NOT NULL DEFAULT 0,
    aisle VARCHAR(100),
    image_url TEXT,
    purchase_count INT NOT NULL DEFAULT 1,
    is_manual BOOLEAN NOT NULL DEFAULT FALSE,
    is_sold_by_weight BOOLEAN NOT NULL DEFAULT FALSE,
    last_purchased TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, store_number, product_name)
);

CREATE TABLE IF NOT EXISTS search_cache (
    search_term VARCHAR(255) NOT NULL,
    store_number INT NOT NULL,
    results_json JSONB NOT NULL,
    cached_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    hit_count INT NOT NULL DEFAULT 0,
    PRIMARY KEY (store_number, search_term)
);
`
