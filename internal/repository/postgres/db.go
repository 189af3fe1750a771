package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// InitDB opens the connection pool, checks it and applies the schema.
func InitDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrateDB(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

func migrateDB(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS products (
			id BIGSERIAL PRIMARY KEY,
			product_key TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			slug TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			image TEXT NOT NULL DEFAULT '',
			price NUMERIC(12,2) NOT NULL DEFAULT 0,
			discount_price NUMERIC(12,2),
			stock INT NOT NULL DEFAULT 0 CHECK (stock >= 0),
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (NOT is_active OR stock >= 1)
		);

		CREATE TABLE IF NOT EXISTS carts (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL UNIQUE,
			total_price NUMERIC(12,2) NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS cart_lines (
			id BIGSERIAL PRIMARY KEY,
			cart_id BIGINT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
			product_key TEXT NOT NULL,
			quantity INT NOT NULL CHECK (quantity > 0),
			product_price NUMERIC(12,2) NOT NULL DEFAULT 0,
			added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (cart_id, product_key)
		);

		CREATE TABLE IF NOT EXISTS addresses (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			firstname TEXT NOT NULL,
			lastname TEXT NOT NULL,
			street_name TEXT NOT NULL,
			city TEXT NOT NULL,
			postal_code TEXT NOT NULL,
			country TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS payment_methods (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			type TEXT NOT NULL,
			provider TEXT NOT NULL,
			provider_payment_id TEXT NOT NULL,
			label TEXT NOT NULL DEFAULT '',
			is_default BOOLEAN NOT NULL DEFAULT FALSE
		);

		CREATE TABLE IF NOT EXISTS orders (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			cart_id BIGINT NOT NULL,
			billing_address_id BIGINT NOT NULL REFERENCES addresses(id),
			shipping_address_id BIGINT NOT NULL REFERENCES addresses(id),
			payment_method_id BIGINT NOT NULL REFERENCES payment_methods(id),
			total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'setup',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			paid_at TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id BIGSERIAL PRIMARY KEY,
			order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_key TEXT NOT NULL,
			quantity INT NOT NULL,
			product_price NUMERIC(12,2) NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS outbox_events (
			id TEXT PRIMARY KEY,
			stream_id TEXT NOT NULL,
			stream_type TEXT NOT NULL,
			event_type TEXT NOT NULL,
			payload JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			published_at TIMESTAMPTZ
		);

		CREATE INDEX IF NOT EXISTS outbox_events_pending_idx ON outbox_events (created_at) WHERE published_at IS NULL;
	`)
	return err
}
