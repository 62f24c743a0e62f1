package store

import (
	"context"
	"fmt"
)

// migrations run in order; each is applied once, tracked by PRAGMA user_version.
var migrations = []string{
	`
	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		category_name TEXT NOT NULL,
		parent_category_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
		delete_flag BOOLEAN NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		category_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
		name TEXT NOT NULL,
		description TEXT,
		product_image TEXT,
		delete_flag BOOLEAN NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS memberships (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		delete_flag BOOLEAN NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		email_address TEXT NOT NULL,
		phone_number TEXT,
		is_member BOOLEAN NOT NULL DEFAULT 0,
		membership_id TEXT REFERENCES memberships(id) ON DELETE SET NULL,
		delete_flag BOOLEAN NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		order_date TEXT NOT NULL,
		shipping_method TEXT,
		order_total REAL NOT NULL DEFAULT 0,
		order_status TEXT,
		delete_flag BOOLEAN NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS promotions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		discount_rate REAL NOT NULL DEFAULT 0,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		delete_flag BOOLEAN NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS shipping_methods (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price REAL NOT NULL DEFAULT 0,
		delete_flag BOOLEAN NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reviews (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		ordered_product_id TEXT,
		rating_value INTEGER NOT NULL,
		comment TEXT,
		delete_flag BOOLEAN NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		site_name TEXT NOT NULL,
		logo_url TEXT,
		primary_color TEXT NOT NULL,
		contact_email TEXT NOT NULL,
		currency_symbol TEXT NOT NULL,
		tax_rate REAL NOT NULL,
		updated_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);
	CREATE INDEX IF NOT EXISTS idx_orders_date ON orders(order_date);
	CREATE INDEX IF NOT EXISTS idx_reviews_user ON reviews(user_id);
	`,
}

// migrate applies pending migrations.
func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.conn.Get(ctx, &version, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for i := version; i < len(migrations); i++ {
		if _, err := s.conn.Exec(ctx, migrations[i]); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := s.conn.Exec(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			return fmt.Errorf("migration %d: set version: %w", i+1, err)
		}
		s.logger.Debug("applied migration", "version", i+1)
	}
	return nil
}
