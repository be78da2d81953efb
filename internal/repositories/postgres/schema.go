package postgres

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS restaurants (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    open_time   SMALLINT NOT NULL DEFAULT 0,
    close_time  SMALLINT NOT NULL DEFAULT 0,
    status      TEXT NOT NULL DEFAULT 'open',
    rating      DOUBLE PRECISION NOT NULL DEFAULT 0,
    cuisines    TEXT[] NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS menu_items (
    id            TEXT PRIMARY KEY,
    restaurant_id TEXT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
    position      INTEGER NOT NULL DEFAULT 0,
    name          TEXT NOT NULL,
    description   TEXT NOT NULL DEFAULT '',
    price         DOUBLE PRECISION NOT NULL CHECK (price >= 0),
    unit_type     TEXT NOT NULL DEFAULT '',
    unit_amount   DOUBLE PRECISION NOT NULL DEFAULT 0,
    is_menu       BOOLEAN NOT NULL DEFAULT FALSE,
    base_category TEXT NOT NULL DEFAULT '',
    category      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS orders (
    id                 TEXT PRIMARY KEY,
    customer_id        TEXT NOT NULL DEFAULT '',
    restaurant_id      TEXT NOT NULL,
    total              DOUBLE PRECISION NOT NULL,
    original_total     DOUBLE PRECISION,
    coupon_discount    DOUBLE PRECISION NOT NULL DEFAULT 0,
    date               TEXT NOT NULL,
    is_commission_paid BOOLEAN NOT NULL DEFAULT FALSE,
    status             TEXT NOT NULL DEFAULT 'placed',
    payment_method     TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS orders_restaurant_unpaid_idx ON orders (restaurant_id) WHERE NOT is_commission_paid;
`

// Migrate creates the tables used by the repositories.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// Open creates a pool without waiting for the database. Failed reads then
// surface as repositories.ErrDataUnavailable.
func Open(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		log.Printf("[postgres] database not reachable yet: %v", err)
		return pool, nil
	}
	if err := Migrate(ctx, pool); err != nil {
		log.Printf("[postgres] %v", err)
	}
	return pool, nil
}
