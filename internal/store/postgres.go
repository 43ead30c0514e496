package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/grazbites/scraper/internal/db"
	"github.com/grazbites/scraper/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection.
var preparedStatements = map[string]string{
	"list_restaurants": selectRestaurants,
	"list_menu_items":  selectMenuItems,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS restaurants (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name          TEXT NOT NULL,
	address       TEXT NOT NULL,
	phone         TEXT,
	website       TEXT,
	cuisine       JSONB NOT NULL DEFAULT '[]',
	price_range   TEXT NOT NULL DEFAULT '€€',
	rating        DOUBLE PRECISION,
	review_count  INTEGER NOT NULL DEFAULT 0,
	features      JSONB NOT NULL DEFAULT '[]',
	opening_hours JSONB,
	summary       TEXT,
	menu_url      TEXT,
	latitude      DOUBLE PRECISION,
	longitude     DOUBLE PRECISION,
	data_sources  JSONB NOT NULL DEFAULT '[]',
	last_verified TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS menu_items (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	restaurant_id TEXT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
	position      INTEGER NOT NULL DEFAULT 0,
	name          VARCHAR(200) NOT NULL,
	price         DOUBLE PRECISION,
	price_text    VARCHAR(50),
	category      VARCHAR(50) NOT NULL DEFAULT 'Other'
);

CREATE INDEX IF NOT EXISTS idx_restaurants_name ON restaurants(name);
CREATE INDEX IF NOT EXISTS idx_menu_items_restaurant_id ON menu_items(restaurant_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) ReplaceRestaurants(ctx context.Context, rs []model.Restaurant) (SeedStats, error) {
	var stats SeedStats
	restaurants, items, err := buildRows(rs, time.Now().UTC())
	if err != nil {
		return stats, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return stats, eris.Wrap(err, "postgres: begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM restaurants").Scan(&stats.Cleared); err != nil {
		return stats, eris.Wrap(err, "postgres: count restaurants")
	}
	if _, err := tx.Exec(ctx, "DELETE FROM menu_items"); err != nil {
		return stats, eris.Wrap(err, "postgres: clear menu_items")
	}
	if _, err := tx.Exec(ctx, "DELETE FROM restaurants"); err != nil {
		return stats, eris.Wrap(err, "postgres: clear restaurants")
	}

	if _, err := db.CopyFrom(ctx, tx, "restaurants", restaurantColumns, restaurants); err != nil {
		return stats, eris.Wrap(err, "postgres: seed restaurants")
	}
	if _, err := db.CopyFrom(ctx, tx, "menu_items", menuItemColumns, items); err != nil {
		return stats, eris.Wrap(err, "postgres: seed menu items")
	}

	if err := tx.Commit(ctx); err != nil {
		return stats, eris.Wrap(err, "postgres: commit seed")
	}
	stats.Restaurants = len(restaurants)
	stats.MenuItems = len(items)
	return stats, nil
}

func (s *PostgresStore) ListRestaurants(ctx context.Context) ([]model.Restaurant, error) {
	rows, err := s.pool.Query(ctx, selectRestaurants)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list restaurants")
	}
	var out []model.Restaurant
	index := map[string]int{}
	for rows.Next() {
		id, r, err := scanRestaurant(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[id] = len(out)
		out = append(out, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate restaurants")
	}

	itemRows, err := s.pool.Query(ctx, selectMenuItems)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list menu items")
	}
	defer itemRows.Close()

	for itemRows.Next() {
		rid, it, err := scanMenuItem(itemRows)
		if err != nil {
			return nil, err
		}
		attachItems(out, index, rid, it)
	}
	return out, eris.Wrap(itemRows.Err(), "postgres: iterate menu items")
}
