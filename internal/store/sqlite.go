package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/grazbites/scraper/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS restaurants (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	address       TEXT NOT NULL,
	phone         TEXT,
	website       TEXT,
	cuisine       TEXT NOT NULL DEFAULT '[]',
	price_range   TEXT NOT NULL DEFAULT '€€',
	rating        REAL,
	review_count  INTEGER NOT NULL DEFAULT 0,
	features      TEXT NOT NULL DEFAULT '[]',
	opening_hours TEXT,
	summary       TEXT,
	menu_url      TEXT,
	latitude      REAL,
	longitude     REAL,
	data_sources  TEXT NOT NULL DEFAULT '[]',
	last_verified DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS menu_items (
	id            TEXT PRIMARY KEY,
	restaurant_id TEXT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
	position      INTEGER NOT NULL DEFAULT 0,
	name          TEXT NOT NULL,
	price         REAL,
	price_text    TEXT,
	category      TEXT NOT NULL DEFAULT 'Other'
);

CREATE INDEX IF NOT EXISTS idx_restaurants_name ON restaurants(name);
CREATE INDEX IF NOT EXISTS idx_menu_items_restaurant_id ON menu_items(restaurant_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ReplaceRestaurants(ctx context.Context, rs []model.Restaurant) (SeedStats, error) {
	var stats SeedStats
	restaurants, items, err := buildRows(rs, time.Now().UTC())
	if err != nil {
		return stats, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, eris.Wrap(err, "sqlite: begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM restaurants").Scan(&stats.Cleared); err != nil {
		return stats, eris.Wrap(err, "sqlite: count restaurants")
	}
	for _, table := range []string{"menu_items", "restaurants"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return stats, eris.Wrapf(err, "sqlite: clear %s", table)
		}
	}

	if err := insertAll(ctx, tx, "restaurants", restaurantColumns, restaurants); err != nil {
		return stats, err
	}
	if err := insertAll(ctx, tx, "menu_items", menuItemColumns, items); err != nil {
		return stats, err
	}

	if err := tx.Commit(); err != nil {
		return stats, eris.Wrap(err, "sqlite: commit seed")
	}
	stats.Restaurants = len(restaurants)
	stats.MenuItems = len(items)
	return stats, nil
}

func insertAll(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO "+table+" ("+strings.Join(columns, ", ")+") VALUES ("+placeholders+")")
	if err != nil {
		return eris.Wrapf(err, "sqlite: prepare insert %s", table)
	}
	defer stmt.Close() //nolint:errcheck

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return eris.Wrapf(err, "sqlite: insert %s %v", table, row[0])
		}
	}
	return nil
}

func (s *SQLiteStore) ListRestaurants(ctx context.Context) ([]model.Restaurant, error) {
	rows, err := s.db.QueryContext(ctx, selectRestaurants)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list restaurants")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Restaurant
	index := map[string]int{}
	for rows.Next() {
		id, r, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		index[id] = len(out)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate restaurants")
	}

	itemRows, err := s.db.QueryContext(ctx, selectMenuItems)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list menu items")
	}
	defer itemRows.Close() //nolint:errcheck

	for itemRows.Next() {
		rid, it, err := scanMenuItem(itemRows)
		if err != nil {
			return nil, err
		}
		attachItems(out, index, rid, it)
	}
	return out, eris.Wrap(itemRows.Err(), "sqlite: iterate menu items")
}
