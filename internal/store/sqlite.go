package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/go-scripts/metascrape/pkg/common"
)

// SQLiteStore implements Store using modernc.org/sqlite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// one writer at a time; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: exec %s: %w", pragma, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS scraped_items (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	url         TEXT NOT NULL UNIQUE,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) List(ctx context.Context) ([]common.ScrapedItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, url FROM scraped_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list items: %w", err)
	}
	defer rows.Close()

	items := []common.ScrapedItem{}
	for rows.Next() {
		var item common.ScrapedItem
		if err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.URL); err != nil {
			return nil, fmt.Errorf("sqlite: scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate items: %w", err)
	}
	return items, nil
}

func (s *SQLiteStore) FindByURL(ctx context.Context, url string) (common.ScrapedItem, error) {
	var item common.ScrapedItem
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, url FROM scraped_items WHERE url = ?`, url,
	).Scan(&item.ID, &item.Title, &item.Description, &item.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return common.ScrapedItem{}, ErrNotFound
	}
	if err != nil {
		return common.ScrapedItem{}, fmt.Errorf("sqlite: find %s: %w", url, err)
	}
	return item, nil
}

func (s *SQLiteStore) Create(ctx context.Context, item common.ScrapedItem) (common.ScrapedItem, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO scraped_items (title, description, url, created_at) VALUES (?, ?, ?, ?)`,
		item.Title, item.Description, item.URL, time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return common.ScrapedItem{}, ErrDuplicateURL
		}
		return common.ScrapedItem{}, fmt.Errorf("sqlite: insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return common.ScrapedItem{}, fmt.Errorf("sqlite: last insert id: %w", err)
	}
	item.ID = id
	return item, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
