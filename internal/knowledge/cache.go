// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package knowledge

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// RESOLUTION CACHE
// =============================================================================

// cacheSchema holds article-number to article-id resolutions. Identifiers
// are stable, so rows are only ever inserted or refreshed, never expired.
const cacheSchema = `
CREATE TABLE IF NOT EXISTS article_resolutions (
	article_number TEXT PRIMARY KEY,
	article_id     TEXT NOT NULL,
	resolved_at    INTEGER NOT NULL
);
`

// Cache is a SQLite-backed store of article resolutions. Every method is
// best-effort: failures are logged and reported as cache misses so a broken
// cache never breaks annotation.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (creating if necessary) the resolution cache at path.
func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Get returns the cached resolutions for the given article numbers. Numbers
// with no cached resolution are absent from the result.
func (c *Cache) Get(ctx context.Context, articleNumbers []string) map[string]string {
	out := make(map[string]string, len(articleNumbers))
	if len(articleNumbers) == 0 {
		return out
	}

	placeholders := strings.Repeat("?,", len(articleNumbers))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(articleNumbers))
	for i, num := range articleNumbers {
		args[i] = num
	}

	rows, err := c.db.QueryContext(ctx,
		"SELECT article_number, article_id FROM article_resolutions WHERE article_number IN ("+placeholders+")",
		args...)
	if err != nil {
		log.Printf("resolution cache read failed: %v", err)
		return out
	}
	defer rows.Close()

	for rows.Next() {
		var num, id string
		if err := rows.Scan(&num, &id); err != nil {
			log.Printf("resolution cache scan failed: %v", err)
			return out
		}
		out[num] = id
	}
	if err := rows.Err(); err != nil {
		log.Printf("resolution cache read failed: %v", err)
	}
	return out
}

// Put stores freshly fetched resolutions, refreshing any existing rows.
func (c *Cache) Put(ctx context.Context, resolutions map[string]string) {
	if len(resolutions) == 0 {
		return
	}
	now := time.Now().Unix()
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("resolution cache write failed: %v", err)
		return
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO article_resolutions (article_number, article_id, resolved_at) VALUES (?, ?, ?) "+
			"ON CONFLICT(article_number) DO UPDATE SET article_id = excluded.article_id, resolved_at = excluded.resolved_at")
	if err != nil {
		tx.Rollback()
		log.Printf("resolution cache write failed: %v", err)
		return
	}
	defer stmt.Close()

	for num, id := range resolutions {
		if _, err := stmt.ExecContext(ctx, num, id, now); err != nil {
			tx.Rollback()
			log.Printf("resolution cache write failed: %v", err)
			return
		}
	}
	if err := tx.Commit(); err != nil {
		log.Printf("resolution cache write failed: %v", err)
	}
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}
