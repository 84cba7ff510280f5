// Package catalog implements the persistent track store backing a collection.
//
// Each collection is a single SQLite file with one table keyed by the
// track's yt_id. Every operation opens its own connection, so calls are
// independently atomic against their storage file and sessions can switch
// collections without connection handoff.
package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/stereo/internal/shared"
)

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS tracks (
		yt_id TEXT PRIMARY KEY,
		bp_id INTEGER,
		mb_id TEXT,
		title TEXT NOT NULL,
		mix_name TEXT,
		artists TEXT NOT NULL,
		release_date TEXT,
		label TEXT,
		album TEXT,
		length INTEGER,
		bpm INTEGER,
		genre TEXT,
		key TEXT,
		mood TEXT,
		rating INTEGER,
		play_count INTEGER DEFAULT 0,
		last_played TEXT
	)
`

// Columns returns every column of the tracks table in storage order.
func Columns() []string {
	return []string{
		"yt_id", "bp_id", "mb_id", "title", "mix_name", "artists",
		"release_date", "label", "album", "length", "bpm", "genre",
		"key", "mood", "rating", "play_count", "last_played",
	}
}

// UserColumns returns the user-data columns preserved by default on import.
func UserColumns() []string {
	return []string{"rating", "play_count", "last_played"}
}

// MetadataColumns returns every column except the user-data columns.
func MetadataColumns() []string {
	user := map[string]bool{}
	for _, c := range UserColumns() {
		user[c] = true
	}
	cols := []string{}
	for _, c := range Columns() {
		if !user[c] {
			cols = append(cols, c)
		}
	}
	return cols
}

// ValidateSchema reports whether the file at path is a track collection:
// a readable SQLite database whose tracks table carries at least the
// expected columns with yt_id as primary key.
func ValidateSchema(ctx context.Context, path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return false
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "PRAGMA table_info(tracks)")
	if err != nil {
		return false
	}
	defer rows.Close()

	found := map[string]bool{}
	pk := map[string]bool{}
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal any
			pkOrder    int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pkOrder); err != nil {
			return false
		}
		found[name] = true
		if pkOrder > 0 {
			pk[name] = true
		}
	}
	if rows.Err() != nil || len(found) == 0 {
		return false
	}

	for _, col := range Columns() {
		if !found[col] {
			return false
		}
	}
	return pk["yt_id"]
}

// tableColumns reads the column names of a table, optionally qualified with
// an attached database name.
func tableColumns(ctx context.Context, q queryer, table string) (map[string]bool, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf("PRAGMA %s.table_info(tracks)", table))
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s schema: %w", table, err)
	}
	defer rows.Close()

	cols := map[string]bool{}
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal any
			pkOrder    int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pkOrder); err != nil {
			return nil, fmt.Errorf("failed to scan %s schema row: %w", table, err)
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return cols, nil
}
