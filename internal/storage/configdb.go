/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// requiredConfigTables is the fixed external contract of the bundled asset.
// Initialization aborts when any of these is absent after the copy.
var requiredConfigTables = []string{
	"card",
	"card_style",
	"dimension",
	"card_interpretation",
	"card_interpretation_dimension",
	"spread",
	"card_translation",
	"spread_translation",
	"dimension_translation",
	"card_interpretation_translation",
	"card_interpretation_dimension_translation",
}

// openConfigDB opens the copied seed file strictly read-only. mode=ro refuses
// writes at the VFS level and query_only refuses them at the statement level,
// so no code path can mutate reference data through this handle.
func openConfigDB(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)&_pragma=query_only(1)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open config db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect config db: %w", err)
	}
	return db, nil
}

// verifyConfigIntegrity confirms every required table exists in the freshly
// copied config database. It reports all missing tables at once.
func verifyConfigIntegrity(ctx context.Context, db *sql.DB, path string) error {
	present := make(map[string]bool, len(requiredConfigTables))
	rows, err := db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type='table'`)
	if err != nil {
		return fmt.Errorf("list config tables: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("scan table name: %w", err)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate config tables: %w", err)
	}

	var missing []string
	for _, want := range requiredConfigTables {
		if !present[want] {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return &IntegrityError{Path: path, Missing: missing}
	}
	return nil
}

// countConfigCards reads the card count for the status snapshot.
func countConfigCards(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM card`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return n, nil
}
