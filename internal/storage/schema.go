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
	"errors"
	"fmt"
	"time"

	"tarotvault/internal/version"
)

// userSchemaVersion tracks the user-database schema.
// v1: user_history without locale. v2: locale column + locale index.
const userSchemaVersion = 2

var userSchemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS version (
		id          INTEGER PRIMARY KEY CHECK(id=1),
		schema      INTEGER NOT NULL,
		app         TEXT,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS user_history (
		id                  TEXT PRIMARY KEY,
		user_id             TEXT NOT NULL,
		timestamp           TEXT NOT NULL,
		spread_id           INTEGER NOT NULL,
		card_ids            TEXT NOT NULL,
		interpretation_mode TEXT NOT NULL CHECK (interpretation_mode IN ('default','ai')),
		locale              TEXT NOT NULL DEFAULT '',
		result              TEXT NOT NULL,
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS user_settings (
		user_id    TEXT PRIMARY KEY,
		locale     TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`,
}

// Index set supporting history listing and filtering.
var userIndexDDL = []string{
	`CREATE INDEX IF NOT EXISTS idx_user_history_user ON user_history(user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_user_history_ts ON user_history(timestamp);`,
	`CREATE INDEX IF NOT EXISTS idx_user_history_user_ts ON user_history(user_id, timestamp);`,
	`CREATE INDEX IF NOT EXISTS idx_user_history_locale ON user_history(locale);`,
}

// ensureUserSchema brings the user database up to the current expected shape
// without destroying existing rows. Safe to call on every start.
func ensureUserSchema(ctx context.Context, db *sql.DB, defaultLocale string) error {
	for _, q := range userSchemaDDL {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return &MigrationError{Step: "create tables", Err: err}
		}
	}
	if err := ensureVersionRow(ctx, db); err != nil {
		return &MigrationError{Step: "version row", Err: err}
	}
	if err := migrateUserHistory(ctx, db, defaultLocale); err != nil {
		return err
	}
	for _, q := range userIndexDDL {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return &MigrationError{Step: "create indexes", Err: err}
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := db.ExecContext(ctx, `UPDATE version SET schema=?, app=?, updated_at=? WHERE id=1`, userSchemaVersion, version.String(), now); err != nil {
		return &MigrationError{Step: "update version", Err: err}
	}
	return nil
}

// ensureVersionRow seeds the single-row version bookkeeping on a fresh
// database and leaves an existing schema value alone for migration detection.
func ensureVersionRow(ctx context.Context, db *sql.DB) error {
	now := time.Now().UTC().Format(time.RFC3339)
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`,
			userSchemaVersion, version.String(), now, now)
		return err
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		return nil
	}
}

// migrateUserHistory detects a legacy user_history table lacking the locale
// column and adds it in place, backfilling the default value. Existing rows
// survive unchanged; the table is never dropped or recreated here.
func migrateUserHistory(ctx context.Context, db *sql.DB, defaultLocale string) error {
	cols, err := tableColumns(ctx, db, "user_history")
	if err != nil {
		return &MigrationError{Step: "inspect user_history", Err: err}
	}
	if cols["locale"] {
		return nil
	}
	// ALTER + backfill commit together or not at all.
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &MigrationError{Step: "add locale", Err: err}
	}
	if _, err := tx.ExecContext(ctx, `ALTER TABLE user_history ADD COLUMN locale TEXT NOT NULL DEFAULT ''`); err != nil {
		_ = tx.Rollback()
		return &MigrationError{Step: "add locale", Err: err}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE user_history SET locale=? WHERE locale=''`, defaultLocale); err != nil {
		_ = tx.Rollback()
		return &MigrationError{Step: "backfill locale", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &MigrationError{Step: "add locale", Err: err}
	}
	return nil
}

// tableColumns returns the column names of a table via PRAGMA table_info.
func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s);`, table))
	if err != nil {
		return nil, fmt.Errorf("table_info %s: %w", table, err)
	}
	defer rows.Close()
	cols := map[string]bool{}
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// recreateUserTables drops and recreates both user tables. Destructive;
// developer-triggered schema repair only, never invoked automatically.
func recreateUserTables(ctx context.Context, db *sql.DB, defaultLocale string) error {
	drops := []string{
		`DROP TABLE IF EXISTS user_history;`,
		`DROP TABLE IF EXISTS user_settings;`,
	}
	for _, q := range drops {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return &MigrationError{Step: "drop tables", Err: err}
		}
	}
	return ensureUserSchema(ctx, db, defaultLocale)
}
