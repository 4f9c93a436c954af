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
	"log/slog"
	"os"
	"sync"

	"tarotvault/internal/config"
	applog "tarotvault/internal/log"
)

// Manager is the single source of truth for both database handles. It is
// explicitly constructed by the composition root and holds the only open
// handles for the process lifetime; no other component may open a competing
// one.
type Manager struct {
	dbcfg         config.DatabaseConfig
	defaultLocale string
	log           *slog.Logger

	mu          sync.RWMutex
	configDB    *sql.DB
	userDB      *sql.DB
	configReady bool
	userReady   bool
	cardCount   int
}

// Status is a snapshot of the manager state returned by Initialize and
// Status.
type Status struct {
	Initialized   bool
	ConfigReady   bool
	UserReady     bool
	ConfigPath    string
	UserPath      string
	SchemaVersion int
	CardCount     int
}

// NewManager constructs an uninitialized manager. Call Initialize before any
// query or execute operation.
func NewManager(dbcfg config.DatabaseConfig, defaultLocale string) *Manager {
	return &Manager{
		dbcfg:         dbcfg,
		defaultLocale: defaultLocale,
		log:           applog.WithComponent("storage"),
	}
}

// Initialize prepares both databases. When both are already initialized it
// returns immediately without re-copying the asset or touching the
// filesystem. Otherwise it performs, in order: seed asset copy + read-only
// open + integrity verification for the config database, then open-or-create
// + schema migration for the user database. A config failure aborts before
// the user database is touched.
func (m *Manager) Initialize(ctx context.Context) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.configReady && m.userReady {
		m.log.Debug("already initialized")
		return m.statusLocked(), nil
	}

	if !m.configReady {
		if err := m.initConfigLocked(ctx); err != nil {
			return m.statusLocked(), err
		}
	}
	if !m.userReady {
		if err := m.initUserLocked(ctx); err != nil {
			return m.statusLocked(), err
		}
	}

	m.log.Info("storage ready",
		slog.String("config", m.dbcfg.ConfigDBPath()),
		slog.String("user", m.dbcfg.UserDBPath()),
		slog.Int("cards", m.cardCount),
	)
	return m.statusLocked(), nil
}

func (m *Manager) initConfigLocked(ctx context.Context) error {
	path := m.dbcfg.ConfigDBPath()
	if err := copySeedAsset(m.dbcfg.AssetPath, path); err != nil {
		return err
	}
	db, err := openConfigDB(path)
	if err != nil {
		return err
	}
	if err := verifyConfigIntegrity(ctx, db, path); err != nil {
		_ = db.Close()
		m.log.Error("config integrity check failed", slog.Any("err", err))
		return err
	}
	n, err := countConfigCards(ctx, db)
	if err != nil {
		_ = db.Close()
		return err
	}
	m.configDB = db
	m.configReady = true
	m.cardCount = n
	return nil
}

func (m *Manager) initUserLocked(ctx context.Context) error {
	db, err := openUserDB(m.dbcfg.UserDBPath())
	if err != nil {
		return err
	}
	if err := ensureUserSchema(ctx, db, m.defaultLocale); err != nil {
		_ = db.Close()
		m.log.Error("user schema migration failed", slog.Any("err", err))
		return err
	}
	m.userDB = db
	m.userReady = true
	return nil
}

func (m *Manager) configHandle() (*sql.DB, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.configReady || m.configDB == nil {
		return nil, ErrNotInitialized
	}
	return m.configDB, nil
}

func (m *Manager) userHandle() (*sql.DB, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.userReady || m.userDB == nil {
		return nil, ErrNotInitialized
	}
	return m.userDB, nil
}

// QueryConfig runs a read-only parameterized query against the config handle
// and calls scan once per row.
func (m *Manager) QueryConfig(ctx context.Context, query string, args []any, scan func(*sql.Rows) error) error {
	db, err := m.configHandle()
	if err != nil {
		return err
	}
	return runQuery(ctx, db, "queryConfig", query, args, scan)
}

// QueryConfigRow runs a single-row query against the config handle. A missing
// row surfaces as sql.ErrNoRows from scan, which callers may treat as "not
// found" rather than a failure.
func (m *Manager) QueryConfigRow(ctx context.Context, query string, args []any, scan func(*sql.Row) error) error {
	db, err := m.configHandle()
	if err != nil {
		return err
	}
	return runQueryRow(ctx, db, "queryConfigRow", query, args, scan)
}

// QueryUser runs a parameterized query against the user handle.
func (m *Manager) QueryUser(ctx context.Context, query string, args []any, scan func(*sql.Rows) error) error {
	db, err := m.userHandle()
	if err != nil {
		return err
	}
	return runQuery(ctx, db, "queryUser", query, args, scan)
}

// QueryUserRow runs a single-row query against the user handle.
func (m *Manager) QueryUserRow(ctx context.Context, query string, args []any, scan func(*sql.Row) error) error {
	db, err := m.userHandle()
	if err != nil {
		return err
	}
	return runQueryRow(ctx, db, "queryUserRow", query, args, scan)
}

// ExecUser runs a mutating statement (INSERT/UPDATE/DELETE) against the user
// handle and reports affected-row count and last-insert id.
func (m *Manager) ExecUser(ctx context.Context, stmt string, args ...any) (affected, lastID int64, err error) {
	db, err := m.userHandle()
	if err != nil {
		return 0, 0, err
	}
	res, err := db.ExecContext(ctx, stmt, args...)
	if err != nil {
		m.log.Error("execUser failed", slog.String("sql", stmt), slog.Any("err", err))
		return 0, 0, &QueryError{Op: "execUser", SQL: stmt, Err: err}
	}
	affected, _ = res.RowsAffected()
	lastID, _ = res.LastInsertId()
	return affected, lastID, nil
}

// UserTransaction wraps fn so that all writes inside it commit or roll back
// atomically. Any error (or panic) from fn rolls the transaction back.
func (m *Manager) UserTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	db, err := m.userHandle()
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &QueryError{Op: "userTransaction", SQL: "BEGIN", Err: err}
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return &QueryError{Op: "userTransaction", SQL: "COMMIT", Err: err}
	}
	return nil
}

// RecreateUserTables drops and recreates the user tables. Destructive;
// intended for explicit developer-triggered schema repair only.
func (m *Manager) RecreateUserTables(ctx context.Context) error {
	db, err := m.userHandle()
	if err != nil {
		return err
	}
	m.log.Warn("recreating user tables (destructive)")
	return recreateUserTables(ctx, db, m.defaultLocale)
}

// ResetUserData deletes all rows from user_history. Config data, settings
// and schema are untouched.
func (m *Manager) ResetUserData(ctx context.Context) error {
	n, _, err := m.ExecUser(ctx, `DELETE FROM user_history`)
	if err != nil {
		return err
	}
	m.log.Info("user history cleared", slog.Int64("rows", n))
	return nil
}

// FullReset closes both handles, deletes both on-disk files and clears the
// initialization flags. Manual recovery/debugging only.
func (m *Manager) FullReset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	if m.configDB != nil {
		errs = append(errs, m.configDB.Close())
		m.configDB = nil
	}
	if m.userDB != nil {
		errs = append(errs, m.userDB.Close())
		m.userDB = nil
	}
	m.configReady = false
	m.userReady = false
	m.cardCount = 0

	for _, p := range []string{m.dbcfg.ConfigDBPath(), m.dbcfg.UserDBPath()} {
		removeSidecars(p)
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	m.log.Warn("full reset performed",
		slog.String("config", m.dbcfg.ConfigDBPath()),
		slog.String("user", m.dbcfg.UserDBPath()),
	)
	return errors.Join(errs...)
}

// Close releases both handles. Queries after Close fail with
// ErrNotInitialized.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var errs []error
	if m.configDB != nil {
		errs = append(errs, m.configDB.Close())
		m.configDB = nil
	}
	if m.userDB != nil {
		errs = append(errs, m.userDB.Close())
		m.userDB = nil
	}
	m.configReady = false
	m.userReady = false
	return errors.Join(errs...)
}

// Status reports the current state snapshot.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statusLocked()
}

func (m *Manager) statusLocked() Status {
	st := Status{
		Initialized: m.configReady && m.userReady,
		ConfigReady: m.configReady,
		UserReady:   m.userReady,
		ConfigPath:  m.dbcfg.ConfigDBPath(),
		UserPath:    m.dbcfg.UserDBPath(),
		CardCount:   m.cardCount,
	}
	if m.userReady {
		st.SchemaVersion = userSchemaVersion
	}
	return st
}

// DefaultLocale exposes the application default locale the manager was
// constructed with; read services use it for fallback resolution.
func (m *Manager) DefaultLocale() string { return m.defaultLocale }

func runQuery(ctx context.Context, db *sql.DB, op, query string, args []any, scan func(*sql.Rows) error) error {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return &QueryError{Op: op, SQL: query, Err: err}
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return &QueryError{Op: op, SQL: query, Err: err}
	}
	return nil
}

func runQueryRow(ctx context.Context, db *sql.DB, op, query string, args []any, scan func(*sql.Row) error) error {
	row := db.QueryRowContext(ctx, query, args...)
	if err := scan(row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return &QueryError{Op: op, SQL: query, Err: err}
	}
	return nil
}
