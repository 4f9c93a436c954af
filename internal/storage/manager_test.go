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
	"os"
	"path/filepath"
	"testing"
	"time"

	"tarotvault/internal/config"
	"tarotvault/internal/seed"
)

func testDBConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()
	dir := t.TempDir()
	asset := filepath.Join(dir, "assets", "tarot_config.db")
	if err := seed.Build(asset); err != nil {
		t.Fatalf("build seed asset: %v", err)
	}
	return config.DatabaseConfig{
		Dir:        filepath.Join(dir, "data"),
		AssetPath:  asset,
		ConfigName: "tarot_config.db",
		UserName:   "tarot_user.db",
	}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(testDBConfig(t), "en")
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func insertHistoryRow(t *testing.T, m *Manager, id string) {
	t.Helper()
	now := time.Now().UTC().Format(time.RFC3339)
	_, _, err := m.ExecUser(context.Background(),
		`INSERT INTO user_history (id, user_id, timestamp, spread_id, card_ids, interpretation_mode, locale, result, created_at, updated_at)
		 VALUES (?, 'u1', ?, 2, '[1,2,3]', 'default', 'en', '{}', ?, ?)`,
		id, now, now, now)
	if err != nil {
		t.Fatalf("insert history row: %v", err)
	}
}

func TestInitializeFreshInstall(t *testing.T) {
	m := newTestManager(t)
	st, err := m.Initialize(context.Background())
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !st.Initialized {
		t.Fatal("status not initialized")
	}
	if st.CardCount != 78 {
		t.Fatalf("card count = %d, want 78", st.CardCount)
	}
	if st.SchemaVersion != userSchemaVersion {
		t.Fatalf("schema version = %d, want %d", st.SchemaVersion, userSchemaVersion)
	}
	for _, p := range []string{st.ConfigPath, st.UserPath} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected db file at %s: %v", p, err)
		}
	}
}

func TestInitializeIdempotentWithinProcess(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	if _, err := m.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	insertHistoryRow(t, m, "r1")

	st, err := m.Initialize(ctx)
	if err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
	if !st.Initialized {
		t.Fatal("second Initialize lost state")
	}
	var n int
	err = m.QueryUserRow(ctx, `SELECT COUNT(*) FROM user_history`, nil, func(r *sql.Row) error {
		return r.Scan(&n)
	})
	if err != nil || n != 1 {
		t.Fatalf("history after re-init: n=%d err=%v", n, err)
	}
}

func TestRestartPreservesUserData(t *testing.T) {
	dbcfg := testDBConfig(t)
	ctx := context.Background()

	m1 := NewManager(dbcfg, "en")
	if _, err := m1.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	insertHistoryRow(t, m1, "r1")
	if err := m1.Close(); err != nil {
		t.Fatal(err)
	}

	// A new process re-copies the config asset but must leave user data alone.
	m2 := NewManager(dbcfg, "en")
	defer m2.Close()
	st, err := m2.Initialize(ctx)
	if err != nil {
		t.Fatalf("restart Initialize: %v", err)
	}
	if st.CardCount != 78 {
		t.Fatalf("card count after restart = %d", st.CardCount)
	}
	var n int
	err = m2.QueryUserRow(ctx, `SELECT COUNT(*) FROM user_history`, nil, func(r *sql.Row) error {
		return r.Scan(&n)
	})
	if err != nil || n != 1 {
		t.Fatalf("history after restart: n=%d err=%v", n, err)
	}
}

func TestOperationsBeforeInitialize(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	if err := m.QueryConfig(ctx, `SELECT 1`, nil, func(*sql.Rows) error { return nil }); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("QueryConfig err = %v, want ErrNotInitialized", err)
	}
	if err := m.QueryUser(ctx, `SELECT 1`, nil, func(*sql.Rows) error { return nil }); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("QueryUser err = %v, want ErrNotInitialized", err)
	}
	if _, _, err := m.ExecUser(ctx, `DELETE FROM user_history`); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("ExecUser err = %v, want ErrNotInitialized", err)
	}
	if err := m.UserTransaction(ctx, func(*sql.Tx) error { return nil }); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("UserTransaction err = %v, want ErrNotInitialized", err)
	}
}

func TestConfigHandleRejectsWrites(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	if _, err := m.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	err := m.QueryConfig(ctx, `INSERT INTO spread (name, description, card_count) VALUES ('x', 'x', 1)`, nil,
		func(*sql.Rows) error { return nil })
	if err == nil {
		t.Fatal("write through config handle succeeded, want read-only rejection")
	}
}

func TestMissingAssetAbortsBeforeUserDB(t *testing.T) {
	dir := t.TempDir()
	dbcfg := config.DatabaseConfig{
		Dir:        filepath.Join(dir, "data"),
		AssetPath:  filepath.Join(dir, "missing.db"),
		ConfigName: "tarot_config.db",
		UserName:   "tarot_user.db",
	}
	m := NewManager(dbcfg, "en")
	defer m.Close()

	_, err := m.Initialize(context.Background())
	var ae *AssetError
	if !errors.As(err, &ae) {
		t.Fatalf("Initialize err = %v, want *AssetError", err)
	}
	// Config failure must abort the sequence: no user db may be created.
	if _, err := os.Stat(dbcfg.UserDBPath()); !os.IsNotExist(err) {
		t.Fatalf("user db created despite config failure: %v", err)
	}
}

func TestIncompleteAssetFailsIntegrity(t *testing.T) {
	dir := t.TempDir()
	asset := filepath.Join(dir, "partial.db")
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(asset))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`CREATE TABLE card (id INTEGER PRIMARY KEY, name TEXT)`); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	dbcfg := config.DatabaseConfig{
		Dir:        filepath.Join(dir, "data"),
		AssetPath:  asset,
		ConfigName: "tarot_config.db",
		UserName:   "tarot_user.db",
	}
	m := NewManager(dbcfg, "en")
	defer m.Close()

	_, err = m.Initialize(context.Background())
	var ie *IntegrityError
	if !errors.As(err, &ie) {
		t.Fatalf("Initialize err = %v, want *IntegrityError", err)
	}
	if len(ie.Missing) == 0 {
		t.Fatal("IntegrityError lists no missing tables")
	}
	for _, missing := range ie.Missing {
		if missing == "card" {
			t.Fatal("card reported missing although present")
		}
	}
}

func TestResetUserDataKeepsConfig(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	if _, err := m.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	insertHistoryRow(t, m, "r1")
	insertHistoryRow(t, m, "r2")

	if err := m.ResetUserData(ctx); err != nil {
		t.Fatalf("ResetUserData: %v", err)
	}
	var n int
	if err := m.QueryUserRow(ctx, `SELECT COUNT(*) FROM user_history`, nil, func(r *sql.Row) error {
		return r.Scan(&n)
	}); err != nil || n != 0 {
		t.Fatalf("history not cleared: n=%d err=%v", n, err)
	}
	if st := m.Status(); st.CardCount != 78 || !st.Initialized {
		t.Fatalf("config state disturbed by reset: %+v", st)
	}
}

func TestFullResetThenReinitialize(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	st, err := m.Initialize(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.FullReset(ctx); err != nil {
		t.Fatalf("FullReset: %v", err)
	}
	for _, p := range []string{st.ConfigPath, st.UserPath} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Fatalf("file %s survived full reset: %v", p, err)
		}
	}
	if m.Status().Initialized {
		t.Fatal("still reported initialized after full reset")
	}
	if err := m.QueryUser(ctx, `SELECT 1`, nil, func(*sql.Rows) error { return nil }); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("query after reset err = %v, want ErrNotInitialized", err)
	}

	st, err = m.Initialize(ctx)
	if err != nil {
		t.Fatalf("re-Initialize after reset: %v", err)
	}
	if !st.Initialized || st.CardCount != 78 {
		t.Fatalf("re-init status: %+v", st)
	}
}

func TestUserTransactionRollsBackOnError(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	if _, err := m.Initialize(ctx); err != nil {
		t.Fatal(err)
	}

	sentinel := errors.New("abort")
	now := time.Now().UTC().Format(time.RFC3339)
	err := m.UserTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_history (id, user_id, timestamp, spread_id, card_ids, interpretation_mode, locale, result, created_at, updated_at)
			 VALUES ('tx1', 'u1', ?, 1, '[1]', 'default', 'en', '{}', ?, ?)`, now, now, now); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("transaction err = %v, want sentinel", err)
	}
	var n int
	if err := m.QueryUserRow(ctx, `SELECT COUNT(*) FROM user_history`, nil, func(r *sql.Row) error {
		return r.Scan(&n)
	}); err != nil || n != 0 {
		t.Fatalf("rolled-back row visible: n=%d err=%v", n, err)
	}
}

func TestQueryRowNoRowsPassesThrough(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	if _, err := m.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	var id string
	err := m.QueryUserRow(ctx, `SELECT id FROM user_history WHERE id = 'absent'`, nil, func(r *sql.Row) error {
		return r.Scan(&id)
	})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("err = %v, want sql.ErrNoRows", err)
	}
}
