/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"tarotvault/internal/config"
	"tarotvault/internal/domain"
	"tarotvault/internal/seed"
	"tarotvault/internal/storage"
)

// newTestCatalog builds a seed asset, optionally mutates it through prep, and
// returns a catalog over an initialized manager with default locale en.
func newTestCatalog(t *testing.T, prep func(db *sql.DB)) *Service {
	t.Helper()
	dir := t.TempDir()
	asset := filepath.Join(dir, "assets", "tarot_config.db")
	if err := seed.Build(asset); err != nil {
		t.Fatalf("build seed: %v", err)
	}
	if prep != nil {
		db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(asset))
		if err != nil {
			t.Fatal(err)
		}
		prep(db)
		if err := db.Close(); err != nil {
			t.Fatal(err)
		}
	}

	m := storage.NewManager(config.DatabaseConfig{
		Dir:        filepath.Join(dir, "data"),
		AssetPath:  asset,
		ConfigName: "tarot_config.db",
		UserName:   "tarot_user.db",
	}, "en")
	t.Cleanup(func() { _ = m.Close() })
	if _, err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return NewService(m)
}

func TestCardsBaseLocale(t *testing.T) {
	svc := newTestCatalog(t, nil)
	cards, err := svc.Cards(context.Background(), "en")
	if err != nil {
		t.Fatalf("Cards: %v", err)
	}
	if len(cards) != 78 {
		t.Fatalf("card count = %d, want 78", len(cards))
	}
	if cards[0].Name != "The Fool" {
		t.Fatalf("first card = %q, want The Fool", cards[0].Name)
	}
}

func TestCardsLocalizedZhCN(t *testing.T) {
	svc := newTestCatalog(t, nil)
	c, err := svc.CardByID(context.Background(), "zh-CN", 1)
	if err != nil {
		t.Fatalf("CardByID: %v", err)
	}
	if c.Name != "愚者" {
		t.Fatalf("localized name = %q, want 愚者", c.Name)
	}
	if c.Arcana != domain.ArcanaMajor {
		t.Fatalf("arcana = %q", c.Arcana)
	}
}

func TestCardByIDNotFound(t *testing.T) {
	svc := newTestCatalog(t, nil)
	_, err := svc.CardByID(context.Background(), "en", 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// A zh-TW user with translation rows in both en and zh-CN must always get the
// zh-CN content: the canonical region variant outranks the terminal fallback,
// and database row order must not influence the pick.
func TestFallbackPrefersCanonicalRegionOverEnglish(t *testing.T) {
	svc := newTestCatalog(t, func(db *sql.DB) {
		if _, err := db.Exec(
			`INSERT INTO card_translation (card_id, locale, name, deck, suit) VALUES (1, 'en', 'Fool (english override)', '', '')`); err != nil {
			t.Fatalf("insert en decoy: %v", err)
		}
	})
	for i := 0; i < 5; i++ {
		c, err := svc.CardByID(context.Background(), "zh-TW", 1)
		if err != nil {
			t.Fatalf("CardByID: %v", err)
		}
		if c.Name != "愚者" {
			t.Fatalf("pass %d: name = %q, want zh-CN content 愚者", i, c.Name)
		}
	}
}

func TestUnknownLocaleFallsBackToBase(t *testing.T) {
	svc := newTestCatalog(t, nil)
	c, err := svc.CardByID(context.Background(), "ja-JP", 1)
	if err != nil {
		t.Fatalf("CardByID: %v", err)
	}
	if c.Name != "The Fool" {
		t.Fatalf("name = %q, want base content", c.Name)
	}
}

func TestSpreadsLocalized(t *testing.T) {
	svc := newTestCatalog(t, nil)
	spreads, err := svc.Spreads(context.Background(), "zh-CN")
	if err != nil {
		t.Fatalf("Spreads: %v", err)
	}
	if len(spreads) != 3 {
		t.Fatalf("spread count = %d, want 3", len(spreads))
	}
	byCount := map[int]string{}
	for _, sp := range spreads {
		byCount[sp.CardCount] = sp.Name
	}
	if byCount[3] != "三张牌" {
		t.Fatalf("three-card spread name = %q", byCount[3])
	}

	_, err = svc.SpreadByID(context.Background(), "en", 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing spread err = %v, want ErrNotFound", err)
	}
}

func TestDimensionsLocalized(t *testing.T) {
	svc := newTestCatalog(t, nil)
	dims, err := svc.Dimensions(context.Background(), "zh-CN")
	if err != nil {
		t.Fatalf("Dimensions: %v", err)
	}
	if len(dims) != 5 {
		t.Fatalf("dimension count = %d, want 5", len(dims))
	}
	names := map[string]bool{}
	for _, d := range dims {
		names[d.Name] = true
	}
	if !names["爱情"] || !names["事业"] {
		t.Fatalf("localized dimension names missing: %v", names)
	}
}

func TestDimensionsByCategory(t *testing.T) {
	svc := newTestCatalog(t, nil)
	dims, err := svc.DimensionsByCategory(context.Background(), "zh-CN", "relationship")
	if err != nil {
		t.Fatalf("DimensionsByCategory: %v", err)
	}
	if len(dims) != 1 {
		t.Fatalf("relationship dimensions = %d, want 1", len(dims))
	}
	if dims[0].Name != "爱情" {
		t.Fatalf("localized name = %q, want 爱情", dims[0].Name)
	}

	none, err := svc.DimensionsByCategory(context.Background(), "en", "absent")
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Fatalf("absent category returned %d rows", len(none))
	}
}

func TestInterpretationLocalizedWithDimensions(t *testing.T) {
	svc := newTestCatalog(t, nil)
	in, err := svc.InterpretationForCard(context.Background(), "zh-CN", 1, domain.DirectionUpright)
	if err != nil {
		t.Fatalf("InterpretationForCard: %v", err)
	}
	if !strings.Contains(in.Summary, "愚者") {
		t.Fatalf("summary not localized: %q", in.Summary)
	}
	if len(in.Dimensions) != 5 {
		t.Fatalf("dimension contents = %d, want 5", len(in.Dimensions))
	}
	for _, d := range in.Dimensions {
		if !strings.Contains(d.Content, "愚者") {
			t.Fatalf("dimension %q content not localized: %q", d.Name, d.Content)
		}
	}
}

func TestInterpretationBaseLocale(t *testing.T) {
	svc := newTestCatalog(t, nil)
	in, err := svc.InterpretationForCard(context.Background(), "en", 1, domain.DirectionReversed)
	if err != nil {
		t.Fatalf("InterpretationForCard: %v", err)
	}
	if !strings.Contains(in.Summary, "The Fool") {
		t.Fatalf("base summary = %q", in.Summary)
	}
	if in.Direction != domain.DirectionReversed {
		t.Fatalf("direction = %q", in.Direction)
	}
}

func TestInterpretationNotFound(t *testing.T) {
	svc := newTestCatalog(t, nil)
	_, err := svc.InterpretationForCard(context.Background(), "en", 1, "sideways")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestStyles(t *testing.T) {
	svc := newTestCatalog(t, nil)
	styles, err := svc.Styles(context.Background())
	if err != nil {
		t.Fatalf("Styles: %v", err)
	}
	if len(styles) != 1 || styles[0].ImageBaseURL == "" {
		t.Fatalf("styles = %+v", styles)
	}
}
