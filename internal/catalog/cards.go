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
	"fmt"

	"tarotvault/internal/domain"
)

const cardColumns = `id, name, arcana, suit, number, image_url, style_id, deck`

// Cards lists all cards localized for the given active locale, ordered by id.
func (s *Service) Cards(ctx context.Context, locale string) ([]domain.Card, error) {
	var cards []domain.Card
	err := s.store.QueryConfig(ctx, `SELECT `+cardColumns+` FROM card ORDER BY id`, nil, func(rows *sql.Rows) error {
		var c domain.Card
		if err := scanCard(rows, &c); err != nil {
			return err
		}
		cards = append(cards, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.overlayCards(ctx, locale, cards, nil); err != nil {
		return nil, err
	}
	return cards, nil
}

// CardByID returns a single localized card. A missing id yields ErrNotFound.
func (s *Service) CardByID(ctx context.Context, locale string, id int64) (domain.Card, error) {
	var c domain.Card
	err := s.store.QueryConfigRow(ctx, `SELECT `+cardColumns+` FROM card WHERE id = ?`, []any{id}, func(row *sql.Row) error {
		return row.Scan(&c.ID, &c.Name, &c.Arcana, &c.Suit, &c.Number, &c.ImageURL, &c.StyleID, &c.Deck)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Card{}, fmt.Errorf("card %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Card{}, err
	}
	cards := []domain.Card{c}
	if err := s.overlayCards(ctx, locale, cards, []any{id}); err != nil {
		return domain.Card{}, err
	}
	return cards[0], nil
}

// Styles lists the available artwork styles. Styles carry no translations.
func (s *Service) Styles(ctx context.Context) ([]domain.CardStyle, error) {
	var styles []domain.CardStyle
	err := s.store.QueryConfig(ctx, `SELECT id, name, image_base_url FROM card_style ORDER BY id`, nil, func(rows *sql.Rows) error {
		var st domain.CardStyle
		if err := rows.Scan(&st.ID, &st.Name, &st.ImageBaseURL); err != nil {
			return err
		}
		styles = append(styles, st)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return styles, nil
}

func scanCard(rows *sql.Rows, c *domain.Card) error {
	return rows.Scan(&c.ID, &c.Name, &c.Arcana, &c.Suit, &c.Number, &c.ImageURL, &c.StyleID, &c.Deck)
}

// overlayCards replaces card names (and deck/suit labels where translated)
// with the best match from the locale chain. filterID narrows the translation
// query to one card when set.
func (s *Service) overlayCards(ctx context.Context, locale string, cards []domain.Card, filterID []any) error {
	chain := s.chain(locale)
	if skipOverlay(chain) || len(cards) == 0 {
		return nil
	}
	rank := chainRank(chain)

	type pick struct {
		rank             int
		name, deck, suit string
	}
	chosen := make(map[int64]pick)

	q := `SELECT card_id, locale, name, deck, suit FROM card_translation WHERE locale IN (` + placeholders(len(chain)) + `)`
	args := chainArgs(chain)
	if len(filterID) > 0 {
		q += ` AND card_id = ?`
		args = append(args, filterID...)
	}
	err := s.store.QueryConfig(ctx, q, args, func(rows *sql.Rows) error {
		var id int64
		var loc, name, deck, suit string
		if err := rows.Scan(&id, &loc, &name, &deck, &suit); err != nil {
			return err
		}
		r, ok := rank[loc]
		if !ok {
			return nil
		}
		if cur, seen := chosen[id]; !seen || r < cur.rank {
			chosen[id] = pick{rank: r, name: name, deck: deck, suit: suit}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i := range cards {
		p, ok := chosen[cards[i].ID]
		if !ok {
			continue
		}
		cards[i].Name = p.name
		if p.deck != "" {
			cards[i].Deck = p.deck
		}
		if p.suit != "" {
			cards[i].Suit = p.suit
		}
	}
	return nil
}
