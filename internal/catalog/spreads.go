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

// Spreads lists all spreads localized for the active locale, ordered by id.
func (s *Service) Spreads(ctx context.Context, locale string) ([]domain.Spread, error) {
	var spreads []domain.Spread
	err := s.store.QueryConfig(ctx, `SELECT id, name, description, card_count FROM spread ORDER BY id`, nil,
		func(rows *sql.Rows) error {
			var sp domain.Spread
			if err := rows.Scan(&sp.ID, &sp.Name, &sp.Description, &sp.CardCount); err != nil {
				return err
			}
			spreads = append(spreads, sp)
			return nil
		})
	if err != nil {
		return nil, err
	}
	if err := s.overlaySpreads(ctx, locale, spreads); err != nil {
		return nil, err
	}
	return spreads, nil
}

// SpreadByID returns one localized spread; a missing id yields ErrNotFound.
func (s *Service) SpreadByID(ctx context.Context, locale string, id int64) (domain.Spread, error) {
	var sp domain.Spread
	err := s.store.QueryConfigRow(ctx, `SELECT id, name, description, card_count FROM spread WHERE id = ?`, []any{id},
		func(row *sql.Row) error {
			return row.Scan(&sp.ID, &sp.Name, &sp.Description, &sp.CardCount)
		})
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Spread{}, fmt.Errorf("spread %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Spread{}, err
	}
	spreads := []domain.Spread{sp}
	if err := s.overlaySpreads(ctx, locale, spreads); err != nil {
		return domain.Spread{}, err
	}
	return spreads[0], nil
}

func (s *Service) overlaySpreads(ctx context.Context, locale string, spreads []domain.Spread) error {
	chain := s.chain(locale)
	if skipOverlay(chain) || len(spreads) == 0 {
		return nil
	}
	rank := chainRank(chain)

	type pick struct {
		rank       int
		name, desc string
	}
	chosen := make(map[int64]pick)

	q := `SELECT spread_id, locale, name, description FROM spread_translation WHERE locale IN (` + placeholders(len(chain)) + `)`
	err := s.store.QueryConfig(ctx, q, chainArgs(chain), func(rows *sql.Rows) error {
		var id int64
		var loc, name, desc string
		if err := rows.Scan(&id, &loc, &name, &desc); err != nil {
			return err
		}
		r, ok := rank[loc]
		if !ok {
			return nil
		}
		if cur, seen := chosen[id]; !seen || r < cur.rank {
			chosen[id] = pick{rank: r, name: name, desc: desc}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i := range spreads {
		if p, ok := chosen[spreads[i].ID]; ok {
			spreads[i].Name = p.name
			spreads[i].Description = p.desc
		}
	}
	return nil
}
