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

// InterpretationForCard returns the localized base meaning of one card in one
// direction, including all per-dimension contents. A missing card/direction
// pair yields ErrNotFound.
func (s *Service) InterpretationForCard(ctx context.Context, locale string, cardID int64, direction string) (domain.Interpretation, error) {
	var in domain.Interpretation
	err := s.store.QueryConfigRow(ctx,
		`SELECT id, card_id, direction, summary, detail FROM card_interpretation WHERE card_id = ? AND direction = ?`,
		[]any{cardID, direction},
		func(row *sql.Row) error {
			return row.Scan(&in.ID, &in.CardID, &in.Direction, &in.Summary, &in.Detail)
		})
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Interpretation{}, fmt.Errorf("interpretation card=%d direction=%s: %w", cardID, direction, ErrNotFound)
	}
	if err != nil {
		return domain.Interpretation{}, err
	}

	chain := s.chain(locale)
	if !skipOverlay(chain) {
		if err := s.overlayInterpretation(ctx, chain, &in); err != nil {
			return domain.Interpretation{}, err
		}
	}

	dims, err := s.dimensionContents(ctx, chain, in.ID)
	if err != nil {
		return domain.Interpretation{}, err
	}
	in.Dimensions = dims
	return in, nil
}

func (s *Service) overlayInterpretation(ctx context.Context, chain []string, in *domain.Interpretation) error {
	rank := chainRank(chain)
	best := -1
	q := `SELECT locale, summary, detail FROM card_interpretation_translation WHERE interpretation_id = ? AND locale IN (` + placeholders(len(chain)) + `)`
	args := append([]any{in.ID}, chainArgs(chain)...)
	return s.store.QueryConfig(ctx, q, args, func(rows *sql.Rows) error {
		var loc, summary, detail string
		if err := rows.Scan(&loc, &summary, &detail); err != nil {
			return err
		}
		r, ok := rank[loc]
		if !ok {
			return nil
		}
		if best == -1 || r < best {
			best = r
			in.Summary = summary
			in.Detail = detail
		}
		return nil
	})
}

// dimensionContents loads the per-dimension texts of an interpretation and
// localizes both the dimension labels and the contents through the chain.
func (s *Service) dimensionContents(ctx context.Context, chain []string, interpretationID int64) ([]domain.DimensionContent, error) {
	var out []domain.DimensionContent
	rowIDs := make([]int64, 0, 8) // card_interpretation_dimension row ids, parallel to out
	err := s.store.QueryConfig(ctx,
		`SELECT cid.id, cid.dimension_id, d.name, d.category, cid.aspect, cid.aspect_type, cid.content
		 FROM card_interpretation_dimension cid
		 JOIN dimension d ON d.id = cid.dimension_id
		 WHERE cid.interpretation_id = ?
		 ORDER BY cid.dimension_id`,
		[]any{interpretationID},
		func(rows *sql.Rows) error {
			var rowID int64
			var dc domain.DimensionContent
			if err := rows.Scan(&rowID, &dc.DimensionID, &dc.Name, &dc.Category, &dc.Aspect, &dc.AspectType, &dc.Content); err != nil {
				return err
			}
			rowIDs = append(rowIDs, rowID)
			out = append(out, dc)
			return nil
		})
	if err != nil {
		return nil, err
	}
	if skipOverlay(chain) || len(out) == 0 {
		return out, nil
	}

	rank := chainRank(chain)

	// Localized dimension labels.
	type labelPick struct {
		rank           int
		name, category string
	}
	labels := make(map[int64]labelPick)
	q := `SELECT dimension_id, locale, name, category FROM dimension_translation WHERE locale IN (` + placeholders(len(chain)) + `)`
	err = s.store.QueryConfig(ctx, q, chainArgs(chain), func(rows *sql.Rows) error {
		var id int64
		var loc, name, category string
		if err := rows.Scan(&id, &loc, &name, &category); err != nil {
			return err
		}
		r, ok := rank[loc]
		if !ok {
			return nil
		}
		if cur, seen := labels[id]; !seen || r < cur.rank {
			labels[id] = labelPick{rank: r, name: name, category: category}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Localized contents, keyed by the card_interpretation_dimension row id.
	type contentPick struct {
		rank            int
		aspect, content string
	}
	contents := make(map[int64]contentPick)
	q = `SELECT t.dimension_interpretation_id, t.locale, t.aspect, t.content
	     FROM card_interpretation_dimension_translation t
	     JOIN card_interpretation_dimension cid ON cid.id = t.dimension_interpretation_id
	     WHERE cid.interpretation_id = ? AND t.locale IN (` + placeholders(len(chain)) + `)`
	args := append([]any{interpretationID}, chainArgs(chain)...)
	err = s.store.QueryConfig(ctx, q, args, func(rows *sql.Rows) error {
		var id int64
		var loc, aspect, content string
		if err := rows.Scan(&id, &loc, &aspect, &content); err != nil {
			return err
		}
		r, ok := rank[loc]
		if !ok {
			return nil
		}
		if cur, seen := contents[id]; !seen || r < cur.rank {
			contents[id] = contentPick{rank: r, aspect: aspect, content: content}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range out {
		if l, ok := labels[out[i].DimensionID]; ok {
			out[i].Name = l.name
			if l.category != "" {
				out[i].Category = l.category
			}
		}
		if c, ok := contents[rowIDs[i]]; ok {
			out[i].Content = c.content
			if c.aspect != "" {
				out[i].Aspect = c.aspect
			}
		}
	}
	return out, nil
}
