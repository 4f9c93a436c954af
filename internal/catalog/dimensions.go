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

	"tarotvault/internal/domain"
)

// Dimensions lists all interpretive dimensions localized for the active
// locale, ordered by id.
func (s *Service) Dimensions(ctx context.Context, locale string) ([]domain.Dimension, error) {
	var dims []domain.Dimension
	err := s.store.QueryConfig(ctx,
		`SELECT id, name, category, description, aspect, aspect_type FROM dimension ORDER BY id`, nil,
		func(rows *sql.Rows) error {
			var d domain.Dimension
			if err := rows.Scan(&d.ID, &d.Name, &d.Category, &d.Description, &d.Aspect, &d.AspectType); err != nil {
				return err
			}
			dims = append(dims, d)
			return nil
		})
	if err != nil {
		return nil, err
	}
	if err := s.overlayDimensions(ctx, locale, dims); err != nil {
		return nil, err
	}
	return dims, nil
}

// DimensionsByCategory lists the dimensions of one category, localized.
// The category filter matches the base table, not the translated label, so a
// caller can filter stably regardless of active locale.
func (s *Service) DimensionsByCategory(ctx context.Context, locale, category string) ([]domain.Dimension, error) {
	var dims []domain.Dimension
	err := s.store.QueryConfig(ctx,
		`SELECT id, name, category, description, aspect, aspect_type FROM dimension WHERE category = ? ORDER BY id`,
		[]any{category},
		func(rows *sql.Rows) error {
			var d domain.Dimension
			if err := rows.Scan(&d.ID, &d.Name, &d.Category, &d.Description, &d.Aspect, &d.AspectType); err != nil {
				return err
			}
			dims = append(dims, d)
			return nil
		})
	if err != nil {
		return nil, err
	}
	if err := s.overlayDimensions(ctx, locale, dims); err != nil {
		return nil, err
	}
	return dims, nil
}

func (s *Service) overlayDimensions(ctx context.Context, locale string, dims []domain.Dimension) error {
	chain := s.chain(locale)
	if skipOverlay(chain) || len(dims) == 0 {
		return nil
	}
	rank := chainRank(chain)

	type pick struct {
		rank                         int
		name, desc, aspect, category string
	}
	chosen := make(map[int64]pick)

	q := `SELECT dimension_id, locale, name, description, aspect, category FROM dimension_translation WHERE locale IN (` + placeholders(len(chain)) + `)`
	err := s.store.QueryConfig(ctx, q, chainArgs(chain), func(rows *sql.Rows) error {
		var id int64
		var loc, name, desc, aspect, category string
		if err := rows.Scan(&id, &loc, &name, &desc, &aspect, &category); err != nil {
			return err
		}
		r, ok := rank[loc]
		if !ok {
			return nil
		}
		if cur, seen := chosen[id]; !seen || r < cur.rank {
			chosen[id] = pick{rank: r, name: name, desc: desc, aspect: aspect, category: category}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i := range dims {
		p, ok := chosen[dims[i].ID]
		if !ok {
			continue
		}
		dims[i].Name = p.name
		dims[i].Description = p.desc
		if p.aspect != "" {
			dims[i].Aspect = p.aspect
		}
		if p.category != "" {
			dims[i].Category = p.category
		}
	}
	return nil
}
