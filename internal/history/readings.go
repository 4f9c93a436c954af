/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"tarotvault/internal/domain"
)

const historyColumns = `id, user_id, timestamp, spread_id, card_ids, interpretation_mode, locale, result, created_at, updated_at`

// SaveReading validates and persists a completed reading. The card list must
// match the spread's declared card count; the interpretation payload is
// stored in the versioned result envelope. Returns the stored reading with
// its assigned UUID.
func (s *Service) SaveReading(ctx context.Context, in SaveReadingInput) (domain.Reading, error) {
	if err := s.checkInput(in); err != nil {
		return domain.Reading{}, err
	}

	var cardCount int
	err := s.store.QueryConfigRow(ctx, `SELECT card_count FROM spread WHERE id = ?`, []any{in.SpreadID},
		func(row *sql.Row) error { return row.Scan(&cardCount) })
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Reading{}, fmt.Errorf("history: spread %d: %w", in.SpreadID, ErrNotFound)
	}
	if err != nil {
		return domain.Reading{}, err
	}
	if len(in.CardIDs) != cardCount {
		return domain.Reading{}, fmt.Errorf("spread %d wants %d cards, got %d: %w", in.SpreadID, cardCount, len(in.CardIDs), ErrCardCount)
	}

	resultJSON, err := domain.EncodeResult(in.Result)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("history: encode result: %w", err)
	}
	cardJSON, err := json.Marshal(in.CardIDs)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("history: encode card ids: %w", err)
	}

	locale := in.Locale
	if locale == "" {
		locale, err = s.Locale(ctx, in.UserID)
		if err != nil {
			return domain.Reading{}, err
		}
	}

	now := time.Now().UTC()
	ts := in.Timestamp
	if ts.IsZero() {
		ts = now
	}
	r := domain.Reading{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Timestamp: ts.UTC(),
		SpreadID:  in.SpreadID,
		CardIDs:   in.CardIDs,
		Mode:      in.Mode,
		Locale:    locale,
		Result:    in.Result,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, _, err = s.store.ExecUser(ctx,
		`INSERT INTO user_history (`+historyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.Timestamp.Format(timeFormat), r.SpreadID, string(cardJSON),
		r.Mode, r.Locale, string(resultJSON), now.Format(timeFormat), now.Format(timeFormat))
	if err != nil {
		return domain.Reading{}, err
	}
	s.log.Info("reading saved",
		slog.String("id", r.ID),
		slog.String("user", r.UserID),
		slog.Int64("spread", r.SpreadID),
		slog.String("mode", r.Mode),
	)
	return r, nil
}

// GetReading loads one reading by id.
func (s *Service) GetReading(ctx context.Context, id string) (domain.Reading, error) {
	var r domain.Reading
	var ts, cardJSON, resultJSON, created, updated string
	err := s.store.QueryUserRow(ctx, `SELECT `+historyColumns+` FROM user_history WHERE id = ?`, []any{id},
		func(row *sql.Row) error {
			return row.Scan(&r.ID, &r.UserID, &ts, &r.SpreadID, &cardJSON, &r.Mode, &r.Locale, &resultJSON, &created, &updated)
		})
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Reading{}, fmt.Errorf("reading %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Reading{}, err
	}
	return hydrateReading(r, ts, cardJSON, resultJSON, created, updated)
}

// ListFilter narrows a history listing. Zero values mean "no constraint".
type ListFilter struct {
	UserID   string
	Mode     string
	SpreadID int64
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}

const defaultListLimit = 50

func (f ListFilter) where() (string, []any) {
	var conds []string
	var args []any
	if f.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Mode != "" {
		conds = append(conds, "interpretation_mode = ?")
		args = append(args, f.Mode)
	}
	if f.SpreadID != 0 {
		conds = append(conds, "spread_id = ?")
		args = append(args, f.SpreadID)
	}
	if !f.From.IsZero() {
		conds = append(conds, "timestamp >= ?")
		args = append(args, f.From.UTC().Format(timeFormat))
	}
	if !f.To.IsZero() {
		conds = append(conds, "timestamp < ?")
		args = append(args, f.To.UTC().Format(timeFormat))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListReadings returns matching readings newest first.
func (s *Service) ListReadings(ctx context.Context, f ListFilter) ([]domain.Reading, error) {
	where, args := f.where()
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	q := `SELECT ` + historyColumns + ` FROM user_history` + where +
		` ORDER BY timestamp DESC, id LIMIT ? OFFSET ?`
	args = append(args, limit, f.Offset)

	var out []domain.Reading
	err := s.store.QueryUser(ctx, q, args, func(rows *sql.Rows) error {
		var r domain.Reading
		var ts, cardJSON, resultJSON, created, updated string
		if err := rows.Scan(&r.ID, &r.UserID, &ts, &r.SpreadID, &cardJSON, &r.Mode, &r.Locale, &resultJSON, &created, &updated); err != nil {
			return err
		}
		full, err := hydrateReading(r, ts, cardJSON, resultJSON, created, updated)
		if err != nil {
			return err
		}
		out = append(out, full)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountReadings reports how many readings match the filter, ignoring
// limit/offset.
func (s *Service) CountReadings(ctx context.Context, f ListFilter) (int, error) {
	where, args := f.where()
	var n int
	err := s.store.QueryUserRow(ctx, `SELECT COUNT(*) FROM user_history`+where, args,
		func(row *sql.Row) error { return row.Scan(&n) })
	if err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateInterpretation replaces the interpretation payload of an existing
// reading, e.g. after regenerating it in a different mode. Drawn cards,
// spread and timestamps other than updated_at stay fixed.
func (s *Service) UpdateInterpretation(ctx context.Context, id string, result domain.ReadingResult) error {
	resultJSON, err := domain.EncodeResult(result)
	if err != nil {
		return fmt.Errorf("history: encode result: %w", err)
	}
	affected, _, err := s.store.ExecUser(ctx,
		`UPDATE user_history SET interpretation_mode = ?, result = ?, updated_at = ? WHERE id = ?`,
		result.Mode, string(resultJSON), time.Now().UTC().Format(timeFormat), id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("reading %s: %w", id, ErrNotFound)
	}
	s.log.Info("interpretation updated", slog.String("id", id), slog.String("mode", result.Mode))
	return nil
}

// DeleteReading removes one reading by id.
func (s *Service) DeleteReading(ctx context.Context, id string) error {
	affected, _, err := s.store.ExecUser(ctx, `DELETE FROM user_history WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("reading %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteAllForUser removes every reading of one user and reports how many
// rows went away.
func (s *Service) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	affected, _, err := s.store.ExecUser(ctx, `DELETE FROM user_history WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	s.log.Info("user history deleted", slog.String("user", userID), slog.Int64("rows", affected))
	return affected, nil
}

func hydrateReading(r domain.Reading, ts, cardJSON, resultJSON, created, updated string) (domain.Reading, error) {
	var err error
	if r.Timestamp, err = time.Parse(timeFormat, ts); err != nil {
		return domain.Reading{}, fmt.Errorf("history: reading %s: bad timestamp %q: %w", r.ID, ts, err)
	}
	if r.CreatedAt, err = time.Parse(timeFormat, created); err != nil {
		return domain.Reading{}, fmt.Errorf("history: reading %s: bad created_at %q: %w", r.ID, created, err)
	}
	if r.UpdatedAt, err = time.Parse(timeFormat, updated); err != nil {
		return domain.Reading{}, fmt.Errorf("history: reading %s: bad updated_at %q: %w", r.ID, updated, err)
	}
	if err = json.Unmarshal([]byte(cardJSON), &r.CardIDs); err != nil {
		return domain.Reading{}, fmt.Errorf("history: reading %s: bad card ids: %w", r.ID, err)
	}
	if r.Result, err = domain.DecodeResult([]byte(resultJSON)); err != nil {
		return domain.Reading{}, fmt.Errorf("history: reading %s: %w", r.ID, err)
	}
	return r, nil
}
