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
	"errors"
	"fmt"
	"time"
)

// SetLocale stores the user's preferred locale, replacing any previous value.
func (s *Service) SetLocale(ctx context.Context, userID, locale string) error {
	if userID == "" || locale == "" {
		return fmt.Errorf("history: user id and locale are required")
	}
	_, _, err := s.store.ExecUser(ctx,
		`INSERT INTO user_settings (user_id, locale, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET locale = excluded.locale, updated_at = excluded.updated_at`,
		userID, locale, time.Now().UTC().Format(timeFormat))
	return err
}

// Locale returns the user's preferred locale, or the application default when
// the user never picked one.
func (s *Service) Locale(ctx context.Context, userID string) (string, error) {
	var locale string
	err := s.store.QueryUserRow(ctx, `SELECT locale FROM user_settings WHERE user_id = ?`, []any{userID},
		func(row *sql.Row) error { return row.Scan(&locale) })
	if errors.Is(err, sql.ErrNoRows) {
		return s.store.DefaultLocale(), nil
	}
	if err != nil {
		return "", err
	}
	return locale, nil
}
