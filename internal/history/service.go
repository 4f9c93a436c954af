/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package history persists completed readings and per-user settings in the
// writable user database. Readings are immutable except for their
// interpretation payload, which may be regenerated (e.g. by a later AI pass).
package history

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"tarotvault/internal/domain"
	applog "tarotvault/internal/log"
	"tarotvault/internal/storage"
)

var (
	// ErrNotFound reports a reading id absent from user_history.
	ErrNotFound = errors.New("history: reading not found")
	// ErrCardCount reports a save whose card list does not match the
	// spread's declared card count.
	ErrCardCount = errors.New("history: card count does not match spread")
)

// timeFormat is the canonical storage format for all user_history
// timestamps. UTC RFC3339 sorts lexically, which the listing indexes rely on.
const timeFormat = time.RFC3339

// Service persists and retrieves readings.
type Service struct {
	store    *storage.Manager
	validate *validator.Validate
	log      *slog.Logger
}

// NewService wires the history service onto an initialized storage manager.
func NewService(store *storage.Manager) *Service {
	return &Service{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      applog.WithComponent("history"),
	}
}

// SaveReadingInput carries everything needed to persist a new reading. The
// id and bookkeeping timestamps are assigned by the service.
type SaveReadingInput struct {
	UserID    string  `validate:"required"`
	SpreadID  int64   `validate:"required,gt=0"`
	CardIDs   []int64 `validate:"required,min=1,dive,gt=0"`
	Mode      string  `validate:"required,oneof=default ai"`
	Locale    string  `validate:"omitempty"`
	Timestamp time.Time
	Result    domain.ReadingResult
}

func (s *Service) checkInput(in SaveReadingInput) error {
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("history: invalid reading input: %w", err)
	}
	if in.Mode != in.Result.Mode {
		return fmt.Errorf("history: input mode %q does not match result mode %q", in.Mode, in.Result.Mode)
	}
	return nil
}
