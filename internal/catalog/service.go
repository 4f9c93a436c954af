/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package catalog reads the localized reference content (cards, spreads,
// dimensions, interpretations) from the config database. All lookups take an
// active locale and resolve content through the deterministic fallback chain;
// the base tables are authored in English, translation tables overlay
// everything else.
package catalog

import (
	"errors"
	"log/slog"

	applog "tarotvault/internal/log"
	"tarotvault/internal/storage"
)

// ErrNotFound reports a lookup for an id the config database does not carry.
var ErrNotFound = errors.New("catalog: not found")

// Service exposes localized read access to the reference content.
type Service struct {
	store *storage.Manager
	log   *slog.Logger
}

// NewService wires the catalog onto an initialized storage manager.
func NewService(store *storage.Manager) *Service {
	return &Service{
		store: store,
		log:   applog.WithComponent("catalog"),
	}
}

func (s *Service) chain(active string) []string {
	return ResolveLocaleChain(active, s.store.DefaultLocale())
}

// skipOverlay is true when the active locale already resolves to the base
// content, so no translation lookup is needed.
func skipOverlay(chain []string) bool {
	return len(chain) > 0 && chain[0] == baseLocale
}
