/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model structures shared between the config
// database (read-only reference content) and the user database (reading
// history and settings).

import "time"

// Arcana classifies a card as major or minor.
const (
	ArcanaMajor = "major"
	ArcanaMinor = "minor"
)

// Card directions as stored in card_interpretation.direction.
const (
	DirectionUpright  = "upright"
	DirectionReversed = "reversed"
)

// CardStyle is a deck artwork variant; image URLs for cards of this style are
// resolved relative to ImageBaseURL.
type CardStyle struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ImageBaseURL string `json:"imageBaseUrl"`
}

// Card is one of the 78 tarot cards shipped in the config database.
type Card struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Arcana   string `json:"arcana"` // major or minor
	Suit     string `json:"suit,omitempty"`
	Number   int    `json:"number"`
	ImageURL string `json:"imageUrl"`
	StyleID  int64  `json:"styleId,omitempty"`
	Deck     string `json:"deck"`
}

// Dimension is a named interpretive lens (career, emotion, ...) used to
// contextualize a card's meaning.
type Dimension struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Aspect      string `json:"aspect,omitempty"`
	AspectType  string `json:"aspectType,omitempty"`
}

// Spread is a card layout; CardCount constrains how many cards a reading
// based on this spread must contain.
type Spread struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CardCount   int    `json:"cardCount"`
}

// DimensionContent is one dimension's text for a specific interpretation.
type DimensionContent struct {
	DimensionID int64  `json:"dimensionId"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Aspect      string `json:"aspect,omitempty"`
	AspectType  string `json:"aspectType,omitempty"`
	Content     string `json:"content"`
}

// Interpretation is the base meaning of one card in one direction, optionally
// joined with its per-dimension contents.
type Interpretation struct {
	ID         int64              `json:"id"`
	CardID     int64              `json:"cardId"`
	Direction  string             `json:"direction"`
	Summary    string             `json:"summary"`
	Detail     string             `json:"detail,omitempty"`
	Dimensions []DimensionContent `json:"dimensions,omitempty"`
}

// Reading is one completed draw-and-interpret session, persisted as a
// user_history row.
type Reading struct {
	ID        string        `json:"id"` // UUID
	UserID    string        `json:"userId"`
	Timestamp time.Time     `json:"timestamp"`
	SpreadID  int64         `json:"spreadId"`
	CardIDs   []int64       `json:"cardIds"`
	Mode      string        `json:"interpretationMode"` // ModeDefault or ModeAI
	Locale    string        `json:"locale"`
	Result    ReadingResult `json:"result"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// UserSettings holds the persisted per-user preferences; one row per user.
type UserSettings struct {
	UserID    string    `json:"userId"`
	Locale    string    `json:"locale"`
	UpdatedAt time.Time `json:"updatedAt"`
}
