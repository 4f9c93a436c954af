/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Interpretation modes stored in user_history.interpretation_mode and used as
// the discriminator of ReadingResult.
const (
	ModeDefault = "default"
	ModeAI      = "ai"
)

// ResultSchemaVersion is the current shape of the stored reading result.
// Bump when the document structure changes; decoding rejects versions it does
// not know so that shape drift fails loudly instead of producing zero fields.
const ResultSchemaVersion = 1

// ReadingResult is the JSON document stored in user_history.result. It is a
// tagged union over the interpretation mode: exactly one of Default/AI is set
// and must match Mode.
type ReadingResult struct {
	SchemaVersion int            `json:"schema_version"`
	Mode          string         `json:"mode"`
	Default       *DefaultResult `json:"default,omitempty"`
	AI            *AIResult      `json:"ai,omitempty"`
}

// DefaultResult carries the locally assembled interpretation texts.
type DefaultResult struct {
	Cards []CardResult `json:"cards"`
}

// CardResult is one drawn card with its resolved interpretation.
type CardResult struct {
	CardID     int64              `json:"card_id"`
	Name       string             `json:"name"`
	Direction  string             `json:"direction"`
	Summary    string             `json:"summary"`
	Detail     string             `json:"detail,omitempty"`
	Dimensions []DimensionContent `json:"dimensions,omitempty"`
}

// AIResult carries the response of the remote AI reading service. The storage
// layer treats it as opaque beyond these fields.
type AIResult struct {
	Question string         `json:"question"`
	Summary  string         `json:"summary"`
	Model    string         `json:"model,omitempty"`
	Cards    []AICardResult `json:"cards"`
}

// AICardResult is the per-card analysis text from the AI service.
type AICardResult struct {
	CardID    int64  `json:"card_id"`
	Direction string `json:"direction"`
	Analysis  string `json:"analysis"`
}

// Validate checks the tagged-union invariants.
func (r ReadingResult) Validate() error {
	if r.SchemaVersion != ResultSchemaVersion {
		return fmt.Errorf("unsupported result schema version %d (want %d)", r.SchemaVersion, ResultSchemaVersion)
	}
	switch r.Mode {
	case ModeDefault:
		if r.Default == nil || r.AI != nil {
			return errors.New("mode=default requires the default arm and no ai arm")
		}
		if len(r.Default.Cards) == 0 {
			return errors.New("default result has no cards")
		}
	case ModeAI:
		if r.AI == nil || r.Default != nil {
			return errors.New("mode=ai requires the ai arm and no default arm")
		}
		if len(r.AI.Cards) == 0 {
			return errors.New("ai result has no cards")
		}
	default:
		return fmt.Errorf("unknown interpretation mode %q", r.Mode)
	}
	return nil
}

// EncodeResult serializes a validated reading result for storage.
func EncodeResult(r ReadingResult) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("encode reading result: %w", err)
	}
	return json.Marshal(r)
}

// DecodeResult parses and validates a stored reading result. Unknown fields
// are rejected so that silent shape drift surfaces as an error.
func DecodeResult(data []byte) (ReadingResult, error) {
	var r ReadingResult
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&r); err != nil {
		return ReadingResult{}, fmt.Errorf("decode reading result: %w", err)
	}
	if err := r.Validate(); err != nil {
		return ReadingResult{}, fmt.Errorf("decode reading result: %w", err)
	}
	return r, nil
}
