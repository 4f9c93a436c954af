/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"os"
	"path/filepath"
	"testing"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

// The encoded result envelope must conform to the published JSON schema; the
// schema is the contract other app components decode against.
func TestEncodedResultConformsToSchema(t *testing.T) {
	schemaPath := filepath.Join("..", "..", "docs", "reading_result.schema.json")
	schemaBytes, err := os.ReadFile(schemaPath)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)

	docs := map[string]ReadingResult{
		"default": {
			SchemaVersion: ResultSchemaVersion,
			Mode:          ModeDefault,
			Default: &DefaultResult{
				Cards: []CardResult{
					{
						CardID:    1,
						Name:      "The Fool",
						Direction: DirectionUpright,
						Summary:   "new beginnings",
						Detail:    "a longer text",
						Dimensions: []DimensionContent{
							{DimensionID: 1, Name: "love", Category: "relationship", AspectType: "general", Content: "an open heart"},
						},
					},
				},
			},
		},
		"ai": {
			SchemaVersion: ResultSchemaVersion,
			Mode:          ModeAI,
			AI: &AIResult{
				Question: "What should I focus on?",
				Summary:  "a fresh chapter",
				Model:    "reader-1",
				Cards: []AICardResult{
					{CardID: 1, Direction: DirectionReversed, Analysis: "hesitation holds you back"},
				},
			},
		},
	}

	for name, r := range docs {
		t.Run(name, func(t *testing.T) {
			data, err := EncodeResult(r)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
			if err != nil {
				t.Fatalf("schema validate error: %v", err)
			}
			if !result.Valid() {
				for _, e := range result.Errors() {
					t.Logf("schema error: %s", e)
				}
				t.Fatalf("encoded result does not conform to schema")
			}
		})
	}
}

func TestSchemaRejectsMixedArms(t *testing.T) {
	schemaPath := filepath.Join("..", "..", "docs", "reading_result.schema.json")
	schemaBytes, err := os.ReadFile(schemaPath)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	bad := []byte(`{
		"schema_version": 1,
		"mode": "default",
		"default": {"cards": [{"card_id": 1, "name": "x", "direction": "upright", "summary": "s"}]},
		"ai": {"question": "q", "summary": "s", "cards": [{"card_id": 1, "direction": "upright", "analysis": "a"}]}
	}`)
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaBytes), gojsonschema.NewBytesLoader(bad))
	if err != nil {
		t.Fatalf("schema validate error: %v", err)
	}
	if result.Valid() {
		t.Fatal("schema accepted a document with both arms set")
	}
}
