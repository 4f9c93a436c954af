/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPlainTextHandlerOutput(t *testing.T) {
	var sb strings.Builder
	h := &plainTextHandler{level: slog.LevelDebug, w: &sb}
	l := slog.New(h).With(slog.String("component", "storage"))
	l.Info("config database ready", slog.String("path", "/tmp/config.db"), slog.Int("cards", 78))
	out := sb.String()
	for _, want := range []string{"INF", "config database ready", "component=storage", "path=/tmp/config.db", "cards=78"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log line %q missing %q", out, want)
		}
	}
}

func TestPlainTextHandlerLevelFilter(t *testing.T) {
	var sb strings.Builder
	h := &plainTextHandler{level: slog.LevelWarn, w: &sb}
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info should be filtered at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("error should pass at warn level")
	}
}

func TestInitAndComponentHelpers(t *testing.T) {
	Init(Options{Level: "debug", Format: "console"})
	l := WithOperation(WithComponent("test"), "unit")
	if l == nil {
		t.Fatalf("expected logger")
	}
	// must not panic
	l.Debug("hello")
}
