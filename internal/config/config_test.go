/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestDefaultsAreValid(t *testing.T) {
	if err := Validate(Defaults()); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
}

func TestValidateRejectsSameFileNames(t *testing.T) {
	cfg := Defaults()
	cfg.Database.UserName = cfg.Database.ConfigName
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected validation error for identical config/user file names")
	}
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := Defaults()
	cfg.Logging.Level = "verbose"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected validation error for bad log level")
	}
}

func TestMergeIntoKeepsDefaultsForEmptyFields(t *testing.T) {
	dst := Defaults()
	src := AppConfig{Locale: LocaleConfig{Default: "en"}}
	mergeInto(&dst, &src)
	if dst.Locale.Default != "en" {
		t.Fatalf("locale not merged: %q", dst.Locale.Default)
	}
	if dst.Database.ConfigName != Defaults().Database.ConfigName {
		t.Fatalf("empty src field must not clobber default")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvDataDir, "/tmp/tarot-data")
	t.Setenv(EnvDefaultLocale, "ja-JP")
	t.Setenv(EnvLogLevel, "DEBUG")
	cfg := Defaults()
	applyEnvOverrides(&cfg)
	if cfg.Database.Dir != "/tmp/tarot-data" {
		t.Fatalf("data dir override ignored: %q", cfg.Database.Dir)
	}
	if cfg.Locale.Default != "ja-JP" {
		t.Fatalf("locale override ignored: %q", cfg.Locale.Default)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level override not lowercased: %q", cfg.Logging.Level)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	cfg := Defaults()
	cfg.Database.Dir = "/data/tarot"
	cfg.Locale.Default = "zh-CN"
	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back AppConfig
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(cfg, back); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDBPaths(t *testing.T) {
	d := DatabaseConfig{Dir: "/data", ConfigName: "c.db", UserName: "u.db"}
	if got := d.ConfigDBPath(); got != filepath.Join("/data", "c.db") {
		t.Fatalf("config path: %q", got)
	}
	if got := d.UserDBPath(); got != filepath.Join("/data", "u.db") {
		t.Fatalf("user path: %q", got)
	}
}
