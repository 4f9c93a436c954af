/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config holds the user-editable application configuration persisted
// to a YAML file in the user scope. Environment variables are treated as
// read-only overrides at runtime.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DatabaseConfig locates the bundled seed asset and the two on-disk database
// files. ConfigName is replaced wholesale from AssetPath on every
// initialization; UserName is never overwritten by app updates.
type DatabaseConfig struct {
	Dir        string `yaml:"dir" validate:"required"`
	AssetPath  string `yaml:"asset_path" validate:"required"`
	ConfigName string `yaml:"config_name" validate:"required"`
	UserName   string `yaml:"user_name" validate:"required,nefield=ConfigName"`
}

// LocaleConfig carries the application default locale. Base-table columns in
// the config database are authored in this locale.
type LocaleConfig struct {
	Default string `yaml:"default" validate:"required"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	Database      DatabaseConfig `yaml:"database"`
	Locale        LocaleConfig   `yaml:"locale"`
	Logging       LoggingConfig  `yaml:"logging"`
}

// Env var names used as overrides.
const (
	EnvDataDir       = "TAROT_DATA_DIR"
	EnvAssetPath     = "TAROT_ASSET_PATH"
	EnvDefaultLocale = "TAROT_DEFAULT_LOCALE"
	EnvLogLevel      = "TAROT_LOG_LEVEL"
	EnvLogFormat     = "TAROT_LOG_FORMAT"
	EnvLogFile       = "TAROT_LOG_FILE"
)

// Defaults returns the application defaults. The data directory is resolved
// per-OS; the bundled asset is expected next to the executable under assets/.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Database: DatabaseConfig{
			Dir:        defaultDataDir(),
			AssetPath:  filepath.Join("assets", "tarot_config.db"),
			ConfigName: "tarot_config.db",
			UserName:   "tarot_user.db",
		},
		Locale:  LocaleConfig{Default: "en"},
		Logging: LoggingConfig{Level: "info", Format: "console", File: ""},
	}
}

func defaultDataDir() string {
	switch runtime.GOOS {
	case "windows":
		base := os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		return filepath.Join(base, "TarotVault")
	case "darwin":
		return filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "TarotVault")
	default:
		return filepath.Join(os.Getenv("HOME"), ".local", "share", "tarotvault")
	}
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "TarotVault")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "TarotVault")
	default:
		base = filepath.Join(os.Getenv("HOME"), ".config", "tarotvault")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides. The result is validated before being returned.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks structural constraints on the configuration.
func Validate(cfg AppConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if strings.TrimSpace(src.Database.Dir) != "" {
		dst.Database.Dir = src.Database.Dir
	}
	if strings.TrimSpace(src.Database.AssetPath) != "" {
		dst.Database.AssetPath = src.Database.AssetPath
	}
	if strings.TrimSpace(src.Database.ConfigName) != "" {
		dst.Database.ConfigName = src.Database.ConfigName
	}
	if strings.TrimSpace(src.Database.UserName) != "" {
		dst.Database.UserName = src.Database.UserName
	}
	if strings.TrimSpace(src.Locale.Default) != "" {
		dst.Locale.Default = src.Locale.Default
	}
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.Database.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAssetPath)); v != "" {
		cfg.Database.AssetPath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDefaultLocale)); v != "" {
		cfg.Locale.Default = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// ConfigDBPath returns the on-disk location of the copied config database.
func (d DatabaseConfig) ConfigDBPath() string { return filepath.Join(d.Dir, d.ConfigName) }

// UserDBPath returns the on-disk location of the writable user database.
func (d DatabaseConfig) UserDBPath() string { return filepath.Join(d.Dir, d.UserName) }
