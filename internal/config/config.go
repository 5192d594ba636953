// Package config loads mesalog's runtime configuration.
//
// Settings come from three layers, later wins: built-in defaults, an
// optional TOML file, and MESALOG_* environment variables. A .env file in
// the working directory is loaded first so env overrides can live there.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds everything the application needs at startup.
type Config struct {
	DataDir            string // SQLite database and backup files live here.
	RestaurantName     string // Printed on tickets and reports.
	Currency           string // Currency symbol for rendered amounts.
	BackupReminderDays int    // Warn when the last export is at least this old. 0 disables.
}

const (
	defaultConfigPath   = "~/.config/mesalog/config.toml"
	defaultDataDir      = "~/.local/share/mesalog"
	defaultRestaurant   = "Mesalog"
	defaultCurrency     = "$"
	defaultReminderDays = 7
)

// DatabasePath is the SQLite file inside the data directory.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "mesalog.db")
}

// BackupDir is the flat backup store directory inside the data directory.
func (c Config) BackupDir() string {
	return filepath.Join(c.DataDir, "backup")
}

// Load builds the configuration. path selects the TOML file; empty means
// the default location. A missing file is not an error.
func Load(path string) (Config, error) {
	// Populate the environment from a local .env if one exists.
	godotenv.Load()

	cfg := Config{
		DataDir:            defaultDataDir,
		RestaurantName:     defaultRestaurant,
		Currency:           defaultCurrency,
		BackupReminderDays: defaultReminderDays,
	}

	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		var raw struct {
			DataDir            string `toml:"data_dir"`
			RestaurantName     string `toml:"restaurant_name"`
			Currency           string `toml:"currency"`
			BackupReminderDays *int   `toml:"backup_reminder_days"`
		}
		if err := toml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		if strings.TrimSpace(raw.DataDir) != "" {
			cfg.DataDir = raw.DataDir
		}
		if strings.TrimSpace(raw.RestaurantName) != "" {
			cfg.RestaurantName = raw.RestaurantName
		}
		if strings.TrimSpace(raw.Currency) != "" {
			cfg.Currency = raw.Currency
		}
		if raw.BackupReminderDays != nil {
			cfg.BackupReminderDays = *raw.BackupReminderDays
		}
	}

	applyEnv(&cfg)

	cfg.DataDir = mustExpand(cfg.DataDir)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("MESALOG_DATA"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("MESALOG_NAME"); v != "" {
		cfg.RestaurantName = v
	}
	if v := os.Getenv("MESALOG_CURRENCY"); v != "" {
		cfg.Currency = v
	}
	if v := os.Getenv("MESALOG_REMINDER_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.BackupReminderDays = days
		}
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
