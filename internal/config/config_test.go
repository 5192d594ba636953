package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RestaurantName != "Mesalog" {
		t.Errorf("RestaurantName = %q, want Mesalog", cfg.RestaurantName)
	}
	if cfg.Currency != "$" {
		t.Errorf("Currency = %q, want $", cfg.Currency)
	}
	if cfg.BackupReminderDays != 7 {
		t.Errorf("BackupReminderDays = %d, want 7", cfg.BackupReminderDays)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
data_dir = "` + dir + `"
restaurant_name = "La Esquina"
currency = "€"
backup_reminder_days = 3
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RestaurantName != "La Esquina" {
		t.Errorf("RestaurantName = %q", cfg.RestaurantName)
	}
	if cfg.Currency != "€" {
		t.Errorf("Currency = %q", cfg.Currency)
	}
	if cfg.BackupReminderDays != 3 {
		t.Errorf("BackupReminderDays = %d", cfg.BackupReminderDays)
	}
	if cfg.DataDir != dir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, dir)
	}
}

func TestLoadRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not = [valid"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MESALOG_DATA", dir)
	t.Setenv("MESALOG_NAME", "Casa Pepe")
	t.Setenv("MESALOG_CURRENCY", "MXN")
	t.Setenv("MESALOG_REMINDER_DAYS", "14")

	cfg, err := Load(filepath.Join(dir, "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != dir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, dir)
	}
	if cfg.RestaurantName != "Casa Pepe" {
		t.Errorf("RestaurantName = %q", cfg.RestaurantName)
	}
	if cfg.BackupReminderDays != 14 {
		t.Errorf("BackupReminderDays = %d, want 14", cfg.BackupReminderDays)
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := Config{DataDir: "/tmp/mesalog"}
	if got := cfg.DatabasePath(); got != "/tmp/mesalog/mesalog.db" {
		t.Errorf("DatabasePath = %q", got)
	}
	if got := cfg.BackupDir(); got != "/tmp/mesalog/backup" {
		t.Errorf("BackupDir = %q", got)
	}
}
