package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv("RECDOCS_CONFIG_PATH", "/custom/config.toml")
		t.Setenv("RECDOCS_HOME", "/custom/recdocs")
		t.Setenv("RECDOCS_RECORD", "006A000000XyZ")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		if defaults["config_path"] != "/custom/config.toml" {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], "/custom/config.toml")
		}
		if defaults["base_dir"] != "/custom/recdocs" {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], "/custom/recdocs")
		}
		if defaults["record"] != "006A000000XyZ" {
			t.Errorf("record = %q, want %q", defaults["record"], "006A000000XyZ")
		}
		if defaults["log_dir"] != "/custom/recdocs/log" {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], "/custom/recdocs/log")
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv("RECDOCS_CONFIG_PATH", "")
		t.Setenv("RECDOCS_HOME", "")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()

		wantConfig := filepath.Join(homeDir, ".config", "recdocs.toml")
		if defaults["config_path"] != wantConfig {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], wantConfig)
		}

		wantBase := filepath.Join(homeDir, ".local", "share", "recdocs")
		if defaults["base_dir"] != wantBase {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], wantBase)
		}

		wantLog := filepath.Join(wantBase, "log")
		if defaults["log_dir"] != wantLog {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], wantLog)
		}
	})
}
