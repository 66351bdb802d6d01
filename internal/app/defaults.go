package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - RECDOCS_CONFIG_PATH: config file location (default: ~/.config/recdocs.toml)
//   - RECDOCS_HOME: base directory for recdocs data (default: ~/.local/share/recdocs)
//   - RECDOCS_RECORD: owning record used when no owner flag is given (default: none)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
		"record":      os.Getenv("RECDOCS_RECORD"),
	}, nil
}

// getConfigPath returns the config file path, checking RECDOCS_CONFIG_PATH env var first,
// then falling back to the default ~/.config/recdocs.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("RECDOCS_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "recdocs.toml"), nil
}

// getBaseDir returns the base directory for recdocs data, checking RECDOCS_HOME env var first,
// then falling back to the XDG default ~/.local/share/recdocs.
func getBaseDir() (string, error) {
	if path := os.Getenv("RECDOCS_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "recdocs"), nil
}
