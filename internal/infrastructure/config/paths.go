package config

import (
	"os"
	"path/filepath"
)

const (
	appName      = "profilecache"
	databaseName = "profiles.db"
	dirPerm      = 0o755
	filePerm     = 0o644
)

// GetConfigDir returns $XDG_CONFIG_HOME/profilecache (default ~/.config/profilecache).
func GetConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appName), nil
}

// GetDataDir returns $XDG_DATA_HOME/profilecache (default ~/.local/share/profilecache).
func GetDataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, appName), nil
}

// GetDatabaseFile returns the default sqlite database path.
func GetDatabaseFile() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, databaseName), nil
}
