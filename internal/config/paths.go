package config

import (
	"os"
	"path/filepath"
)

// DefaultConfigDir returns the default proxyman config directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return DefaultConfigDirName
	}
	return filepath.Join(home, DefaultConfigDirName)
}

// DefaultConfigPath returns the default proxyman config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), DefaultConfigFileName)
}

// DefaultSessionDir returns the default session state directory.
func DefaultSessionDir() string {
	return filepath.Join(DefaultConfigDir(), DefaultSessionDirName)
}

// DefaultLogPath returns the default client log file path.
func DefaultLogPath() string {
	return filepath.Join(DefaultConfigDir(), DefaultLogFileName)
}
