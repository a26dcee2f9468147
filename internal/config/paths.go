// Package config locates, loads and validates dbc configuration and builds
// the logger it describes.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// File and directory names.
const (
	AppDirName     = "dbc"
	ConfigFileName = "config.yaml"
)

// EnvConfigFile overrides the config file location.
const EnvConfigFile = "DBC_CONFIG"

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/dbc (fallback ~/.config/dbc)
// macOS:   ~/Library/Application Support/dbc
// Windows: %APPDATA%/dbc
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, AppDirName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", AppDirName), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppDirName), nil
	}
}

// ResolveConfigFile returns the config file path following the precedence
// chain: flag > DBC_CONFIG env > DefaultConfigDir()/config.yaml.
//
// explicit reports whether the path came from the flag or the environment;
// a missing explicit file is an error, a missing default file is not.
func ResolveConfigFile(flag string) (path string, explicit bool, err error) {
	if flag != "" {
		path, err = filepath.Abs(flag)
		return path, true, err
	}
	if env := os.Getenv(EnvConfigFile); env != "" {
		path, err = filepath.Abs(env)
		return path, true, err
	}
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", false, err
	}
	return filepath.Join(dir, ConfigFileName), false, nil
}
