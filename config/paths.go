// Package config provides layered configuration for solo registries and the solo CLI.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the application name used in configuration paths.
const AppName = "solo"

// ConfigFileName is the name of the user configuration file (without extension).
const ConfigFileName = "config"

// ProjectConfigFileName is the name of the project configuration file (without extension).
const ProjectConfigFileName = "solo"

// Paths holds the resolved per-user configuration locations.
type Paths struct {
	ConfigHome string
}

// ResolvePaths returns the configuration base directory for the current
// platform. XDG_CONFIG_HOME wins everywhere it is set.
func ResolvePaths() Paths {
	return Paths{ConfigHome: resolveConfigHome()}
}

// ConfigDir returns the application-specific configuration directory.
func (p Paths) ConfigDir() string {
	return filepath.Join(p.ConfigHome, AppName)
}

// ConfigFilePath returns the full path to the user configuration file.
func (p Paths) ConfigFilePath() string {
	return filepath.Join(p.ConfigDir(), ConfigFileName+".yaml")
}

func resolveConfigHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}

	home := userHomeDir()
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return appData
		}
		return filepath.Join(home, "AppData", "Roaming")
	}

	return filepath.Join(home, ".config")
}

func userHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.TempDir()
}
