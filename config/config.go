package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"github.com/yaklabco/solo/pkg/env"
	"github.com/yaklabco/solo/pkg/singleton"
)

// Config holds all solo configuration values.
type Config struct {
	// ThreadSafe guards first construction of each instance with a mutex.
	ThreadSafe bool `mapstructure:"thread_safe"`

	// LockAfterInit locks the gate once startup registrations are done.
	LockAfterInit bool `mapstructure:"lock_after_init"`

	// ViolationMode is "panic" to fail fast or "log" to warn and continue.
	ViolationMode string `mapstructure:"violation_mode"`

	// Verbose enables verbose output.
	Verbose bool `mapstructure:"verbose"`

	// Debug enables debug messages.
	Debug bool `mapstructure:"debug"`

	// EnableColor enables colored output in terminal.
	EnableColor bool `mapstructure:"enable_color"`

	// configFile is the path to the config file that was loaded (if any).
	configFile string
}

// ConfigFile returns the path to the configuration file that was loaded,
// or an empty string if no file was loaded.
func (c *Config) ConfigFile() string {
	return c.configFile
}

// RegistryOptions translates the configuration into singleton registry options.
func (c *Config) RegistryOptions(logger *slog.Logger) []singleton.Option {
	handler := singleton.PanicOnViolation
	if strings.EqualFold(c.ViolationMode, ViolationModeLog) {
		handler = singleton.LogOnViolation(logger)
	}

	return []singleton.Option{
		singleton.WithThreadSafe(c.ThreadSafe),
		singleton.WithLogger(logger),
		singleton.WithViolationHandler(handler),
	}
}

// globalHolder carries the lazily loaded global configuration. The holder
// itself is a singleton in a registry private to this package.
type globalHolder struct {
	mu     sync.RWMutex
	cfg    *Config
	loaded bool
}

//nolint:gochecknoglobals // singleton pattern requires package-level state
var globalRegistry = singleton.New(singleton.WithName("config"), singleton.WithGate(&singleton.Gate{}))

// Global returns the global configuration. It loads the configuration on
// first access and falls back to defaults if loading fails.
func Global() *Config {
	holder := singleton.ConstIn[globalHolder](globalRegistry)
	holder.mu.RLock()
	if holder.loaded {
		cfg := holder.cfg
		holder.mu.RUnlock()
		return cfg
	}
	holder.mu.RUnlock()

	holder = singleton.MutableIn[globalHolder](globalRegistry)
	holder.mu.Lock()
	defer holder.mu.Unlock()

	// Double-check after acquiring write lock
	if holder.loaded {
		return holder.cfg
	}

	cfg, err := Load(nil)
	if err != nil {
		cfg = DefaultConfig()
	}
	holder.cfg = cfg
	holder.loaded = true
	return holder.cfg
}

// SetGlobal sets the global configuration.
// This is primarily useful for testing.
func SetGlobal(cfg *Config) {
	holder := singleton.MutableIn[globalHolder](globalRegistry)
	holder.mu.Lock()
	defer holder.mu.Unlock()
	holder.cfg = cfg
	holder.loaded = true
}

// ResetGlobal resets the global configuration to be reloaded on next access.
// This is primarily useful for testing.
func ResetGlobal() {
	holder := singleton.MutableIn[globalHolder](globalRegistry)
	holder.mu.Lock()
	defer holder.mu.Unlock()
	holder.cfg = nil
	holder.loaded = false
}

// LoadOptions configures how configuration is loaded.
type LoadOptions struct {
	// ProjectDir is the directory to search for project-level config.
	// If empty, the current working directory is used.
	ProjectDir string

	// Stderr is where warnings are written.
	// If nil, os.Stderr is used.
	Stderr io.Writer

	// SkipProjectConfig skips loading project-level configuration.
	SkipProjectConfig bool

	// SkipUserConfig skips loading user-level configuration.
	SkipUserConfig bool

	// SkipEnv skips reading environment variables.
	SkipEnv bool
}

// Load reads configuration from all sources and returns a Config struct.
// Configuration is loaded in the following order (later sources override earlier):
//  1. Defaults
//  2. User config file (~/.config/solo/config.yaml)
//  3. Project config file (./solo.yaml)
//  4. Environment variables (SOLO_*)
//
// If opts is nil, default options are used.
func Load(opts *LoadOptions) (*Config, error) {
	if opts == nil {
		opts = &LoadOptions{}
	}

	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	viperInstance := viper.New()
	setDefaults(viperInstance)
	viperInstance.SetConfigType("yaml")

	var configFileUsed string

	if !opts.SkipUserConfig {
		paths := ResolvePaths()
		viperInstance.SetConfigName(ConfigFileName)
		viperInstance.AddConfigPath(paths.ConfigDir())

		if err := viperInstance.ReadInConfig(); err != nil {
			var configFileNotFoundError viper.ConfigFileNotFoundError
			if !errors.As(err, &configFileNotFoundError) {
				return nil, fmt.Errorf("failed to read user config file: %w", err)
			}
		} else {
			configFileUsed = viperInstance.ConfigFileUsed()
		}
	}

	if !opts.SkipProjectConfig {
		projectDir := opts.ProjectDir
		if projectDir == "" {
			var err error
			projectDir, err = os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		projectConfigPath := filepath.Join(projectDir, ProjectConfigFileName+".yaml")
		if _, err := os.Stat(projectConfigPath); err == nil {
			viperInstance.SetConfigFile(projectConfigPath)
			if err := viperInstance.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read project config file: %w", err)
			}
			configFileUsed = projectConfigPath
		}
	}

	var cfg Config
	if err := viperInstance.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	var envWarnings []ValidationWarning
	if !opts.SkipEnv {
		envWarnings = applyEnvironmentOverrides(&cfg)
	}

	cfg.configFile = configFileUsed
	cfg.ViolationMode = strings.ToLower(cfg.ViolationMode)

	result := cfg.Validate()
	result.Warnings = append(envWarnings, result.Warnings...)
	if result.HasWarnings() {
		result.WriteWarnings(opts.Stderr)
	}
	if result.HasErrors() {
		return nil, errors.New(result.ErrorMessage())
	}

	return &cfg, nil
}

// Environment variables read by Load.
const (
	EnvThreadSafe    = env.Prefix + "THREAD_SAFE"
	EnvLockAfterInit = env.Prefix + "LOCK_AFTER_INIT"
	EnvViolationMode = env.Prefix + "VIOLATION_MODE"
	EnvVerbose       = env.Prefix + "VERBOSE"
	EnvDebug         = env.Prefix + "DEBUG"
	EnvEnableColor   = env.Prefix + "ENABLE_COLOR"
)

// applyEnvironmentOverrides applies environment variable overrides to the
// config. Unparseable booleans leave the value alone and produce a warning.
func applyEnvironmentOverrides(cfg *Config) []ValidationWarning {
	var warnings []ValidationWarning

	boolVars := []struct {
		name  string
		field string
		dst   *bool
	}{
		{EnvThreadSafe, "thread_safe", &cfg.ThreadSafe},
		{EnvLockAfterInit, "lock_after_init", &cfg.LockAfterInit},
		{EnvVerbose, "verbose", &cfg.Verbose},
		{EnvDebug, "debug", &cfg.Debug},
		{EnvEnableColor, "enable_color", &cfg.EnableColor},
	}
	for _, bv := range boolVars {
		value, ok, err := env.LookupBool(bv.name)
		if err != nil {
			warnings = append(warnings, ValidationWarning{Field: bv.field, Message: err.Error()})
			continue
		}
		if ok {
			*bv.dst = value
		}
	}

	if v := os.Getenv(EnvViolationMode); v != "" {
		cfg.ViolationMode = v
	}

	return warnings
}

// DefaultConfig returns a Config with all default values.
func DefaultConfig() *Config {
	return &Config{
		ThreadSafe:    DefaultThreadSafe,
		LockAfterInit: DefaultLockAfterInit,
		ViolationMode: DefaultViolationMode,
		Verbose:       DefaultVerbose,
		Debug:         DefaultDebug,
		EnableColor:   DefaultEnableColor,
	}
}

// WriteDefaultConfig writes a default configuration file to the user's config directory.
func WriteDefaultConfig() (string, error) {
	paths := ResolvePaths()

	if err := os.MkdirAll(paths.ConfigDir(), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := paths.ConfigFilePath()
	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfigYAML()), 0o600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return configPath, nil
}

func defaultConfigYAML() string {
	return `# solo configuration

# Guard first construction of each singleton with a mutex.
# Turn off only when every access happens on one goroutine.
thread_safe: true

# Lock the gate once startup registrations are done, so later
# mutable access is reported.
lock_after_init: false

# What to do on a detected violation: panic or log.
violation_mode: panic

# Enable verbose output.
verbose: false

# Enable debug messages.
debug: false

# Enable colored output in terminal.
enable_color: true
`
}
