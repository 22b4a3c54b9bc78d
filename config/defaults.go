package config

import "github.com/spf13/viper"

// Violation modes.
const (
	ViolationModePanic = "panic"
	ViolationModeLog   = "log"
)

// Default configuration values.
const (
	// DefaultThreadSafe guards first construction with a mutex.
	DefaultThreadSafe = true

	// DefaultLockAfterInit is the default for locking the gate once startup registrations are done.
	DefaultLockAfterInit = false

	// DefaultViolationMode is the default reaction to a detected violation.
	DefaultViolationMode = ViolationModePanic

	// DefaultVerbose is the default verbose setting.
	DefaultVerbose = false

	// DefaultDebug is the default debug setting.
	DefaultDebug = false

	// DefaultEnableColor is the default color output setting.
	DefaultEnableColor = true
)

// setDefaults configures default values in the viper instance.
func setDefaults(viperInstance *viper.Viper) {
	viperInstance.SetDefault("thread_safe", DefaultThreadSafe)
	viperInstance.SetDefault("lock_after_init", DefaultLockAfterInit)
	viperInstance.SetDefault("violation_mode", DefaultViolationMode)
	viperInstance.SetDefault("verbose", DefaultVerbose)
	viperInstance.SetDefault("debug", DefaultDebug)
	viperInstance.SetDefault("enable_color", DefaultEnableColor)
}
