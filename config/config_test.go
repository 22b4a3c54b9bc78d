package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yaklabco/solo/pkg/singleton"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(&LoadOptions{
		SkipUserConfig:    true,
		SkipProjectConfig: true,
		SkipEnv:           true,
	})
	require.NoError(t, err)

	require.Equal(t, DefaultThreadSafe, cfg.ThreadSafe)
	require.Equal(t, DefaultLockAfterInit, cfg.LockAfterInit)
	require.Equal(t, DefaultViolationMode, cfg.ViolationMode)
	require.Equal(t, DefaultVerbose, cfg.Verbose)
	require.Equal(t, DefaultDebug, cfg.Debug)
	require.Equal(t, DefaultEnableColor, cfg.EnableColor)
	require.Empty(t, cfg.ConfigFile())
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv(EnvThreadSafe, "false")
	t.Setenv(EnvDebug, "1")
	t.Setenv(EnvViolationMode, "LOG")

	cfg, err := Load(&LoadOptions{
		SkipUserConfig:    true,
		SkipProjectConfig: true,
	})
	require.NoError(t, err)

	require.False(t, cfg.ThreadSafe)
	require.True(t, cfg.Debug)
	require.Equal(t, ViolationModeLog, cfg.ViolationMode)
}

func TestLoad_InvalidEnvBoolWarns(t *testing.T) {
	t.Setenv(EnvVerbose, "sometimes")
	stderr := &bytes.Buffer{}

	cfg, err := Load(&LoadOptions{
		SkipUserConfig:    true,
		SkipProjectConfig: true,
		Stderr:            stderr,
	})
	require.NoError(t, err)
	require.False(t, cfg.Verbose)
	require.Contains(t, stderr.String(), "verbose")
}

func TestLoad_ProjectConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ProjectConfigFileName+".yaml")
	configContent := `
thread_safe: false
lock_after_init: true
violation_mode: log
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))

	stderr := &bytes.Buffer{}
	cfg, err := Load(&LoadOptions{
		ProjectDir:     tmpDir,
		SkipUserConfig: true,
		SkipEnv:        true,
		Stderr:         stderr,
	})
	require.NoError(t, err)

	require.False(t, cfg.ThreadSafe)
	require.True(t, cfg.LockAfterInit)
	require.Equal(t, ViolationModeLog, cfg.ViolationMode)
	require.Equal(t, configPath, cfg.ConfigFile())
	require.Contains(t, stderr.String(), "lock_after_init")
}

func TestLoad_InvalidViolationMode(t *testing.T) {
	t.Setenv(EnvViolationMode, "ignore")

	_, err := Load(&LoadOptions{
		SkipUserConfig:    true,
		SkipProjectConfig: true,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "violation_mode")
}

func TestWriteDefaultConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path, err := WriteDefaultConfig()
	require.NoError(t, err)
	require.FileExists(t, path)

	_, err = WriteDefaultConfig()
	require.Error(t, err)

	cfg, err := Load(&LoadOptions{SkipProjectConfig: true, SkipEnv: true})
	require.NoError(t, err)
	require.Equal(t, path, cfg.ConfigFile())
	require.Equal(t, DefaultConfig().ThreadSafe, cfg.ThreadSafe)
}

func TestRegistryOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ThreadSafe = false

	reg := singleton.New(append(cfg.RegistryOptions(nil), singleton.WithGate(&singleton.Gate{}))...)
	require.False(t, reg.ThreadSafe())
}

func TestGlobal_Singleton(t *testing.T) {
	ResetGlobal()
	t.Cleanup(ResetGlobal)

	cfg1 := Global()
	cfg2 := Global()
	require.Same(t, cfg1, cfg2)
}

func TestSetGlobal(t *testing.T) {
	ResetGlobal()
	t.Cleanup(ResetGlobal)

	customCfg := &Config{ViolationMode: ViolationModeLog, Verbose: true}
	SetGlobal(customCfg)
	require.Same(t, customCfg, Global())
}

func TestValidationResults_WriteWarnings(t *testing.T) {
	result := ValidationResults{
		Warnings: []ValidationWarning{
			{Field: "test", Message: "warning 1"},
			{Field: "test2", Message: "warning 2"},
		},
	}

	var buf bytes.Buffer
	result.WriteWarnings(&buf)
	require.Contains(t, buf.String(), "test2: warning 2")
}
