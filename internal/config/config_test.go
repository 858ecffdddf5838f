package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/tpfanctl/internal/config"
	"codeberg.org/mutker/tpfanctl/internal/errors"
	"codeberg.org/mutker/tpfanctl/internal/sensors"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tpfanctl.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
control_file = "/tmp/fan"
sensors_command = "/usr/local/bin/sensors"
sensors_chip = "coretemp-isa-0001"
core_offset = 1
sensors_timeout = "2s"
log_level = "debug"
verbosity = "error"
pretty = true
listen = "127.0.0.1:9000"
`)

	// Set environment variable to point to the test config file
	t.Setenv("TPFANCTL_CONFIG", path)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/fan", cfg.ControlFile)
	assert.Equal(t, "/usr/local/bin/sensors", cfg.SensorsCommand)
	assert.Equal(t, "coretemp-isa-0001", cfg.SensorsChip)
	assert.Equal(t, 1, cfg.CoreOffset)
	assert.Equal(t, 2*time.Second, cfg.SensorsTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "error", cfg.Verbosity)
	assert.True(t, cfg.Pretty)
	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
	assert.Equal(t, "Core ", cfg.CorePrefix, "unset keys keep their defaults")
}

func TestLoadDefaults(t *testing.T) {
	// Ensure no config file is used
	t.Setenv("TPFANCTL_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, "/proc/acpi/ibm/fan", cfg.ControlFile)
	assert.Equal(t, config.DefaultSensorsCommand, cfg.SensorsCommand)
	assert.Equal(t, sensors.DefaultChip, cfg.SensorsChip)
	assert.Equal(t, sensors.DefaultCoreOffset, cfg.CoreOffset)
	assert.Equal(t, config.DefaultSensorsTimeout, cfg.SensorsTimeout)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, config.DefaultVerbosity, cfg.Verbosity)
	assert.False(t, cfg.Pretty)
	assert.Equal(t, filepath.Join(os.TempDir(), "tpfanctl.pid"), cfg.PIDFile)
	assert.Equal(t, sensors.DefaultSchema(), cfg.SensorsConfig().Schema)
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	path := writeConfig(t, `
This is not a valid TOML file
`)
	t.Setenv("TPFANCTL_CONFIG", path)

	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := config.Load(config.WithConfigFile(filepath.Join(t.TempDir(), "absent.toml")))
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestInvalidLogLevel(t *testing.T) {
	t.Setenv("TPFANCTL_CONFIG", writeConfig(t, `log_level = "invalid"`))

	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidLogLevel))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad verbosity", `verbosity = "chatty"`},
		{"empty control file", `control_file = ""`},
		{"negative offset", `core_offset = -1`},
		{"zero timeout", `sensors_timeout = "0s"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TPFANCTL_CONFIG", writeConfig(t, tt.content))

			_, err := config.Load()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrInvalidConfig))
		})
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("TPFANCTL_CONFIG", writeConfig(t, `control_file = "/from/file"`))
	t.Setenv("TPFANCTL_CONTROL_FILE", "/from/env")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.ControlFile)
}

func TestLogLevelFlag(t *testing.T) {
	t.Setenv("TPFANCTL_CONFIG", writeConfig(t, `
log_level = "error"
control_file = "/from/file"
`))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("log-level", "warning", "")
	fs.String("control-file", "/proc/acpi/ibm/fan", "")
	require.NoError(t, fs.Parse([]string{"--log-level", "debug"}))

	cfg, err := config.Load(config.WithFlags(fs))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel to be set by flag")
	assert.Equal(t, "/from/file", cfg.ControlFile, "unset flags must not override the file")
}

func TestVerbosityAllows(t *testing.T) {
	assert.True(t, config.VerbosityInfo.Allows(config.VerbosityInfo))
	assert.True(t, config.VerbosityInfo.Allows(config.VerbosityError))
	assert.False(t, config.VerbosityError.Allows(config.VerbosityInfo))
	assert.True(t, config.VerbosityError.Allows(config.VerbosityError))
	assert.False(t, config.VerbosityQuiet.Allows(config.VerbosityError))
}
