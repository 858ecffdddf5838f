package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/tpfanctl/internal/errors"
	"codeberg.org/mutker/tpfanctl/internal/fan"
	"codeberg.org/mutker/tpfanctl/internal/sensors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel       = string(LogLevelWarning)
	DefaultVerbosity      = string(VerbosityInfo)
	DefaultSensorsCommand = "sensors"
	DefaultSensorsTimeout = 5 * time.Second
	DefaultListen         = "127.0.0.1:8414"

	defaultEnvPrefix  = "TPFANCTL"
	defaultConfigName = "tpfanctl"
	defaultConfigDir  = "/etc"
	configEnv         = "TPFANCTL_CONFIG"
	pidFileName       = "tpfanctl.pid"
)

// Config is the fully resolved configuration. It is passed explicitly to
// whatever needs it.
type Config struct {
	ControlFile    string        `mapstructure:"control_file"`
	SensorsCommand string        `mapstructure:"sensors_command"`
	SensorsChip    string        `mapstructure:"sensors_chip"`
	CorePrefix     string        `mapstructure:"core_prefix"`
	CoreOffset     int           `mapstructure:"core_offset"`
	PackageKey     string        `mapstructure:"package_key"`
	PackageField   string        `mapstructure:"package_field"`
	SensorsTimeout time.Duration `mapstructure:"sensors_timeout"`
	LogLevel       string        `mapstructure:"log_level"`
	Verbosity      string        `mapstructure:"verbosity"`
	Pretty         bool          `mapstructure:"pretty"`
	PIDFile        string        `mapstructure:"pid_file"`
	Listen         string        `mapstructure:"listen"`
}

type flagSet = *pflag.FlagSet

// flagKeys maps command line flag names onto configuration keys
var flagKeys = map[string]string{
	"control-file":    "control_file",
	"sensors-command": "sensors_command",
	"sensors-chip":    "sensors_chip",
	"sensors-timeout": "sensors_timeout",
	"log-level":       "log_level",
	"verbosity":       "verbosity",
	"pretty":          "pretty",
	"pid-file":        "pid_file",
	"listen":          "listen",
}

// WithFlags binds the given flag set. Only flags that were set on the
// command line override file and environment values.
func WithFlags(fs *pflag.FlagSet) Option {
	return func(o *options) error {
		o.flags = fs
		return nil
	}
}

func setDefaults(v *viper.Viper) {
	schema := sensors.DefaultSchema()

	v.SetDefault("control_file", fan.DefaultControlFile)
	v.SetDefault("sensors_command", DefaultSensorsCommand)
	v.SetDefault("sensors_chip", schema.Chip)
	v.SetDefault("core_prefix", schema.CorePrefix)
	v.SetDefault("core_offset", schema.CoreOffset)
	v.SetDefault("package_key", schema.PackageKey)
	v.SetDefault("package_field", schema.PackageField)
	v.SetDefault("sensors_timeout", DefaultSensorsTimeout)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("verbosity", DefaultVerbosity)
	v.SetDefault("pretty", false)
	v.SetDefault("pid_file", filepath.Join(os.TempDir(), pidFileName))
	v.SetDefault("listen", DefaultListen)
}

// Load resolves the configuration from defaults, the config file, the
// environment and flags, in increasing order of precedence.
func Load(opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{envPrefix: defaultEnvPrefix}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, o.configPath); err != nil {
		return nil, err
	}

	if o.flags != nil {
		for name, key := range flagKeys {
			f := o.flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errFactory.Wrap(errors.ErrBindFlags, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	errFactory := errors.New()

	if path == "" {
		path = os.Getenv(configEnv)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
		return nil
	}

	v.SetConfigName(defaultConfigName)
	v.SetConfigType("toml")
	v.AddConfigPath(defaultConfigDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	return nil
}

// Validate checks the resolved values
func (c *Config) Validate() error {
	errFactory := errors.New()

	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithDescription(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	switch {
	case !Verbosity(c.Verbosity).IsValid():
		return errFactory.WithDescription(errors.ErrInvalidConfig, "verbosity must be info, error or quiet, got "+c.Verbosity)
	case c.ControlFile == "":
		return errFactory.WithDescription(errors.ErrInvalidConfig, "control_file must not be empty")
	case c.SensorsCommand == "":
		return errFactory.WithDescription(errors.ErrInvalidConfig, "sensors_command must not be empty")
	case c.SensorsChip == "":
		return errFactory.WithDescription(errors.ErrInvalidConfig, "sensors_chip must not be empty")
	case c.CoreOffset < 0:
		return errFactory.WithDescription(errors.ErrInvalidConfig, "core_offset must not be negative")
	case c.SensorsTimeout <= 0:
		return errFactory.WithDescription(errors.ErrInvalidConfig, "sensors_timeout must be positive")
	}

	return nil
}

// SensorsConfig returns the settings for a sensors.Reader
func (c *Config) SensorsConfig() sensors.Config {
	return sensors.Config{
		Command: c.SensorsCommand,
		Timeout: c.SensorsTimeout,
		Schema: sensors.Schema{
			Chip:         c.SensorsChip,
			CorePrefix:   c.CorePrefix,
			CoreOffset:   c.CoreOffset,
			PackageKey:   c.PackageKey,
			PackageField: c.PackageField,
		},
	}
}
