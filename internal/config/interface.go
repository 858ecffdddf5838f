package config

// Option defines a configuration option that can be passed to Load
type Option func(*options) error

// options holds internal configuration options
type options struct {
	configPath string
	envPrefix  string
	flags      flagSet
}

// WithConfigFile specifies an explicit configuration file path
func WithConfigFile(path string) Option {
	return func(o *options) error {
		o.configPath = path
		return nil
	}
}

// WithEnvPrefix specifies a custom environment variable prefix
// Default is "TPFANCTL"
func WithEnvPrefix(prefix string) Option {
	return func(o *options) error {
		o.envPrefix = prefix
		return nil
	}
}

// LogLevel represents valid logging levels
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// IsValid returns whether the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
		return true
	default:
		return false
	}
}

// String implements the Stringer interface
func (l LogLevel) String() string {
	return string(l)
}

// Verbosity controls how much the command line front end prints
type Verbosity string

const (
	// VerbosityInfo prints results, informational messages and errors
	VerbosityInfo Verbosity = "info"
	// VerbosityError prints results and errors only
	VerbosityError Verbosity = "error"
	// VerbosityQuiet prints results only
	VerbosityQuiet Verbosity = "quiet"
)

// IsValid returns whether the verbosity is valid
func (v Verbosity) IsValid() bool {
	switch v {
	case VerbosityInfo, VerbosityError, VerbosityQuiet:
		return true
	default:
		return false
	}
}

// Allows reports whether messages at level other are printed
func (v Verbosity) Allows(other Verbosity) bool {
	return v.rank() >= other.rank()
}

func (v Verbosity) rank() int {
	switch v {
	case VerbosityInfo:
		return 2
	case VerbosityError:
		return 1
	default:
		return 0
	}
}
