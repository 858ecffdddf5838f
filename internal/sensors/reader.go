package sensors

import (
	"context"
	"io/fs"
	"os/exec"
	"time"

	"codeberg.org/mutker/tpfanctl/internal/errors"
	"codeberg.org/mutker/tpfanctl/internal/logger"
)

const (
	defaultCommand = "sensors"
	defaultTimeout = 5 * time.Second
)

var defaultArgs = []string{"-j"}

// Config holds configuration for the sensors invocation.
type Config struct {
	Command string
	Args    []string
	Schema  Schema
	Timeout time.Duration
}

func normalizeConfig(cfg Config) Config {
	normalized := cfg

	if normalized.Command == "" {
		normalized.Command = defaultCommand
	}

	if len(normalized.Args) == 0 {
		normalized.Args = append([]string{}, defaultArgs...)
	} else {
		normalized.Args = append([]string{}, normalized.Args...)
	}

	if normalized.Timeout <= 0 {
		normalized.Timeout = defaultTimeout
	}

	normalized.Schema = normalized.Schema.withDefaults()

	return normalized
}

// CommandRunner runs name with args and returns its standard output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Option configures a Reader
type Option func(*Reader)

// WithRunner replaces the subprocess runner
func WithRunner(run CommandRunner) Option {
	return func(r *Reader) {
		r.run = run
	}
}

// WithLogger sets the logger used for diagnostics
func WithLogger(log logger.Logger) Option {
	return func(r *Reader) {
		r.logger = log
	}
}

// Reader queries lm_sensors and parses its output. Every call spawns a
// fresh process.
type Reader struct {
	cfg    Config
	parser *Parser
	run    CommandRunner
	logger logger.Logger
}

// NewReader creates a reader using the provided configuration, filling in defaults as required.
func NewReader(cfg Config, opts ...Option) *Reader {
	normalized := normalizeConfig(cfg)

	r := &Reader{
		cfg:    normalized,
		parser: NewParser(normalized.Schema),
		run:    execRunner,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Config returns the normalized configuration
func (r *Reader) Config() Config {
	return r.cfg
}

// Query runs the sensors command and returns its raw JSON output.
func (r *Reader) Query(ctx context.Context) ([]byte, error) {
	errFactory := errors.New()

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	out, err := r.run(ctx, r.cfg.Command, r.cfg.Args...)
	if err == nil {
		return out, nil
	}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return nil, errFactory.WithHelp(errors.ErrFileNotFound, "Do you have lm_sensors installed?", "Could not access sensors command")
	case ctx.Err() != nil:
		return nil, errFactory.WithDescription(errors.ErrGeneric, r.cfg.Command+" did not finish within "+r.cfg.Timeout.String())
	case errors.As(err, &exitErr) && len(out) > 0:
		r.logger.Debug().Int("exit_code", exitErr.ExitCode()).Msg("sensors exited with an error, parsing its output anyway")
		return out, nil
	default:
		return nil, errFactory.Wrap(errors.ErrGeneric, err)
	}
}

// Temperatures returns every core's readings and the average.
func (r *Reader) Temperatures(ctx context.Context) (Temperatures, error) {
	out, err := r.Query(ctx)
	if err != nil {
		return Temperatures{}, err
	}

	temps, err := r.parser.Temperatures(out)
	if err != nil {
		return Temperatures{}, err
	}
	r.logger.Debug().Uint8("avg", temps.Avg).Int("cores", len(temps.Cores)).Msg("Temperatures read")

	return temps, nil
}

// CoreTemperature returns a single core's readings.
func (r *Reader) CoreTemperature(ctx context.Context, id uint8) (CoreTemperature, error) {
	out, err := r.Query(ctx)
	if err != nil {
		return CoreTemperature{}, err
	}

	return r.parser.CoreTemperature(out, id)
}

// Cores returns the indices of the cores lm_sensors reports.
func (r *Reader) Cores(ctx context.Context) ([]uint8, error) {
	out, err := r.Query(ctx)
	if err != nil {
		return nil, err
	}

	return r.parser.Cores(out)
}
