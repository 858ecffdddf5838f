package logger

import (
	"io"
	"os"
	"time"

	"codeberg.org/mutker/tpfanctl/internal/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

var log = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.WarnLevel)

type LogEvent struct {
	*zerolog.Event
}

func (e *LogEvent) Msg(msg string) {
	e.Event.Msg(msg)
}

func (e *LogEvent) Send() {
	e.Event.Send()
}

// Init initializes the logger writing to stderr
func Init(level string, isService bool) error {
	return InitWithWriter(os.Stderr, level, isService)
}

// InitWithWriter initializes the logger on an arbitrary writer. A console
// writer is used when w is a terminal, JSON lines otherwise.
func InitWithWriter(w io.Writer, level string, isService bool) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	var output io.Writer = w
	if isTerminal(w) {
		cw := zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
		if isService {
			cw.FormatTimestamp = func(_ interface{}) string {
				return ""
			}
		}
		output = cw
	}

	ctx := zerolog.New(output).With()
	if !isService {
		ctx = ctx.Timestamp()
	}
	log = ctx.Logger().Level(lvl)

	return nil
}

// ParseLevel maps a configured level name onto a zerolog level
func ParseLevel(level string) (zerolog.Level, error) {
	switch level {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warning", "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, errors.New().WithDescription(errors.ErrInvalidLogLevel, level)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// IsService checks if the application is running as a service
func IsService() bool {
	if _, err := os.Stdin.Stat(); err != nil {
		return true
	}
	if os.Getenv("SERVICE_NAME") != "" || os.Getenv("INVOCATION_ID") != "" {
		return true
	}
	if os.Getppid() == 1 {
		return true
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return false
	}

	return unix.Getpgrp() == unix.Getpid()
}

// Debug logs a debug message
func Debug() *LogEvent {
	return &LogEvent{log.Debug()}
}

// Info logs an info message
func Info() *LogEvent {
	return &LogEvent{log.Info()}
}

// Warn logs a warning message
func Warn() *LogEvent {
	return &LogEvent{log.Warn()}
}

// Error logs an error message
func Error() *LogEvent {
	return &LogEvent{log.Error()}
}

// ErrorWithCode logs an error message with a specific error code
func ErrorWithCode(err errors.Error) *LogEvent {
	return &LogEvent{withCode(log.Error(), err)}
}

// Fatal logs a fatal message and exits the program
func Fatal() *LogEvent {
	return &LogEvent{log.Fatal()}
}

func withCode(ev *zerolog.Event, err errors.Error) *zerolog.Event {
	ev = ev.Str("error_code", string(err.Code()))
	if desc := err.Description(); desc != "" {
		ev = ev.Str("error_description", desc)
	}
	if help := err.Help(); help != "" {
		ev = ev.Str("error_help", help)
	}

	return ev.AnErr("error", err.Unwrap())
}

type packageLogger struct{}

// Default returns a Logger backed by the package-level logger
func Default() Logger {
	return packageLogger{}
}

func (packageLogger) Debug() *LogEvent { return Debug() }
func (packageLogger) Info() *LogEvent  { return Info() }
func (packageLogger) Warn() *LogEvent  { return Warn() }
func (packageLogger) Error() *LogEvent { return Error() }

func (packageLogger) ErrorWithCode(err errors.Error) *LogEvent {
	return ErrorWithCode(err)
}

type zlogger struct {
	l zerolog.Logger
}

// New returns a Logger writing to its own zerolog instance
func New(l zerolog.Logger) Logger {
	return &zlogger{l: l}
}

// Nop returns a Logger that discards everything
func Nop() Logger {
	return &zlogger{l: zerolog.Nop()}
}

func (z *zlogger) Debug() *LogEvent { return &LogEvent{z.l.Debug()} }
func (z *zlogger) Info() *LogEvent  { return &LogEvent{z.l.Info()} }
func (z *zlogger) Warn() *LogEvent  { return &LogEvent{z.l.Warn()} }
func (z *zlogger) Error() *LogEvent { return &LogEvent{z.l.Error()} }

func (z *zlogger) ErrorWithCode(err errors.Error) *LogEvent {
	return &LogEvent{withCode(z.l.Error(), err)}
}
