package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"codeberg.org/mutker/tpfanctl/internal/config"
	"codeberg.org/mutker/tpfanctl/internal/fan"
	"codeberg.org/mutker/tpfanctl/internal/logger"
	"codeberg.org/mutker/tpfanctl/internal/pid"
	"codeberg.org/mutker/tpfanctl/internal/sensors"
)

// Version is the tpfanctl release
const Version = "0.2.0"

// Application renders core results for a terminal. It owns no state between
// calls besides its collaborators and output settings.
type Application struct {
	fan       fan.Controller
	sensors   sensors.TemperatureReader
	out       io.Writer
	errOut    io.Writer
	verbosity config.Verbosity
	pretty    bool
	pidFile   string
	logger    logger.Logger
}

// Option configures an Application
type Option func(*Application)

// WithOutput redirects results and diagnostics
func WithOutput(out, errOut io.Writer) Option {
	return func(a *Application) {
		a.out = out
		a.errOut = errOut
	}
}

// WithFanController replaces the control file backend
func WithFanController(c fan.Controller) Option {
	return func(a *Application) {
		a.fan = c
	}
}

// WithTemperatureReader replaces the sensors backend
func WithTemperatureReader(r sensors.TemperatureReader) Option {
	return func(a *Application) {
		a.sensors = r
	}
}

// New builds an Application from a resolved configuration
func New(cfg *config.Config, opts ...Option) *Application {
	log := logger.Default()
	a := &Application{
		fan:       fan.NewController(cfg.ControlFile, log),
		sensors:   sensors.NewReader(cfg.SensorsConfig(), sensors.WithLogger(log)),
		out:       os.Stdout,
		errOut:    os.Stderr,
		verbosity: config.Verbosity(cfg.Verbosity),
		pretty:    cfg.Pretty,
		pidFile:   cfg.PIDFile,
		logger:    log,
	}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// FanController returns the control file backend
func (a *Application) FanController() fan.Controller {
	return a.fan
}

// TemperatureReader returns the sensors backend
func (a *Application) TemperatureReader() sensors.TemperatureReader {
	return a.sensors
}

// Report prints err with its help text, subject to the verbosity.
func (a *Application) Report(err error) {
	if err == nil || !a.verbosity.Allows(config.VerbosityError) {
		return
	}
	PrintError(a.errOut, err)
}

// Info prints an informational line, subject to the verbosity.
func (a *Application) Info(format string, args ...any) {
	if !a.verbosity.Allows(config.VerbosityInfo) {
		return
	}
	fmt.Fprintf(a.errOut, "%s%s\n", infoPrefix.Sprint("==> INFO: "), fmt.Sprintf(format, args...))
}

// Version prints the release
func (a *Application) Version() {
	a.Info("tpfanctl version %s", cyanBold.Sprint(Version))
}

// Temp prints every core's temperature and the average.
func (a *Application) Temp(ctx context.Context) error {
	temps, err := a.sensors.Temperatures(ctx)
	if err != nil {
		return err
	}

	if !a.pretty {
		fmt.Fprintln(a.out, temps)
		return nil
	}

	fmt.Fprintf(a.out, "%s temperature: %s°C\n", greenBold.Sprint("Average"), tempColor(temps.Avg).Sprint(temps.Avg))
	for _, id := range temps.CoreIDs() {
		core := temps.Cores[id]
		fmt.Fprintf(a.out, "Core %s: %s (%s°C)\n", green.Sprint(id), temperatureBar(core.Temp), tempColor(core.Temp).Sprint(core.Temp))
	}

	return nil
}

// CoreTemp prints a single core's temperature.
func (a *Application) CoreTemp(ctx context.Context, id uint8) error {
	core, err := a.sensors.CoreTemperature(ctx, id)
	if err != nil {
		return err
	}

	if !a.pretty {
		fmt.Fprintln(a.out, core)
		return nil
	}

	fmt.Fprintf(a.out, "Core %s: %s (%s°C, max %d, crit %d)\n", green.Sprint(id), temperatureBar(core.Temp),
		tempColor(core.Temp).Sprint(core.Temp), core.Max, core.Critical)

	return nil
}

// Cores prints the indices of every core, one per line.
func (a *Application) Cores(ctx context.Context) error {
	ids, err := a.sensors.Cores(ctx)
	if err != nil {
		return err
	}

	for _, id := range ids {
		fmt.Fprintln(a.out, id)
	}

	return nil
}

// RPM prints the fan's current RPM.
func (a *Application) RPM() error {
	rpm, err := a.fan.RPM()
	if err != nil {
		return err
	}

	if !a.pretty {
		fmt.Fprintln(a.out, rpm)
		return nil
	}

	fmt.Fprintf(a.out, "Your fan is spinning at %s %s\n", greenBold.Sprint(rpm), bold.Sprint("RPM"))

	return nil
}

// GetFan prints the current speed setting.
func (a *Application) GetFan() error {
	current, err := a.fan.CurrentSpeed()
	if err != nil {
		return err
	}

	if !a.pretty {
		fmt.Fprintln(a.out, current)
		return nil
	}

	fmt.Fprintf(a.out, "Your fan speed setting is %s\n\n", yellowBold.Sprint(current))
	fmt.Fprintln(a.out, levelGauge(current))

	return nil
}

// SetFan writes speed unless it is already the current setting. Only one
// tpfanctl process writes at a time.
func (a *Application) SetFan(speed fan.Speed) error {
	current, err := a.fan.CurrentSpeed()
	if err != nil {
		return err
	}

	if current == speed.String() {
		a.Info("Your current fan speed is already %s!", yellowBold.Sprint(speed))
		return nil
	}

	if err := pid.Write(a.pidFile); err != nil {
		return err
	}
	defer func() {
		if err := pid.Remove(a.pidFile); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	if err := a.fan.SetSpeed(speed); err != nil {
		return err
	}

	a.Info("Your fan speed was set to %s", yellowBold.Sprint(speed))

	return nil
}

// Dash prints temperatures, fan setting and RPM in one view.
func (a *Application) Dash(ctx context.Context) error {
	rule := faint.Sprint("==============================")

	fmt.Fprintln(a.out, rule)
	fmt.Fprintln(a.out, cyanBold.Sprint("DASHBOARD"))
	fmt.Fprintln(a.out, rule)
	if err := a.Temp(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, rule)
	if err := a.GetFan(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, rule)
	if err := a.RPM(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, rule)

	return nil
}

// Watch redraws the dashboard every interval until ctx is cancelled.
func (a *Application) Watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return a.Dash(ctx)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if a.pretty {
			fmt.Fprint(a.out, "\033[H\033[2J")
		}
		if err := a.Dash(ctx); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
