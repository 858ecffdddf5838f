package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"codeberg.org/mutker/tpfanctl/internal/cli"
	"codeberg.org/mutker/tpfanctl/internal/config"
	"codeberg.org/mutker/tpfanctl/internal/errors"
	"codeberg.org/mutker/tpfanctl/internal/fan"
	"codeberg.org/mutker/tpfanctl/internal/sensors"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFan struct {
	current string
	rpm     uint16
	set     []fan.Speed
	err     error
}

func (f *fakeFan) CurrentSpeed() (string, error) { return f.current, f.err }
func (f *fakeFan) RPM() (uint16, error)          { return f.rpm, f.err }
func (f *fakeFan) Path() string                  { return "fake" }

func (f *fakeFan) Status() (fan.Status, error) {
	return fan.Status{State: "enabled", RPM: f.rpm, Level: f.current, Writable: true}, f.err
}

func (f *fakeFan) Capable() (bool, error) { return f.err == nil, f.err }

func (f *fakeFan) SetSpeed(speed fan.Speed) error {
	if f.err != nil {
		return f.err
	}
	f.set = append(f.set, speed)
	f.current = speed.String()
	return nil
}

type fakeSensors struct {
	temps sensors.Temperatures
	err   error
}

func (f *fakeSensors) Temperatures(context.Context) (sensors.Temperatures, error) {
	return f.temps, f.err
}

func (f *fakeSensors) CoreTemperature(_ context.Context, id uint8) (sensors.CoreTemperature, error) {
	if f.err != nil {
		return sensors.CoreTemperature{}, f.err
	}
	core, ok := f.temps.Cores[id]
	if !ok {
		return sensors.CoreTemperature{}, errors.New().WithDescription(errors.ErrInvalidValue,
			"Core "+strconv.Itoa(int(id))+" is not valid!")
	}
	return core, nil
}

func (f *fakeSensors) Cores(context.Context) ([]uint8, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.temps.CoreIDs(), nil
}

type harness struct {
	app     *cli.Application
	fan     *fakeFan
	sensors *fakeSensors
	out     *bytes.Buffer
	errOut  *bytes.Buffer
	pidFile string
}

func newHarness(t *testing.T, verbosity config.Verbosity, pretty bool) *harness {
	t.Helper()
	color.NoColor = true

	h := &harness{
		fan: &fakeFan{current: "auto", rpm: 3200},
		sensors: &fakeSensors{temps: sensors.Temperatures{
			Avg: 58,
			Cores: map[uint8]sensors.CoreTemperature{
				0: {Temp: 57, Max: 100, Critical: 100},
				1: {Temp: 59, Max: 100, Critical: 100},
			},
		}},
		out:     &bytes.Buffer{},
		errOut:  &bytes.Buffer{},
		pidFile: filepath.Join(t.TempDir(), "tpfanctl.pid"),
	}

	cfg := &config.Config{
		Verbosity: string(verbosity),
		Pretty:    pretty,
		PIDFile:   h.pidFile,
	}
	h.app = cli.New(cfg,
		cli.WithOutput(h.out, h.errOut),
		cli.WithFanController(h.fan),
		cli.WithTemperatureReader(h.sensors),
	)

	return h
}

func TestPlainOutput(t *testing.T) {
	ctx := context.Background()

	t.Run("temperatures", func(t *testing.T) {
		h := newHarness(t, config.VerbosityInfo, false)
		require.NoError(t, h.app.Temp(ctx))
		assert.Equal(t, "Average: 58°C\n0: 57°C (max 100, crit 100)\n1: 59°C (max 100, crit 100)\n", h.out.String())
	})

	t.Run("single core", func(t *testing.T) {
		h := newHarness(t, config.VerbosityInfo, false)
		require.NoError(t, h.app.CoreTemp(ctx, 1))
		assert.Equal(t, "59°C (max 100, crit 100)\n", h.out.String())
	})

	t.Run("cores", func(t *testing.T) {
		h := newHarness(t, config.VerbosityInfo, false)
		require.NoError(t, h.app.Cores(ctx))
		assert.Equal(t, "0\n1\n", h.out.String())
	})

	t.Run("rpm", func(t *testing.T) {
		h := newHarness(t, config.VerbosityInfo, false)
		require.NoError(t, h.app.RPM())
		assert.Equal(t, "3200\n", h.out.String())
	})

	t.Run("fan speed", func(t *testing.T) {
		h := newHarness(t, config.VerbosityInfo, false)
		require.NoError(t, h.app.GetFan())
		assert.Equal(t, "auto\n", h.out.String())
	})
}

func TestPrettyOutput(t *testing.T) {
	ctx := context.Background()

	t.Run("temperatures", func(t *testing.T) {
		h := newHarness(t, config.VerbosityInfo, true)
		require.NoError(t, h.app.Temp(ctx))
		assert.Contains(t, h.out.String(), "Average temperature: 58°C")
		assert.Contains(t, h.out.String(), "Core 0: [###########.........] (57°C)")
	})

	t.Run("fan gauge", func(t *testing.T) {
		h := newHarness(t, config.VerbosityInfo, true)
		h.fan.current = "2"
		require.NoError(t, h.app.GetFan())
		assert.Contains(t, h.out.String(), "Your fan speed setting is 2")
		assert.Contains(t, h.out.String(), "[*-*-*-#-*-*-*-*-*-*-*]")
		assert.Contains(t, h.out.String(), " A 0 1 2 3 4 5 6 7 F D ")
	})

	t.Run("dashboard", func(t *testing.T) {
		h := newHarness(t, config.VerbosityInfo, true)
		require.NoError(t, h.app.Dash(ctx))
		out := h.out.String()
		assert.Contains(t, out, "DASHBOARD")
		assert.Contains(t, out, "Average temperature")
		assert.Contains(t, out, "Your fan is spinning at 3200 RPM")
	})
}

func TestSetFan(t *testing.T) {
	t.Run("writes a new speed", func(t *testing.T) {
		h := newHarness(t, config.VerbosityInfo, false)
		require.NoError(t, h.app.SetFan(fan.FullSpeed))

		assert.Equal(t, []fan.Speed{fan.FullSpeed}, h.fan.set)
		assert.Contains(t, h.errOut.String(), "==> INFO: Your fan speed was set to full-speed")
		assert.NoFileExists(t, h.pidFile)
	})

	t.Run("skips the current speed", func(t *testing.T) {
		h := newHarness(t, config.VerbosityInfo, false)
		require.NoError(t, h.app.SetFan(fan.Auto))

		assert.Empty(t, h.fan.set)
		assert.Contains(t, h.errOut.String(), "Your current fan speed is already auto!")
	})

	t.Run("quiet suppresses info", func(t *testing.T) {
		h := newHarness(t, config.VerbosityError, false)
		require.NoError(t, h.app.SetFan(fan.Auto))
		assert.Empty(t, h.errOut.String())
	})

	t.Run("refuses while another writer runs", func(t *testing.T) {
		h := newHarness(t, config.VerbosityInfo, false)
		require.NoError(t, os.WriteFile(h.pidFile, []byte(strconv.Itoa(os.Getppid())), 0o600))

		err := h.app.SetFan(fan.FullSpeed)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrAlreadyRunning))
		assert.Empty(t, h.fan.set)
	})

	t.Run("controller failure", func(t *testing.T) {
		h := newHarness(t, config.VerbosityInfo, false)
		h.fan.err = errors.New().WithHelp(errors.ErrFanControlDisabled,
			"Did you load thinkpad_acpi with fan_control=1?", "Can't control the fan speed")

		err := h.app.SetFan(fan.FullSpeed)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrFanControlDisabled))
	})
}

func TestReport(t *testing.T) {
	err := errors.New().WithHelp(errors.ErrFileNotFound, "Did you load thinkpad_acpi?", "/proc/acpi/ibm/fan not found")

	t.Run("prints error and help", func(t *testing.T) {
		h := newHarness(t, config.VerbosityInfo, false)
		h.app.Report(err)
		assert.Equal(t,
			"==> ERROR: File not found: /proc/acpi/ibm/fan not found\n==> HELP: Did you load thinkpad_acpi?\n",
			h.errOut.String())
	})

	t.Run("extra quiet suppresses errors", func(t *testing.T) {
		h := newHarness(t, config.VerbosityQuiet, false)
		h.app.Report(err)
		assert.Empty(t, h.errOut.String())
	})

	t.Run("invalid core", func(t *testing.T) {
		h := newHarness(t, config.VerbosityInfo, false)
		coreErr := h.app.CoreTemp(context.Background(), 9)
		require.Error(t, coreErr)
		h.app.Report(coreErr)
		assert.Contains(t, h.errOut.String(), "Core 9 is not valid!")
	})
}

func TestWatchStopsOnCancel(t *testing.T) {
	h := newHarness(t, config.VerbosityInfo, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, h.app.Watch(ctx, time.Hour))
	assert.Contains(t, h.out.String(), "DASHBOARD")
}
