package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/tpfanctl/internal/cli"
	"codeberg.org/mutker/tpfanctl/internal/config"
	"codeberg.org/mutker/tpfanctl/internal/logger"
	"github.com/spf13/cobra"
)

var (
	app        *cli.Application
	configPath string
	quiet      bool
	extraQuiet bool
	listen     string
)

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		if app != nil {
			app.Report(err)
		} else {
			cli.PrintError(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tpfanctl",
		Short: "tpfanctl controls the fan of ThinkPad laptops",
		Long: `tpfanctl controls the fan of ThinkPad laptops.

The fan is driven through /proc/acpi/ibm/fan, which requires the thinkpad_acpi
module loaded with fan_control=1. Temperatures are read from lm_sensors.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to the configuration file")
	flags.String("log-level", config.DefaultLogLevel, "Log level (debug, info, warning, error)")
	flags.String("verbosity", config.DefaultVerbosity, "Output verbosity (info, error, quiet)")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Only print results and errors")
	flags.BoolVar(&extraQuiet, "extra-quiet", false, "Only print results")
	flags.BoolP("pretty", "p", false, "Print colored, human friendly output")
	flags.String("control-file", "", "Fan control file")
	flags.String("sensors-command", "", "lm_sensors command")
	flags.String("sensors-chip", "", "sensors chip holding the core temperatures")
	flags.Duration("sensors-timeout", 0, "Time limit for one sensors invocation")
	flags.String("pid-file", "", "PID file guarding fan writes")

	cmd.AddCommand(
		NewTempCommand(),
		NewCoresCommand(),
		NewRPMCommand(),
		NewFanCommand(),
		NewDashCommand(),
		NewServeCommand(),
		NewVersionCommand(),
	)

	return cmd
}

func setup(cmd *cobra.Command, _ []string) error {
	opts := []config.Option{config.WithFlags(cmd.Flags())}
	if configPath != "" {
		opts = append(opts, config.WithConfigFile(configPath))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return err
	}

	switch {
	case extraQuiet:
		cfg.Verbosity = string(config.VerbosityQuiet)
	case quiet:
		cfg.Verbosity = string(config.VerbosityError)
	}

	if err := logger.Init(cfg.LogLevel, logger.IsService()); err != nil {
		return err
	}
	logger.Debug().Str("control_file", cfg.ControlFile).Str("sensors_command", cfg.SensorsCommand).Msg("Config loaded")

	app = cli.New(cfg)
	listen = cfg.Listen

	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigs)

		select {
		case <-sigs:
			logger.Info().Msg("Received termination signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
