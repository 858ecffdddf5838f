package main

import (
	"strconv"
	"time"

	"codeberg.org/mutker/tpfanctl/internal/errors"
	"codeberg.org/mutker/tpfanctl/internal/fan"
	"codeberg.org/mutker/tpfanctl/internal/logger"
	"codeberg.org/mutker/tpfanctl/internal/server"
	"github.com/spf13/cobra"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			app.Version()
		},
	}
}

func NewTempCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "temp [core]",
		Short: "Print CPU temperatures",
		Long: `Print CPU temperatures.

Without an argument, every core and the average are printed. With a core
index, only that core is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return app.Temp(cmd.Context())
			}

			id, err := parseCore(args[0])
			if err != nil {
				return err
			}

			return app.CoreTemp(cmd.Context(), id)
		},
	}
}

func NewCoresCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cores",
		Short: "List CPU core indices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Cores(cmd.Context())
		},
	}
}

func NewRPMCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rpm",
		Short: "Print the fan RPM",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.RPM()
		},
	}
}

func NewFanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fan [speed]",
		Short: "Get or set the fan speed",
		Long: `Get or set the fan speed.

Without an argument, the current setting is printed. Valid settings are the
levels 0-7, auto, full-speed and disengaged.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				return app.GetFan()
			}

			speed, err := fan.Parse(args[0])
			if err != nil {
				return err
			}

			return app.SetFan(speed)
		},
	}
}

func NewDashCommand() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "dash",
		Short: "Print temperatures, fan setting and RPM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval <= 0 {
				return app.Dash(cmd.Context())
			}

			ctx, cancel := signalContext()
			defer cancel()

			return app.Watch(ctx, interval)
		},
	}

	cmd.Flags().DurationVarP(&interval, "watch", "w", 0, "Redraw every interval until interrupted")

	return cmd
}

func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve temperatures and fan control over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			srv := server.New(app.FanController(), app.TemperatureReader(), logger.Default())

			return srv.Run(ctx, listen)
		},
	}

	cmd.Flags().String("listen", "", "Address to listen on")

	return cmd
}

func parseCore(arg string) (uint8, error) {
	id, err := strconv.ParseUint(arg, 10, 8)
	if err != nil {
		return 0, errors.New().WithDescription(errors.ErrInvalidValue, "Core "+arg+" is not valid!")
	}

	return uint8(id), nil
}
