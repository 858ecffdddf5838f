package main

import (
	"os"

	"codeberg.org/mutker/tpfanctl/internal/cli"
	"codeberg.org/mutker/tpfanctl/internal/config"
	"codeberg.org/mutker/tpfanctl/internal/fan"
	"codeberg.org/mutker/tpfanctl/internal/logger"
	"github.com/spf13/cobra"
)

func main() {
	var app *cli.Application

	cmd := &cobra.Command{
		Use:   "setfan <speed|version>",
		Short: "Set the ThinkPad fan speed",
		Long: `Set the ThinkPad fan speed.

Valid settings are the levels 0-7, auto, full-speed and disengaged.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.WithFlags(cmd.Flags()))
			if err != nil {
				return err
			}
			cfg.Pretty = true

			if err := logger.Init(cfg.LogLevel, logger.IsService()); err != nil {
				return err
			}

			app = cli.New(cfg)

			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error {
			if args[0] == "version" {
				app.Version()
				return nil
			}

			speed, err := fan.Parse(args[0])
			if err != nil {
				return err
			}

			return app.SetFan(speed)
		},
	}
	cmd.Flags().String("control-file", "", "Fan control file")

	if err := cmd.Execute(); err != nil {
		if app != nil {
			app.Report(err)
		} else {
			cli.PrintError(os.Stderr, err)
		}
		os.Exit(1)
	}
}
