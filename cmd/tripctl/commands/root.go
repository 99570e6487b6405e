package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/sheikh-saqib/tripsync/internal/app"
	"github.com/sheikh-saqib/tripsync/internal/config"
)

// builder opens a trip for cfg. Tests swap it for one backed by a memory store.
type builder func(ctx context.Context, cfg config.Config) (*app.App, error)

func defaultBuilder(ctx context.Context, cfg config.Config) (*app.App, error) {
	return app.New(ctx, cfg)
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd(defaultBuilder).Execute()
}

func newRootCmd(build builder) *cobra.Command {
	var (
		envFile string
		timeout time.Duration
		trip    *app.App
	)

	root := &cobra.Command{
		Use:          "tripctl",
		Short:        "Shared trip expenses and squad from the terminal",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			// keep stdout for command output
			if cfg.LogLevel == "info" {
				cfg.LogLevel = "warn"
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			trip, err = build(ctx, cfg)
			if err != nil {
				return err
			}
			if cfg.Store == config.StoreMemory {
				trip.Logger.Warn("using the in-memory store, nothing will be kept")
			}
			return trip.WaitReady(ctx)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if trip == nil {
				return nil
			}
			trip.Flush()
			return trip.Close()
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file loaded before reading the environment")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 15*time.Second, "how long to wait for the store")

	current := func() *app.App { return trip }
	root.AddCommand(expenseCmd(current), squadCmd(current), settleCmd(current))
	return root
}
