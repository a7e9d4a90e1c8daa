package cmd

import (
	"context"
	"database/sql"
	"fmt"
	fxmodules "ladder-tracker/internal/fx"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

// NewRootCmd instantiates the command line root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "ladderctl",
		Short:        "Inspect and administer the community ladder",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(
		newRankForCmd(),
		newDeltaCmd(),
		newBalanceCmd(),
		newResetPeakCmd(),
		newRefreshCmd(),
	)
	return rootCmd
}

// withApp starts the storage and service graph, fills targets and runs f. Configuration
// comes from the same environment as the server.
func withApp(ctx context.Context, f func() error, targets ...any) error {
	var sqlDB *sql.DB
	app := fx.New(
		fxmodules.Core,
		fx.NopLogger,
		fx.Populate(append(targets, &sqlDB)...),
	)
	if err := app.Err(); err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}
	defer func() {
		_ = app.Stop(context.Background())
		sqlDB.Close()
	}()
	return f()
}
