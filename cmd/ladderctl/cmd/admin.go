package cmd

import (
	"fmt"
	"ladder-tracker/internal/domain"
	"ladder-tracker/internal/service"

	"github.com/spf13/cobra"
)

func newResetPeakCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-peak <player-id> <game>",
		Short: "Lower a player's peak MMR to their current MMR",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var admin *service.AdminService
			return withApp(cmd.Context(), func() error {
				if err := admin.ResetPeak(cmd.Context(), args[0], domain.Game(args[1])); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "peak reset for %s (%s)\n", args[0], args[1])
				return nil
			}, &admin)
		},
	}
}

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh [player-id]",
		Short: "Re-read linked valorant accounts, one player or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var refresh *service.RefreshService
			ctx := cmd.Context()
			return withApp(ctx, func() error {
				out := cmd.OutOrStdout()
				if len(args) == 1 {
					res, err := refresh.RefreshValorant(ctx, args[0])
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s: %s %d -> %s %d\n", args[0], res.Previous.Rank, res.Previous.MMR, res.Current.Rank, res.Current.MMR)
					return nil
				}

				sum, err := refresh.RefreshAll(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "checked %d, boosted %d, failed %d\n", sum.Checked, sum.Boosted, sum.Failed)
				return nil
			}, &refresh)
		},
	}
}
