package cmd

import (
	"fmt"
	"ladder-tracker/internal/mmr"
	"ladder-tracker/internal/rank"
	"strconv"

	"github.com/spf13/cobra"
)

func newRankForCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rank-for <mmr>",
		Short: "Show the ladder tier for an MMR value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid mmr %q: %w", args[0], err)
			}

			t := rank.ForMMR(value)
			upper := "open"
			if t.MaxMMR() >= 0 {
				upper = strconv.Itoa(t.MaxMMR())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (tier %d, band %d-%s, base %d)\n", t.Name, t.TierValue, t.MinMMR(), upper, t.BaseMMR)
			return nil
		},
	}
}

func newDeltaCmd() *cobra.Command {
	deltaCmd := &cobra.Command{
		Use:   "delta",
		Short: "Preview the MMR change for one player's match result",
		RunE: func(cmd *cobra.Command, args []string) error {
			var in mmr.Input
			in.Won, _ = cmd.Flags().GetBool("won")
			in.Kills, _ = cmd.Flags().GetInt("kills")
			in.Deaths, _ = cmd.Flags().GetInt("deaths")
			in.Assists, _ = cmd.Flags().GetInt("assists")
			in.MVP, _ = cmd.Flags().GetBool("mvp")
			in.CurrentMMR, _ = cmd.Flags().GetInt("mmr")

			b := mmr.Compute(in)
			out := cmd.OutOrStdout()
			if b.Fallback {
				fmt.Fprintln(out, "stats unusable, base points applied")
			} else {
				fmt.Fprintf(out, "base %d x%.2f (kd %.2f) + mvp %d = %d, sticky x%.2f\n", b.Base, b.Multiplier, b.KD, b.MVPBonus, b.Raw, b.Sticky)
			}
			next := mmr.NewMMR(in.CurrentMMR, b.Delta)
			fmt.Fprintf(out, "delta %+d: %d -> %d (%s)\n", b.Delta, in.CurrentMMR, next, rank.RankForMMR(next))
			return nil
		},
	}
	deltaCmd.Flags().Bool("won", false, "The player's team won")
	deltaCmd.Flags().Int("kills", 0, "Kills")
	deltaCmd.Flags().Int("deaths", 0, "Deaths")
	deltaCmd.Flags().Int("assists", 0, "Assists")
	deltaCmd.Flags().Bool("mvp", false, "The player was MVP")
	deltaCmd.Flags().Int("mmr", 0, "The player's MMR before the match")
	return deltaCmd
}
