package cmd

import (
	"fmt"
	"ladder-tracker/internal/balance"
	"ladder-tracker/internal/rank"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newBalanceCmd() *cobra.Command {
	balanceCmd := &cobra.Command{
		Use:   "balance <id=rank>...",
		Short: "Split players into two teams offline",
		Long: `Each argument is a player id and their rank, either a ladder tier name or a tier
value: "alice=GRNDS V" or "bob=7". A player without a rank counts as unranked.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			modeArg, _ := cmd.Flags().GetString("mode")
			mode, err := balance.ParseMode(modeArg)
			if err != nil {
				return err
			}
			seed, _ := cmd.Flags().GetInt64("seed")
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			players := make([]balance.Player, len(args))
			for i, arg := range args {
				if players[i], err = parsePlayer(arg); err != nil {
					return err
				}
			}

			res := balance.New(rand.New(rand.NewSource(seed))).Balance(players, mode)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "A (avg %.2f): %s\n", res.TeamA.AverageRankValue, strings.Join(res.TeamA.IDs(), ", "))
			fmt.Fprintf(out, "B (avg %.2f): %s\n", res.TeamB.AverageRankValue, strings.Join(res.TeamB.IDs(), ", "))
			if res.CaptainA != "" {
				fmt.Fprintf(out, "captains: %s, %s\n", res.CaptainA, res.CaptainB)
			}
			return nil
		},
	}
	balanceCmd.Flags().String("mode", string(balance.ModeAuto), "auto or captain")
	balanceCmd.Flags().Int64("seed", 0, "Captain mode shuffle seed, 0 for random")
	return balanceCmd
}

func parsePlayer(arg string) (balance.Player, error) {
	id, r, _ := strings.Cut(arg, "=")
	id, r = strings.TrimSpace(id), strings.TrimSpace(r)
	if id == "" {
		return balance.Player{}, fmt.Errorf("missing player id in %q", arg)
	}
	if r == "" {
		return balance.Player{ID: id}, nil
	}
	if v, err := strconv.Atoi(r); err == nil {
		if _, ok := rank.ByValue(v); !ok {
			return balance.Player{}, fmt.Errorf("no tier with value %d", v)
		}
		return balance.Player{ID: id, RankValue: v}, nil
	}
	t, ok := rank.ByName(r)
	if !ok {
		return balance.Player{}, fmt.Errorf("unknown rank %q", r)
	}
	return balance.Player{ID: id, RankValue: t.TierValue}, nil
}
