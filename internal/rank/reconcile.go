package rank

import (
	"fmt"
	"ladder-tracker/internal/domain"
)

type Mode string

const (
	ModeHighest Mode = "highest"
	ModePrimary Mode = "primary"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeHighest, ModePrimary:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown rank mode %q", s)
}

// Reconcile picks the state that decides a player's discord rank. In primary mode the
// primary game's state is returned as is. In highest mode tier value decides, then
// MMR; a full tie returns a.
func Reconcile(mode Mode, primary domain.Game, a, b domain.PlayerRankState) domain.PlayerRankState {
	if mode == ModePrimary {
		if b.Game == primary && a.Game != primary {
			return b
		}
		return a
	}

	if b.RankValue > a.RankValue {
		return b
	}
	if b.RankValue == a.RankValue && b.MMR > a.MMR {
		return b
	}
	return a
}
