package rank

import (
	"strconv"
	"strings"
)

const maxExternalELO = 5000

type band struct {
	min, max int
}

// valorantBands maps competitive tier ids (3 = Iron 1 .. 27 = Radiant) to local MMR.
var valorantBands = map[int]band{
	3: {0, 99}, 4: {100, 199}, 5: {200, 299},
	6: {300, 399}, 7: {400, 499}, 8: {500, 599},
	9: {600, 699}, 10: {700, 799}, 11: {800, 899},
	12: {900, 999}, 13: {1000, 1099}, 14: {1100, 1199},
	15: {1200, 1299}, 16: {1300, 1399}, 17: {1400, 1499},
	18: {1500, 1599}, 19: {1600, 1699}, 20: {1700, 1799},
	21: {1800, 1899}, 22: {1900, 1999}, 23: {2000, 2099},
	24: {2100, 2299}, 25: {2300, 2499}, 26: {2500, 2799},
	27: {2800, 3199},
}

var valorantFamilies = []string{"iron", "bronze", "silver", "gold", "platinum", "diamond", "ascendant", "immortal"}

// ValorantTierID parses a patched tier name such as "Gold 2" or "Radiant". It returns
// 0 for unrated or unknown names.
func ValorantTierID(name string) int {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) == 0 {
		return 0
	}
	if fields[0] == "radiant" {
		return 27
	}
	for i, family := range valorantFamilies {
		if fields[0] != family {
			continue
		}
		div := 1
		if len(fields) > 1 {
			if n, err := strconv.Atoi(fields[1]); err == nil && n >= 1 && n <= 3 {
				div = n
			}
		}
		return 3 + i*3 + div - 1
	}
	return 0
}

// IsRatedValorantTier is false for unrated and placement (0-2) tiers.
func IsRatedValorantTier(id int) bool {
	_, ok := valorantBands[id]
	return ok
}

// BridgeMMR interpolates an external ELO inside the local band of its tier. The tier
// may be given by id, or by name when id is 0. Unknown tiers yield (0, false).
func BridgeMMR(tierID int, tierName string, elo int) (int, bool) {
	if tierID == 0 {
		tierID = ValorantTierID(tierName)
	}
	b, ok := valorantBands[tierID]
	if !ok {
		return 0, false
	}
	if elo < 0 {
		elo = 0
	}
	if elo > maxExternalELO {
		elo = maxExternalELO
	}
	return b.min + roundHalfUp(float64(b.max-b.min)*float64(elo)/maxExternalELO), true
}

// BridgePlacement is the bridge value used for first-time linking.
func BridgePlacement(tierID int, tierName string, elo int) (int, bool) {
	mmr, ok := BridgeMMR(tierID, tierName, elo)
	if !ok {
		return 0, false
	}
	return CapPlacement(mmr), true
}

// HistoryPoint is one entry of an upstream MMR history, newest first.
type HistoryPoint struct {
	TierID   int
	TierName string
	ELO      int
}

// PlacementSource picks the rank data to bridge from while an account is still in
// placement: the live values when rated, else the newest history entry with tier
// data. ok is false when neither exists and the current local rank must be kept.
func PlacementSource(liveTierID int, liveTierName string, liveELO int, history []HistoryPoint) (HistoryPoint, bool) {
	id := liveTierID
	if id == 0 {
		id = ValorantTierID(liveTierName)
	}
	if IsRatedValorantTier(id) {
		return HistoryPoint{TierID: id, TierName: liveTierName, ELO: liveELO}, true
	}
	for _, h := range history {
		id := h.TierID
		if id == 0 {
			id = ValorantTierID(h.TierName)
		}
		if IsRatedValorantTier(id) {
			h.TierID = id
			return h, true
		}
	}
	return HistoryPoint{}, false
}
