package rank

import (
	"ladder-tracker/internal/domain"
	"regexp"
	"strings"
)

type keyword struct {
	word  string
	tiers [3]int // low, mid, high tier values
}

// Ordered lowest to highest. Matching walks from the top so longer, more specific
// names win.
var keywords = map[domain.Game][]keyword{
	domain.GameRivals: {
		{"bronze", [3]int{1, 1, 2}},
		{"silver", [3]int{2, 3, 3}},
		{"gold", [3]int{4, 4, 5}},
		{"platinum", [3]int{5, 6, 6}},
		{"diamond", [3]int{7, 8, 9}},
		{"grandmaster", [3]int{10, 11, 12}},
		{"celestial", [3]int{12, 13, 14}},
		{"eternity", [3]int{15, 15, 15}},
		{"one above all", [3]int{16, 16, 16}},
	},
	domain.GameValorant: {
		{"iron", [3]int{1, 1, 1}},
		{"bronze", [3]int{1, 2, 2}},
		{"silver", [3]int{2, 3, 3}},
		{"gold", [3]int{4, 4, 5}},
		{"platinum", [3]int{5, 6, 6}},
		{"diamond", [3]int{7, 8, 9}},
		{"ascendant", [3]int{10, 11, 12}},
		{"immortal", [3]int{13, 14, 15}},
		{"radiant", [3]int{16, 16, 16}},
	},
}

// divisionsDescend is true for games whose division III is the lowest.
var divisionsDescend = map[domain.Game]bool{
	domain.GameRivals: true,
}

var subTierPattern = regexp.MustCompile(`(?i)(?:^|[\s\-_])(iii|ii|i|[1-3])\s*$`)

type Result struct {
	Tier Tier
	// Source is the free-text rank the tier was derived from.
	Source string
	// Matched is false when Source named no known rank and the lowest tier was used.
	Matched bool
}

// Canonicalize extracts a rank from an upstream JSON document and maps it onto the
// ladder. The boolean is false only when the document holds no rank string at all;
// the caller then has to ask the player for a manual entry.
func Canonicalize(raw any, game domain.Game) (Result, bool) {
	s := ExtractRankString(raw, game)
	if s == "" {
		return Result{}, false
	}
	return CanonicalizeString(s, explicitSubTier(raw), game), true
}

// CanonicalizeString maps free text to a tier. subTier 0 means "not given"; the
// sub-tier is then parsed from a trailing numeral in s. Unknown text maps to the
// lowest tier.
func CanonicalizeString(s string, subTier int, game domain.Game) Result {
	if t, ok := ByName(s); ok {
		return Result{Tier: t, Source: s, Matched: true}
	}

	lower := strings.ToLower(s)
	table := keywords[game]
	if table == nil {
		table = keywords[domain.GameRivals]
	}

	for i := len(table) - 1; i >= 0; i-- {
		kw := table[i]
		if !strings.Contains(lower, kw.word) {
			continue
		}
		if subTier == 0 {
			subTier = parseSubTier(s)
		}
		t, _ := ByValue(kw.tiers[optionIndex(subTier, game)])
		return Result{Tier: t, Source: s, Matched: true}
	}

	return Result{Tier: Lowest(), Source: s}
}

func optionIndex(subTier int, game domain.Game) int {
	if subTier < 1 || subTier > 3 {
		return 0
	}
	if divisionsDescend[game] {
		return 3 - subTier
	}
	return subTier - 1
}

func parseSubTier(s string) int {
	m := subTierPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}
	return numeral(m[1])
}

func numeral(s string) int {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "1", "I":
		return 1
	case "2", "II":
		return 2
	case "3", "III":
		return 3
	}
	return 0
}

func explicitSubTier(raw any) int {
	m, ok := raw.(map[string]any)
	if !ok {
		return 0
	}
	for _, field := range []string{"division", "tier", "sub_tier"} {
		switch v := m[field].(type) {
		case float64:
			if v >= 1 && v <= 3 && v == float64(int(v)) {
				return int(v)
			}
		case string:
			if n := numeral(v); n != 0 {
				return n
			}
		}
	}
	return 0
}
