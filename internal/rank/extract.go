package rank

import (
	"ladder-tracker/internal/domain"
	"sort"
	"strings"
)

const maxSearchDepth = 5

var directFields = []string{"rank", "rank_name", "tier_name", "tier", "division", "title", "current"}

var searchFields = []string{"rank_name", "current_rank", "competitive_rank", "ranked_rank", "tier_name", "rank_tier"}

// upstream schemas put account level and error markers next to real rank fields
var falsePositives = []string{"invalid", "level"}

type path []string

var fallbackPaths = map[domain.Game][]path{
	domain.GameRivals: {
		{"player", "rank"},
		{"player", "rank_info", "rank"},
		{"overall_stats", "rank"},
	},
	domain.GameValorant: {
		{"currenttierpatched"},
		{"current_data", "currenttierpatched"},
		{"current", "tier", "name"},
		{"data", "current", "tier", "name"},
		{"data", "current_data", "currenttierpatched"},
	},
}

// ExtractRankString finds a free-text rank in an arbitrary decoded JSON value.
// It returns "" when nothing usable exists anywhere in the document.
func ExtractRankString(raw any, game domain.Game) string {
	if s := extractDirect(raw, 0); s != "" {
		return s
	}
	if s := extractFallback(raw, game); s != "" {
		return s
	}
	return searchBreadthFirst(raw)
}

func usable(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	for _, bad := range falsePositives {
		if strings.Contains(lower, bad) {
			return ""
		}
	}
	return s
}

func extractDirect(v any, depth int) string {
	switch val := v.(type) {
	case string:
		return usable(val)
	case []any:
		for _, item := range val {
			if s := extractDirect(item, depth); s != "" {
				return s
			}
		}
	case map[string]any:
		for _, field := range directFields {
			child, ok := val[field]
			if !ok {
				continue
			}
			switch c := child.(type) {
			case string:
				if s := usable(c); s != "" {
					return s
				}
			case []any:
				for _, item := range c {
					if s, ok := item.(string); ok && usable(s) != "" {
						return usable(s)
					}
					if m, ok := item.(map[string]any); ok && depth == 0 {
						if s := extractDirect(m, depth+1); s != "" {
							return s
						}
					}
				}
			case map[string]any:
				if depth == 0 {
					if s := extractDirect(c, depth+1); s != "" {
						return s
					}
				}
			}
		}
	}
	return ""
}

func extractFallback(raw any, game domain.Game) string {
	root, ok := raw.(map[string]any)
	if !ok {
		return ""
	}

	if game == domain.GameRivals {
		if history, ok := root["rank_history"].([]any); ok && len(history) > 0 {
			for _, entry := range []any{history[len(history)-1], history[0]} {
				if s := extractDirect(entry, 0); s != "" {
					return s
				}
			}
		}
		if heroes, ok := root["heroes_ranked"].([]any); ok {
			for _, hero := range heroes {
				if s := rankAt(hero, path{"rank"}); s != "" {
					return s
				}
			}
		}
	}

	for _, p := range fallbackPaths[game] {
		if s := rankAt(root, p); s != "" {
			return s
		}
	}
	return ""
}

// rankAt reads the value at p. Objects and lists there get one level of the direct
// field search, so {"rank": {"rank": "Gold II"}} still yields a rank.
func rankAt(v any, p path) string {
	cur := v
	for _, key := range p {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = m[key]
	}
	switch val := cur.(type) {
	case string:
		return usable(val)
	case map[string]any, []any:
		return extractDirect(val, 1)
	}
	return ""
}

type node struct {
	value any
	depth int
}

func searchBreadthFirst(raw any) string {
	queue := []node{{value: raw}}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.depth > maxSearchDepth {
			continue
		}

		switch val := n.value.(type) {
		case map[string]any:
			for _, field := range searchFields {
				if s, ok := val[field].(string); ok {
					if s = usable(s); s != "" {
						return s
					}
				}
			}
			keys := make([]string, 0, len(val))
			for k := range val {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				queue = append(queue, node{value: val[k], depth: n.depth + 1})
			}
		case []any:
			for _, item := range val {
				queue = append(queue, node{value: item, depth: n.depth + 1})
			}
		}
	}
	return ""
}
