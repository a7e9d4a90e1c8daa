// Package balance splits a queue of players into two teams.
package balance

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

type Mode string

const (
	ModeAuto    Mode = "auto"
	ModeCaptain Mode = "captain"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAuto, ModeCaptain:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown balance mode %q", s)
}

// Player is a queued player. RankValue 0 means unranked.
type Player struct {
	ID        string
	RankValue int
}

type Team struct {
	Players          []Player
	AverageRankValue float64
}

func (t Team) IDs() []string {
	ids := make([]string, len(t.Players))
	for i, p := range t.Players {
		ids[i] = p.ID
	}
	return ids
}

type Result struct {
	TeamA Team
	TeamB Team
	// Captains are set in captain mode only.
	CaptainA string
	CaptainB string
}

// snake draft pattern over sorted positions
var snake = [4]int{0, 1, 1, 0}

type Balancer struct {
	rng *rand.Rand
}

// New returns a balancer drawing captain-mode shuffles from rng.
func New(rng *rand.Rand) *Balancer {
	return &Balancer{rng: rng}
}

// Balance never fails for small pools: zero players gives two empty teams and a single
// player lands on team A.
func (b *Balancer) Balance(players []Player, mode Mode) Result {
	sorted := sortByRank(players)
	if mode == ModeCaptain {
		return b.captains(sorted)
	}
	return auto(sorted)
}

func sortByRank(players []Player) []Player {
	sorted := make([]Player, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RankValue > sorted[j].RankValue
	})
	return sorted
}

func auto(sorted []Player) Result {
	var a, b []Player
	for i, p := range sorted {
		if snake[i%len(snake)] == 0 {
			a = append(a, p)
		} else {
			b = append(b, p)
		}
	}
	return Result{TeamA: newTeam(a), TeamB: newTeam(b)}
}

func (b *Balancer) captains(sorted []Player) Result {
	if len(sorted) < 2 {
		return auto(sorted)
	}

	capA, capB := sorted[0], sorted[1]
	rest := make([]Player, len(sorted)-2)
	copy(rest, sorted[2:])
	b.rng.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})

	teamA := []Player{capA}
	teamB := []Player{capB}
	for i, p := range rest {
		if i%2 == 0 {
			teamA = append(teamA, p)
		} else {
			teamB = append(teamB, p)
		}
	}

	return Result{
		TeamA:    newTeam(teamA),
		TeamB:    newTeam(teamB),
		CaptainA: capA.ID,
		CaptainB: capB.ID,
	}
}

func newTeam(players []Player) Team {
	return Team{Players: players, AverageRankValue: AverageRank(players)}
}

// AverageRank is the mean rank value rounded to two decimals, 0 for an empty team.
func AverageRank(players []Player) float64 {
	if len(players) == 0 {
		return 0
	}
	sum := 0
	for _, p := range players {
		sum += p.RankValue
	}
	return math.Round(float64(sum)/float64(len(players))*100) / 100
}
