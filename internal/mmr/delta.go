// Package mmr computes per-player MMR changes from a match report.
package mmr

import (
	"ladder-tracker/internal/domain"
	"ladder-tracker/internal/rank"
	"math"
)

const (
	WinPoints  = 15
	LossPoints = -8

	mvpWinBonus  = 8
	mvpLossBonus = 3
)

type Input struct {
	Won        bool
	Kills      int
	Deaths     int
	Assists    int
	MVP        bool
	CurrentMMR int
}

type Breakdown struct {
	Base       int
	KD         float64
	Multiplier float64
	MVPBonus   int
	Raw        int
	Sticky     float64
	Delta      int
	// Fallback is set when the stats could not be used and Delta is the bare base.
	Fallback bool
}

func ComputeDelta(won bool, kills, deaths, assists int, mvp bool, currentMMR int) int {
	return Compute(Input{
		Won:        won,
		Kills:      kills,
		Deaths:     deaths,
		Assists:    assists,
		MVP:        mvp,
		CurrentMMR: currentMMR,
	}).Delta
}

// Compute never fails. Stats it cannot use (negative counts, non-finite ratios) make it
// return the base points for the outcome.
func Compute(in Input) Breakdown {
	base := LossPoints
	if in.Won {
		base = WinPoints
	}
	fallback := Breakdown{Base: base, Multiplier: 1, Sticky: 1, Raw: base, Delta: base, Fallback: true}

	if in.Kills < 0 || in.Deaths < 0 || in.Assists < 0 {
		return fallback
	}

	kd := float64(in.Kills)
	if in.Deaths > 0 {
		kd = float64(in.Kills) / float64(in.Deaths)
	}

	mult := performanceMultiplier(in.Won, kd)
	bonus := 0
	if in.MVP {
		bonus = mvpLossBonus
		if in.Won {
			bonus = mvpWinBonus
		}
	}

	rawF := float64(base) * mult
	if math.IsNaN(rawF) || math.IsInf(rawF, 0) {
		return fallback
	}
	raw := roundHalfUp(rawF) + bonus

	sticky := stickiness(raw, in.CurrentMMR)
	deltaF := float64(raw) * sticky
	if math.IsNaN(deltaF) || math.IsInf(deltaF, 0) {
		return fallback
	}

	return Breakdown{
		Base:       base,
		KD:         kd,
		Multiplier: mult,
		MVPBonus:   bonus,
		Raw:        raw,
		Sticky:     sticky,
		Delta:      roundHalfUp(deltaF),
	}
}

func performanceMultiplier(won bool, kd float64) float64 {
	if won {
		switch {
		case kd > 2.0:
			return 1.3
		case kd > 1.5:
			return 1.2
		case kd > 1.0:
			return 1.1
		case kd < 0.7:
			return 0.9
		}
		return 1.0
	}
	switch {
	case kd > 1.5:
		return 0.95
	case kd < 0.5:
		return 1.1
	}
	return 1.0
}

// stickiness shrinks gains and grows losses as MMR rises.
func stickiness(raw, currentMMR int) float64 {
	if raw > 0 {
		switch {
		case currentMMR > 2500:
			return 0.7
		case currentMMR > 2000:
			return 0.8
		case currentMMR > 1500:
			return 0.9
		}
		return 1.0
	}
	if raw < 0 {
		switch {
		case currentMMR > 2500:
			return 1.2
		case currentMMR > 2000:
			return 1.1
		}
	}
	return 1.0
}

// NewMMR applies a delta without going below zero.
func NewMMR(current, delta int) int {
	if n := current + delta; n > 0 {
		return n
	}
	return 0
}

// Apply returns the state after a delta: MMR clamped at zero, peak carried forward and
// rank re-derived from the new MMR.
func Apply(state domain.PlayerRankState, delta int) domain.PlayerRankState {
	next := state.WithMMR(NewMMR(state.MMR, delta))
	t := rank.ForMMR(next.MMR)
	next.Rank = t.Name
	next.RankValue = t.TierValue
	return next
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
