// Package ai implements the player decision model: shot-success
// probabilities and weighted behavioral decisions.
//
// Every function is pure; randomness comes only from the injected Source.
package ai

import (
	"math"

	"github.com/cory-johannsen/hoopsim/internal/game/settings"
	"github.com/cory-johannsen/hoopsim/internal/game/stats"
)

// ShotType is the kind of attempt being resolved.
type ShotType int

const (
	Layup ShotType = iota
	MidRange
	ThreePointer
	FreeThrow
)

// String returns a human-readable shot label.
func (t ShotType) String() string {
	switch t {
	case Layup:
		return "layup"
	case MidRange:
		return "mid-range jumper"
	case ThreePointer:
		return "three-pointer"
	case FreeThrow:
		return "free throw"
	default:
		return "unknown"
	}
}

// Points returns the value of a made attempt.
func (t ShotType) Points() int {
	switch t {
	case ThreePointer:
		return 3
	case FreeThrow:
		return 1
	default:
		return 2
	}
}

// IsThree reports whether the attempt counts as a three-point try.
func (t ShotType) IsThree() bool { return t == ThreePointer }

type shotProfile struct {
	base    float64
	divisor float64
}

var shotProfiles = map[ShotType]shotProfile{
	Layup:        {base: 0.35, divisor: 200},
	MidRange:     {base: 0.25, divisor: 200},
	ThreePointer: {base: 0.15, divisor: 250},
	FreeThrow:    {base: 0.45, divisor: 300},
}

// CalculateShotSuccess returns the probability that shooter makes a shot of type shot.
//
// defender may be nil (uncontested); it never affects free throws.
// s may be nil, in which case no difficulty or advantage adjustment applies.
//
// Postcondition: 0 <= result <= 1.
func CalculateShotSuccess(shooter stats.Attributes, shot ShotType, defender *stats.Attributes, s *settings.Settings) float64 {
	prof, ok := shotProfiles[shot]
	if !ok {
		return 0
	}
	a := shooter.Clamp()
	p := prof.base + float64(a.Shooting)/prof.divisor
	if defender != nil && shot != FreeThrow {
		p -= float64(defender.Clamp().Defense) / 200
	}
	if s != nil {
		p += s.Difficulty.ShotOffset()
		p += float64(s.PlayerAdvantage) / 200
	}
	return clamp01(p)
}

// AggressionScale maps an aggression setting in [0, 100] to a multiplier in [0.75, 1.0].
func AggressionScale(aggression int) float64 {
	return 0.75 + float64(aggression)/400
}

func clamp01(p float64) float64 {
	return math.Max(0, math.Min(1, p))
}
