// Package stats holds player attributes, the overall rating, and the
// per-game statistics ledger.
package stats

import "math"

// MaxAttribute is the top of the nominal attribute range.
const MaxAttribute = 99

// Attributes are the six player ratings, nominally 0-99.
type Attributes struct {
	Shooting   int `yaml:"shooting" json:"shooting"`
	Defense    int `yaml:"defense" json:"defense"`
	Rebounding int `yaml:"rebounding" json:"rebounding"`
	Passing    int `yaml:"passing" json:"passing"`
	Speed      int `yaml:"speed" json:"speed"`
	Stamina    int `yaml:"stamina" json:"stamina"`
}

// Clamp returns a copy with every attribute bounded to [0, MaxAttribute].
func (a Attributes) Clamp() Attributes {
	return Attributes{
		Shooting:   clampAttr(a.Shooting),
		Defense:    clampAttr(a.Defense),
		Rebounding: clampAttr(a.Rebounding),
		Passing:    clampAttr(a.Passing),
		Speed:      clampAttr(a.Speed),
		Stamina:    clampAttr(a.Stamina),
	}
}

func clampAttr(v int) int {
	switch {
	case v < 0:
		return 0
	case v > MaxAttribute:
		return MaxAttribute
	default:
		return v
	}
}

// CalculatePlayerRating returns the rounded mean of the six clamped attributes.
//
// Postcondition: 0 <= result <= MaxAttribute.
func CalculatePlayerRating(a Attributes) int {
	c := a.Clamp()
	sum := c.Shooting + c.Defense + c.Rebounding + c.Passing + c.Speed + c.Stamina
	return int(math.Round(float64(sum) / 6))
}
