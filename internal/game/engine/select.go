package engine

import (
	"cmp"
	"slices"

	"github.com/cory-johannsen/hoopsim/internal/game/random"
	"github.com/cory-johannsen/hoopsim/internal/game/team"
)

// RatingWeight weighs a player by overall rating.
func RatingWeight(p team.Player) float64 { return float64(p.Rating()) }

// ReboundingWeight weighs a player by the rebounding attribute.
func ReboundingWeight(p team.Player) float64 { return float64(p.Attributes.Clamp().Rebounding) }

// WeightedPick returns the index of a player chosen with probability
// proportional to weight.
//
// An empty or zero-weight roster is a data setup bug and fails rather than
// defaulting to the first player.
//
// Postcondition: Returns an index into players, or an error wrapping
// ErrEmptyRoster or ErrZeroWeight.
func WeightedPick(players []team.Player, weight func(team.Player) float64, src random.Source) (int, error) {
	idx := make([]int, len(players))
	for i := range players {
		idx[i] = i
	}
	return weightedPickAmong(players, idx, weight, src)
}

// weightedPickAmong is WeightedPick restricted to the candidate indices.
func weightedPickAmong(players []team.Player, candidates []int, weight func(team.Player) float64, src random.Source) (int, error) {
	if len(candidates) == 0 {
		return -1, ErrEmptyRoster
	}
	total := 0.0
	last := -1
	for _, i := range candidates {
		if w := weight(players[i]); w > 0 {
			total += w
			last = i
		}
	}
	if total <= 0 {
		return -1, ErrZeroWeight
	}
	r := src.Float64() * total
	acc := 0.0
	for _, i := range candidates {
		w := weight(players[i])
		if w <= 0 {
			continue
		}
		acc += w
		if r < acc {
			return i, nil
		}
	}
	// r can reach total through rounding.
	return last, nil
}

// available returns the indices of players still eligible to play.
// When foul-outs apply and every player has fouled out, all players stay
// eligible.
func available(players []team.Player, playerFouls map[int]int, foulOut int, foulsEnabled bool) []int {
	out := make([]int, 0, len(players))
	for i, p := range players {
		if foulsEnabled && foulOut > 0 && playerFouls[p.ID] >= foulOut {
			continue
		}
		out = append(out, i)
	}
	if len(out) == 0 {
		for i := range players {
			out = append(out, i)
		}
	}
	return out
}

// lineup returns the indices of the LineupSize highest-rated available
// players, ties kept in roster order.
func lineup(players []team.Player, eligible []int) []int {
	out := slices.Clone(eligible)
	slices.SortStableFunc(out, func(a, b int) int {
		return cmp.Compare(players[b].Rating(), players[a].Rating())
	})
	if len(out) > LineupSize {
		out = out[:LineupSize]
	}
	return out
}
