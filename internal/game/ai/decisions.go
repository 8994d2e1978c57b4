package ai

import (
	"github.com/cory-johannsen/hoopsim/internal/game/random"
	"github.com/cory-johannsen/hoopsim/internal/game/stats"
	"github.com/cory-johannsen/hoopsim/internal/game/team"
)

// Situation is the game context a ball handler decides in.
type Situation struct {
	ShotClock     float64
	TimeRemaining float64
	Quarter       int
	// ScoreDiff is the deciding team's score minus the opponent's.
	ScoreDiff int
}

// TimeoutSituation is the context a coach decides a timeout in.
type TimeoutSituation struct {
	Quarter       int
	TimeRemaining float64
	ScoreDiff     int
	TimeoutsLeft  int
	// OpponentRun is the number of unanswered points the opponent has scored.
	OpponentRun int
}

// ShouldTakeShotProbability is the chance a handler shoots rather than resets.
//
// Postcondition: 0 <= result <= 1.
func ShouldTakeShotProbability(handler stats.Attributes, sit Situation, aggression int) float64 {
	a := handler.Clamp()
	p := 0.2 + float64(a.Shooting)/200
	switch {
	case sit.ShotClock < 5:
		p *= 1.8
	case sit.ShotClock < 10:
		p *= 1.3
	}
	switch {
	case sit.ScoreDiff <= -10:
		p *= 1.2
	case sit.ScoreDiff >= 10 && sit.Quarter >= 4:
		p *= 0.8
	}
	return clamp01(p * AggressionScale(aggression))
}

// ShouldTakeShot samples ShouldTakeShotProbability. The engine does not call
// it: each possession resolves when its randomly drawn length elapses.
func ShouldTakeShot(handler stats.Attributes, sit Situation, aggression int, src random.Source) bool {
	return random.Chance(src, ShouldTakeShotProbability(handler, sit, aggression))
}

// ShouldAttemptStealProbability is the chance defender gambles for the ball.
//
// Postcondition: 0 <= result <= 1.
func ShouldAttemptStealProbability(defender, handler stats.Attributes, aggression int) float64 {
	d, h := defender.Clamp(), handler.Clamp()
	p := 0.05 + float64(d.Defense+d.Speed)/2000 - float64(h.Passing)/4000
	return clamp01(p * AggressionScale(aggression))
}

// ShouldAttemptSteal samples ShouldAttemptStealProbability.
func ShouldAttemptSteal(defender, handler stats.Attributes, aggression int, src random.Source) bool {
	return random.Chance(src, ShouldAttemptStealProbability(defender, handler, aggression))
}

// ShouldAttemptBlockProbability is the chance defender contests shot at the rim.
// Free throws cannot be blocked.
//
// Postcondition: 0 <= result <= 1.
func ShouldAttemptBlockProbability(defender, shooter stats.Attributes, shot ShotType, aggression int) float64 {
	if shot == FreeThrow {
		return 0
	}
	d, s := defender.Clamp(), shooter.Clamp()
	p := 0.03 + float64(d.Defense+d.Rebounding)/2000 - float64(s.Speed)/4000
	switch shot {
	case Layup:
		p *= 1.5
	case ThreePointer:
		p *= 0.5
	}
	return clamp01(p * AggressionScale(aggression))
}

// ShouldAttemptBlock samples ShouldAttemptBlockProbability.
func ShouldAttemptBlock(defender, shooter stats.Attributes, shot ShotType, aggression int, src random.Source) bool {
	return random.Chance(src, ShouldAttemptBlockProbability(defender, shooter, shot, aggression))
}

// ShouldCallTimeoutProbability is the chance a coach stops play.
//
// Postcondition: 0 when no timeouts remain; otherwise in [0, 1].
func ShouldCallTimeoutProbability(sit TimeoutSituation, aggression int) float64 {
	if sit.TimeoutsLeft <= 0 {
		return 0
	}
	p := 0.01
	if sit.OpponentRun >= 8 {
		p += 0.25
	}
	if sit.Quarter >= 4 && sit.TimeRemaining < 120 && sit.ScoreDiff < 0 && sit.ScoreDiff >= -8 {
		p += 0.3
	}
	if sit.ScoreDiff <= -15 {
		p *= 0.5
	}
	return clamp01(p * AggressionScale(aggression))
}

// ShouldCallTimeout samples ShouldCallTimeoutProbability.
func ShouldCallTimeout(sit TimeoutSituation, aggression int, src random.Source) bool {
	return random.Chance(src, ShouldCallTimeoutProbability(sit, aggression))
}

// DetermineBestPassingOption picks the teammate with the highest
// openness + shooting/10, where openness is a fresh draw in [0, 10) per
// teammate. The handler is excluded; the first maximal teammate wins ties.
//
// Postcondition: Returns (index, true) into roster, or (-1, false) when no
// teammate other than the handler exists.
func DetermineBestPassingOption(roster []team.Player, handlerID int, src random.Source) (int, bool) {
	best := -1
	bestScore := 0.0
	for i, p := range roster {
		if p.ID == handlerID {
			continue
		}
		openness := random.Between(src, 0, 10)
		score := openness + float64(p.Attributes.Clamp().Shooting)/10
		if best < 0 || score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best, best >= 0
}
