// Package clock converts simulated ticks into game-clock and shot-clock time.
//
// Every function is pure: no randomness, no I/O.
package clock

import (
	"fmt"
	"math"
)

// DefaultSpeedMultiplier applies to any game speed outside the table.
const DefaultSpeedMultiplier = 4.0

var speedMultipliers = map[int]float64{
	1: 1,
	2: 4,
	3: 8,
	4: 12,
}

// SpeedMultiplier returns the simulated-seconds factor for gameSpeed.
//
// Postcondition: Returns one of 1, 4, 8, 12; DefaultSpeedMultiplier when gameSpeed is not in [1, 4].
func SpeedMultiplier(gameSpeed int) float64 {
	if m, ok := speedMultipliers[gameSpeed]; ok {
		return m
	}
	return DefaultSpeedMultiplier
}

// Elapsed returns how many simulated seconds one step of stepSeconds covers at gameSpeed.
func Elapsed(stepSeconds float64, gameSpeed int) float64 {
	return stepSeconds * SpeedMultiplier(gameSpeed)
}

// SimulateTime advances the game clock by one step.
//
// Precondition: current >= 0; stepSeconds >= 0.
// Postcondition: 0 <= result <= current.
func SimulateTime(current, stepSeconds float64, gameSpeed int) float64 {
	return math.Max(0, current-Elapsed(stepSeconds, gameSpeed))
}

// SimulateShotClock advances the shot clock by one step. It never looks at the
// game clock; see ClampShotClock.
//
// Precondition: current >= 0; stepSeconds >= 0.
// Postcondition: 0 <= result <= current.
func SimulateShotClock(current, stepSeconds float64, gameSpeed int) float64 {
	return math.Max(0, current-Elapsed(stepSeconds, gameSpeed))
}

// ClampShotClock bounds the shot clock by the time left in the period.
//
// Postcondition: result == min(shotClock, timeRemaining).
func ClampShotClock(shotClock, timeRemaining float64) float64 {
	return math.Min(shotClock, timeRemaining)
}

// HasQuarterEnded reports whether the period clock has run out.
func HasQuarterEnded(timeRemaining float64) bool {
	return timeRemaining <= 0
}

// HasShotClockExpired reports whether the shot clock has run out.
func HasShotClockExpired(shotClockRemaining float64) bool {
	return shotClockRemaining <= 0
}

// FormatClock renders seconds as "M:SS". Fractional seconds are truncated.
//
// Postcondition: seconds are always two digits, e.g. "0:05", "10:00".
func FormatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatPeriod renders a quarter number: "Q1".."Q4", then "OT1", "OT2", ...
//
// Precondition: quarter >= 1.
func FormatPeriod(quarter int) string {
	if quarter > 4 {
		return fmt.Sprintf("OT%d", quarter-4)
	}
	return fmt.Sprintf("Q%d", quarter)
}

// FormatGameTime renders the period and clock together, e.g. "Q2 7:05" or "OT1 4:59".
func FormatGameTime(quarter int, seconds float64) string {
	return FormatPeriod(quarter) + " " + FormatClock(seconds)
}
