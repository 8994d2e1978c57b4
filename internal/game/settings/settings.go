// Package settings defines the read-only configuration consumed by the
// simulation engine and driver.
package settings

import (
	"fmt"
	"strings"
)

// Difficulty scales shot success for every shooter in a game.
type Difficulty string

const (
	Easy        Difficulty = "easy"
	Normal      Difficulty = "normal"
	Hard        Difficulty = "hard"
	AllAmerican Difficulty = "all-american"
)

// Valid reports whether d is one of the four recognised difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Normal, Hard, AllAmerican:
		return true
	default:
		return false
	}
}

// ShotOffset is the flat probability adjustment applied to every shot.
//
// Postcondition: easy +0.05, normal 0, hard -0.05, all-american -0.10; 0 for unknown values.
func (d Difficulty) ShotOffset() float64 {
	switch d {
	case Easy:
		return 0.05
	case Hard:
		return -0.05
	case AllAmerican:
		return -0.10
	default:
		return 0
	}
}

// ParseDifficulty converts a case-insensitive name into a Difficulty.
//
// Postcondition: Returns a valid Difficulty or a non-nil error.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
	return d, nil
}

// Settings holds every recognised game option.
type Settings struct {
	// QuarterLength is the regulation period length in minutes.
	QuarterLength int `mapstructure:"quarter_length" yaml:"quarter_length" json:"quarterLength"`
	// ShotClock is the full shot clock in seconds.
	ShotClock int `mapstructure:"shot_clock" yaml:"shot_clock" json:"shotClock"`
	// GameSpeed selects the simulated-time multiplier, 1-4.
	GameSpeed       int        `mapstructure:"game_speed" yaml:"game_speed" json:"gameSpeed"`
	TimeoutsPerTeam int        `mapstructure:"timeouts_per_team" yaml:"timeouts_per_team" json:"timeoutsPerTeam"`
	FoulOut         int        `mapstructure:"foul_out" yaml:"foul_out" json:"foulOut"`
	BonusThreshold  int        `mapstructure:"bonus_threshold" yaml:"bonus_threshold" json:"bonusThreshold"`
	OvertimeEnabled bool       `mapstructure:"overtime_enabled" yaml:"overtime_enabled" json:"overtimeEnabled"`
	FoulsEnabled    bool       `mapstructure:"fouls_enabled" yaml:"fouls_enabled" json:"foulsEnabled"`
	InjuriesEnabled bool       `mapstructure:"injuries_enabled" yaml:"injuries_enabled" json:"injuriesEnabled"`
	Difficulty      Difficulty `mapstructure:"difficulty" yaml:"difficulty" json:"difficulty"`
	// AIAggression is 0-100; see ai.AggressionScale.
	AIAggression int `mapstructure:"ai_aggression" yaml:"ai_aggression" json:"aiAggression"`
	// PlayerAdvantage is -20..20 and shifts shot success by PlayerAdvantage/200.
	PlayerAdvantage int `mapstructure:"player_advantage" yaml:"player_advantage" json:"playerAdvantage"`
}

// Default returns the college-rules defaults.
func Default() Settings {
	return Settings{
		QuarterLength:   10,
		ShotClock:       30,
		GameSpeed:       2,
		TimeoutsPerTeam: 4,
		FoulOut:         5,
		BonusThreshold:  7,
		OvertimeEnabled: true,
		FoulsEnabled:    true,
		InjuriesEnabled: false,
		Difficulty:      Normal,
		AIAggression:    50,
		PlayerAdvantage: 0,
	}
}

// QuarterSeconds returns the regulation period length in seconds.
func (s Settings) QuarterSeconds() float64 {
	return float64(s.QuarterLength) * 60
}

// ShotClockSeconds returns the full shot clock in seconds.
func (s Settings) ShotClockSeconds() float64 {
	return float64(s.ShotClock)
}

// Validate checks every option range.
//
// Postcondition: Returns nil if s is valid, or an error listing all violations.
func (s Settings) Validate() error {
	var errs []string
	if s.QuarterLength < 1 || s.QuarterLength > 60 {
		errs = append(errs, fmt.Sprintf("quarter_length must be 1-60, got %d", s.QuarterLength))
	}
	if s.ShotClock < 1 {
		errs = append(errs, fmt.Sprintf("shot_clock must be >= 1, got %d", s.ShotClock))
	}
	if s.GameSpeed < 1 || s.GameSpeed > 4 {
		errs = append(errs, fmt.Sprintf("game_speed must be 1-4, got %d", s.GameSpeed))
	}
	if s.TimeoutsPerTeam < 0 {
		errs = append(errs, fmt.Sprintf("timeouts_per_team must be >= 0, got %d", s.TimeoutsPerTeam))
	}
	if s.FoulOut < 1 {
		errs = append(errs, fmt.Sprintf("foul_out must be >= 1, got %d", s.FoulOut))
	}
	if s.BonusThreshold < 1 {
		errs = append(errs, fmt.Sprintf("bonus_threshold must be >= 1, got %d", s.BonusThreshold))
	}
	if !s.Difficulty.Valid() {
		errs = append(errs, fmt.Sprintf("difficulty must be one of [easy, normal, hard, all-american], got %q", s.Difficulty))
	}
	if s.AIAggression < 0 || s.AIAggression > 100 {
		errs = append(errs, fmt.Sprintf("ai_aggression must be 0-100, got %d", s.AIAggression))
	}
	if s.PlayerAdvantage < -20 || s.PlayerAdvantage > 20 {
		errs = append(errs, fmt.Sprintf("player_advantage must be -20..20, got %d", s.PlayerAdvantage))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid settings: %s", strings.Join(errs, "; "))
	}
	return nil
}
