package stats

// GameStats is one player's box-score line for a single game.
//
// Every applier has a value receiver and returns an updated copy; the
// receiver is never modified. Applying the same event twice doubles its effect.
type GameStats struct {
	Points            int     `json:"points"`
	Rebounds          int     `json:"rebounds"`
	OffensiveRebounds int     `json:"offensiveRebounds"`
	Assists           int     `json:"assists"`
	Steals            int     `json:"steals"`
	Blocks            int     `json:"blocks"`
	Turnovers         int     `json:"turnovers"`
	Fouls             int     `json:"fouls"`
	FGMade            int     `json:"fgMade"`
	FGAttempted       int     `json:"fgAttempted"`
	FG3Made           int     `json:"fg3Made"`
	FG3Attempted      int     `json:"fg3Attempted"`
	FTMade            int     `json:"ftMade"`
	FTAttempted       int     `json:"ftAttempted"`
	MinutesPlayed     float64 `json:"minutesPlayed"`
}

// FieldGoal records one field-goal attempt.
//
// Postcondition: FGAttempted+1; on make FGMade+1 and Points+2 (or +3 when three);
// three-point attempts also bump FG3Attempted, and FG3Made on make.
func (s GameStats) FieldGoal(made, three bool) GameStats {
	s.FGAttempted++
	if three {
		s.FG3Attempted++
	}
	if !made {
		return s
	}
	s.FGMade++
	if three {
		s.FG3Made++
		s.Points += 3
	} else {
		s.Points += 2
	}
	return s
}

// FreeThrow records one free-throw attempt.
func (s GameStats) FreeThrow(made bool) GameStats {
	s.FTAttempted++
	if made {
		s.FTMade++
		s.Points++
	}
	return s
}

// Rebound records one rebound.
func (s GameStats) Rebound(offensive bool) GameStats {
	s.Rebounds++
	if offensive {
		s.OffensiveRebounds++
	}
	return s
}

// Assist records one assist.
func (s GameStats) Assist() GameStats {
	s.Assists++
	return s
}

// Steal records one steal.
func (s GameStats) Steal() GameStats {
	s.Steals++
	return s
}

// Block records one blocked shot.
func (s GameStats) Block() GameStats {
	s.Blocks++
	return s
}

// Turnover records one turnover.
func (s GameStats) Turnover() GameStats {
	s.Turnovers++
	return s
}

// Foul records one personal foul.
func (s GameStats) Foul() GameStats {
	s.Fouls++
	return s
}

// AddMinutes adds playing time.
//
// Precondition: minutes >= 0.
func (s GameStats) AddMinutes(minutes float64) GameStats {
	s.MinutesPlayed += minutes
	return s
}

// Add sums two lines, e.g. for team totals.
func (s GameStats) Add(o GameStats) GameStats {
	return GameStats{
		Points:            s.Points + o.Points,
		Rebounds:          s.Rebounds + o.Rebounds,
		OffensiveRebounds: s.OffensiveRebounds + o.OffensiveRebounds,
		Assists:           s.Assists + o.Assists,
		Steals:            s.Steals + o.Steals,
		Blocks:            s.Blocks + o.Blocks,
		Turnovers:         s.Turnovers + o.Turnovers,
		Fouls:             s.Fouls + o.Fouls,
		FGMade:            s.FGMade + o.FGMade,
		FGAttempted:       s.FGAttempted + o.FGAttempted,
		FG3Made:           s.FG3Made + o.FG3Made,
		FG3Attempted:      s.FG3Attempted + o.FG3Attempted,
		FTMade:            s.FTMade + o.FTMade,
		FTAttempted:       s.FTAttempted + o.FTAttempted,
		MinutesPlayed:     s.MinutesPlayed + o.MinutesPlayed,
	}
}

// FieldGoalPct returns FGMade/FGAttempted, or 0 with no attempts.
func (s GameStats) FieldGoalPct() float64 { return pct(s.FGMade, s.FGAttempted) }

// ThreePointPct returns FG3Made/FG3Attempted, or 0 with no attempts.
func (s GameStats) ThreePointPct() float64 { return pct(s.FG3Made, s.FG3Attempted) }

// FreeThrowPct returns FTMade/FTAttempted, or 0 with no attempts.
func (s GameStats) FreeThrowPct() float64 { return pct(s.FTMade, s.FTAttempted) }

func pct(made, attempted int) float64 {
	if attempted == 0 {
		return 0
	}
	return float64(made) / float64(attempted)
}
