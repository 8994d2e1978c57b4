package engine

import (
	"fmt"

	"github.com/cory-johannsen/hoopsim/internal/game/team"
)

// EventType classifies an entry in the play-by-play log.
type EventType int

const (
	EventScore EventType = iota
	EventMiss
	EventRebound
	EventTurnover
	EventFoul
	EventFoulOut
	EventFreeThrow
	EventShotClockViolation
	EventOutOfBounds
	EventTimeout
	EventQuarterEnd
	EventHalftime
	EventGameEnd
	EventWinner
)

var eventNames = [...]string{
	EventScore:              "score",
	EventMiss:               "miss",
	EventRebound:            "rebound",
	EventTurnover:           "turnover",
	EventFoul:               "foul",
	EventFoulOut:            "foul_out",
	EventFreeThrow:          "free_throw",
	EventShotClockViolation: "shot_clock_violation",
	EventOutOfBounds:        "out_of_bounds",
	EventTimeout:            "timeout",
	EventQuarterEnd:         "quarter_end",
	EventHalftime:           "halftime",
	EventGameEnd:            "game_end",
	EventWinner:             "winner",
}

// AllEventTypes lists every event type in declaration order.
func AllEventTypes() []EventType {
	out := make([]EventType, len(eventNames))
	for i := range eventNames {
		out[i] = EventType(i)
	}
	return out
}

// String returns the wire name of t.
func (t EventType) String() string {
	if t < 0 || int(t) >= len(eventNames) {
		return fmt.Sprintf("EventType(%d)", int(t))
	}
	return eventNames[t]
}

// ParseEventType converts a wire name into an EventType.
//
// Postcondition: Returns an error for any name not produced by String.
func ParseEventType(s string) (EventType, error) {
	for i, n := range eventNames {
		if n == s {
			return EventType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown event type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t EventType) MarshalText() ([]byte, error) {
	if t < 0 || int(t) >= len(eventNames) {
		return nil, fmt.Errorf("unknown event type %d", int(t))
	}
	return []byte(eventNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *EventType) UnmarshalText(b []byte) error {
	v, err := ParseEventType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Event is one entry in the append-only play-by-play log.
type Event struct {
	// Time is the formatted game clock, e.g. "Q2 7:05".
	Time        string    `json:"time"`
	Type        EventType `json:"type"`
	Description string    `json:"description"`
	PlayerID    int       `json:"playerId,omitempty"`
	TeamID      int       `json:"teamId,omitempty"`
	Side        team.Side `json:"side,omitempty"`
	// Points scored by this event, zero for non-scoring events.
	Points int `json:"points,omitempty"`
}

// IsTerminal reports whether no further event may follow one of this type.
func (t EventType) IsTerminal() bool { return t == EventWinner }
