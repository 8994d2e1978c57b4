package team

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlLeague is the top-level structure of a league roster file.
type yamlLeague struct {
	Teams []*Team `yaml:"teams"`
}

// LoadLeagueFromFile reads and validates a league YAML file.
//
// Precondition: path must point to a readable YAML file with a top-level "teams" list.
// Postcondition: Returns validated teams or a non-nil error.
func LoadLeagueFromFile(path string) ([]*Team, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading league file %s: %w", path, err)
	}
	return LoadLeagueFromBytes(data)
}

// LoadLeagueFromBytes parses and validates a league from YAML bytes.
//
// Postcondition: Returns at least one validated team with unique team and
// player IDs across the league, or a non-nil error.
func LoadLeagueFromBytes(data []byte) ([]*Team, error) {
	var lf yamlLeague
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parsing league yaml: %w", err)
	}
	if len(lf.Teams) == 0 {
		return nil, fmt.Errorf("league has no teams")
	}
	teamIDs := make(map[int]bool, len(lf.Teams))
	playerIDs := make(map[int]int)
	for _, t := range lf.Teams {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if teamIDs[t.ID] {
			return nil, fmt.Errorf("duplicate team id %d", t.ID)
		}
		teamIDs[t.ID] = true
		for _, p := range t.Players {
			if owner, dup := playerIDs[p.ID]; dup {
				return nil, fmt.Errorf("player id %d appears on teams %d and %d", p.ID, owner, t.ID)
			}
			playerIDs[p.ID] = t.ID
		}
	}
	return lf.Teams, nil
}

// MarshalLeague renders teams in the league file format.
func MarshalLeague(teams []*Team) ([]byte, error) {
	return yaml.Marshal(yamlLeague{Teams: teams})
}
