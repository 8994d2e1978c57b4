package team

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Repository supplies rosters to the simulation and records game outcomes.
type Repository interface {
	// GetTeamByID returns the team or an error wrapping ErrTeamNotFound.
	GetTeamByID(ctx context.Context, id int) (*Team, error)
	// UpdateTeamRecord applies one game result. It is not idempotent: callers
	// must invoke it exactly once per finished game per team.
	UpdateTeamRecord(ctx context.Context, id int, won, wasHome bool) error
	// ListTeams returns every team ordered by ID.
	ListTeams(ctx context.Context) ([]*Team, error)
}

// Registry is an in-memory Repository.
//
// All methods are safe for concurrent use. Returned teams are deep copies.
type Registry struct {
	mu    sync.RWMutex
	teams map[int]*Team
}

// NewRegistry returns a Registry seeded with teams.
//
// Precondition: every team must pass Validate and IDs must be unique.
// Postcondition: Returns a populated Registry or an error naming the first violation.
func NewRegistry(teams ...*Team) (*Registry, error) {
	r := &Registry{teams: make(map[int]*Team, len(teams))}
	for _, t := range teams {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register stores a copy of t.
//
// Postcondition: Returns an error if t is invalid or its ID is already registered.
func (r *Registry) Register(t *Team) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.teams[t.ID]; exists {
		return fmt.Errorf("team %d already registered", t.ID)
	}
	r.teams[t.ID] = t.Clone()
	return nil
}

// GetTeamByID implements Repository.
func (r *Registry) GetTeamByID(_ context.Context, id int) (*Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.teams[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrTeamNotFound, id)
	}
	return t.Clone(), nil
}

// UpdateTeamRecord implements Repository.
func (r *Registry) UpdateTeamRecord(_ context.Context, id int, won, wasHome bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrTeamNotFound, id)
	}
	t.Record = t.Record.ApplyResult(won, wasHome)
	return nil
}

// ListTeams implements Repository.
func (r *Registry) ListTeams(_ context.Context) ([]*Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Team, 0, len(r.teams))
	for _, t := range r.teams {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
