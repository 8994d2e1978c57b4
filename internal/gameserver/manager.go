package gameserver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hoopsim/internal/game/random"
	"github.com/cory-johannsen/hoopsim/internal/game/settings"
	"github.com/cory-johannsen/hoopsim/internal/game/team"
)

// ErrGameNotFound is returned when no game has the requested id.
var ErrGameNotFound = errors.New("game not found")

// SourceFactory builds the randomness for a new game. seed is nil when the
// caller did not ask for a reproducible game.
type SourceFactory func(seed *uint64) random.Source

// DefaultSourceFactory seeds reproducible games and uses crypto/rand otherwise.
func DefaultSourceFactory(seed *uint64) random.Source {
	if seed != nil {
		return random.NewSeededSource(*seed)
	}
	return random.NewCryptoSource()
}

// Manager tracks every live game by id.
type Manager struct {
	repo     team.Repository
	settings settings.Settings
	sources  SourceFactory
	opts     Options
	logger   *zap.Logger

	mu      sync.RWMutex
	drivers map[string]*Driver
	order   map[string]int
	created int
}

// NewManager returns an empty Manager.
//
// Precondition: repo and logger must be non-nil; s must be valid.
func NewManager(repo team.Repository, s settings.Settings, sources SourceFactory, opts Options, logger *zap.Logger) *Manager {
	if repo == nil || logger == nil {
		panic("gameserver.NewManager: repo and logger must be non-nil")
	}
	if sources == nil {
		sources = DefaultSourceFactory
	}
	return &Manager{
		repo:     repo,
		settings: s,
		sources:  sources,
		opts:     opts,
		logger:   logger,
		drivers:  make(map[string]*Driver),
		order:    make(map[string]int),
	}
}

// Settings returns the rules new games are created with.
func (m *Manager) Settings() settings.Settings { return m.settings }

// Create sets up a READY game between homeID and awayID.
func (m *Manager) Create(ctx context.Context, homeID, awayID int, seed *uint64) (*Driver, error) {
	id := uuid.NewString()
	d, err := NewDriver(ctx, id, m.repo, m.settings, m.sources(seed), homeID, awayID, m.opts, m.logger)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[id] = d
	m.created++
	m.order[id] = m.created
	m.logger.Info("game created", zap.String("game_id", id), zap.Int("home_id", homeID), zap.Int("away_id", awayID))
	return d, nil
}

// Get returns the driver for id or an error wrapping ErrGameNotFound.
func (m *Manager) Get(id string) (*Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drivers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return d, nil
}

// List returns every driver in creation order.
func (m *Manager) List() []*Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return m.order[out[i].id] < m.order[out[j].id] })
	return out
}

// Remove stops and forgets the game id.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	d, ok := m.drivers[id]
	delete(m.drivers, id)
	delete(m.order, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	d.Close()
	m.logger.Info("game removed", zap.String("game_id", id))
	return nil
}

// StopAll stops every game's timer.
func (m *Manager) StopAll() {
	for _, d := range m.List() {
		d.Close()
	}
}
