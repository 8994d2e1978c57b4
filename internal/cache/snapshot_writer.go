// Package cache mirrors live game snapshots into Redis for out-of-process readers.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cory-johannsen/hoopsim/internal/game/engine"
	"github.com/cory-johannsen/hoopsim/internal/gameserver"
)

// Default TTLs
const (
	LiveGameTTL  = 2 * time.Hour
	FinalGameTTL = 6 * time.Hour
)

// EventStreamMaxLen caps each game's event stream.
const EventStreamMaxLen = 2000

// ErrNotCached is returned when a key is absent or expired.
var ErrNotCached = errors.New("not cached")

// SnapshotWriter is a gameserver.Sink that writes each snapshot to Redis.
//
// Keys per game:
//
//	game:{id}:state     JSON snapshot
//	game:{id}:boxscore  JSON box score
//	game:{id}:events    stream of fresh events
type SnapshotWriter struct {
	client   *redis.Client
	liveTTL  time.Duration
	finalTTL time.Duration
}

// NewSnapshotWriter creates a writer; zero TTLs take the defaults.
func NewSnapshotWriter(client *redis.Client, liveTTL, finalTTL time.Duration) *SnapshotWriter {
	if liveTTL <= 0 {
		liveTTL = LiveGameTTL
	}
	if finalTTL <= 0 {
		finalTTL = FinalGameTTL
	}
	return &SnapshotWriter{client: client, liveTTL: liveTTL, finalTTL: finalTTL}
}

func stateKey(gameID string) string    { return fmt.Sprintf("game:%s:state", gameID) }
func boxScoreKey(gameID string) string { return fmt.Sprintf("game:%s:boxscore", gameID) }
func eventsKey(gameID string) string   { return fmt.Sprintf("game:%s:events", gameID) }

func (w *SnapshotWriter) ttl(snap gameserver.Snapshot) time.Duration {
	if snap.State.Ended() {
		return w.finalTTL
	}
	return w.liveTTL
}

// Publish implements gameserver.Sink.
//
// Postcondition: state and box score are set with the live or final TTL and
// every fresh event is appended to the stream, in one pipeline.
func (w *SnapshotWriter) Publish(ctx context.Context, snap gameserver.Snapshot) error {
	state, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	box, err := json.Marshal(snap.BoxScore())
	if err != nil {
		return fmt.Errorf("marshaling boxscore: %w", err)
	}
	ttl := w.ttl(snap)

	pipe := w.client.Pipeline()
	pipe.Set(ctx, stateKey(snap.GameID), state, ttl)
	pipe.Set(ctx, boxScoreKey(snap.GameID), box, ttl)
	if fresh := snap.Fresh(); len(fresh) > 0 {
		for _, ev := range fresh {
			data, err := json.Marshal(ev)
			if err != nil {
				return fmt.Errorf("marshaling event: %w", err)
			}
			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: eventsKey(snap.GameID),
				MaxLen: EventStreamMaxLen,
				Approx: true,
				Values: map[string]interface{}{
					"data":    string(data),
					"game_id": snap.GameID,
					"type":    ev.Type.String(),
				},
			})
		}
		pipe.Expire(ctx, eventsKey(snap.GameID), ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", snap.GameID, err)
	}
	return nil
}

// ReadSnapshot retrieves the latest snapshot of a game.
//
// Postcondition: Returns ErrNotCached if the game was never written or has expired.
func (w *SnapshotWriter) ReadSnapshot(ctx context.Context, gameID string) (gameserver.Snapshot, error) {
	var snap gameserver.Snapshot
	if err := w.read(ctx, stateKey(gameID), &snap); err != nil {
		return gameserver.Snapshot{}, err
	}
	return snap, nil
}

// ReadBoxScore retrieves the latest box score of a game.
//
// Postcondition: Returns ErrNotCached if the game was never written or has expired.
func (w *SnapshotWriter) ReadBoxScore(ctx context.Context, gameID string) (engine.BoxScore, error) {
	var box engine.BoxScore
	if err := w.read(ctx, boxScoreKey(gameID), &box); err != nil {
		return engine.BoxScore{}, err
	}
	return box, nil
}

// ReadEvents returns the cached events of a game in order.
//
// Postcondition: Returns ErrNotCached if the game was never written or has
// expired; a cached game without events yields an empty slice.
func (w *SnapshotWriter) ReadEvents(ctx context.Context, gameID string) ([]engine.Event, error) {
	msgs, err := w.client.XRange(ctx, eventsKey(gameID), "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("reading events %s: %w", gameID, err)
	}
	if len(msgs) == 0 {
		// The stream only exists once an event is added; the state key
		// tells a quiet game from a miss.
		n, err := w.client.Exists(ctx, stateKey(gameID)).Result()
		if err != nil {
			return nil, fmt.Errorf("checking game %s: %w", gameID, err)
		}
		if n == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotCached, eventsKey(gameID))
		}
	}
	out := make([]engine.Event, 0, len(msgs))
	for _, m := range msgs {
		raw, _ := m.Values["data"].(string)
		var ev engine.Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			return nil, fmt.Errorf("unmarshaling event %s: %w", m.ID, err)
		}
		out = append(out, ev)
	}
	return out, nil
}

func (w *SnapshotWriter) read(ctx context.Context, key string, dst any) error {
	data, err := w.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %s", ErrNotCached, key)
		}
		return fmt.Errorf("reading %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshaling %s: %w", key, err)
	}
	return nil
}
