package api

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hoopsim/internal/game/engine"
	"github.com/cory-johannsen/hoopsim/internal/gameserver"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Buffer size for outbound messages
	sendBufferSize = 64
)

// Message types sent to stream subscribers.
const (
	MessageSnapshot = "snapshot"
	MessageUpdate   = "update"
)

// StreamMessage is one frame sent to a subscriber. The first frame is a
// snapshot; later frames carry the summary and the events appended since
// the previous frame.
type StreamMessage struct {
	Type    string         `json:"type"`
	GameID  string         `json:"gameId"`
	Summary GameSummary    `json:"summary"`
	Events  []engine.Event `json:"events,omitempty"`
	Sent    time.Time      `json:"sent"`
}

type subscriber struct {
	id     string
	gameID string
	conn   *websocket.Conn
	send   chan StreamMessage
}

// Hub fans game snapshots out to websocket subscribers. It implements
// gameserver.Sink; a subscriber whose buffer is full is dropped so the
// driver never blocks on a slow client.
type Hub struct {
	logger *zap.Logger

	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

// NewHub returns an empty Hub.
//
// Precondition: logger must be non-nil.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{logger: logger, subs: make(map[string]map[*subscriber]struct{})}
}

// Publish implements gameserver.Sink.
func (h *Hub) Publish(_ context.Context, snap gameserver.Snapshot) error {
	msg := StreamMessage{
		Type:    MessageUpdate,
		GameID:  snap.GameID,
		Summary: summarize(snap),
		Events:  snap.Fresh(),
		Sent:    time.Now().UTC(),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs[snap.GameID] {
		select {
		case s.send <- msg:
		default:
			h.logger.Warn("dropping slow stream subscriber",
				zap.String("game_id", snap.GameID),
				zap.String("subscriber", s.id),
			)
			h.removeLocked(s)
		}
	}
	return nil
}

// Subscribers returns the number of subscribers to gameID.
func (h *Hub) Subscribers(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[gameID])
}

// subscribe registers conn and queues the initial snapshot frame.
func (h *Hub) subscribe(conn *websocket.Conn, snap gameserver.Snapshot) *subscriber {
	s := &subscriber{
		id:     uuid.NewString(),
		gameID: snap.GameID,
		conn:   conn,
		send:   make(chan StreamMessage, sendBufferSize),
	}
	s.send <- StreamMessage{
		Type:    MessageSnapshot,
		GameID:  snap.GameID,
		Summary: summarize(snap),
		Events:  snap.State.Events,
		Sent:    time.Now().UTC(),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[snap.GameID] == nil {
		h.subs[snap.GameID] = make(map[*subscriber]struct{})
	}
	h.subs[snap.GameID][s] = struct{}{}
	h.logger.Debug("stream subscriber joined", zap.String("game_id", snap.GameID), zap.String("subscriber", s.id))
	return s
}

func (h *Hub) unsubscribe(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(s)
}

// removeLocked closes s.send exactly once; membership in subs guards it.
func (h *Hub) removeLocked(s *subscriber) {
	set, ok := h.subs[s.gameID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	close(s.send)
	if len(set) == 0 {
		delete(h.subs, s.gameID)
	}
}

// CloseGame disconnects every subscriber to gameID.
func (h *Hub) CloseGame(gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs[gameID] {
		h.removeLocked(s)
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.subs {
		for s := range set {
			h.removeLocked(s)
		}
	}
}

// writePump drains s.send to the socket and pings the peer.
func (h *Hub) writePump(s *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteJSON(msg); err != nil {
				h.logger.Debug("stream write failed", zap.String("subscriber", s.id), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client frames and unsubscribes when the peer goes away.
func (h *Hub) readPump(s *subscriber) {
	defer func() {
		h.unsubscribe(s)
		s.conn.Close()
	}()
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("stream closed unexpectedly", zap.String("subscriber", s.id), zap.Error(err))
			}
			return
		}
	}
}
