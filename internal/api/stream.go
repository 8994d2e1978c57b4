package api

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS middleware for browser clients.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Stream upgrades to a websocket that receives a snapshot frame followed
// by an update frame for every change to the game.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	d, ok := h.driver(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("game_id", d.ID()), zap.Error(err))
		return
	}
	s := h.hub.subscribe(conn, d.Snapshot())
	go h.hub.writePump(s)
	go h.hub.readPump(s)
}
