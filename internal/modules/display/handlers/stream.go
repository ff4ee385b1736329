package handlers

import (
	"context"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/aristath/kanbanbar/internal/modules/display"
)

const writeTimeout = 5 * time.Second

// HandleStream handles GET /api/stream
// Upgrades to a WebSocket, sends the current items, then every render and notify event
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	events, unsubscribe := h.manager.Subscribe()
	defer unsubscribe()

	// The client never sends; CloseRead handles control frames and reports disconnects
	ctx := conn.CloseRead(r.Context())

	h.log.Info().Str("remote", r.RemoteAddr).Msg("Client connected to display stream")

	for _, item := range h.manager.Items() {
		item := item
		if err := h.send(ctx, conn, display.Event{Type: display.EventRender, Item: &item}); err != nil {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			h.log.Debug().Msg("Display stream client disconnected")
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := h.send(ctx, conn, ev); err != nil {
				h.log.Debug().Err(err).Msg("Display stream write failed")
				return
			}
		}
	}
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, ev display.Event) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, ev)
}
