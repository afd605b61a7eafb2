package webhook

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Operator consoles connect from file:// pages and local tooling.
	CheckOrigin: func(*http.Request) bool { return true },
}

const (
	previewWriteWait = 10 * time.Second
	previewPongWait  = 60 * time.Second
	previewPingEvery = 50 * time.Second
)

// handlePreview upgrades the connection and streams rendered receipts. The
// client first receives the buffered recent previews, then live ones as
// jobs complete.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		s.respondError(w, http.StatusNotFound, "preview disabled")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		s.logger.Warn("preview upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sub, cancel := s.hub.Subscribe()
	defer cancel()

	for _, p := range s.hub.Recent() {
		conn.SetWriteDeadline(time.Now().Add(previewWriteWait))
		if err := conn.WriteJSON(p); err != nil {
			return
		}
	}

	// Reader goroutine: we never expect client messages, but reading is
	// what surfaces close frames and pong responses.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(previewPongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(previewPongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(previewPingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case p, ok := <-sub:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(previewWriteWait))
			if err := conn.WriteJSON(p); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(previewWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
