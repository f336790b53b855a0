package httpserver

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/ternhq/tern/internal/auth"
	"github.com/ternhq/tern/internal/stream"
	logpkg "github.com/ternhq/tern/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// handleStreamWS mirrors the SSE endpoint over a WebSocket. Each delivery
// event is sent as one JSON text frame. The socket closing ends the session.
func (s *Server) handleStreamWS(w http.ResponseWriter, r *http.Request) {
	if !s.gate.Authorized(credentialsFrom(r)) {
		writeError(w, http.StatusUnauthorized, auth.ErrUnauthenticated.Error())
		return
	}
	q := r.URL.Query()
	req := stream.AttachRequest{
		ChannelKey: q.Get("channel"),
		PageToken:  q.Get("page_token"),
		Filter:     q.Get("filter"),
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	events, err := s.engine.Attach(ctx, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("ws upgrade failed", logpkg.Err(err))
		return
	}
	defer conn.Close()

	// Read pump: clients send nothing meaningful, but reading is how a
	// closed socket is observed.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for ev := range events {
		frame := deliveryEvent{Message: ev.Message, NextPageToken: ev.Cursor}
		if err := conn.WriteJSON(frame); err != nil {
			return
		}
	}
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stream ended"))
}
