package api

import (
	"context"
	"net/http"
	"time"

	"github.com/park285/cheese-chess/pkg/chessdto"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const eventWriteTimeout = 5 * time.Second

// handleEvents streams session events over a websocket. The first frame is a
// "state" event with the current view so clients need no extra round trip.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st, err := s.manager.Status(r.Context(), id)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		s.writeError(w, r, err, map[string]string{"ID": id})
		return
	}

	events, cancel := s.manager.Subscribe(id)
	defer cancel()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  s.opts.OriginPatterns,
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		s.logger.Warn("ws_accept_failed", zap.String("session_id", id), zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "server closing")

	// client frames are ignored; CloseRead cancels ctx when the peer goes away
	ctx := conn.CloseRead(r.Context())
	s.logger.Info("ws_subscribed", zap.String("session_id", id))

	first := chessdto.Event{Type: "state", SessionID: id, State: s.adapter.GameState(st)}
	if err := writeEvent(ctx, conn, first); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err := writeEvent(ctx, conn, s.adapter.Event(ev)); err != nil {
				s.logger.Debug("ws_write_failed", zap.String("session_id", id), zap.Error(err))
				return
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, ev chessdto.Event) error {
	wctx, cancel := context.WithTimeout(ctx, eventWriteTimeout)
	defer cancel()
	return wsjson.Write(wctx, conn, ev)
}
