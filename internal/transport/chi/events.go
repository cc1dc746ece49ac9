package chi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dinefind/internal/logger"
)

// Event stream timings.
const (
	eventWriteWait  = 10 * time.Second
	eventPongWait   = 60 * time.Second
	eventPingPeriod = eventPongWait * 9 / 10
)

// Event types.
const (
	EventInit     = "init"
	EventSnapshot = "snapshot"
)

// SessionEvents handles GET /sessions/{id}/events. It upgrades to a
// websocket and pushes a snapshot on every state change: an "init" message
// with the current state first, then "snapshot" messages. The stream ends
// when the client goes away or the session is deleted.
func (s *Server) SessionEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	log := logger.FromContext(r.Context()).With(zap.String("session_id", sess.ID()))

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		log.Debug("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	states, cancel := sess.Subscribe()
	defer cancel()

	// Inbound frames are only read to serve pongs and notice disconnects.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		_ = conn.SetReadDeadline(time.Now().Add(eventPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(eventPongWait))
		})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(eventPingPeriod)
	defer ping.Stop()

	typ := EventInit
	for {
		select {
		case <-gone:
			return
		case st, open := <-states:
			if !open {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
					time.Now().Add(eventWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(eventWriteWait))
			if err := conn.WriteJSON(Event{Type: typ, Session: sessionToResponse(sess.ID(), st)}); err != nil {
				log.Debug("Event write failed", zap.Error(err))
				return
			}
			typ = EventSnapshot
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(eventWriteWait)); err != nil {
				return
			}
		}
	}
}
