package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The REST surface is already open cross-origin; the firehose follows.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

type firehoseInit struct {
	Type      string `json:"type"`
	Listeners int    `json:"listeners"`
}

// HandleFirehose upgrades the connection and streams ingestion events as
// they happen. Clients receive an init frame first, then one JSON frame
// per ingested document. Slow clients miss events rather than blocking
// ingestion.
func (s *Server) HandleFirehose(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Firehose unavailable", "Realtime hub is not configured")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("upgrading firehose connection: %v", err)
		return
	}

	id, events := s.hub.Register()
	defer s.hub.Unregister(id)
	defer func() {
		if err := conn.Close(); err != nil {
			s.logger.Debugf("closing firehose connection: %v", err)
		}
	}()

	if err := conn.WriteJSON(firehoseInit{Type: "init", Listeners: s.hub.Size()}); err != nil {
		s.logger.Warnf("writing firehose init: %v", err)
		return
	}

	// Reader goroutine: we never expect client frames, but reading is what
	// surfaces close and ping/pong traffic.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case env, ok := <-events:
			if !ok {
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(env); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
