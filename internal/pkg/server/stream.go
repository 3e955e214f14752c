package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/guileb/circular-integration/internal/pkg/stove"
)

// stream pushes a state snapshot to websocket subscribers after every poll
// cycle. Slow or broken subscribers are dropped, never waited on.
type stream struct {
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func newStream() *stream {
	return &stream{
		upgrader: websocket.Upgrader{
			// The api runs on a trusted LAN; basic auth already gates access.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

func (s *stream) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Error("websocket upgrade failed", zap.Error(err))
		return
	}
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
	zap.L().Debug("websocket subscriber connected", zap.String("remote", conn.RemoteAddr().String()))

	// Reads are drained only to detect the close handshake.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.drop(conn)
				return
			}
		}
	}()
}

func (s *stream) broadcast(snap stove.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		if err := conn.WriteJSON(snap); err != nil {
			_ = conn.Close()
			delete(s.conns, conn)
		}
	}
}

func (s *stream) drop(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = conn.Close()
	delete(s.conns, conn)
}
