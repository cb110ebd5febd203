package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hintstechnology/bandarmolony-sub008/internal/generation"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/logger"
)

const (
	progressInterval = 500 * time.Millisecond
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingInterval   = 30 * time.Second
)

// ProgressFeed streams run state snapshots to WebSocket clients. Each
// connection polls the orchestrator independently; there is no fan-out hub.
type ProgressFeed struct {
	orchestrator *generation.Orchestrator
	upgrader     websocket.Upgrader
	logger       *logger.Logger
}

// NewProgressFeed creates a progress feed
func NewProgressFeed(orch *generation.Orchestrator, log *logger.Logger) *ProgressFeed {
	return &ProgressFeed{
		orchestrator: orch,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: log,
	}
}

// Handle upgrades the connection and streams snapshots until the client
// disconnects
func (f *ProgressFeed) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.WithError(err).Debug("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	pinger := time.NewTicker(wsPingInterval)
	defer pinger.Stop()

	// Send the current snapshot immediately so clients do not wait a tick
	if err := f.writeSnapshot(conn); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case <-pinger.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ticker.C:
			if err := f.writeSnapshot(conn); err != nil {
				return
			}
		}
	}
}

func (f *ProgressFeed) writeSnapshot(conn *websocket.Conn) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(f.orchestrator.Status())
}
