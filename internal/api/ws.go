package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sheikh-saqib/tripsync/internal/synced"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
}

// pathUpdate is one message on the stream: the whole value now held at Path.
type pathUpdate struct {
	Path   string `json:"path"`
	Value  any    `json:"value"`
	Loaded bool   `json:"loaded"`
}

// stream sends the current value of every path, then every later change. A
// client too slow to keep up is disconnected.
func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer ws.Close()

	out := make(chan pathUpdate, sendBuffer)
	overflow := make(chan struct{})
	var overflowOnce sync.Once
	send := func(u pathUpdate) {
		select {
		case out <- u:
		default:
			overflowOnce.Do(func() { close(overflow) })
		}
	}

	a := s.app
	unsubscribe := []func(){
		follow(a.Squad, send),
		follow(a.Budget, send),
		follow(a.Packing, send),
		follow(a.Schedule, send),
		follow(a.Notes, send),
		follow(a.NoteHeights, send),
	}
	defer func() {
		for _, fn := range unsubscribe {
			fn()
		}
	}()

	// the reader only watches for the client going away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		ws.SetReadLimit(512)
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.logger.Info("websocket client connected", "remote", r.RemoteAddr)
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case u := <-out:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteJSON(u); err != nil {
				s.logger.Info("websocket client disconnected", "error", err)
				return
			}
		case <-ping.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-overflow:
			s.logger.Warn("websocket client too slow, disconnecting", "remote", r.RemoteAddr)
			return
		case <-gone:
			s.logger.Info("websocket client disconnected", "remote", r.RemoteAddr)
			return
		case <-r.Context().Done():
			return
		}
	}
}

// follow queues the current snapshot of c and then every change to it.
func follow[T any](c *synced.Cell[T], send func(pathUpdate)) func() {
	unsubscribe := c.Subscribe(func(v T) {
		send(pathUpdate{Path: c.Path(), Value: v, Loaded: true})
	})
	snap := c.Snapshot()
	send(pathUpdate{Path: snap.Path, Value: snap.Value, Loaded: snap.HasLoadedFromRemote})
	return unsubscribe
}
