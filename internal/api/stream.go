// WebSocket turn feed. Viewers connect to /ws and receive one JSON frame
// per completed turn; the simulation never blocks on a slow client — full
// send buffers drop the connection.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Observer feed is read-only world state; any origin may watch.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Stream fans turn updates out to every connected viewer.
type Stream struct {
	mu      sync.RWMutex
	viewers map[*viewer]bool
}

// NewStream creates an empty stream hub.
func NewStream() *Stream {
	return &Stream{viewers: make(map[*viewer]bool)}
}

type viewer struct {
	ws   *websocket.Conn
	send chan []byte
}

// handleWS upgrades the connection and starts the write pump.
func (s *Stream) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	v := &viewer{ws: ws, send: make(chan []byte, 64)}
	s.mu.Lock()
	s.viewers[v] = true
	s.mu.Unlock()
	slog.Info("viewer connected", "remote", r.RemoteAddr)

	go s.writePump(v)
	go s.readPump(v)
}

// Broadcast queues an update to every viewer. Viewers that cannot keep up
// are disconnected rather than stalling the turn loop.
func (s *Stream) Broadcast(update TurnUpdate) {
	payload, err := json.Marshal(update)
	if err != nil {
		slog.Error("turn update marshal failed", "error", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for v := range s.viewers {
		select {
		case v.send <- payload:
		default:
			go s.drop(v)
		}
	}
}

// Viewers returns the current connection count.
func (s *Stream) Viewers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.viewers)
}

func (s *Stream) writePump(v *viewer) {
	defer v.ws.Close()
	for message := range v.send {
		if err := v.ws.WriteMessage(websocket.TextMessage, message); err != nil {
			s.drop(v)
			return
		}
	}
	v.ws.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump discards inbound frames; the feed is one-way. Reading is still
// required so close and ping frames are processed.
func (s *Stream) readPump(v *viewer) {
	defer s.drop(v)
	for {
		if _, _, err := v.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("viewer read error", "error", err)
			}
			return
		}
	}
}

func (s *Stream) drop(v *viewer) {
	s.mu.Lock()
	if _, ok := s.viewers[v]; ok {
		delete(s.viewers, v)
		close(v.send)
	}
	s.mu.Unlock()
}
