// Package api exposes the simulation to outside observers: read-only GET
// endpoints for world state, a bearer-token admin endpoint to step the
// turn loop, and a WebSocket feed of per-turn event batches.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	humanize "github.com/dustin/go-humanize"

	"github.com/talgya/deadgrid/internal/engine"
	"github.com/talgya/deadgrid/internal/grid"
	"github.com/talgya/deadgrid/internal/persistence"
	"github.com/talgya/deadgrid/internal/vision"
)

// Server serves the simulation state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// The turn loop and handlers share the simulation; steps driven over
	// HTTP serialize against the runner through this mutex.
	Mu sync.Mutex

	Stream *Stream

	started time.Time
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	s.started = time.Now()
	if s.Stream == nil {
		s.Stream = NewStream()
	}

	mapLimiter := NewRateLimiter(60, time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/fov", s.handleFOV)
	mux.HandleFunc("/api/v1/map", RateLimitMiddleware(mapLimiter, s.handleMap))
	mux.HandleFunc("/api/v1/step", s.adminOnly(s.handleStep))
	mux.HandleFunc("/ws", s.Stream.handleWS)

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// handleStatus summarizes the world for a quick check-in.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	writeJSON(w, map[string]any{
		"turn":      s.Sim.Turn,
		"uptime":    humanize.Time(s.started),
		"map":       s.Sim.WorldMap.String(),
		"cells":     humanize.Comma(int64(s.Sim.WorldMap.CellCount())),
		"player_at": s.Sim.Player.Pos(),
		"stats":     s.Sim.Stats,
		"over":      s.Sim.Over(),
	})
}

// handleAgents lists every zombie with its perception flags and label.
func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	type agentEntry struct {
		ID       string     `json:"id"`
		Kind     string     `json:"kind"`
		Pos      grid.Coord `json:"pos"`
		LastSeen bool       `json:"last_seen"`
		Target   grid.Coord `json:"last_seen_coords"`
		Spotted  bool       `json:"player_in_sight"`
		Behavior string     `json:"behavior"`
		HP       int        `json:"hp"`
	}

	agents := make([]agentEntry, 0, len(s.Sim.Zombies))
	for _, z := range s.Sim.Zombies {
		if !z.Alive() {
			continue
		}
		agents = append(agents, agentEntry{
			ID:       z.UUID.String(),
			Kind:     z.Kind.String(),
			Pos:      z.Pos(),
			LastSeen: z.LastSeen,
			Target:   z.LastSeenCoords,
			Spotted:  s.Sim.Tracker.Spotted(z.UUID),
			Behavior: z.BehaviorLabel,
			HP:       z.HP,
		})
	}
	writeJSON(w, map[string]any{"agents": agents})
}

// handleEvents returns the recent event log, preferring the DB when wired.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.DB != nil {
		events, err := s.DB.RecentEvents(50)
		if err == nil {
			writeJSON(w, map[string]any{"events": events})
			return
		}
		slog.Warn("event query fell back to memory", "error", err)
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()
	events := s.Sim.Events
	if len(events) > 50 {
		events = events[len(events)-50:]
	}
	writeJSON(w, map[string]any{"events": events})
}

// handleFOV serves the player's current field of view, the same call the
// fog-of-war renderer consumes.
func (s *Server) handleFOV(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	fov, err := vision.FieldOfView(s.Sim.WorldMap, s.Sim.Player, vision.Options{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	occupants := make([]map[string]any, 0, len(fov.Occupants))
	for _, o := range fov.Occupants {
		occupants = append(occupants, map[string]any{
			"id":    o.ID().String(),
			"label": o.Label(),
			"pos":   o.Pos(),
		})
	}
	writeJSON(w, map[string]any{
		"tiles":     fov.Tiles,
		"occupants": occupants,
	})
}

// handleMap dumps terrain for the map renderer.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	m := s.Sim.WorldMap
	rows := make([][]uint8, m.Height)
	for y := 0; y < m.Height; y++ {
		row := make([]uint8, m.Width)
		for x := 0; x < m.Width; x++ {
			row[x] = uint8(m.Get(grid.Coord{X: x, Y: y}).Terrain)
		}
		rows[y] = row
	}
	writeJSON(w, map[string]any{
		"width":   m.Width,
		"height":  m.Height,
		"terrain": rows,
	})
}

// handleStep advances the simulation by one turn on demand.
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if s.Sim.Over() {
		http.Error(w, "simulation over", http.StatusConflict)
		return
	}
	before := len(s.Sim.Events)
	if err := s.Sim.RunTurn(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.Stream.Broadcast(TurnUpdate{
		Turn:   s.Sim.Turn,
		Stats:  s.Sim.Stats,
		Events: s.Sim.Events[before:],
	})
	writeJSON(w, map[string]any{"turn": s.Sim.Turn, "stats": s.Sim.Stats})
}

// checkBearerToken reports whether the request carries the admin token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly requires bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no DEADGRID_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// TurnUpdate is one WebSocket frame: the events of a completed turn.
type TurnUpdate struct {
	Turn   uint64          `json:"turn"`
	Stats  engine.SimStats `json:"stats"`
	Events []engine.Event  `json:"events"`
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
