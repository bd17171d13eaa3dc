package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"object-hunt/internal/config"

	"gorm.io/gorm"
)

// Emitter delivers named events to connected clients. The websocket hub is
// the production implementation; tests substitute a recording sink.
type Emitter interface {
	Broadcast(roomCode, event string, payload any)
	Send(connID, event string, payload any)
}

type Server struct {
	registry *Registry
	db       *gorm.DB
	cfg      config.Config
	emitter  Emitter
	hub      *wsHub
	timersMu sync.Mutex
	timers   map[timerKey]*time.Timer

	emitMu    sync.Mutex
	emitLocks map[string]*sync.Mutex
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	hub := newWSHub()
	return &Server{
		registry:  NewRegistry(),
		db:        conn,
		cfg:       cfg,
		emitter:   hub,
		hub:       hub,
		timers:    make(map[timerKey]*time.Timer),
		emitLocks: make(map[string]*sync.Mutex),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleHome)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	return mux
}

// apply runs fn on the room under its lock and delivers the events fn
// produced. The room's emit slot is acquired before the room lock is
// released, so event batches reach clients in the order their mutations
// committed. Unknown room codes are a silent no-op.
func (s *Server) apply(roomCode string, fn func(room *Room) []outbound) bool {
	room, ok := s.registry.Get(roomCode)
	if !ok {
		return false
	}
	s.applyRoom(room, fn)
	return true
}

// applyRoom is apply for an already-resolved room. The hub's member list is
// refreshed while the room lock is still held, so broadcast targeting and
// roster state change together.
func (s *Server) applyRoom(room *Room, fn func(room *Room) []outbound) {
	order := s.emitOrder(room.Code)
	room.mu.Lock()
	out := fn(room)
	s.hub.setMembers(room.Code, memberIDsLocked(room))
	order.Lock()
	room.mu.Unlock()
	s.emit(room.Code, out)
	order.Unlock()
}

func (s *Server) emitOrder(roomCode string) *sync.Mutex {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	lock, ok := s.emitLocks[roomCode]
	if !ok {
		lock = &sync.Mutex{}
		s.emitLocks[roomCode] = lock
	}
	return lock
}

func (s *Server) dropEmitLock(roomCode string) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	delete(s.emitLocks, roomCode)
}

// memberIDsLocked snapshots the roster's connection ids. Caller holds the
// room lock.
func memberIDsLocked(r *Room) []string {
	ids := make([]string, 0, len(r.Players))
	for i := range r.Players {
		ids = append(ids, r.Players[i].ID)
	}
	return ids
}

func (s *Server) emit(roomCode string, events []outbound) {
	if s.emitter == nil {
		return
	}
	for _, event := range events {
		if event.To != "" {
			s.emitter.Send(event.To, event.Event, event.Payload)
			continue
		}
		s.emitter.Broadcast(roomCode, event.Event, event.Payload)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
