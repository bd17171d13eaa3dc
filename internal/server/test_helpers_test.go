package server

import (
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"object-hunt/internal/config"
)

type recordedEvent struct {
	To      string
	Room    string
	Event   string
	Payload any
}

// recordingEmitter captures outbound traffic so tests can assert on what the
// room would have seen, without a live websocket.
type recordingEmitter struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (e *recordingEmitter) Broadcast(roomCode, event string, payload any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, recordedEvent{Room: roomCode, Event: event, Payload: payload})
}

func (e *recordingEmitter) Send(connID, event string, payload any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, recordedEvent{To: connID, Event: event, Payload: payload})
}

func (e *recordingEmitter) byType(event string) []recordedEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	var matched []recordedEvent
	for _, recorded := range e.events {
		if recorded.Event == event {
			matched = append(matched, recorded)
		}
	}
	return matched
}

func (e *recordingEmitter) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = nil
}

func newGameServer(t *testing.T) (*Server, *recordingEmitter) {
	t.Helper()
	srv := New(nil, config.Default())
	sink := &recordingEmitter{}
	srv.emitter = sink
	return srv, sink
}

func joinPlayer(t *testing.T, srv *Server, connID, roomCode, name string) {
	t.Helper()
	srv.JoinRoom(connID, joinRoomEvent{RoomCode: roomCode, Name: name})
	room, ok := srv.registry.Get(roomCode)
	if !ok {
		t.Fatalf("room %s not created", roomCode)
	}
	if room.findPlayer(connID) == nil {
		t.Fatalf("player %s missing from room %s", connID, roomCode)
	}
}

func mustRoom(t *testing.T, srv *Server, roomCode string) *Room {
	t.Helper()
	room, ok := srv.registry.Get(roomCode)
	if !ok {
		t.Fatalf("room %s not found", roomCode)
	}
	return room
}

// runRoundToVoting readies everyone, starts the game, and submits one photo
// per player so the room lands in the voting phase.
func runRoundToVoting(t *testing.T, srv *Server, roomCode string, connIDs []string) {
	t.Helper()
	for _, connID := range connIDs {
		srv.PlayerReady(connID, roomCode)
	}
	srv.StartRound(connIDs[0], roomCode, nil)
	room := mustRoom(t, srv, roomCode)
	if room.Phase != phasePlaying {
		t.Fatalf("expected playing phase after start, got %s", room.Phase)
	}
	for i, connID := range connIDs {
		srv.SubmitPhoto(connID, roomCode, "data:image/jpeg;base64,photo", int64(1000*(i+1)))
	}
	if room.Phase != phaseVoting {
		t.Fatalf("expected voting phase after all submissions, got %s", room.Phase)
	}
}

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}
