package server

import (
	"sync"
	"time"
)

// Registry owns the process-wide room table. The registry mutex only guards
// the map itself; each room carries its own lock, so events for distinct
// rooms are applied in parallel while events for one room serialize.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

func (reg *Registry) Get(code string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[code]
	return room, ok
}

// GetOrCreate returns the room for code, creating it with create() when
// absent. With an empty code a fresh collision-checked code is generated.
func (reg *Registry) GetOrCreate(code string, create func(code string) *Room) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if code == "" {
		code = reg.unusedCodeLocked()
	}
	if room, ok := reg.rooms[code]; ok {
		return room, false
	}
	room := create(code)
	room.CreatedAt = time.Now().UTC()
	reg.rooms[code] = room
	return room, true
}

func (reg *Registry) Delete(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, code)
}

// FindByToken locates the room containing a player with the given session
// token. Tokens are unique per player, so the first match wins.
func (reg *Registry) FindByToken(token string) (*Room, bool) {
	if token == "" {
		return nil, false
	}
	reg.mu.Lock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	reg.mu.Unlock()

	for _, room := range rooms {
		room.mu.Lock()
		found := room.findPlayerByToken(token) != nil
		room.mu.Unlock()
		if found {
			return room, true
		}
	}
	return nil, false
}

func (reg *Registry) ListCodes() []string {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	codes := make([]string, 0, len(reg.rooms))
	for code := range reg.rooms {
		codes = append(codes, code)
	}
	return codes
}

func (reg *Registry) unusedCodeLocked() string {
	for {
		code := newRoomCode()
		if _, taken := reg.rooms[code]; !taken {
			return code
		}
	}
}
