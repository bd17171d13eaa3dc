package server

import "time"

// Timer kinds. At most one timer of a kind runs per room; scheduling a new
// one cancels its predecessor so a stale callback can never double-advance
// a phase.
const (
	timerSubmit  = "submit"
	timerVoting  = "voting"
	timerAdvance = "advance"
	timerSweep   = "afk-sweep"
)

type timerKey struct {
	room string
	kind string
}

func removalKind(sessionToken string) string {
	return "remove:" + sessionToken
}

func (s *Server) scheduleRoomTimer(roomCode, kind string, d time.Duration, fn func()) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	key := timerKey{room: roomCode, kind: kind}
	if existing, ok := s.timers[key]; ok {
		existing.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		// Clear the map entry only while it still holds this exact timer:
		// a fire racing a replacement under the same key must not orphan
		// the replacement. The timer variable is read under timersMu,
		// which also covers its assignment below.
		s.timersMu.Lock()
		if s.timers[key] == timer {
			delete(s.timers, key)
		}
		s.timersMu.Unlock()
		fn()
	})
	s.timers[key] = timer
}

func (s *Server) cancelRoomTimer(roomCode, kind string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	key := timerKey{room: roomCode, kind: kind}
	if timer, ok := s.timers[key]; ok {
		timer.Stop()
		delete(s.timers, key)
	}
}

// cancelAllRoomTimers stops every pending timer for a room. Required before
// a room is deleted from the registry.
func (s *Server) cancelAllRoomTimers(roomCode string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	for key, timer := range s.timers {
		if key.room == roomCode {
			timer.Stop()
			delete(s.timers, key)
		}
	}
}

func (s *Server) pendingTimerCount(roomCode string) int {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	count := 0
	for key := range s.timers {
		if key.room == roomCode {
			count++
		}
	}
	return count
}
