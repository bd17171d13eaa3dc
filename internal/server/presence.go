package server

import (
	"log"
	"time"
)

// touch records activity for a player and clears its AFK flag. Every
// state-mutating event routes through here.
func (s *Server) touch(player *Player) {
	if player == nil {
		return
	}
	player.LastActive = time.Now().UTC()
	player.AFK = false
}

// ActivityPing is a bare keep-alive. If it wakes an AFK player the roster
// change is broadcast.
func (s *Server) ActivityPing(connID, roomCode string) {
	s.apply(roomCode, func(r *Room) []outbound {
		player := r.findPlayer(connID)
		if player == nil {
			return nil
		}
		wasAFK := player.AFK
		s.touch(player)
		if wasAFK {
			return []outbound{bcast(evRoomUpdate, rosterPayload(r))}
		}
		return nil
	})
}

// MarkAFK lets a client flag itself away immediately, without waiting for
// the sweep to notice.
func (s *Server) MarkAFK(connID, roomCode string) {
	s.apply(roomCode, func(r *Room) []outbound {
		player := r.findPlayer(connID)
		if player == nil {
			return nil
		}
		player.AFK = true
		player.LastActive = time.Now().UTC().Add(-time.Duration(s.cfg.AFKThresholdSeconds) * time.Second)
		events := []outbound{bcast(evRoomUpdate, rosterPayload(r))}
		return append(events, s.maybeAdvanceLocked(r)...)
	})
}

// ensureSweep (re)arms the periodic AFK sweep for a room.
func (s *Server) ensureSweep(roomCode string) {
	s.scheduleRoomTimer(roomCode, timerSweep,
		time.Duration(s.cfg.AFKSweepSeconds)*time.Second, func() {
			s.sweepRoom(roomCode)
		})
}

// sweepRoom flags players idle past the threshold as AFK, broadcasts the
// roster when anything changed, and re-evaluates phase advancement since
// AFK players drop out of the quorum.
func (s *Server) sweepRoom(roomCode string) {
	threshold := time.Now().UTC().Add(-time.Duration(s.cfg.AFKThresholdSeconds) * time.Second)
	if !s.apply(roomCode, func(r *Room) []outbound {
		changed := false
		for i := range r.Players {
			if r.Players[i].AFK {
				continue
			}
			if r.Players[i].LastActive.Before(threshold) {
				r.Players[i].AFK = true
				changed = true
				log.Printf("player afk room_code=%s player_id=%s", r.Code, r.Players[i].ID)
			}
		}
		if !changed {
			return nil
		}
		events := []outbound{bcast(evRoomUpdate, rosterPayload(r))}
		return append(events, s.maybeAdvanceLocked(r)...)
	}) {
		return
	}
	s.ensureSweep(roomCode)
}

// Disconnect handles a transport drop: the player is kept on the roster as
// AFK and removed only after the grace period, unless a session-validated
// reconnect rebinds it first.
func (s *Server) Disconnect(connID string) {
	room, ok := s.findRoomByConn(connID)
	if !ok {
		return
	}
	var token string
	s.applyRoom(room, func(r *Room) []outbound {
		player := r.findPlayer(connID)
		if player == nil {
			return nil
		}
		player.AFK = true
		// Backdate so the sweep treats the player consistently.
		player.LastActive = time.Now().UTC().Add(-time.Duration(s.cfg.AFKThresholdSeconds) * time.Second)
		token = player.SessionToken
		log.Printf("player disconnected room_code=%s player_id=%s", r.Code, connID)
		events := []outbound{bcast(evRoomUpdate, rosterPayload(r))}
		return append(events, s.maybeAdvanceLocked(r)...)
	})
	if token != "" {
		code := room.Code
		grace := time.Duration(s.cfg.RemovalGraceSeconds) * time.Second
		s.scheduleRoomTimer(code, removalKind(token), grace, func() {
			s.removePlayerByToken(code, token, "afk_timeout")
		})
	}
}

func (s *Server) findRoomByConn(connID string) (*Room, bool) {
	for _, code := range s.registry.ListCodes() {
		room, ok := s.registry.Get(code)
		if !ok {
			continue
		}
		room.mu.Lock()
		found := room.findPlayer(connID) != nil
		room.mu.Unlock()
		if found {
			return room, true
		}
	}
	return nil, false
}

// removePlayerByToken drops a player after the disconnect grace period. If
// the roster empties the room and all its timers go with it.
func (s *Server) removePlayerByToken(roomCode, token, reason string) {
	var removedID string
	if !s.apply(roomCode, func(r *Room) []outbound {
		player := r.findPlayerByToken(token)
		if player == nil {
			return nil
		}
		removedID = player.ID
		return s.removePlayerLocked(r, player.ID, reason)
	}) {
		return
	}
	if removedID != "" {
		s.deleteRoomIfEmpty(roomCode)
	}
}

// removePlayerLocked removes a player from the roster along with its score,
// avatar, and (while the round is still open) submission. Votes already
// cast remain: votes are immutable once recorded. Caller holds the room
// lock.
func (s *Server) removePlayerLocked(r *Room, playerID, reason string) []outbound {
	index := -1
	for i := range r.Players {
		if r.Players[i].ID == playerID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil
	}
	token := r.Players[index].SessionToken
	r.Players = append(r.Players[:index], r.Players[index+1:]...)
	delete(r.Scores, playerID)
	delete(r.Avatars, playerID)
	if r.Phase == phasePlaying {
		for i := range r.Submissions {
			if r.Submissions[i].PlayerID == playerID {
				r.Submissions = append(r.Submissions[:i], r.Submissions[i+1:]...)
				break
			}
		}
	}
	s.cancelRoomTimer(r.Code, removalKind(token))
	log.Printf("player removed room_code=%s player_id=%s reason=%s", r.Code, playerID, reason)
	if len(r.Players) == 0 {
		return nil
	}
	events := []outbound{bcast(evRoomUpdate, rosterPayload(r))}
	return append(events, s.maybeAdvanceLocked(r)...)
}

// deleteRoomIfEmpty garbage-collects a room once its roster is empty. All
// pending timers, the hub member list, and the emit slot are dropped before
// the registry entry goes.
func (s *Server) deleteRoomIfEmpty(roomCode string) {
	room, ok := s.registry.Get(roomCode)
	if !ok {
		return
	}
	room.mu.Lock()
	empty := len(room.Players) == 0
	room.mu.Unlock()
	if !empty {
		return
	}
	s.cancelAllRoomTimers(roomCode)
	s.registry.Delete(roomCode)
	s.hub.dropRoom(roomCode)
	s.dropEmitLock(roomCode)
	log.Printf("room deleted room_code=%s", roomCode)
}

// KickPlayer removes a target player at the host's request. Only the
// roster's first player may kick, and never itself; anything else is a
// silent no-op. The target gets a direct notice so it can leave cleanly.
func (s *Server) KickPlayer(connID, roomCode, targetID string) {
	var kicked bool
	if !s.apply(roomCode, func(r *Room) []outbound {
		if !r.isHost(connID) {
			return nil
		}
		if targetID == connID {
			return nil
		}
		if r.findPlayer(targetID) == nil {
			return nil
		}
		s.touch(r.findPlayer(connID))
		events := s.removePlayerLocked(r, targetID, "kicked")
		kicked = true
		return append(events, unicast(targetID, evKicked, map[string]any{"room_code": r.Code}))
	}) {
		return
	}
	if kicked {
		s.persistRoomEventByCode(roomCode, "player_kicked", EventPayload{PlayerID: targetID})
	}
}
