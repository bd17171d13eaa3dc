package server

import (
	"log"
	"time"

	"github.com/google/uuid"
)

// JoinRoom implements the join-or-create contract. A session token that
// matches a player in any room rebinds that player to the new connection;
// an unknown token gets a non-fatal session-invalid notice and the caller
// falls through to a fresh join.
func (s *Server) JoinRoom(connID string, ev joinRoomEvent) {
	if ev.SessionToken != "" {
		if room, ok := s.registry.FindByToken(ev.SessionToken); ok {
			s.restoreSession(room, connID, ev.SessionToken)
			return
		}
		s.emit("", []outbound{unicast(connID, evSessionInvalid, map[string]any{})})
	}

	room, created := s.registry.GetOrCreate(ev.RoomCode, func(code string) *Room {
		return s.newRoom(code, ev)
	})
	if created {
		log.Printf("room created room_code=%s rounds=%d voting_seconds=%d max_players=%d",
			room.Code, room.RoundCount, room.VotingTime, room.MaxPlayers)
		s.persistRoom(room)
	}

	var joinedName string
	s.applyRoom(room, func(r *Room) []outbound {
		if existing := r.findPlayer(connID); existing != nil {
			// Duplicate join from the same connection is a no-op.
			return []outbound{bcast(evRoomUpdate, rosterPayload(r))}
		}
		if len(r.Players) >= r.MaxPlayers {
			return []outbound{unicast(connID, evRoomFull, map[string]any{"room_code": r.Code})}
		}
		token := ev.SessionToken
		if token == "" {
			token = uuid.NewString()
		}
		player := Player{
			ID:           connID,
			SessionToken: token,
			Name:         ev.Name,
			LastActive:   time.Now().UTC(),
		}
		r.Players = append(r.Players, player)
		r.Scores[connID] = 0
		joinedName = ev.Name
		return []outbound{
			unicast(connID, evRoomJoined, map[string]any{
				"room_code":     r.Code,
				"player_id":     connID,
				"session_token": token,
			}),
			bcast(evRoomUpdate, rosterPayload(r)),
		}
	})
	if joinedName != "" {
		log.Printf("player joined room_code=%s player_id=%s name=%s", room.Code, connID, joinedName)
		s.persistPlayerJoin(room, connID, joinedName)
		s.ensureSweep(room.Code)
	}
}

// restoreSession rebinds an existing player to a new connection id, keeping
// score, roster position, and any in-flight submission or votes.
func (s *Server) restoreSession(room *Room, connID, token string) {
	var restored bool
	s.applyRoom(room, func(r *Room) []outbound {
		player := r.findPlayerByToken(token)
		if player == nil {
			return []outbound{unicast(connID, evSessionInvalid, map[string]any{})}
		}
		oldID := player.ID
		player.ID = connID
		player.AFK = false
		player.LastActive = time.Now().UTC()
		rekeyPlayer(r, oldID, connID)
		restored = true
		return []outbound{
			unicast(connID, evSessionRestored, restorePayload(r, connID)),
			bcast(evRoomUpdate, rosterPayload(r)),
		}
	})
	if restored {
		s.cancelRoomTimer(room.Code, removalKind(token))
		log.Printf("session restored room_code=%s player_id=%s", room.Code, connID)
		s.persistRoomEvent(room, "session_restored", EventPayload{PlayerID: connID})
		s.ensureSweep(room.Code)
	}
}

// rekeyPlayer moves every per-player map entry and submission/vote owner
// from the old connection id to the new one.
func rekeyPlayer(r *Room, oldID, newID string) {
	if oldID == newID {
		return
	}
	if score, ok := r.Scores[oldID]; ok {
		r.Scores[newID] = score
		delete(r.Scores, oldID)
	}
	if avatar, ok := r.Avatars[oldID]; ok {
		r.Avatars[newID] = avatar
		delete(r.Avatars, oldID)
	}
	for i := range r.Submissions {
		if r.Submissions[i].PlayerID == oldID {
			r.Submissions[i].PlayerID = newID
		}
		for j := range r.Submissions[i].Votes {
			if r.Submissions[i].Votes[j].VoterID == oldID {
				r.Submissions[i].Votes[j].VoterID = newID
			}
		}
	}
}

func (s *Server) newRoom(code string, ev joinRoomEvent) *Room {
	votingTime := ev.RoundTime
	if votingTime <= 0 {
		votingTime = s.cfg.VotingSeconds
	}
	maxPlayers := ev.MaxPlayers
	if maxPlayers <= 0 {
		maxPlayers = s.cfg.MaxPlayers
	}
	roundCount := ev.RoundCount
	if roundCount <= 0 {
		roundCount = s.cfg.RoundCount
	}
	return &Room{
		Code:       code,
		Phase:      phaseLobby,
		RoundCount: roundCount,
		VotingTime: votingTime,
		SubmitTime: s.cfg.SubmitSeconds,
		MaxPlayers: maxPlayers,
		Scores:     make(map[string]int),
		Avatars:    make(map[string]string),
		UsedWords:  make(map[string]struct{}),
	}
}

// UpdateAvatar stores a player's avatar and announces it to the room.
func (s *Server) UpdateAvatar(connID, roomCode, avatar string) {
	s.apply(roomCode, func(r *Room) []outbound {
		player := r.findPlayer(connID)
		if player == nil {
			return nil
		}
		s.touch(player)
		r.Avatars[connID] = avatar
		return []outbound{bcast(evAvatarUpdated, map[string]any{
			"player_id": connID,
			"avatar":    avatar,
		})}
	})
}
