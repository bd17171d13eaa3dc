package server

import (
	"log"
	"math"
	"sort"
	"time"
)

// PlayerReady marks the sender ready and rebroadcasts the roster.
func (s *Server) PlayerReady(connID, roomCode string) {
	s.apply(roomCode, func(r *Room) []outbound {
		player := r.findPlayer(connID)
		if player == nil {
			return nil
		}
		s.touch(player)
		player.Ready = true
		return []outbound{bcast(evRoomUpdate, rosterPayload(r))}
	})
}

// StartRound starts the game from the lobby. Host-only; requires at least
// two players, all ready. Unmet preconditions are a silent no-op so stale
// client requests can simply be re-sent once the lobby settles.
func (s *Server) StartRound(connID, roomCode string, customWords []string) {
	var started bool
	if !s.apply(roomCode, func(r *Room) []outbound {
		if !r.isHost(connID) {
			return nil
		}
		s.touch(r.findPlayer(connID))
		if r.Phase != phaseLobby {
			return nil
		}
		if len(r.Players) < 2 {
			return nil
		}
		for i := range r.Players {
			if !r.Players[i].Ready {
				return nil
			}
		}
		if len(customWords) > 0 {
			r.CustomWords = append([]string(nil), customWords...)
		}
		for i := range r.Players {
			r.Players[i].Ready = false
		}
		started = true
		events := []outbound{bcast(evRoomUpdate, rosterPayload(r))}
		return append(events, s.beginNextRoundLocked(r)...)
	}) {
		return
	}
	if started {
		if room, found := s.registry.Get(roomCode); found {
			s.persistRoundStart(room)
		}
	}
}

// beginNextRoundLocked advances the round counter and either sets up the
// next submission window or ends the game. Caller holds the room lock.
func (s *Server) beginNextRoundLocked(r *Room) []outbound {
	r.Round++
	if r.Round > r.RoundCount {
		r.Phase = phaseEnded
		r.Word = ""
		r.Submissions = nil
		log.Printf("game ended room_code=%s rounds=%d", r.Code, r.RoundCount)
		return []outbound{bcast(evGameEnded, scoresPayload(r))}
	}
	r.Submissions = nil
	r.Word = pickWord(r)
	r.Phase = phasePlaying
	code := r.Code
	s.scheduleRoomTimer(code, timerSubmit, time.Duration(r.SubmitTime)*time.Second, func() {
		s.submitWindowExpired(code)
	})
	log.Printf("round started room_code=%s round=%d word=%s", r.Code, r.Round, r.Word)
	return []outbound{bcast(evNewRound, map[string]any{
		"round": r.Round,
		"word":  r.Word,
	})}
}

// SubmitPhoto records one submission per player per round. Once every
// active player has submitted, voting opens without waiting for the timer.
func (s *Server) SubmitPhoto(connID, roomCode, photo string, timestamp int64) {
	var submitted bool
	if !s.apply(roomCode, func(r *Room) []outbound {
		if r.Phase != phasePlaying {
			return nil
		}
		player := r.findPlayer(connID)
		if player == nil {
			return nil
		}
		s.touch(player)
		if r.findSubmission(connID) != nil {
			return nil
		}
		r.Submissions = append(r.Submissions, Submission{
			PlayerID:    connID,
			Photo:       photo,
			SubmittedAt: timestamp,
		})
		submitted = true
		log.Printf("photo submitted room_code=%s player_id=%s submissions=%d/%d",
			r.Code, connID, len(r.Submissions), len(r.Players))
		if submissionQuorum(r) {
			return s.startVotingLocked(r)
		}
		return nil
	}) {
		return
	}
	if submitted {
		s.persistSubmission(roomCode, connID)
	}
}

// submissionQuorum reports whether every active (non-AFK) player has
// submitted for the current round.
func submissionQuorum(r *Room) bool {
	active := r.activePlayers()
	if len(active) == 0 {
		return false
	}
	for _, player := range active {
		if r.findSubmission(player.ID) == nil {
			return false
		}
	}
	return true
}

// submitWindowExpired fires when the submission timer elapses: voting opens
// with whatever was submitted, or the round is skipped after a short grace
// delay when nothing came in.
func (s *Server) submitWindowExpired(roomCode string) {
	s.apply(roomCode, func(r *Room) []outbound {
		if r.Phase != phasePlaying {
			return nil
		}
		if len(r.Submissions) == 0 {
			log.Printf("submission window empty room_code=%s round=%d", r.Code, r.Round)
			s.scheduleRoomTimer(r.Code, timerAdvance,
				time.Duration(s.cfg.EmptyRoundGraceSeconds)*time.Second, func() {
					s.advanceRound(roomCode)
				})
			return nil
		}
		return s.startVotingLocked(r)
	})
}

// startVotingLocked transitions PLAYING -> VOTING. Caller holds the room
// lock. The submission timer is cancelled so it cannot fire late.
func (s *Server) startVotingLocked(r *Room) []outbound {
	s.cancelRoomTimer(r.Code, timerSubmit)
	r.Phase = phaseVoting
	code := r.Code
	s.scheduleRoomTimer(code, timerVoting, time.Duration(r.VotingTime)*time.Second, func() {
		s.votingExpired(code)
	})
	log.Printf("voting started room_code=%s round=%d submissions=%d", r.Code, r.Round, len(r.Submissions))
	return []outbound{bcast(evStartVoting, submissionsPayload(r))}
}

// CastVote records a yes/no vote. Self-votes, duplicate votes, and
// out-of-range submission indexes are silent no-ops.
func (s *Server) CastVote(connID, roomCode string, submissionIndex int, choice string) {
	var voted bool
	if !s.apply(roomCode, func(r *Room) []outbound {
		if r.Phase != phaseVoting {
			return nil
		}
		player := r.findPlayer(connID)
		if player == nil {
			return nil
		}
		s.touch(player)
		if submissionIndex < 0 || submissionIndex >= len(r.Submissions) {
			return nil
		}
		sub := &r.Submissions[submissionIndex]
		if sub.PlayerID == connID {
			return nil
		}
		for _, vote := range sub.Votes {
			if vote.VoterID == connID {
				return nil
			}
		}
		sub.Votes = append(sub.Votes, Vote{VoterID: connID, Choice: choice})
		voted = true
		if votingQuorum(r) {
			return s.finishVotingLocked(r)
		}
		return nil
	}) {
		return
	}
	if voted {
		s.persistVote(roomCode, connID, submissionIndex, choice)
	}
}

// votingQuorum reports whether every active eligible voter has voted on
// every submission. Eligibility is per submission: any active player other
// than the owner.
func votingQuorum(r *Room) bool {
	for i := range r.Submissions {
		sub := &r.Submissions[i]
		for _, player := range r.activePlayers() {
			if player.ID == sub.PlayerID {
				continue
			}
			if !hasVoted(sub, player.ID) {
				return false
			}
		}
	}
	return true
}

func hasVoted(sub *Submission, voterID string) bool {
	for _, vote := range sub.Votes {
		if vote.VoterID == voterID {
			return true
		}
	}
	return false
}

// VotingTimeout handles the explicit client-side timeout signal. Idempotent:
// once scoring has started the signal is ignored.
func (s *Server) VotingTimeout(connID, roomCode string) {
	s.apply(roomCode, func(r *Room) []outbound {
		if player := r.findPlayer(connID); player != nil {
			s.touch(player)
		}
		if r.Phase != phaseVoting {
			return nil
		}
		return s.finishVotingLocked(r)
	})
}

// votingExpired is the server-side voting timer; the client signal above is
// advisory, this one is authoritative.
func (s *Server) votingExpired(roomCode string) {
	s.apply(roomCode, func(r *Room) []outbound {
		if r.Phase != phaseVoting {
			return nil
		}
		return s.finishVotingLocked(r)
	})
}

// finishVotingLocked transitions VOTING -> SCORING: awards points, shows
// scores for the display delay, then schedules the round advance. Caller
// holds the room lock.
func (s *Server) finishVotingLocked(r *Room) []outbound {
	s.cancelRoomTimer(r.Code, timerVoting)
	scoreRound(r)
	r.Phase = phaseScoring
	code := r.Code
	s.scheduleRoomTimer(code, timerAdvance, time.Duration(s.cfg.ScoreDisplaySeconds)*time.Second, func() {
		s.advanceRound(code)
	})
	log.Printf("round scored room_code=%s round=%d", r.Code, r.Round)
	return []outbound{bcast(evScoreUpdate, scoresPayload(r))}
}

// scoreRound awards round(100 * speedBonus * yesRatio) per qualifying
// submission. A submission qualifies when at least half its votes are yes;
// speed rank is 0-based over all submissions by ascending timestamp, and
// the bonus is clamped at zero for very late ranks.
func scoreRound(r *Room) {
	order := make([]int, len(r.Submissions))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return r.Submissions[order[a]].SubmittedAt < r.Submissions[order[b]].SubmittedAt
	})
	rank := make(map[string]int, len(order))
	for position, index := range order {
		rank[r.Submissions[index].PlayerID] = position
	}

	for i := range r.Submissions {
		sub := &r.Submissions[i]
		total := len(sub.Votes)
		if total == 0 {
			continue
		}
		yes := 0
		for _, vote := range sub.Votes {
			if vote.Choice == voteYes {
				yes++
			}
		}
		ratio := float64(yes) / float64(total)
		if ratio < 0.5 {
			continue
		}
		speedBonus := 1 - 0.1*float64(rank[sub.PlayerID])
		if speedBonus < 0 {
			speedBonus = 0
		}
		points := int(math.Round(100 * speedBonus * ratio))
		r.Scores[sub.PlayerID] += points
	}
}

// advanceRound runs after the score display delay, or after the grace delay
// of an empty submission window. A photo that arrived during the grace
// delay is not thrown away: the round opens voting on it instead of
// skipping ahead.
func (s *Server) advanceRound(roomCode string) {
	if !s.apply(roomCode, func(r *Room) []outbound {
		switch {
		case r.Phase == phaseScoring:
			return s.beginNextRoundLocked(r)
		case r.Phase == phasePlaying && len(r.Submissions) == 0:
			return s.beginNextRoundLocked(r)
		case r.Phase == phasePlaying:
			return s.startVotingLocked(r)
		default:
			return nil
		}
	}) {
		return
	}
	if room, found := s.registry.Get(roomCode); found {
		s.persistRoundStart(room)
	}
}

// ResetGame returns the room to the lobby: host-only; zeroes scores, clears
// submissions, used words, and ready flags; players stay in the room.
func (s *Server) ResetGame(connID, roomCode string) {
	s.apply(roomCode, func(r *Room) []outbound {
		if !r.isHost(connID) {
			return nil
		}
		s.touch(r.findPlayer(connID))
		r.Round = 0
		r.Phase = phaseLobby
		r.Word = ""
		r.Submissions = nil
		r.UsedWords = make(map[string]struct{})
		r.Scores = make(map[string]int, len(r.Players))
		for i := range r.Players {
			r.Players[i].Ready = false
			r.Scores[r.Players[i].ID] = 0
		}
		s.cancelRoomTimer(r.Code, timerSubmit)
		s.cancelRoomTimer(r.Code, timerVoting)
		s.cancelRoomTimer(r.Code, timerAdvance)
		log.Printf("game reset room_code=%s", r.Code)
		return []outbound{bcast(evGameReset, rosterPayload(r))}
	})
}

// maybeAdvanceLocked re-evaluates phase exit conditions after the active
// player set shrinks (AFK flagging, disconnect, removal).
func (s *Server) maybeAdvanceLocked(r *Room) []outbound {
	switch r.Phase {
	case phasePlaying:
		if len(r.Submissions) > 0 && submissionQuorum(r) {
			return s.startVotingLocked(r)
		}
	case phaseVoting:
		if votingQuorum(r) {
			return s.finishVotingLocked(r)
		}
	}
	return nil
}
