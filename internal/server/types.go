package server

import (
	"sync"
	"time"
)

const (
	phaseLobby   = "lobby"
	phasePlaying = "playing"
	phaseVoting  = "voting"
	phaseScoring = "scoring"
	phaseEnded   = "ended"
)

const (
	voteYes = "yes"
	voteNo  = "no"
)

// Room holds one game session. All fields are guarded by mu; mutate only
// through Server.apply so timer callbacks and client events serialize.
type Room struct {
	mu sync.Mutex

	Code        string
	Players     []Player // index 0 is the host
	Round       int      // 0 = not started
	RoundCount  int
	VotingTime  int // seconds
	SubmitTime  int // seconds
	MaxPlayers  int
	Phase       string
	Word        string
	Submissions []Submission
	Scores      map[string]int // player id -> cumulative score
	Avatars     map[string]string
	UsedWords   map[string]struct{}
	CustomWords []string
	DBID        uint
	DBRoundID   uint
	CreatedAt   time.Time
}

// Player is identified by a transient connection id and a stable session
// token that survives reconnects.
type Player struct {
	ID           string
	SessionToken string
	Name         string
	Ready        bool
	AFK          bool
	LastActive   time.Time
	DBID         uint
}

type Submission struct {
	PlayerID    string
	Photo       string
	SubmittedAt int64 // client-reported unix millis, ranks submission speed
	Votes       []Vote
	DBID        uint
}

type Vote struct {
	VoterID string
	Choice  string
}

func (r *Room) findPlayer(id string) *Player {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i]
		}
	}
	return nil
}

func (r *Room) findPlayerByToken(token string) *Player {
	if token == "" {
		return nil
	}
	for i := range r.Players {
		if r.Players[i].SessionToken == token {
			return &r.Players[i]
		}
	}
	return nil
}

func (r *Room) isHost(id string) bool {
	return len(r.Players) > 0 && r.Players[0].ID == id
}

func (r *Room) findSubmission(playerID string) *Submission {
	for i := range r.Submissions {
		if r.Submissions[i].PlayerID == playerID {
			return &r.Submissions[i]
		}
	}
	return nil
}

func (r *Room) activePlayers() []*Player {
	active := make([]*Player, 0, len(r.Players))
	for i := range r.Players {
		if !r.Players[i].AFK {
			active = append(active, &r.Players[i])
		}
	}
	return active
}
