package db

import (
	"time"

	"gorm.io/datatypes"
)

type Room struct {
	ID         uint      `gorm:"primaryKey"`
	Code       string    `gorm:"size:12;uniqueIndex;not null"`
	Phase      string    `gorm:"size:32;not null"`
	RoundCount int       `gorm:"not null;default:5"`
	MaxPlayers int       `gorm:"not null;default:6"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
	Players    []Player
	Rounds     []Round
	Events     []Event
}

type Player struct {
	ID           uint      `gorm:"primaryKey"`
	RoomID       uint      `gorm:"index;not null;uniqueIndex:idx_players_room_token"`
	Name         string    `gorm:"size:64;not null"`
	SessionToken string    `gorm:"size:128;not null;uniqueIndex:idx_players_room_token"`
	IsHost       bool      `gorm:"not null;default:false"`
	Score        int       `gorm:"not null;default:0"`
	JoinedAt     time.Time `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
	Submissions  []Submission
	Votes        []Vote
}

type Round struct {
	ID          uint      `gorm:"primaryKey"`
	RoomID      uint      `gorm:"index;not null;uniqueIndex:idx_rounds_room_number"`
	Number      int       `gorm:"not null;uniqueIndex:idx_rounds_room_number"`
	Word        string    `gorm:"size:64;not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	Submissions []Submission
	Votes       []Vote
}

type Submission struct {
	ID          uint      `gorm:"primaryKey"`
	RoundID     uint      `gorm:"index;not null;uniqueIndex:idx_submissions_round_player"`
	PlayerID    uint      `gorm:"index;not null;uniqueIndex:idx_submissions_round_player"`
	Photo       []byte    `gorm:"type:bytea;not null"`
	SubmittedAt time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	Votes       []Vote
}

type Vote struct {
	ID           uint      `gorm:"primaryKey"`
	RoundID      uint      `gorm:"index;not null"`
	SubmissionID uint      `gorm:"index;not null;uniqueIndex:idx_votes_submission_voter"`
	PlayerID     uint      `gorm:"index;not null;uniqueIndex:idx_votes_submission_voter"`
	Choice       string    `gorm:"size:8;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	RoomID    uint           `gorm:"index;not null"`
	RoundID   *uint          `gorm:"index"`
	PlayerID  *uint          `gorm:"index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
