package server

import (
	"fmt"
	"testing"
)

func scoringRoom(subs []Submission) *Room {
	room := &Room{
		Code:        "ABC123",
		Submissions: subs,
		Scores:      make(map[string]int),
	}
	for _, sub := range subs {
		room.Scores[sub.PlayerID] = 0
	}
	return room
}

func TestScoreRoundMajorityWithSpeedBonus(t *testing.T) {
	room := scoringRoom([]Submission{
		{
			PlayerID:    "fast",
			SubmittedAt: 1000,
			Votes: []Vote{
				{VoterID: "a", Choice: voteYes},
				{VoterID: "b", Choice: voteYes},
			},
		},
		{
			PlayerID:    "slow",
			SubmittedAt: 2000,
			Votes: []Vote{
				{VoterID: "a", Choice: voteYes},
				{VoterID: "b", Choice: voteYes},
			},
		},
	})
	scoreRound(room)
	if room.Scores["fast"] != 100 {
		t.Fatalf("rank 0 with unanimous yes should score 100, got %d", room.Scores["fast"])
	}
	if room.Scores["slow"] != 90 {
		t.Fatalf("rank 1 with unanimous yes should score 90, got %d", room.Scores["slow"])
	}
}

func TestScoreRoundPartialApproval(t *testing.T) {
	// 3 of 4 yes at rank 0: round(100 * 1.0 * 0.75) = 75.
	room := scoringRoom([]Submission{
		{
			PlayerID:    "p1",
			SubmittedAt: 1000,
			Votes: []Vote{
				{VoterID: "a", Choice: voteYes},
				{VoterID: "b", Choice: voteYes},
				{VoterID: "c", Choice: voteYes},
				{VoterID: "d", Choice: voteNo},
			},
		},
	})
	scoreRound(room)
	if room.Scores["p1"] != 75 {
		t.Fatalf("expected 75, got %d", room.Scores["p1"])
	}
}

func TestScoreRoundExactHalfQualifies(t *testing.T) {
	room := scoringRoom([]Submission{
		{
			PlayerID:    "p1",
			SubmittedAt: 1000,
			Votes: []Vote{
				{VoterID: "a", Choice: voteYes},
				{VoterID: "b", Choice: voteNo},
			},
		},
	})
	scoreRound(room)
	if room.Scores["p1"] != 50 {
		t.Fatalf("a 50%% yes split qualifies and scores 50, got %d", room.Scores["p1"])
	}
}

func TestScoreRoundMinorityRejected(t *testing.T) {
	room := scoringRoom([]Submission{
		{
			PlayerID:    "p1",
			SubmittedAt: 1000,
			Votes: []Vote{
				{VoterID: "a", Choice: voteYes},
				{VoterID: "b", Choice: voteNo},
				{VoterID: "c", Choice: voteNo},
				{VoterID: "d", Choice: voteNo},
				{VoterID: "e", Choice: voteNo},
			},
		},
	})
	scoreRound(room)
	if room.Scores["p1"] != 0 {
		t.Fatalf("minority approval must score 0, got %d", room.Scores["p1"])
	}
}

func TestScoreRoundNoVotesScoresNothing(t *testing.T) {
	room := scoringRoom([]Submission{
		{PlayerID: "p1", SubmittedAt: 1000},
	})
	scoreRound(room)
	if room.Scores["p1"] != 0 {
		t.Fatalf("unvoted submission must score 0, got %d", room.Scores["p1"])
	}
}

func TestScoreRoundSpeedBonusClampedAtZero(t *testing.T) {
	var subs []Submission
	for i := 0; i < 12; i++ {
		subs = append(subs, Submission{
			PlayerID:    fmt.Sprintf("p%d", i),
			SubmittedAt: int64(1000 + i),
			Votes:       []Vote{{VoterID: "judge", Choice: voteYes}},
		})
	}
	room := scoringRoom(subs)
	scoreRound(room)
	if room.Scores["p10"] != 0 || room.Scores["p11"] != 0 {
		t.Fatalf("ranks past 10 must clamp to 0, got %d and %d",
			room.Scores["p10"], room.Scores["p11"])
	}
	if room.Scores["p9"] != 10 {
		t.Fatalf("rank 9 should score 10, got %d", room.Scores["p9"])
	}
}

func TestScoreRoundRanksByTimestampNotOrder(t *testing.T) {
	// Appended out of submission-time order; rank must follow timestamps.
	room := scoringRoom([]Submission{
		{
			PlayerID:    "late",
			SubmittedAt: 9000,
			Votes:       []Vote{{VoterID: "judge", Choice: voteYes}},
		},
		{
			PlayerID:    "early",
			SubmittedAt: 1000,
			Votes:       []Vote{{VoterID: "judge", Choice: voteYes}},
		},
	})
	scoreRound(room)
	if room.Scores["early"] != 100 {
		t.Fatalf("earliest timestamp should take rank 0, got %d", room.Scores["early"])
	}
	if room.Scores["late"] != 90 {
		t.Fatalf("latest timestamp should take rank 1, got %d", room.Scores["late"])
	}
}
