package server

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"object-hunt/internal/db"

	"github.com/jackc/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// The persistence layer is a write-only audit trail: rooms, joins, rounds,
// and notable events are mirrored to Postgres when a connection is
// configured. Every writer is a no-op without one, and room state is never
// read back — the in-memory registry stays authoritative.

func (s *Server) persistRoom(room *Room) {
	if s.db == nil {
		return
	}
	room.mu.Lock()
	record := db.Room{
		Code:       room.Code,
		Phase:      room.Phase,
		RoundCount: room.RoundCount,
		MaxPlayers: room.MaxPlayers,
	}
	room.mu.Unlock()
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		log.Printf("persist room failed room_code=%s error=%v", record.Code, err)
		return
	}
	room.mu.Lock()
	room.DBID = record.ID
	room.mu.Unlock()
	s.persistRoomEvent(room, "room_created", EventPayload{RoomCode: record.Code})
}

func (s *Server) persistPlayerJoin(room *Room, connID, name string) {
	if s.db == nil {
		return
	}
	room.mu.Lock()
	roomDBID := room.DBID
	var token string
	var isHost bool
	if player := room.findPlayer(connID); player != nil {
		token = player.SessionToken
		isHost = room.isHost(connID)
	}
	room.mu.Unlock()
	if roomDBID == 0 || token == "" {
		return
	}
	record := db.Player{
		RoomID:       roomDBID,
		Name:         name,
		SessionToken: token,
		IsHost:       isHost,
		JoinedAt:     time.Now().UTC(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		if !isUniqueViolation(err) {
			log.Printf("persist player failed room_code=%s player_id=%s error=%v", room.Code, connID, err)
		}
		return
	}
	room.mu.Lock()
	if player := room.findPlayer(connID); player != nil {
		player.DBID = record.ID
	}
	room.mu.Unlock()
	s.persistRoomEvent(room, "player_joined", EventPayload{PlayerName: name, PlayerID: connID})
}

func (s *Server) persistRoundStart(room *Room) {
	if s.db == nil {
		return
	}
	room.mu.Lock()
	roomDBID := room.DBID
	phase := room.Phase
	number := room.Round
	word := room.Word
	room.mu.Unlock()
	if roomDBID == 0 || phase != phasePlaying {
		return
	}
	record := db.Round{
		RoomID: roomDBID,
		Number: number,
		Word:   word,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		log.Printf("persist round failed room_code=%s round=%d error=%v", room.Code, number, err)
		return
	}
	room.mu.Lock()
	room.DBRoundID = record.ID
	room.mu.Unlock()
	s.persistRoomEvent(room, "round_started", EventPayload{Round: number, Word: word})
}

func (s *Server) persistSubmission(roomCode, connID string) {
	if s.db == nil {
		return
	}
	room, ok := s.registry.Get(roomCode)
	if !ok {
		return
	}
	room.mu.Lock()
	roundDBID := room.DBRoundID
	var playerDBID uint
	if player := room.findPlayer(connID); player != nil {
		playerDBID = player.DBID
	}
	var photo []byte
	var submittedAt time.Time
	if sub := room.findSubmission(connID); sub != nil {
		photo = []byte(sub.Photo)
		submittedAt = time.UnixMilli(sub.SubmittedAt).UTC()
	}
	room.mu.Unlock()
	if roundDBID == 0 || playerDBID == 0 || photo == nil {
		return
	}
	record := db.Submission{
		RoundID:     roundDBID,
		PlayerID:    playerDBID,
		Photo:       photo,
		SubmittedAt: submittedAt,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		log.Printf("persist submission failed room_code=%s player_id=%s error=%v", roomCode, connID, err)
		return
	}
	room.mu.Lock()
	if sub := room.findSubmission(connID); sub != nil {
		sub.DBID = record.ID
	}
	room.mu.Unlock()
}

func (s *Server) persistVote(roomCode, voterConnID string, submissionIndex int, choice string) {
	if s.db == nil {
		return
	}
	room, ok := s.registry.Get(roomCode)
	if !ok {
		return
	}
	room.mu.Lock()
	roundDBID := room.DBRoundID
	var voterDBID uint
	if player := room.findPlayer(voterConnID); player != nil {
		voterDBID = player.DBID
	}
	var submissionDBID uint
	if submissionIndex >= 0 && submissionIndex < len(room.Submissions) {
		submissionDBID = room.Submissions[submissionIndex].DBID
	}
	room.mu.Unlock()
	if roundDBID == 0 || voterDBID == 0 || submissionDBID == 0 {
		return
	}
	record := db.Vote{
		RoundID:      roundDBID,
		SubmissionID: submissionDBID,
		PlayerID:     voterDBID,
		Choice:       choice,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		log.Printf("persist vote failed room_code=%s player_id=%s error=%v", roomCode, voterConnID, err)
	}
}

func (s *Server) persistRoomEvent(room *Room, eventType string, payload EventPayload) {
	if s.db == nil {
		return
	}
	room.mu.Lock()
	roomDBID := room.DBID
	roundDBID := room.DBRoundID
	room.mu.Unlock()
	if roomDBID == 0 {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	record := db.Event{
		RoomID:  roomDBID,
		Type:    eventType,
		Payload: datatypes.JSON(data),
	}
	if roundDBID != 0 {
		record.RoundID = &roundDBID
	}
	if err := s.db.Create(&record).Error; err != nil {
		log.Printf("persist event failed room_code=%s type=%s error=%v", room.Code, eventType, err)
	}
}

func (s *Server) persistRoomEventByCode(roomCode, eventType string, payload EventPayload) {
	room, ok := s.registry.Get(roomCode)
	if !ok {
		return
	}
	s.persistRoomEvent(room, eventType, payload)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
