package server

import (
	"encoding/json"
	"log"

	"github.com/go-playground/validator/v10"
)

// Inbound event names.
const (
	evJoinRoom      = "join-room"
	evPlayerReady   = "player-ready"
	evStartRound    = "start-round"
	evSubmitPhoto   = "submit-photo"
	evCastVote      = "cast-vote"
	evVotingTimeout = "voting-timeout"
	evUpdateAvatar  = "update-avatar"
	evKickPlayer    = "kick-player"
	evResetGame     = "reset-game"
	evActivityPing  = "activity-ping"
	evMarkAFK       = "mark-afk"
	evSendMessage   = "send-message"
)

// Outbound event names.
const (
	evRoomUpdate      = "room-update"
	evRoomJoined      = "room-joined"
	evSessionRestored = "session-restored"
	evSessionInvalid  = "session-invalid"
	evRoomFull        = "room-full"
	evNewRound        = "new-round"
	evStartVoting     = "start-voting"
	evScoreUpdate     = "score-update"
	evGameEnded       = "game-ended"
	evGameReset       = "game-reset"
	evAvatarUpdated   = "avatar-updated"
	evKicked          = "kicked"
	evChatMessage     = "chat-message"
)

var validate = validator.New()

type eventEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type joinRoomEvent struct {
	RoomCode     string `json:"room_code" validate:"omitempty,max=12"`
	Name         string `json:"display_name" validate:"required,max=20"`
	SessionToken string `json:"session_token" validate:"omitempty,max=128"`
	RoundTime    int    `json:"round_time" validate:"omitempty,min=10,max=600"`
	MaxPlayers   int    `json:"max_players" validate:"omitempty,min=2,max=12"`
	RoundCount   int    `json:"round_count" validate:"omitempty,min=1,max=10"`
}

type roomOnlyEvent struct {
	RoomCode string `json:"room_code" validate:"required,max=12"`
}

type startRoundEvent struct {
	RoomCode    string   `json:"room_code" validate:"required,max=12"`
	CustomWords []string `json:"custom_words" validate:"omitempty,max=20,dive,required,max=40"`
}

type submitPhotoEvent struct {
	RoomCode  string `json:"room_code" validate:"required,max=12"`
	Photo     string `json:"photo" validate:"required,max=350000"`
	Timestamp int64  `json:"timestamp" validate:"required"`
}

type castVoteEvent struct {
	RoomCode        string `json:"room_code" validate:"required,max=12"`
	SubmissionIndex int    `json:"submission_index" validate:"min=0"`
	Choice          string `json:"choice" validate:"required,oneof=yes no"`
}

type updateAvatarEvent struct {
	RoomCode string `json:"room_code" validate:"required,max=12"`
	Avatar   string `json:"avatar" validate:"required,max=350000"`
}

type kickPlayerEvent struct {
	RoomCode string `json:"room_code" validate:"required,max=12"`
	TargetID string `json:"target_id" validate:"required,max=64"`
}

type sendMessageEvent struct {
	RoomCode string `json:"room_code" validate:"required,max=12"`
	User     string `json:"user" validate:"required,max=20"`
	Message  string `json:"message" validate:"required,max=500"`
}

// outbound is one event produced under the room lock and emitted after the
// mutation commits. An empty To broadcasts to the whole room.
type outbound struct {
	To      string
	Event   string
	Payload any
}

func bcast(event string, payload any) outbound {
	return outbound{Event: event, Payload: payload}
}

func unicast(to, event string, payload any) outbound {
	return outbound{To: to, Event: event, Payload: payload}
}

// HandleEvent decodes, validates, and routes one inbound client event.
// Malformed or unknown events are dropped with a diagnostic log; they must
// never take down the room or the process.
func (s *Server) HandleEvent(connID string, data []byte) {
	var envelope eventEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		log.Printf("event rejected conn_id=%s error=%v", connID, err)
		return
	}
	switch envelope.Type {
	case evJoinRoom:
		var ev joinRoomEvent
		if decodeEvent(connID, envelope, &ev) {
			s.JoinRoom(connID, ev)
		}
	case evPlayerReady:
		var ev roomOnlyEvent
		if decodeEvent(connID, envelope, &ev) {
			s.PlayerReady(connID, ev.RoomCode)
		}
	case evStartRound:
		var ev startRoundEvent
		if decodeEvent(connID, envelope, &ev) {
			s.StartRound(connID, ev.RoomCode, ev.CustomWords)
		}
	case evSubmitPhoto:
		var ev submitPhotoEvent
		if decodeEvent(connID, envelope, &ev) {
			s.SubmitPhoto(connID, ev.RoomCode, ev.Photo, ev.Timestamp)
		}
	case evCastVote:
		var ev castVoteEvent
		if decodeEvent(connID, envelope, &ev) {
			s.CastVote(connID, ev.RoomCode, ev.SubmissionIndex, ev.Choice)
		}
	case evVotingTimeout:
		var ev roomOnlyEvent
		if decodeEvent(connID, envelope, &ev) {
			s.VotingTimeout(connID, ev.RoomCode)
		}
	case evUpdateAvatar:
		var ev updateAvatarEvent
		if decodeEvent(connID, envelope, &ev) {
			s.UpdateAvatar(connID, ev.RoomCode, ev.Avatar)
		}
	case evKickPlayer:
		var ev kickPlayerEvent
		if decodeEvent(connID, envelope, &ev) {
			s.KickPlayer(connID, ev.RoomCode, ev.TargetID)
		}
	case evResetGame:
		var ev roomOnlyEvent
		if decodeEvent(connID, envelope, &ev) {
			s.ResetGame(connID, ev.RoomCode)
		}
	case evActivityPing:
		var ev roomOnlyEvent
		if decodeEvent(connID, envelope, &ev) {
			s.ActivityPing(connID, ev.RoomCode)
		}
	case evMarkAFK:
		var ev roomOnlyEvent
		if decodeEvent(connID, envelope, &ev) {
			s.MarkAFK(connID, ev.RoomCode)
		}
	case evSendMessage:
		var ev sendMessageEvent
		if decodeEvent(connID, envelope, &ev) {
			s.SendMessage(connID, ev.RoomCode, ev.User, ev.Message)
		}
	default:
		log.Printf("event rejected conn_id=%s type=%q reason=unknown_type", connID, envelope.Type)
	}
}

func decodeEvent(connID string, envelope eventEnvelope, dest any) bool {
	if err := json.Unmarshal(envelope.Payload, dest); err != nil {
		log.Printf("event rejected conn_id=%s type=%s error=%v", connID, envelope.Type, err)
		return false
	}
	if err := validate.Struct(dest); err != nil {
		log.Printf("event rejected conn_id=%s type=%s error=%v", connID, envelope.Type, err)
		return false
	}
	return true
}

// EventPayload is the persisted shape of one audit-log entry.
type EventPayload struct {
	RoomCode   string `json:"room_code,omitempty"`
	PlayerName string `json:"player,omitempty"`
	PlayerID   string `json:"player_id,omitempty"`
	Round      int    `json:"round,omitempty"`
	Phase      string `json:"phase,omitempty"`
	Word       string `json:"word,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Choice     string `json:"choice,omitempty"`
	Points     int    `json:"points,omitempty"`
	Count      int    `json:"count,omitempty"`
}
