package server

import (
	"encoding/json"
	"testing"
)

func envelopeJSON(t *testing.T, eventType string, payload any) []byte {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	data, err := json.Marshal(map[string]any{
		"type":    eventType,
		"payload": json.RawMessage(raw),
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return data
}

func TestHandleEventJoinRoom(t *testing.T) {
	srv, sink := newGameServer(t)
	srv.HandleEvent("conn-1", envelopeJSON(t, evJoinRoom, map[string]any{
		"room_code":    "ABC123",
		"display_name": "Ada",
	}))

	room := mustRoom(t, srv, "ABC123")
	if room.findPlayer("conn-1") == nil {
		t.Fatalf("join-room event did not add the player")
	}
	if len(sink.byType(evRoomJoined)) != 1 {
		t.Fatalf("expected room-joined ack")
	}
}

func TestHandleEventFullGameSequence(t *testing.T) {
	srv, sink := newGameServer(t)
	srv.HandleEvent("conn-1", envelopeJSON(t, evJoinRoom, map[string]any{
		"room_code": "ABC123", "display_name": "Ada",
	}))
	srv.HandleEvent("conn-2", envelopeJSON(t, evJoinRoom, map[string]any{
		"room_code": "ABC123", "display_name": "Ben",
	}))
	srv.HandleEvent("conn-1", envelopeJSON(t, evPlayerReady, map[string]any{"room_code": "ABC123"}))
	srv.HandleEvent("conn-2", envelopeJSON(t, evPlayerReady, map[string]any{"room_code": "ABC123"}))
	srv.HandleEvent("conn-1", envelopeJSON(t, evStartRound, map[string]any{"room_code": "ABC123"}))

	room := mustRoom(t, srv, "ABC123")
	if room.Phase != phasePlaying {
		t.Fatalf("expected playing phase, got %s", room.Phase)
	}

	srv.HandleEvent("conn-1", envelopeJSON(t, evSubmitPhoto, map[string]any{
		"room_code": "ABC123", "photo": "data:image/jpeg;base64,a", "timestamp": 1000,
	}))
	srv.HandleEvent("conn-2", envelopeJSON(t, evSubmitPhoto, map[string]any{
		"room_code": "ABC123", "photo": "data:image/jpeg;base64,b", "timestamp": 2000,
	}))
	if room.Phase != phaseVoting {
		t.Fatalf("expected voting phase, got %s", room.Phase)
	}

	srv.HandleEvent("conn-1", envelopeJSON(t, evCastVote, map[string]any{
		"room_code": "ABC123", "submission_index": 1, "choice": "yes",
	}))
	srv.HandleEvent("conn-2", envelopeJSON(t, evCastVote, map[string]any{
		"room_code": "ABC123", "submission_index": 0, "choice": "yes",
	}))
	if room.Phase != phaseScoring {
		t.Fatalf("expected scoring phase, got %s", room.Phase)
	}
	if len(sink.byType(evScoreUpdate)) != 1 {
		t.Fatalf("expected score-update broadcast")
	}
}

func TestHandleEventRejectsMalformed(t *testing.T) {
	srv, sink := newGameServer(t)

	srv.HandleEvent("conn-1", []byte("not json"))
	srv.HandleEvent("conn-1", envelopeJSON(t, "no-such-event", map[string]any{}))
	srv.HandleEvent("conn-1", []byte(`{"type":"join-room","payload":"not an object"}`))

	// Validation failures: missing name, name too long.
	srv.HandleEvent("conn-1", envelopeJSON(t, evJoinRoom, map[string]any{
		"room_code": "ABC123",
	}))
	srv.HandleEvent("conn-1", envelopeJSON(t, evJoinRoom, map[string]any{
		"room_code":    "ABC123",
		"display_name": "this display name is far beyond the limit",
	}))

	if _, ok := srv.registry.Get("ABC123"); ok {
		t.Fatalf("rejected events must not create rooms")
	}
	if len(sink.events) != 0 {
		t.Fatalf("rejected events must emit nothing, got %+v", sink.events)
	}
}

func TestHandleEventRejectsBadVoteChoice(t *testing.T) {
	srv, _ := newGameServer(t)
	joinPlayer(t, srv, "conn-1", "ABC123", "Ada")
	joinPlayer(t, srv, "conn-2", "ABC123", "Ben")
	runRoundToVoting(t, srv, "ABC123", []string{"conn-1", "conn-2"})

	srv.HandleEvent("conn-1", envelopeJSON(t, evCastVote, map[string]any{
		"room_code": "ABC123", "submission_index": 1, "choice": "maybe",
	}))
	room := mustRoom(t, srv, "ABC123")
	if len(room.Submissions[1].Votes) != 0 {
		t.Fatalf("invalid vote choice must be rejected")
	}
}

func TestSendMessageRelaysToRoom(t *testing.T) {
	srv, sink := newGameServer(t)
	joinPlayer(t, srv, "conn-1", "ABC123", "Ada")
	joinPlayer(t, srv, "conn-2", "ABC123", "Ben")

	srv.HandleEvent("conn-1", envelopeJSON(t, evSendMessage, map[string]any{
		"room_code": "ABC123", "user": "Ada", "message": "found it first!",
	}))
	chat := sink.byType(evChatMessage)
	if len(chat) != 1 || chat[0].Room != "ABC123" {
		t.Fatalf("expected chat broadcast, got %+v", chat)
	}

	// Non-members cannot speak into the room.
	sink.reset()
	srv.SendMessage("conn-9", "ABC123", "Eve", "hello")
	if len(sink.byType(evChatMessage)) != 0 {
		t.Fatalf("non-member chat must be dropped")
	}
}
