package server

import (
	"strings"
	"testing"
)

func TestNewRoomCodeShape(t *testing.T) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		code := newRoomCode()
		if len(code) != 6 {
			t.Fatalf("expected 6-char code, got %q", code)
		}
		for _, char := range code {
			if !strings.ContainsRune(alphabet, char) {
				t.Fatalf("code %q contains char outside alphabet", code)
			}
		}
		seen[code] = struct{}{}
	}
	if len(seen) < 40 {
		t.Fatalf("codes look non-random: %d unique of 50", len(seen))
	}
}

func TestGetOrCreateGeneratesCode(t *testing.T) {
	reg := NewRegistry()
	room, created := reg.GetOrCreate("", func(code string) *Room {
		return &Room{Code: code, Phase: phaseLobby}
	})
	if !created {
		t.Fatalf("expected a new room")
	}
	if room.Code == "" {
		t.Fatalf("expected generated code")
	}
	if _, ok := reg.Get(room.Code); !ok {
		t.Fatalf("room not registered under generated code")
	}
}

func TestGetOrCreateReturnsExisting(t *testing.T) {
	reg := NewRegistry()
	first, _ := reg.GetOrCreate("ABC123", func(code string) *Room {
		return &Room{Code: code, Phase: phaseLobby}
	})
	second, created := reg.GetOrCreate("ABC123", func(code string) *Room {
		t.Fatalf("create should not run for an existing code")
		return nil
	})
	if created {
		t.Fatalf("expected existing room")
	}
	if first != second {
		t.Fatalf("expected the same room instance")
	}
}

func TestFindByToken(t *testing.T) {
	reg := NewRegistry()
	reg.GetOrCreate("ABC123", func(code string) *Room {
		return &Room{
			Code:    code,
			Phase:   phaseLobby,
			Players: []Player{{ID: "conn-1", SessionToken: "token-1"}},
		}
	})

	room, ok := reg.FindByToken("token-1")
	if !ok || room.Code != "ABC123" {
		t.Fatalf("expected to find room by token")
	}
	if _, ok := reg.FindByToken("missing"); ok {
		t.Fatalf("unexpected match for unknown token")
	}
	if _, ok := reg.FindByToken(""); ok {
		t.Fatalf("empty token must never match")
	}
}

func TestDeleteRemovesRoom(t *testing.T) {
	reg := NewRegistry()
	reg.GetOrCreate("ABC123", func(code string) *Room {
		return &Room{Code: code, Phase: phaseLobby}
	})
	reg.Delete("ABC123")
	if _, ok := reg.Get("ABC123"); ok {
		t.Fatalf("room survived delete")
	}
}
