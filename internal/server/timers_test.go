package server

import (
	"testing"
	"time"
)

func TestScheduleReplacesPredecessor(t *testing.T) {
	srv, _ := newGameServer(t)
	fired := make(chan string, 2)
	srv.scheduleRoomTimer("ABC123", timerSubmit, 50*time.Millisecond, func() { fired <- "first" })
	srv.scheduleRoomTimer("ABC123", timerSubmit, 10*time.Millisecond, func() { fired <- "second" })

	select {
	case which := <-fired:
		if which != "second" {
			t.Fatalf("replaced timer still fired: %s", which)
		}
	case <-time.After(time.Second):
		t.Fatalf("replacement timer never fired")
	}
	select {
	case which := <-fired:
		t.Fatalf("unexpected extra fire: %s", which)
	case <-time.After(100 * time.Millisecond):
	}
	if got := srv.pendingTimerCount("ABC123"); got != 0 {
		t.Fatalf("fired timer left a table entry, pending=%d", got)
	}
}

func TestStaleFireKeepsReplacementTimer(t *testing.T) {
	srv, _ := newGameServer(t)

	done := make(chan struct{})
	srv.scheduleRoomTimer("ABC123", timerVoting, time.Millisecond, func() {
		close(done)
	})

	// Hold the timer table so the fired callback stalls before it can touch
	// its entry, then swap in a replacement under the same key. The stale
	// fire must leave the replacement in place.
	srv.timersMu.Lock()
	time.Sleep(20 * time.Millisecond)
	key := timerKey{room: "ABC123", kind: timerVoting}
	if old, ok := srv.timers[key]; ok {
		old.Stop()
	}
	replacement := time.AfterFunc(time.Hour, func() {})
	srv.timers[key] = replacement
	srv.timersMu.Unlock()
	defer replacement.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("scheduled callback never ran")
	}

	if got := srv.pendingTimerCount("ABC123"); got != 1 {
		t.Fatalf("stale fire removed the replacement, pending=%d", got)
	}
	srv.cancelRoomTimer("ABC123", timerVoting)
	if got := srv.pendingTimerCount("ABC123"); got != 0 {
		t.Fatalf("cancel left the replacement behind, pending=%d", got)
	}
}
