package core

import (
	"testing"
	"time"
)

func TestBroadcastReachesAllSessionsIncludingSender(t *testing.T) {
	hub := NewHub(testLogger())
	st := newTestStore(t)
	history := NewHistory(st, 100, 50, testLogger())

	sessions := []*Session{
		NewSession("a", st, hub, history, testLogger()),
		NewSession("b", st, hub, history, testLogger()),
		NewSession("c", st, hub, history, testLogger()),
	}
	for _, s := range sessions {
		hub.Register(s)
	}

	msg := Message{ID: 1, Username: "alice", Content: "hi", CreatedAt: time.Now()}
	hub.Broadcast(msg)

	for _, s := range sessions {
		ev := mustEvent(t, s.Events, EventMessage)
		if ev.Message.ID != 1 || ev.Message.Username != "alice" || ev.Message.Content != "hi" {
			t.Fatalf("session %s got unexpected message: %+v", s.ID, ev.Message)
		}
		// Exactly one delivery per session.
		select {
		case extra := <-s.Events:
			t.Fatalf("session %s got extra event: %+v", s.ID, extra)
		default:
		}
	}
}

func TestBroadcastEvictsBlockedSession(t *testing.T) {
	hub := NewHub(testLogger())
	st := newTestStore(t)
	history := NewHistory(st, 100, 50, testLogger())

	healthy1 := NewSession("h1", st, hub, history, testLogger())
	healthy2 := NewSession("h2", st, hub, history, testLogger())
	blocked := NewSession("blocked", st, hub, history, testLogger())

	hub.Register(healthy1)
	hub.Register(healthy2)
	hub.Register(blocked)

	// Simulate a session that stopped reading: fill its buffer.
	for blocked.deliver(&Event{Kind: EventMessage}) {
	}

	done := make(chan struct{})
	go func() {
		hub.Broadcast(Message{ID: 42, Username: "alice", Content: "hi"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked behind a dead session")
	}

	mustEvent(t, healthy1.Events, EventMessage)
	mustEvent(t, healthy2.Events, EventMessage)

	if hub.Len() != 2 {
		t.Fatalf("expected blocked session evicted, registry has %d sessions", hub.Len())
	}
	if blocked.State() != StateDisconnected {
		t.Fatalf("expected blocked session disconnected, state %v", blocked.State())
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	hub := NewHub(testLogger())
	st := newTestStore(t)
	history := NewHistory(st, 100, 50, testLogger())

	s := NewSession("a", st, hub, history, testLogger())
	hub.Register(s)
	hub.Register(s)

	if hub.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", hub.Len())
	}
}

func TestUnregisterIsSafeToRepeat(t *testing.T) {
	hub := NewHub(testLogger())
	st := newTestStore(t)
	history := NewHistory(st, 100, 50, testLogger())

	never := NewSession("never", st, hub, history, testLogger())
	hub.Unregister(never) // never registered: no-op

	s := NewSession("a", st, hub, history, testLogger())
	hub.Register(s)
	hub.Unregister(s)
	hub.Unregister(s)

	if hub.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", hub.Len())
	}
}

func TestStaleUnregisterKeepsCurrentSession(t *testing.T) {
	hub := NewHub(testLogger())
	st := newTestStore(t)
	history := NewHistory(st, 100, 50, testLogger())

	old := NewSession("conn", st, hub, history, testLogger())
	hub.Register(old)

	// A reconnect reuses the identity before the old registration is torn down.
	current := NewSession("conn", st, hub, history, testLogger())
	hub.Register(current)

	hub.Unregister(old) // stale generation

	if hub.Len() != 1 {
		t.Fatalf("stale unregister removed the live session, registry has %d", hub.Len())
	}

	hub.Broadcast(Message{ID: 1, Username: "alice", Content: "still here"})
	mustEvent(t, current.Events, EventMessage)
}

func TestHealthySignalTracksStoreFailures(t *testing.T) {
	hub := NewHub(testLogger())

	if !hub.Healthy() {
		t.Fatal("new hub should be healthy")
	}

	for i := 0; i < unhealthyAfter; i++ {
		hub.noteStoreFailure()
	}
	if hub.Healthy() {
		t.Fatal("hub should be unhealthy after repeated store failures")
	}

	hub.noteStoreOK()
	if !hub.Healthy() {
		t.Fatal("hub should recover after a successful append")
	}
}
