package core

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/arkail/chatroom-server/internal/store"
	"github.com/arkail/chatroom-server/internal/store/sqlite"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func newTestStore(t *testing.T) store.MessageStore {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event, kind EventKind) {
	t.Helper()

	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event kind %v: %+v", kind, ev)
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// failingStore simulates an unavailable persistence layer.
type failingStore struct{}

func (failingStore) Append(ctx context.Context, cand store.Candidate) (*store.Message, error) {
	if err := cand.Validate(); err != nil {
		return nil, err
	}
	return nil, store.ErrUnavailable
}

func (failingStore) Recent(context.Context, int) ([]*store.Message, error) {
	return nil, store.ErrUnavailable
}

func (failingStore) Page(context.Context, int, int) ([]*store.Message, int, error) {
	return nil, 0, store.ErrUnavailable
}

func (failingStore) Close() error { return nil }
