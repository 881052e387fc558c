package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/arkail/chatroom-server/internal/store"
)

// SessionState tracks the connection lifecycle.
type SessionState int32

const (
	// StateConnected means the transport is open but no username is bound
	// yet. The username binds lazily on the first successful message.
	StateConnected SessionState = iota
	// StateActive means the session has sent at least one message.
	StateActive
	// StateDisconnected is terminal. No events are processed past it.
	StateDisconnected
)

// Session is the per-connection state machine. It bridges inbound client
// commands to the message store and hub, and outbound events back to the
// transport. Commands are processed sequentially, so a session never races
// with itself.
type Session struct {
	ID       string
	Commands chan *Command
	Events   chan *Event

	hub     *Hub
	store   store.MessageStore
	history *History
	log     *zerolog.Logger

	state    atomic.Int32
	username atomic.Pointer[string]

	gen      uint64 // registry generation, assigned by the hub
	doneOnce sync.Once
	done     chan struct{}
}

// NewSession constructs a session with initialized channels. The events
// buffer bounds how far a slow reader can fall behind before the hub
// evicts it.
func NewSession(id string, st store.MessageStore, hub *Hub, history *History, logger *zerolog.Logger) *Session {
	return &Session{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 32),
		hub:      hub,
		store:    st,
		history:  history,
		log:      logger,
		done:     make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// Username returns the bound display name, or "" before the first message.
func (s *Session) Username() string {
	if name := s.username.Load(); name != nil {
		return *name
	}
	return ""
}

// Done is closed when the session reaches StateDisconnected.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Disconnect moves the session to its terminal state. Safe to call more
// than once.
func (s *Session) Disconnect() {
	s.state.Store(int32(StateDisconnected))
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

// Run processes inbound commands until the context is cancelled or the
// session disconnects. The initial history window is enqueued by the
// transport before the session is registered, so the backlog always
// precedes any live broadcast in the events channel.
func (s *Session) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case cmd := <-s.Commands:
			if cmd == nil {
				continue
			}
			s.handle(ctx, cmd)
		}
	}
}

func (s *Session) handle(ctx context.Context, cmd *Command) {
	if s.State() == StateDisconnected {
		return
	}

	switch cmd.Kind {
	case CommandSendMessage:
		s.sendMessage(ctx, cmd.Candidate)
	case CommandRequestHistory:
		s.history.RequestPage(ctx, s, cmd.Page)
	default:
		s.log.Warn().Str("session_id", s.ID).Int("kind", int(cmd.Kind)).Msg("unknown command")
	}
}

// sendMessage persists the candidate and, only on success, hands it to the
// hub for fan-out. Invalid input is discarded silently; the offending client
// gets no response. A store failure drops the message as well: the sender is
// not nacked, it simply never sees the broadcast round-trip.
func (s *Session) sendMessage(ctx context.Context, cand store.Candidate) {
	if err := cand.Validate(); err != nil {
		s.log.Debug().
			Str("session_id", s.ID).
			Str("username", cand.Username).
			Msg("discarding invalid message")
		return
	}

	msg, err := s.store.Append(ctx, cand)
	if err != nil {
		if errors.Is(err, store.ErrInvalidMessage) {
			s.log.Debug().Str("session_id", s.ID).Msg("discarding invalid message")
			return
		}
		s.hub.noteStoreFailure()
		s.log.Error().Err(err).Str("session_id", s.ID).Msg("append failed, message dropped")
		return
	}
	s.hub.noteStoreOK()

	s.bindUsername(cand.Username)
	s.hub.Broadcast(messageFromStore(msg))
}

// bindUsername sets the display name on the first successful message and
// moves the session to StateActive. The name is immutable afterwards.
func (s *Session) bindUsername(name string) {
	if s.username.Load() == nil {
		s.username.Store(&name)
	}
	s.state.CompareAndSwap(int32(StateConnected), int32(StateActive))
}

// deliver enqueues an event without blocking. It reports false when the
// session is gone or its buffer is full, which the hub treats as a dead or
// slow consumer.
func (s *Session) deliver(ev *Event) bool {
	if s.State() == StateDisconnected {
		return false
	}
	select {
	case s.Events <- ev:
		return true
	default:
		return false
	}
}
