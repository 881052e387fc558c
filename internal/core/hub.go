package core

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// unhealthyAfter is how many consecutive append failures flip the health
// signal for operators.
const unhealthyAfter = 3

// registration pins a session in the registry together with the generation
// it was registered under, so stale references left over from a previous
// registration can be told apart from the live one.
type registration struct {
	session *Session
	gen     uint64
}

// Hub owns the registry of live sessions and fans accepted messages out to
// every one of them, including the sender. No other component enumerates
// sessions.
type Hub struct {
	log *zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*registration
	gen      uint64

	storeFailures atomic.Int64
}

// NewHub creates a hub with an empty registry.
func NewHub(logger *zerolog.Logger) *Hub {
	return &Hub{
		log:      logger,
		sessions: make(map[string]*registration),
	}
}

// Register adds a session to the live set. Idempotent per session identity:
// re-registering the same session is a no-op.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if reg, ok := h.sessions[s.ID]; ok && reg.session == s {
		return
	}

	h.gen++
	s.gen = h.gen
	h.sessions[s.ID] = &registration{session: s, gen: h.gen}
	h.log.Debug().Str("session_id", s.ID).Int("sessions", len(h.sessions)).Msg("session registered")
}

// Unregister removes a session from the live set and disconnects it. Safe
// to call multiple times or for a session that was never registered. A stale
// reference from an older generation never removes the current registration.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	reg, ok := h.sessions[s.ID]
	if ok && reg.session == s && reg.gen == s.gen {
		delete(h.sessions, s.ID)
	} else {
		ok = false
	}
	remaining := len(h.sessions)
	h.mu.Unlock()

	s.Disconnect()

	if ok {
		h.log.Debug().Str("session_id", s.ID).Int("sessions", remaining).Msg("session unregistered")
	}
}

// Broadcast delivers the message to every currently registered session,
// including the one that produced it. Delivery to each session is an
// independent best-effort enqueue: a full or dead session is evicted, and
// its failure never aborts the loop or blocks the others.
func (h *Hub) Broadcast(msg Message) {
	for _, sess := range h.snapshot() {
		ev := &Event{Kind: EventMessage, Message: msg}
		if sess.deliver(ev) {
			continue
		}
		h.log.Warn().
			Str("session_id", sess.ID).
			Int64("message_id", msg.ID).
			Msg("session not keeping up, evicting")
		h.Unregister(sess)
	}
}

// Len returns the number of registered sessions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) snapshot() []*Session {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sessions := make([]*Session, 0, len(h.sessions))
	for _, reg := range h.sessions {
		sessions = append(sessions, reg.session)
	}
	return sessions
}

// noteStoreFailure records one failed append for the operator health signal.
func (h *Hub) noteStoreFailure() {
	h.storeFailures.Add(1)
}

// noteStoreOK resets the failure streak after a successful append.
func (h *Hub) noteStoreOK() {
	h.storeFailures.Store(0)
}

// Healthy reports false once appends have failed repeatedly. End users are
// never told about store trouble; this surfaces it to operators instead.
func (h *Hub) Healthy() bool {
	return h.storeFailures.Load() < unhealthyAfter
}
