package core

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/arkail/chatroom-server/internal/store"
)

// History serves read-only slices of the message store to individual
// sessions. It never mutates the store and never broadcasts.
type History struct {
	store    store.MessageStore
	window   int
	pageSize int
	log      *zerolog.Logger
}

// NewHistory builds the history service. window is the size of the backlog
// pushed on connect; pageSize applies to explicit page requests.
func NewHistory(st store.MessageStore, window, pageSize int, logger *zerolog.Logger) *History {
	return &History{
		store:    st,
		window:   window,
		pageSize: pageSize,
		log:      logger,
	}
}

// PageSize returns the configured page size.
func (h *History) PageSize() int {
	return h.pageSize
}

// InitialWindow pushes the most recent messages to exactly the given
// session, chronological order, once. A store failure here only costs the
// client its backlog; the connection stays up.
func (h *History) InitialWindow(ctx context.Context, s *Session) {
	records, err := h.store.Recent(ctx, h.window)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", s.ID).Msg("failed to load initial history window")
		return
	}

	s.deliver(&Event{
		Kind:     EventHistory,
		Messages: messagesFromStore(records),
	})
}

// RequestPage pushes one page of history to exactly the requesting session.
// Pagination is client-driven; pages are never pushed unsolicited.
func (h *History) RequestPage(ctx context.Context, s *Session, page int) {
	if page < 1 {
		page = 1
	}

	messages, totalPages, err := h.Page(ctx, page)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", s.ID).Int("page", page).Msg("failed to load history page")
		s.deliver(&Event{
			Kind:  EventError,
			Error: coreError(ErrCodeHistory, "history is unavailable"),
		})
		return
	}

	s.deliver(&Event{
		Kind:       EventHistoryPage,
		Messages:   messages,
		Page:       page,
		TotalPages: totalPages,
	})
}

// Page returns one page of history in chronological order plus the total
// page count. Shared by the socket path and the REST endpoint.
func (h *History) Page(ctx context.Context, page int) ([]Message, int, error) {
	records, totalPages, err := h.store.Page(ctx, page, h.pageSize)
	if err != nil {
		return nil, 0, err
	}
	return messagesFromStore(records), totalPages, nil
}
