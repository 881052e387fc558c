package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidMessage rejects a candidate that is missing a username or
	// carries neither text content nor a file reference.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrUnavailable signals that the persistence layer is down. Callers must
	// not assume a message was saved unless Append returned successfully.
	ErrUnavailable = errors.New("store unavailable")
)

// Candidate is a client-supplied message before persistence. The store
// assigns the id and timestamp; clients never do.
type Candidate struct {
	Username string
	Content  string
	FileURL  string
}

// Validate checks the persistence invariant: a non-empty username and at
// least one of content or file reference.
func (c Candidate) Validate() error {
	if c.Username == "" {
		return ErrInvalidMessage
	}
	if c.Content == "" && c.FileURL == "" {
		return ErrInvalidMessage
	}
	return nil
}

// Message is a persisted chat message. Immutable once created.
type Message struct {
	ID        int64
	Username  string
	Content   string
	FileURL   string
	CreatedAt time.Time
}

// MessageStore handles durable, ordered message persistence. It is the
// single source of truth for conversation history.
type MessageStore interface {
	// Append validates the candidate, assigns an id and timestamp, and
	// durably persists the record before returning. Appends are atomic with
	// respect to each other and to concurrent reads.
	Append(ctx context.Context, cand Candidate) (*Message, error)

	// Recent returns the most recent limit messages in chronological order
	// (oldest first). This is the window pushed to a newly joined client.
	Recent(ctx context.Context, limit int) ([]*Message, error)

	// Page returns one page of history in chronological order along with the
	// total number of pages. Pages count newest-first: page 1 holds the
	// latest messages. An out-of-range page yields an empty slice, not an
	// error.
	Page(ctx context.Context, page, pageSize int) ([]*Message, int, error)

	// Close closes the underlying database connection.
	Close() error
}
