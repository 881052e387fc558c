package core

// EventKind is a notification the core emits to sessions.
type EventKind int

const (
	// EventMessage carries one live broadcast message.
	EventMessage EventKind = iota
	// EventHistory delivers the initial backlog to a session upon connect.
	EventHistory
	// EventHistoryPage delivers one explicitly requested page of history.
	EventHistoryPage
	// EventError notifies a session about a protocol error.
	EventError
)

// Event is sent to sessions to describe what happened in the system.
type Event struct {
	Kind       EventKind
	Message    Message
	Messages   []Message // for EventHistory and EventHistoryPage
	Page       int
	TotalPages int
	Error      *CoreError
}
