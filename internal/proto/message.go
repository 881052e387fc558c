package proto

import (
	"encoding/json"
	"time"
)

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	// InboundTypeMessage carries a chat message to persist and broadcast.
	InboundTypeMessage = "message"
	// InboundTypeHistory requests an older page of the conversation.
	InboundTypeHistory = "history"

	// OutboundTypeMessage is one live broadcast message.
	OutboundTypeMessage = "message"
	// OutboundTypeHistory is the bulk backlog pushed once on connect. It is
	// deliberately a distinct type so clients can tell bulk history from
	// live delivery.
	OutboundTypeHistory = "message-history"
	// OutboundTypeHistoryPage is one explicitly requested page.
	OutboundTypeHistoryPage = "history-page"
	// OutboundTypeError is a protocol-level error.
	OutboundTypeError = "error"
)

// MessageData is a chat message from the client. At least one of content or
// fileUrl must be present.
type MessageData struct {
	Username string `json:"username"`
	Content  string `json:"content,omitempty"`
	FileURL  string `json:"fileUrl,omitempty"`
}

// HistoryData requests one page of older messages.
type HistoryData struct {
	Page int `json:"page"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventMessage is the persisted message record as pushed to clients.
type EventMessage struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Content   string    `json:"content,omitempty"`
	FileURL   string    `json:"fileUrl,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EventHistory carries the initial backlog, oldest first.
type EventHistory struct {
	Messages []EventMessage `json:"messages"`
}

// EventHistoryPage carries one requested page, oldest first.
type EventHistoryPage struct {
	Messages    []EventMessage `json:"messages"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
