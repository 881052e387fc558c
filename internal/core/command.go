package core

import "github.com/arkail/chatroom-server/internal/store"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandSendMessage persists a chat message and fans it out to all
	// live sessions.
	CommandSendMessage CommandKind = iota
	// CommandRequestHistory asks for one older page of the conversation,
	// delivered to the requesting session only.
	CommandRequestHistory
)

// Command represents an action requested by a client. Commands are processed
// sequentially per session.
type Command struct {
	Kind      CommandKind
	Candidate store.Candidate
	Page      int
}
