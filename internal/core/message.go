package core

import (
	"time"

	"github.com/arkail/chatroom-server/internal/store"
)

// Message is the domain model for a chat message as broadcast to sessions.
type Message struct {
	ID        int64
	Username  string
	Content   string
	FileURL   string
	CreatedAt time.Time
}

func messageFromStore(m *store.Message) Message {
	return Message{
		ID:        m.ID,
		Username:  m.Username,
		Content:   m.Content,
		FileURL:   m.FileURL,
		CreatedAt: m.CreatedAt,
	}
}

func messagesFromStore(records []*store.Message) []Message {
	messages := make([]Message, 0, len(records))
	for _, rec := range records {
		messages = append(messages, messageFromStore(rec))
	}
	return messages
}
