package utils

import "github.com/google/uuid"

// NewSessionID returns a unique identifier for one live connection.
func NewSessionID() string {
	return uuid.NewString()
}
