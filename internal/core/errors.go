package core

// Error codes for protocol-level errors sent to clients.
const (
	ErrCodeBadRequest = "bad_request"
	ErrCodeHistory    = "history_unavailable"
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
