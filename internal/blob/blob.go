// Package blob abstracts the binary-object storage collaborator that holds
// uploaded files. The chat core only ever sees the reference URL it returns.
package blob

import (
	"context"
	"io"
)

// Store accepts file bytes and returns a stable, retrievable reference URL.
type Store interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}
