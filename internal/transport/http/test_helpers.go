package http

import (
	stdhttp "net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/arkail/chatroom-server/internal/blob"
	"github.com/arkail/chatroom-server/internal/config"
	"github.com/arkail/chatroom-server/internal/core"
	"github.com/arkail/chatroom-server/internal/store"
	"github.com/arkail/chatroom-server/internal/store/sqlite"
)

// testEnv bundles the wired server pieces tests poke at directly.
type testEnv struct {
	handler   stdhttp.Handler
	store     store.MessageStore
	uploadDir string
}

// newTestEnv wires an in-memory store, a temp upload dir, and the full
// route table the way app.New does.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zerolog.Nop()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	uploadDir := t.TempDir()
	blobs, err := blob.NewDiskStore(uploadDir, "", &logger)
	if err != nil {
		t.Fatalf("failed to create blob store: %v", err)
	}

	cfg := config.Default()
	cfg.UploadDir = uploadDir
	cfg.MaxUploadBytes = 1 << 20

	hub := core.NewHub(&logger)
	history := core.NewHistory(st, cfg.HistoryWindow, cfg.HistoryPageSize, &logger)
	server := NewServer(hub, st, history, blobs, &cfg, &logger)

	return &testEnv{
		handler:   server.Handler,
		store:     st,
		uploadDir: uploadDir,
	}
}
