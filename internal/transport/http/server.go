package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/arkail/chatroom-server/internal/blob"
	"github.com/arkail/chatroom-server/internal/config"
	"github.com/arkail/chatroom-server/internal/core"
	"github.com/arkail/chatroom-server/internal/store"
)

// NewServer builds the HTTP server with all routes wired.
func NewServer(hub *core.Hub, st store.MessageStore, history *core.History, blobs blob.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	historyHandlers := NewHistoryHandlers(history, logger)
	uploadHandlers := NewUploadHandlers(blobs, cfg.MaxUploadBytes, logger)

	router.GET("/health", healthHandler(hub))
	router.GET("/history", historyHandlers.GetHistory)
	router.POST("/upload", uploadHandlers.Upload)
	router.Static("/uploads", cfg.UploadDir)

	// The upgrade handshake hijacks the connection, which gin's
	// ResponseWriter does not allow. /ws lives on the stdlib mux with the
	// gin engine as the fallback for everything else.
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, st, history, cfg.MessagesPerMinute, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// healthHandler reports 503 once message persistence has been failing
// repeatedly, so operators see store trouble without clients being told.
func healthHandler(hub *core.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !hub.Healthy() {
			c.String(stdhttp.StatusServiceUnavailable, "store unavailable")
			return
		}
		c.String(stdhttp.StatusOK, "ok")
	}
}
