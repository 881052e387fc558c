package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/arkail/chatroom-server/internal/core"
	"github.com/arkail/chatroom-server/internal/proto"
)

// HistoryHandlers provides the REST surface of the history service.
type HistoryHandlers struct {
	history *core.History
	log     *zerolog.Logger
}

// NewHistoryHandlers creates a new history handlers instance.
func NewHistoryHandlers(history *core.History, logger *zerolog.Logger) *HistoryHandlers {
	return &HistoryHandlers{
		history: history,
		log:     logger,
	}
}

// HistoryResponse represents one page of history in API responses.
// Messages are in chronological order.
type HistoryResponse struct {
	Messages    []proto.EventMessage `json:"messages"`
	TotalPages  int                  `json:"totalPages"`
	CurrentPage int                  `json:"currentPage"`
}

// GetHistory handles paginated history retrieval.
// GET /history?page=N (page defaults to 1)
func (h *HistoryHandlers) GetHistory(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "page must be a positive integer"})
			return
		}
		page = parsed
	}

	messages, totalPages, err := h.history.Page(c.Request.Context(), page)
	if err != nil {
		h.log.Error().Err(err).Int("page", page).Msg("failed to fetch message history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to fetch message history"})
		return
	}

	out := make([]proto.EventMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, eventMessage(msg))
	}

	c.JSON(http.StatusOK, HistoryResponse{
		Messages:    out,
		TotalPages:  totalPages,
		CurrentPage: page,
	})
}
