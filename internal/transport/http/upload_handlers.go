package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/arkail/chatroom-server/internal/blob"
)

// UploadHandlers accepts file uploads on behalf of the blob store. An upload
// only yields a reference; the client must still send a chat message carrying
// the returned fileUrl for it to become part of the conversation.
type UploadHandlers struct {
	blobs    blob.Store
	maxBytes int64
	log      *zerolog.Logger
}

// NewUploadHandlers creates a new upload handlers instance.
func NewUploadHandlers(blobs blob.Store, maxBytes int64, logger *zerolog.Logger) *UploadHandlers {
	return &UploadHandlers{
		blobs:    blobs,
		maxBytes: maxBytes,
		log:      logger,
	}
}

// UploadResponse carries the blob store reference for an accepted upload.
type UploadResponse struct {
	FileURL string `json:"fileUrl"`
}

// Upload handles multipart file uploads.
// POST /upload
func (h *UploadHandlers) Upload(c *gin.Context) {
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no file present"})
		return
	}

	if h.maxBytes > 0 && header.Size > h.maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "file too large"})
		return
	}

	file, err := header.Open()
	if err != nil {
		h.log.Error().Err(err).Str("filename", header.Filename).Msg("failed to open upload")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "upload failed"})
		return
	}
	defer file.Close()

	fileURL, err := h.blobs.Save(c.Request.Context(), header.Filename, file)
	if err != nil {
		h.log.Error().Err(err).Str("filename", header.Filename).Msg("failed to store upload")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "upload failed"})
		return
	}

	h.log.Info().Str("filename", header.Filename).Str("file_url", fileURL).Msg("file uploaded")
	c.JSON(http.StatusOK, UploadResponse{FileURL: fileURL})
}
