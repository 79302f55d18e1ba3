package handler

import (
	"fmt"
	"io"
	"net/http"

	"payee-confirmation-backend/internal/services/batches"

	"github.com/gin-gonic/gin"
)

type BatchHandler struct {
	service   *batches.Service
	maxUpload int64
}

func NewBatchHandler(s *batches.Service, maxUpload int64) *BatchHandler {
	return &BatchHandler{service: s, maxUpload: maxUpload}
}

// Upload accepts a multipart "file" (.xlsx or .csv), makes it the active
// batch and notifies every payee in it.
func (h *BatchHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		respondError(c, err)
		return
	}
	if int64(len(content)) > h.maxUpload {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("file larger than %d bytes", h.maxUpload)})
		return
	}

	result, err := h.service.Upload(c.Request.Context(), header.Filename, content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// List returns the upload history, newest first.
func (h *BatchHandler) List(c *gin.Context) {
	history, err := h.service.History(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": history, "count": len(history)})
}

func (h *BatchHandler) Active(c *gin.Context) {
	batch, err := h.service.Active(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"batch": batch})
}
