package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"payee-confirmation-backend/internal/export"
	service "payee-confirmation-backend/internal/services/reconciliation"

	"github.com/gin-gonic/gin"
)

type ReconciliationHandler struct {
	service *service.ReconciliationService
}

func NewReconciliationHandler(s *service.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{service: s}
}

func (h *ReconciliationHandler) Reconcile(c *gin.Context) {
	result, err := h.service.Reconcile(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary": result.Summary(),
		"columns": result.Header(true),
		"rows":    result.Rows,
	})
}

func (h *ReconciliationHandler) Pending(c *gin.Context) {
	result, err := h.service.Pending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(result.Rows),
		"columns": result.Header(false),
		"rows":    result.Rows,
	})
}

// Export downloads the reconciled report, ?format=xlsx (default) or csv.
func (h *ReconciliationHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.service.Reconcile(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	h.download(c, "reconciliation", format, result, true)
}

// ExportPending downloads the payees that have not responded yet.
func (h *ReconciliationHandler) ExportPending(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.service.Pending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	h.download(c, "pending", format, result, false)
}

func (h *ReconciliationHandler) download(c *gin.Context, name string, format export.Format, result service.Result, withStatus bool) {
	var buf bytes.Buffer
	if err := export.Write(&buf, format, result, withStatus); err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("%s_%s%s", name, time.Now().Format("20060102-1504"), format.Extension())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
