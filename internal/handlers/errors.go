package handler

import (
	"errors"
	"net/http"

	"payee-confirmation-backend/internal/batchfile"
	"payee-confirmation-backend/internal/services/batches"
	"payee-confirmation-backend/internal/services/ledger"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors to status codes; anything unrecognised is
// an internal error and its message is passed through.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case batchfile.IsValidation(err), errors.Is(err, ledger.ErrInvalidSubmission):
		status = http.StatusBadRequest
	case errors.Is(err, batches.ErrNoBatch):
		status = http.StatusNotFound
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}
