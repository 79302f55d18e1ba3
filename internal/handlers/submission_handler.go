package handler

import (
	"net/http"

	"payee-confirmation-backend/internal/models"
	"payee-confirmation-backend/internal/services/ledger"

	"github.com/gin-gonic/gin"
)

const (
	acceptedMessage      = "your details have been submitted, thank you."
	alreadyExistsMessage = "you have already completed this form, there is no need to submit it again."
)

type SubmissionHandler struct {
	ledger *ledger.Service
}

func NewSubmissionHandler(l *ledger.Service) *SubmissionHandler {
	return &SubmissionHandler{ledger: l}
}

// Submit takes the confirmation form (urlencoded or JSON). The body is the
// outcome followed by a message for the payee.
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var payload struct {
		ID          string `form:"id" json:"id"`
		Name        string `form:"name" json:"name"`
		Email       string `form:"email" json:"email"`
		Title       string `form:"title" json:"title"`
		Fee         int64  `form:"fee" json:"fee"`
		Bank        string `form:"bank" json:"bank"`
		Account     string `form:"account" json:"account"`
		AccountName string `form:"account_name" json:"account_name"`
	}
	if err := c.ShouldBind(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	outcome, err := h.ledger.Submit(c.Request.Context(), models.Submission{
		ID:          payload.ID,
		Name:        payload.Name,
		Email:       payload.Email,
		Title:       payload.Title,
		Fee:         payload.Fee,
		Bank:        payload.Bank,
		Account:     payload.Account,
		AccountName: payload.AccountName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if outcome == ledger.AlreadyExists {
		c.String(http.StatusOK, "%s: %s", outcome, alreadyExistsMessage)
		return
	}
	c.String(http.StatusCreated, "%s: %s", outcome, acceptedMessage)
}

func (h *SubmissionHandler) List(c *gin.Context) {
	submissions, err := h.ledger.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": submissions, "count": len(submissions)})
}

func (h *SubmissionHandler) Get(c *gin.Context) {
	submission, err := h.ledger.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if submission == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
		return
	}
	c.JSON(http.StatusOK, submission)
}
