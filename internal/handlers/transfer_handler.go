package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pocketbook/internal/errors"
	"pocketbook/internal/money"
	"pocketbook/internal/services"
)

// TransferHandler handles transfers between users' accounts.
type TransferHandler struct {
	transferService services.TransferServicer
	auditService    services.AuditServicer
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferService services.TransferServicer, auditService services.AuditServicer) *TransferHandler {
	return &TransferHandler{transferService: transferService, auditService: auditService}
}

// TransferRequest represents the payload for sending money to another user.
type TransferRequest struct {
	Recipient   string `json:"recipient" binding:"required,email"`
	Amount      string `json:"amount" binding:"required,money"`
	Description string `json:"description" binding:"max=200"`
}

// SendMoney moves funds from the authenticated user's account to the
// recipient's, all-or-nothing.
func (h *TransferHandler) SendMoney(c *gin.Context) {
	email, err := getOwnerEmail(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		respondWithError(c, apperrors.ErrInvalidAmount)
		return
	}

	if err := h.transferService.SendMoney(email, req.Recipient, amount, req.Description); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(email, "SEND_MONEY", "transfer", "", c.ClientIP(),
		map[string]interface{}{"recipient": req.Recipient, "amount": money.Format(amount)})

	c.JSON(http.StatusCreated, MessageResponse{Message: "Money sent"})
}
