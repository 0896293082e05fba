package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pocketbook/internal/errors"
	"pocketbook/internal/models"
	"pocketbook/internal/money"
	"pocketbook/internal/pagination"
	"pocketbook/internal/services"
)

// AccountHandler handles ledger account requests.
type AccountHandler struct {
	ledgerService services.LedgerServicer
	auditService  services.AuditServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(ledgerService services.LedgerServicer, auditService services.AuditServicer) *AccountHandler {
	return &AccountHandler{ledgerService: ledgerService, auditService: auditService}
}

// PostingRequest represents the payload for posting income or an expense.
// Amounts travel as strings so they survive the trip without float rounding.
type PostingRequest struct {
	Amount      string `json:"amount" binding:"required,money"`
	Description string `json:"description" binding:"max=200"`
}

// BalanceResponse carries an updated or current balance.
type BalanceResponse struct {
	Balance string `json:"balance"`
}

// AddIncome posts an income amount to the authenticated user's account.
func (h *AccountHandler) AddIncome(c *gin.Context) {
	email, err := getOwnerEmail(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		respondWithError(c, apperrors.ErrInvalidAmount)
		return
	}

	balance, err := h.ledgerService.AddIncome(email, amount, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(email, "ADD_INCOME", "account", "", c.ClientIP(),
		map[string]interface{}{"amount": money.Format(amount)})

	c.JSON(http.StatusCreated, BalanceResponse{Balance: money.Format(balance)})
}

// AddExpense posts an expense amount to the authenticated user's account.
func (h *AccountHandler) AddExpense(c *gin.Context) {
	email, err := getOwnerEmail(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		respondWithError(c, apperrors.ErrInvalidAmount)
		return
	}

	balance, err := h.ledgerService.AddExpense(email, amount, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(email, "ADD_EXPENSE", "account", "", c.ClientIP(),
		map[string]interface{}{"amount": money.Format(amount)})

	c.JSON(http.StatusCreated, BalanceResponse{Balance: money.Format(balance)})
}

// GetBalance returns the raw account balance.
func (h *AccountHandler) GetBalance(c *gin.Context) {
	email, err := getOwnerEmail(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	balance, err := h.ledgerService.GetBalance(email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{Balance: money.Format(balance)})
}

// GetAvailableFunds returns the spendable amount: balance minus budgeted funds.
func (h *AccountHandler) GetAvailableFunds(c *gin.Context) {
	email, err := getOwnerEmail(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	available, err := h.ledgerService.AvailableFunds(email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"available_funds": money.Format(available)})
}

// TransactionQuery carries pagination and the optional kind filter for
// transaction history listings.
type TransactionQuery struct {
	pagination.PageRequest
	Kind string `form:"kind" binding:"omitempty,transaction_kind"`
}

// GetTransactions returns a page of the user's transaction history,
// oldest first, optionally filtered by kind.
func (h *AccountHandler) GetTransactions(c *gin.Context) {
	email, err := getOwnerEmail(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query TransactionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.TransactionFilter{Kind: models.TransactionKind(query.Kind)}
	result, err := h.ledgerService.GetTransactions(email, filter, query.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTransactionPage(result))
}
