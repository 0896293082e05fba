package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pocketbook/internal/errors"
	"pocketbook/internal/money"
	"pocketbook/internal/pagination"
	"pocketbook/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// CreateBudgetRequest represents the request payload for creating a budget.
type CreateBudgetRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
	Goal string `json:"goal" binding:"required,money"`
}

// FundsRequest represents the payload for moving funds into or out of a budget.
type FundsRequest struct {
	Amount string `json:"amount" binding:"required,money"`
}

// CreateBudget handles the creation of a new budget.
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	email, err := getOwnerEmail(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	goal, err := money.Parse(req.Goal)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal must be a valid amount"))
		return
	}

	budget, err := h.budgetService.CreateBudget(email, req.Name, goal)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(email, "CREATE_BUDGET", "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "goal": money.Format(goal)})

	c.JSON(http.StatusCreated, gin.H{"budget": newBudgetResponse(budget)})
}

// GetBudgets handles listing budgets for the authenticated user.
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	email, err := getOwnerEmail(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.budgetService.GetUserBudgets(email, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	data := make([]BudgetResponse, 0, len(result.Data))
	for i := range result.Data {
		data = append(data, newBudgetResponse(&result.Data[i]))
	}
	c.JSON(http.StatusOK, pagination.PageResponse[BudgetResponse]{
		Data:       data,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	})
}

// GetBudget handles retrieving a specific budget by name.
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	email, err := getOwnerEmail(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudget(email, c.Param("name"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": newBudgetResponse(budget)})
}

// DeleteBudget handles permanently deleting a budget.
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	email, err := getOwnerEmail(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	name := c.Param("name")
	if err := h.budgetService.DeleteBudget(email, name); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(email, "DELETE_BUDGET", "budget", "", c.ClientIP(),
		map[string]interface{}{"name": name})

	c.JSON(http.StatusOK, MessageResponse{Message: "Budget deleted"})
}

// AddFunds moves available account funds into a budget.
func (h *BudgetHandler) AddFunds(c *gin.Context) {
	email, err := getOwnerEmail(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req FundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		respondWithError(c, apperrors.ErrInvalidAmount)
		return
	}

	name := c.Param("name")
	budget, err := h.budgetService.AddFunds(email, name, amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(email, "ADD_BUDGET_FUNDS", "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"name": name, "amount": money.Format(amount)})

	c.JSON(http.StatusOK, gin.H{"budget": newBudgetResponse(budget)})
}

// RemoveFunds returns budget funds to the owner's available funds.
func (h *BudgetHandler) RemoveFunds(c *gin.Context) {
	email, err := getOwnerEmail(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req FundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		respondWithError(c, apperrors.ErrInvalidAmount)
		return
	}

	name := c.Param("name")
	budget, err := h.budgetService.RemoveFunds(email, name, amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(email, "REMOVE_BUDGET_FUNDS", "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"name": name, "amount": money.Format(amount)})

	c.JSON(http.StatusOK, gin.H{"budget": newBudgetResponse(budget)})
}

// GetFundsSummary reports the account total, budgeted funds, and available
// funds for the authenticated user.
func (h *BudgetHandler) GetFundsSummary(c *gin.Context) {
	email, err := getOwnerEmail(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.budgetService.FundsSummary(email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance":         money.Format(summary.Balance),
		"budgeted_funds":  money.Format(summary.BudgetedFunds),
		"available_funds": money.Format(summary.AvailableFunds),
	})
}
