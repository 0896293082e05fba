package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "pocketbook/internal/errors"
	"pocketbook/internal/logger"
	"pocketbook/internal/models"
	"pocketbook/internal/money"
	"pocketbook/internal/pagination"
)

// ErrorResponse is the JSON shape of an error reply.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// MessageResponse is the JSON shape of a plain confirmation reply.
type MessageResponse struct {
	Message string `json:"message"`
}

// getOwnerEmail extracts the authenticated owner key from the Gin context.
// Returns ErrUnauthorized if not present.
func getOwnerEmail(c *gin.Context) (string, error) {
	email, exists := c.Get("email")
	if !exists {
		return "", apperrors.ErrUnauthorized
	}
	return email.(string), nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}

// TransactionResponse renders a ledger transaction with amounts formatted
// to exactly two decimal places.
type TransactionResponse struct {
	ID              string    `json:"id"`
	Kind            string    `json:"kind"`
	Amount          string    `json:"amount"`
	StartingBalance string    `json:"starting_balance"`
	EndingBalance   string    `json:"ending_balance"`
	Description     string    `json:"description"`
	Date            time.Time `json:"date"`
}

func newTransactionResponse(t models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		Kind:            string(t.Kind),
		Amount:          money.Format(t.Amount),
		StartingBalance: money.Format(t.StartingBalance),
		EndingBalance:   money.Format(t.EndingBalance),
		Description:     t.Description,
		Date:            t.CreatedAt,
	}
}

func newTransactionPage(page *pagination.PageResponse[models.Transaction]) pagination.PageResponse[TransactionResponse] {
	data := make([]TransactionResponse, 0, len(page.Data))
	for _, t := range page.Data {
		data = append(data, newTransactionResponse(t))
	}
	return pagination.PageResponse[TransactionResponse]{
		Data:       data,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	}
}

// BudgetResponse renders a budget with formatted amounts and the advisory
// goal-reached flag.
type BudgetResponse struct {
	Name        string `json:"name"`
	Goal        string `json:"goal"`
	Balance     string `json:"balance"`
	GoalReached bool   `json:"goal_reached"`
}

func newBudgetResponse(b *models.Budget) BudgetResponse {
	return BudgetResponse{
		Name:        b.Name,
		Goal:        money.Format(b.Goal),
		Balance:     money.Format(b.Balance),
		GoalReached: b.GoalReached(),
	}
}
