package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "pocketbook/internal/errors"
	"pocketbook/internal/models"
	"pocketbook/internal/pagination"
	"pocketbook/internal/services"
)

// --- mock budget service ---

type mockBudgetService struct {
	createBudgetFn       func(ownerEmail, name string, goal decimal.Decimal) (*models.Budget, error)
	getBudgetFn          func(ownerEmail, name string) (*models.Budget, error)
	getUserBudgetsFn     func(ownerEmail string, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	deleteBudgetFn       func(ownerEmail, name string) error
	addFundsFn           func(ownerEmail, name string, amount decimal.Decimal) (*models.Budget, error)
	removeFundsFn        func(ownerEmail, name string, amount decimal.Decimal) (*models.Budget, error)
	totalBudgetedFundsFn func(ownerEmail string) (decimal.Decimal, error)
	fundsSummaryFn       func(ownerEmail string) (*services.FundsSummary, error)
}

func (m *mockBudgetService) CreateBudget(ownerEmail, name string, goal decimal.Decimal) (*models.Budget, error) {
	if m.createBudgetFn != nil {
		return m.createBudgetFn(ownerEmail, name, goal)
	}
	return &models.Budget{OwnerEmail: ownerEmail, Name: name, Goal: goal}, nil
}

func (m *mockBudgetService) GetBudget(ownerEmail, name string) (*models.Budget, error) {
	if m.getBudgetFn != nil {
		return m.getBudgetFn(ownerEmail, name)
	}
	return &models.Budget{OwnerEmail: ownerEmail, Name: name}, nil
}

func (m *mockBudgetService) GetUserBudgets(ownerEmail string, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
	if m.getUserBudgetsFn != nil {
		return m.getUserBudgetsFn(ownerEmail, page)
	}
	resp := pagination.NewPageResponse([]models.Budget{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockBudgetService) DeleteBudget(ownerEmail, name string) error {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(ownerEmail, name)
	}
	return nil
}

func (m *mockBudgetService) AddFunds(ownerEmail, name string, amount decimal.Decimal) (*models.Budget, error) {
	if m.addFundsFn != nil {
		return m.addFundsFn(ownerEmail, name, amount)
	}
	return &models.Budget{OwnerEmail: ownerEmail, Name: name, Balance: amount}, nil
}

func (m *mockBudgetService) RemoveFunds(ownerEmail, name string, amount decimal.Decimal) (*models.Budget, error) {
	if m.removeFundsFn != nil {
		return m.removeFundsFn(ownerEmail, name, amount)
	}
	return &models.Budget{OwnerEmail: ownerEmail, Name: name}, nil
}

func (m *mockBudgetService) TotalBudgetedFunds(ownerEmail string) (decimal.Decimal, error) {
	if m.totalBudgetedFundsFn != nil {
		return m.totalBudgetedFundsFn(ownerEmail)
	}
	return decimal.Zero, nil
}

func (m *mockBudgetService) FundsSummary(ownerEmail string) (*services.FundsSummary, error) {
	if m.fundsSummaryFn != nil {
		return m.fundsSummaryFn(ownerEmail)
	}
	return &services.FundsSummary{}, nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

func setupBudgetRouter(handler *BudgetHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectEmail("user@test.com"))
	auth.POST("/budgets", handler.CreateBudget)
	auth.GET("/budgets", handler.GetBudgets)
	auth.GET("/budgets/summary", handler.GetFundsSummary)
	auth.GET("/budgets/:name", handler.GetBudget)
	auth.DELETE("/budgets/:name", handler.DeleteBudget)
	auth.POST("/budgets/:name/funds", handler.AddFunds)
	auth.DELETE("/budgets/:name/funds", handler.RemoveFunds)
	return r
}

func TestBudgetHandler_CreateBudget(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets", `{"name":"Vacation","goal":"1500.00"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		budget := result["budget"].(map[string]interface{})
		if budget["name"] != "Vacation" {
			t.Errorf("expected Vacation, got %v", budget["name"])
		}
		if budget["goal"] != "1500.00" {
			t.Errorf("expected goal 1500.00, got %v", budget["goal"])
		}
		if budget["goal_reached"] != false {
			t.Errorf("expected goal_reached false, got %v", budget["goal_reached"])
		}
	})

	t.Run("returns 400 on missing name", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets", `{"goal":"100.00"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on malformed goal", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets", `{"name":"Vacation","goal":"lots"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 on duplicate name", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			createBudgetFn: func(_, _ string, _ decimal.Decimal) (*models.Budget, error) {
				return nil, apperrors.ErrDuplicateBudget
			},
		}
		handler := NewBudgetHandler(budgetSvc, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets", `{"name":"Vacation","goal":"100.00"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_BUDGET")
	})
}

func TestBudgetHandler_GetBudget(t *testing.T) {
	t.Run("returns 200 with budget", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			getBudgetFn: func(_, name string) (*models.Budget, error) {
				return &models.Budget{
					Name:    name,
					Goal:    decimal.RequireFromString("100"),
					Balance: decimal.RequireFromString("100"),
				}, nil
			},
		}
		handler := NewBudgetHandler(budgetSvc, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets/Car", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		budget := result["budget"].(map[string]interface{})
		if budget["name"] != "Car" {
			t.Errorf("expected Car, got %v", budget["name"])
		}
		if budget["goal_reached"] != true {
			t.Errorf("expected goal_reached true, got %v", budget["goal_reached"])
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			getBudgetFn: func(_, _ string) (*models.Budget, error) {
				return nil, apperrors.ErrBudgetNotFound
			},
		}
		handler := NewBudgetHandler(budgetSvc, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets/Missing", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_AddFunds(t *testing.T) {
	t.Run("returns 200 with updated budget", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets/Car/funds", `{"amount":"25.00"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		budget := result["budget"].(map[string]interface{})
		if budget["balance"] != "25.00" {
			t.Errorf("expected balance 25.00, got %v", budget["balance"])
		}
	})

	t.Run("returns 400 on insufficient available funds", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			addFundsFn: func(_, _ string, _ decimal.Decimal) (*models.Budget, error) {
				return nil, apperrors.ErrInsufficientFunds
			},
		}
		handler := NewBudgetHandler(budgetSvc, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets/Car/funds", `{"amount":"25.00"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INSUFFICIENT_FUNDS")
	})
}

func TestBudgetHandler_RemoveFunds(t *testing.T) {
	t.Run("returns 400 when budget lacks funds", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			removeFundsFn: func(_, _ string, _ decimal.Decimal) (*models.Budget, error) {
				return nil, apperrors.ErrInsufficientBudgetFunds
			},
		}
		handler := NewBudgetHandler(budgetSvc, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "DELETE", "/budgets/Car/funds", `{"amount":"25.00"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INSUFFICIENT_BUDGET_FUNDS")
	})
}

func TestBudgetHandler_GetFundsSummary(t *testing.T) {
	t.Run("returns 200 with summary", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			fundsSummaryFn: func(_ string) (*services.FundsSummary, error) {
				return &services.FundsSummary{
					Balance:        decimal.RequireFromString("200"),
					BudgetedFunds:  decimal.RequireFromString("75"),
					AvailableFunds: decimal.RequireFromString("125"),
				}, nil
			},
		}
		handler := NewBudgetHandler(budgetSvc, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets/summary", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["balance"] != "200.00" {
			t.Errorf("expected balance 200.00, got %v", result["balance"])
		}
		if result["budgeted_funds"] != "75.00" {
			t.Errorf("expected budgeted_funds 75.00, got %v", result["budgeted_funds"])
		}
		if result["available_funds"] != "125.00" {
			t.Errorf("expected available_funds 125.00, got %v", result["available_funds"])
		}
	})
}
