package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "pocketbook/internal/errors"
	"pocketbook/internal/models"
	"pocketbook/internal/money"
	"pocketbook/internal/pagination"
)

// budgetService manages named budgets and their balances. Budget balances
// earmark account funds without decrementing the stored account balance.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// getBudget loads a budget by its (owner, name) key.
func getBudget(tx *gorm.DB, ownerEmail, name string) (*models.Budget, error) {
	var budget models.Budget
	if err := tx.Where("owner_email = ? AND name = ?", ownerEmail, name).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// CreateBudget creates a new zero-balance budget for the owner. Budget
// names are unique per owner.
func (s *budgetService) CreateBudget(ownerEmail, name string, goal decimal.Decimal) (*models.Budget, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name is required")
	}
	if goal.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget goal must not be negative")
	}
	if money.ExceedsCap(goal) {
		return nil, apperrors.ErrInvalidGoal
	}

	var count int64
	if err := s.db.Model(&models.Budget{}).
		Where("owner_email = ? AND name = ?", ownerEmail, name).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateBudget
	}

	budget := &models.Budget{
		OwnerEmail: ownerEmail,
		Name:       name,
		Goal:       goal,
		Balance:    money.Zero,
	}
	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// GetBudget retrieves a budget by name for the owner.
func (s *budgetService) GetBudget(ownerEmail, name string) (*models.Budget, error) {
	return getBudget(s.db, ownerEmail, name)
}

// GetUserBudgets retrieves a paginated list of the owner's budgets.
func (s *budgetService) GetUserBudgets(ownerEmail string, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("owner_email = ?", ownerEmail)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Scopes(pagination.Paginate(page)).Order("name ASC").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// DeleteBudget permanently removes a budget. The removal is irreversible
// and does not touch the account balance or past transactions; any funds
// the budget held simply become available again.
func (s *budgetService) DeleteBudget(ownerEmail, name string) error {
	budget, err := getBudget(s.db, ownerEmail, name)
	if err != nil {
		return err
	}

	if err := s.db.Unscoped().Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// AddFunds moves amount of the owner's available funds into the budget.
// The available-funds check spans the account and all of the owner's
// budgets, so it runs here, inside the same DB transaction that mutates
// the budget.
func (s *budgetService) AddFunds(ownerEmail, name string, amount decimal.Decimal) (*models.Budget, error) {
	if !amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}

	var updated *models.Budget
	err := withConflictRetry(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			budget, err := getBudget(tx, ownerEmail, name)
			if err != nil {
				return err
			}

			ending := budget.Balance.Add(amount)
			if money.ExceedsCap(ending) {
				return apperrors.ErrBalanceCapExceeded
			}

			account, err := getAccount(tx, ownerEmail)
			if err != nil {
				return err
			}
			available, err := availableFunds(tx, account)
			if err != nil {
				return err
			}
			if amount.GreaterThan(available) {
				return apperrors.ErrInsufficientFunds
			}

			if err := applyBudgetBalanceChange(tx, budget, ending); err != nil {
				return err
			}
			updated = budget
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveFunds returns amount from the budget to the owner's available funds.
func (s *budgetService) RemoveFunds(ownerEmail, name string, amount decimal.Decimal) (*models.Budget, error) {
	if !amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}

	var updated *models.Budget
	err := withConflictRetry(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			budget, err := getBudget(tx, ownerEmail, name)
			if err != nil {
				return err
			}

			if amount.GreaterThan(budget.Balance) {
				return apperrors.ErrInsufficientBudgetFunds
			}

			if err := applyBudgetBalanceChange(tx, budget, budget.Balance.Sub(amount)); err != nil {
				return err
			}
			updated = budget
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// TotalBudgetedFunds sums the balances of all of the owner's budgets.
func (s *budgetService) TotalBudgetedFunds(ownerEmail string) (decimal.Decimal, error) {
	return totalBudgetedFunds(s.db, ownerEmail)
}

// FundsSummary reports the owner's account total, budgeted funds, and
// available funds in one read.
func (s *budgetService) FundsSummary(ownerEmail string) (*FundsSummary, error) {
	account, err := getAccount(s.db, ownerEmail)
	if err != nil {
		return nil, err
	}
	budgeted, err := totalBudgetedFunds(s.db, ownerEmail)
	if err != nil {
		return nil, err
	}
	return &FundsSummary{
		Balance:        account.Balance,
		BudgetedFunds:  budgeted,
		AvailableFunds: account.Balance.Sub(budgeted),
	}, nil
}
