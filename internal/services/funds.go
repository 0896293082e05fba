package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "pocketbook/internal/errors"
	"pocketbook/internal/models"
)

// maxConflictRetries bounds optimistic-concurrency retries before the
// operation is surfaced as a store failure.
const maxConflictRetries = 3

// errStaleBalance signals that a balance-guarded update matched no row:
// another writer changed the balance between our read and write. The
// enclosing DB transaction rolls back and the operation is retried.
var errStaleBalance = errors.New("balance changed concurrently")

// withConflictRetry runs op, retrying on optimistic-concurrency conflicts.
func withConflictRetry(op func() error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = op()
		if !errors.Is(err, errStaleBalance) {
			return err
		}
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// getAccount loads the account for an owner key within the given DB handle.
func getAccount(tx *gorm.DB, ownerEmail string) (*models.Account, error) {
	var account models.Account
	if err := tx.Where("owner_email = ?", ownerEmail).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// totalBudgetedFunds sums the balances of all of the owner's budgets.
// A user with no budgets totals zero.
func totalBudgetedFunds(tx *gorm.DB, ownerEmail string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.Model(&models.Budget{}).
		Select("COALESCE(SUM(balance), 0)").
		Where("owner_email = ?", ownerEmail).
		Scan(&total).Error
	if err != nil {
		return decimal.Decimal{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}

// availableFunds computes the owner's spendable amount: account balance
// minus total budgeted funds. Budget balances earmark funds inside the
// account; they never decrement the stored balance.
func availableFunds(tx *gorm.DB, account *models.Account) (decimal.Decimal, error) {
	budgeted, err := totalBudgetedFunds(tx, account.OwnerEmail)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return account.Balance.Sub(budgeted), nil
}

// applyBalanceChange writes a new account balance guarded by the balance
// the caller read. If no row matches, a concurrent writer got there first.
func applyBalanceChange(tx *gorm.DB, account *models.Account, newBalance decimal.Decimal) error {
	res := tx.Model(&models.Account{}).
		Where("id = ? AND balance = ?", account.ID, account.Balance).
		Update("balance", newBalance)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return errStaleBalance
	}
	account.Balance = newBalance
	return nil
}

// applyBudgetBalanceChange is the budget-row counterpart of applyBalanceChange.
func applyBudgetBalanceChange(tx *gorm.DB, budget *models.Budget, newBalance decimal.Decimal) error {
	res := tx.Model(&models.Budget{}).
		Where("id = ? AND balance = ?", budget.ID, budget.Balance).
		Update("balance", newBalance)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return errStaleBalance
	}
	budget.Balance = newBalance
	return nil
}
