package services

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "pocketbook/internal/errors"
	"pocketbook/internal/models"
	"pocketbook/internal/money"
	"pocketbook/internal/pagination"
)

// ledgerService posts signed balance changes to an account and records the
// corresponding transaction, as one atomic unit per operation.
type ledgerService struct {
	db *gorm.DB
}

// NewLedgerService creates a new LedgerServicer.
func NewLedgerService(db *gorm.DB) LedgerServicer {
	return &ledgerService{db: db}
}

// defaultDescription substitutes the recorded default for empty descriptions.
func defaultDescription(description string) string {
	if description == "" {
		return models.DefaultDescription
	}
	return description
}

// createAccount creates the single zero-balance account for a new owner.
// Called from user signup within the signup transaction.
func createAccount(tx *gorm.DB, ownerEmail string) (*models.Account, error) {
	account := &models.Account{
		OwnerEmail: ownerEmail,
		Balance:    money.Zero,
	}
	if err := tx.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// postIncome adds amount to the owner's balance and records an income
// transaction carrying the raw balance before and after. The caller is
// responsible for sign validation and for running this inside a DB
// transaction.
func postIncome(tx *gorm.DB, ownerEmail string, amount decimal.Decimal, description string) (*models.Transaction, error) {
	account, err := getAccount(tx, ownerEmail)
	if err != nil {
		return nil, err
	}

	starting := account.Balance
	ending := starting.Add(amount)
	if money.ExceedsCap(ending) {
		return nil, apperrors.ErrBalanceCapExceeded
	}

	if err := applyBalanceChange(tx, account, ending); err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		AccountID:       account.ID,
		Kind:            models.TransactionKindIncome,
		Amount:          amount,
		StartingBalance: starting,
		EndingBalance:   ending,
		Description:     description,
	}
	if err := tx.Create(txn).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return txn, nil
}

// postExpense subtracts amount from the owner's balance after validating it
// against available funds, so money already earmarked to a budget cannot be
// spent. The recorded transaction carries the available funds before and
// after, not the raw balance.
func postExpense(tx *gorm.DB, ownerEmail string, amount decimal.Decimal, description string) (*models.Transaction, decimal.Decimal, error) {
	account, err := getAccount(tx, ownerEmail)
	if err != nil {
		return nil, decimal.Decimal{}, err
	}

	startingAvailable, err := availableFunds(tx, account)
	if err != nil {
		return nil, decimal.Decimal{}, err
	}
	if amount.GreaterThan(startingAvailable) {
		return nil, decimal.Decimal{}, apperrors.ErrInsufficientFunds
	}

	if err := applyBalanceChange(tx, account, account.Balance.Sub(amount)); err != nil {
		return nil, decimal.Decimal{}, err
	}

	txn := &models.Transaction{
		AccountID:       account.ID,
		Kind:            models.TransactionKindExpense,
		Amount:          amount,
		StartingBalance: startingAvailable,
		EndingBalance:   startingAvailable.Sub(amount),
		Description:     description,
	}
	if err := tx.Create(txn).Error; err != nil {
		return nil, decimal.Decimal{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return txn, account.Balance, nil
}

// AddIncome posts an income amount to the owner's account and returns the
// updated balance.
func (s *ledgerService) AddIncome(ownerEmail string, amount decimal.Decimal, description string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Decimal{}, apperrors.ErrInvalidAmount
	}
	description = defaultDescription(description)

	var updated decimal.Decimal
	err := withConflictRetry(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			txn, err := postIncome(tx, ownerEmail, amount, description)
			if err != nil {
				return err
			}
			updated = txn.EndingBalance
			return nil
		})
	})
	if err != nil {
		return decimal.Decimal{}, err
	}
	return updated, nil
}

// AddExpense posts an expense amount to the owner's account and returns the
// updated balance. The expense is validated against available funds, not
// the raw balance.
func (s *ledgerService) AddExpense(ownerEmail string, amount decimal.Decimal, description string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Decimal{}, apperrors.ErrInvalidAmount
	}
	description = defaultDescription(description)

	var updated decimal.Decimal
	err := withConflictRetry(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			_, balance, err := postExpense(tx, ownerEmail, amount, description)
			if err != nil {
				return err
			}
			updated = balance
			return nil
		})
	})
	if err != nil {
		return decimal.Decimal{}, err
	}
	return updated, nil
}

// GetAccount retrieves the owner's account.
func (s *ledgerService) GetAccount(ownerEmail string) (*models.Account, error) {
	return getAccount(s.db, ownerEmail)
}

// GetBalance retrieves the owner's raw account balance.
func (s *ledgerService) GetBalance(ownerEmail string) (decimal.Decimal, error) {
	account, err := getAccount(s.db, ownerEmail)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return account.Balance, nil
}

// AvailableFunds retrieves the owner's spendable amount: balance minus
// total budgeted funds.
func (s *ledgerService) AvailableFunds(ownerEmail string) (decimal.Decimal, error) {
	account, err := getAccount(s.db, ownerEmail)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return availableFunds(s.db, account)
}

// GetTransactions retrieves a page of the owner's transaction history,
// ordered oldest to newest. Read-only.
func (s *ledgerService) GetTransactions(ownerEmail string, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	account, err := getAccount(s.db, ownerEmail)
	if err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("account_id = ?", account.ID)
	if filter.Kind != "" {
		base = base.Where("kind = ?", filter.Kind)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("created_at ASC, id ASC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}
