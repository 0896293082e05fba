package services

import (
	"github.com/shopspring/decimal"

	"pocketbook/internal/models"
	"pocketbook/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	DeleteUser(email string) error
}

// LedgerServicer defines the contract for the account ledger: posting
// signed balance changes and reading balances and history. Accounts are
// addressed by their owner key (the user's email).
type LedgerServicer interface {
	GetAccount(ownerEmail string) (*models.Account, error)
	GetBalance(ownerEmail string) (decimal.Decimal, error)
	AvailableFunds(ownerEmail string) (decimal.Decimal, error)
	AddIncome(ownerEmail string, amount decimal.Decimal, description string) (decimal.Decimal, error)
	AddExpense(ownerEmail string, amount decimal.Decimal, description string) (decimal.Decimal, error)
	GetTransactions(ownerEmail string, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
}

// TransactionFilter narrows a transaction history listing. Zero values
// match everything.
type TransactionFilter struct {
	Kind models.TransactionKind
}

// FundsSummary aggregates a user's account total, budgeted funds, and
// available (unallocated) funds.
type FundsSummary struct {
	Balance        decimal.Decimal `json:"balance"`
	BudgetedFunds  decimal.Decimal `json:"budgeted_funds"`
	AvailableFunds decimal.Decimal `json:"available_funds"`
}

// BudgetServicer defines the contract for the budget allocator: named,
// goal-tracked earmarks of account funds.
type BudgetServicer interface {
	CreateBudget(ownerEmail, name string, goal decimal.Decimal) (*models.Budget, error)
	GetBudget(ownerEmail, name string) (*models.Budget, error)
	GetUserBudgets(ownerEmail string, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	DeleteBudget(ownerEmail, name string) error
	AddFunds(ownerEmail, name string, amount decimal.Decimal) (*models.Budget, error)
	RemoveFunds(ownerEmail, name string, amount decimal.Decimal) (*models.Budget, error)
	TotalBudgetedFunds(ownerEmail string) (decimal.Decimal, error)
	FundsSummary(ownerEmail string) (*FundsSummary, error)
}

// TransferServicer moves funds between two users' accounts as a single
// all-or-nothing operation.
type TransferServicer interface {
	SendMoney(senderEmail, receiverEmail string, amount decimal.Decimal, description string) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userEmail, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
