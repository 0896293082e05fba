package models

import (
	"github.com/shopspring/decimal"
)

// TransactionKind represents the direction of a transaction.
type TransactionKind string

const (
	TransactionKindIncome  TransactionKind = "income"
	TransactionKindExpense TransactionKind = "expense"
)

// DefaultDescription is recorded when the caller supplies no description.
const DefaultDescription = "None"

// Transaction is an immutable historical fact recording one balance
// mutation. Rows are never updated or deleted; they are the audit trail.
//
// Amount is always stored positive; Kind conveys direction. For income rows
// StartingBalance/EndingBalance are the raw account balance before and
// after. For expense rows they are the owner's available (unallocated)
// funds before and after, so the ledger entry reflects what the user could
// actually spend at that moment.
type Transaction struct {
	Base
	AccountID       string          `gorm:"not null;index" json:"account_id"`
	Kind            TransactionKind `gorm:"not null" json:"kind"`
	Amount          decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	StartingBalance decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"starting_balance"`
	EndingBalance   decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"ending_balance"`
	Description     string          `gorm:"size:200;not null;default:'None'" json:"description"`
}
