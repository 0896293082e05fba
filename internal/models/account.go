package models

import (
	"github.com/shopspring/decimal"
)

// Account holds a user's single monetary balance. The balance is the raw
// account total; funds earmarked to budgets stay inside it, so the true
// spendable amount is balance minus the sum of the owner's budget balances.
//
// Invariant: 0 <= Balance <= money.MaxBalance at all times. The balance is
// mutated only through LedgerService operations, never written directly.
type Account struct {
	Base
	OwnerEmail string          `gorm:"uniqueIndex;not null" json:"owner_email"`
	Balance    decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"balance"`

	Transactions []Transaction `gorm:"foreignKey:AccountID" json:"transactions,omitempty"`
}
