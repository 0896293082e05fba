package models

import (
	"github.com/shopspring/decimal"
)

// Budget is a named, goal-tracked earmark of account funds. Budget names
// are unique per owner, not globally. Allocating funds to a budget does not
// decrement the owner's account balance; budgets partition intent, not the
// stored balance.
//
// Invariant: 0 <= Balance <= money.MaxBalance. Goal is advisory; reaching
// it triggers a notification, never a hard cap.
type Budget struct {
	Base
	OwnerEmail string          `gorm:"not null;uniqueIndex:idx_budgets_owner_name" json:"owner_email"`
	Name       string          `gorm:"size:100;not null;uniqueIndex:idx_budgets_owner_name" json:"name"`
	Goal       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"goal"`
	Balance    decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"balance"`
}

// GoalReached reports whether the budget's balance meets or exceeds its goal.
func (b *Budget) GoalReached() bool {
	return b.Balance.GreaterThanOrEqual(b.Goal)
}
