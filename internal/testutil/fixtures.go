package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"pocketbook/internal/models"
	"pocketbook/internal/money"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Amount parses a test amount string, failing the test on bad input.
func Amount(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := money.Parse(s)
	if err != nil {
		t.Fatalf("invalid test amount %q: %v", s, err)
	}
	return d
}

// CreateTestUser creates a user with a hashed password, a unique email, and
// a zero-balance account.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email and a
// zero-balance account.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	account := &models.Account{
		OwnerEmail: email,
		Balance:    money.Zero,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	user.Account = account
	return user
}

// CreateTestUserWithBalance creates a user whose account starts at the
// given balance.
func CreateTestUserWithBalance(t *testing.T, db *gorm.DB, balance string) *models.User {
	t.Helper()

	user := CreateTestUser(t, db)
	if err := db.Model(user.Account).Update("balance", Amount(t, balance)).Error; err != nil {
		t.Fatalf("failed to set test account balance: %v", err)
	}
	user.Account.Balance = Amount(t, balance)
	return user
}

// CreateTestBudget creates a budget for the owner with the given goal and
// a zero balance.
func CreateTestBudget(t *testing.T, db *gorm.DB, ownerEmail, goal string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		OwnerEmail: ownerEmail,
		Name:       fmt.Sprintf("Test Budget %d", nextID()),
		Goal:       Amount(t, goal),
		Balance:    money.Zero,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// LedgerSnapshot captures an owner's account balance, budget balances, and
// transaction count so tests can assert that failed operations left no
// partial writes.
type LedgerSnapshot struct {
	Balance          decimal.Decimal
	BudgetBalances   map[string]string
	TransactionCount int64
}

// SnapshotLedger captures the observable ledger state for an owner.
func SnapshotLedger(t *testing.T, db *gorm.DB, ownerEmail string) LedgerSnapshot {
	t.Helper()

	var account models.Account
	if err := db.Where("owner_email = ?", ownerEmail).First(&account).Error; err != nil {
		t.Fatalf("failed to load account for snapshot: %v", err)
	}

	var budgets []models.Budget
	if err := db.Where("owner_email = ?", ownerEmail).Find(&budgets).Error; err != nil {
		t.Fatalf("failed to load budgets for snapshot: %v", err)
	}
	balances := make(map[string]string, len(budgets))
	for _, b := range budgets {
		balances[b.Name] = b.Balance.StringFixed(2)
	}

	var count int64
	if err := db.Model(&models.Transaction{}).Where("account_id = ?", account.ID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count transactions for snapshot: %v", err)
	}

	return LedgerSnapshot{
		Balance:          account.Balance,
		BudgetBalances:   balances,
		TransactionCount: count,
	}
}

// AssertUnchanged fails the test if the owner's observable ledger state
// differs from the snapshot.
func (s LedgerSnapshot) AssertUnchanged(t *testing.T, db *gorm.DB, ownerEmail string) {
	t.Helper()

	after := SnapshotLedger(t, db, ownerEmail)
	if !after.Balance.Equal(s.Balance) {
		t.Errorf("balance changed: %s -> %s", s.Balance.StringFixed(2), after.Balance.StringFixed(2))
	}
	if after.TransactionCount != s.TransactionCount {
		t.Errorf("transaction count changed: %d -> %d", s.TransactionCount, after.TransactionCount)
	}
	if len(after.BudgetBalances) != len(s.BudgetBalances) {
		t.Errorf("budget count changed: %d -> %d", len(s.BudgetBalances), len(after.BudgetBalances))
		return
	}
	for name, balance := range s.BudgetBalances {
		if after.BudgetBalances[name] != balance {
			t.Errorf("budget %q balance changed: %s -> %s", name, balance, after.BudgetBalances[name])
		}
	}
}
