package models

// User represents the user model in the database. Each user owns exactly
// one ledger Account, created at signup, and any number of Budgets.
type User struct {
	Base
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	Account *Account `gorm:"foreignKey:OwnerEmail;references:Email" json:"account,omitempty"`
	Budgets []Budget `gorm:"foreignKey:OwnerEmail;references:Email" json:"budgets,omitempty"`
}
