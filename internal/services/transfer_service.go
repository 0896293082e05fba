package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "pocketbook/internal/errors"
	"pocketbook/internal/models"
	"pocketbook/internal/money"
)

// transferService composes an expense on the sender and an income on the
// receiver into one all-or-nothing operation. A transfer either fully lands
// or leaves no trace; there is no persistent pending state.
type transferService struct {
	db *gorm.DB
}

// NewTransferService creates a new TransferServicer.
func NewTransferService(db *gorm.DB) TransferServicer {
	return &transferService{db: db}
}

// SendMoney moves amount from the sender's account to the receiver's.
// Both transaction histories record a description decorated with the
// amount, sender, and receiver for audit purposes.
func (s *transferService) SendMoney(senderEmail, receiverEmail string, amount decimal.Decimal, description string) error {
	if !amount.IsPositive() {
		return apperrors.ErrInvalidAmount
	}
	senderEmail = strings.ToLower(senderEmail)
	receiverEmail = strings.ToLower(receiverEmail)
	if senderEmail == receiverEmail {
		return apperrors.ErrSelfTransfer
	}

	decorated := fmt.Sprintf("(%s from %s to %s): %s",
		money.Format(amount), senderEmail, receiverEmail, defaultDescription(description))

	return withConflictRetry(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			sender, err := getAccount(tx, senderEmail)
			if err != nil {
				return err
			}
			receiver, err := getAccount(tx, receiverEmail)
			if err != nil {
				if errors.Is(err, apperrors.ErrAccountNotFound) {
					return apperrors.WithMessage(apperrors.ErrAccountNotFound, "Recipient account not found")
				}
				return err
			}

			// Validate both legs before touching either balance.
			senderAvailable, err := availableFunds(tx, sender)
			if err != nil {
				return err
			}
			if amount.GreaterThan(senderAvailable) {
				return apperrors.ErrInsufficientFunds
			}
			receiverStarting := receiver.Balance
			receiverEnding := receiverStarting.Add(amount)
			if money.ExceedsCap(receiverEnding) {
				return apperrors.WithMessage(apperrors.ErrBalanceCapExceeded,
					"Recipient balance would exceed the maximum allowed balance")
			}

			// Touch the two account rows in a fixed order so two opposite
			// transfers cannot deadlock each other.
			first, firstEnding := sender, sender.Balance.Sub(amount)
			second, secondEnding := receiver, receiverEnding
			if second.ID < first.ID {
				first, second = second, first
				firstEnding, secondEnding = secondEnding, firstEnding
			}
			if err := applyBalanceChange(tx, first, firstEnding); err != nil {
				return err
			}
			if err := applyBalanceChange(tx, second, secondEnding); err != nil {
				return err
			}

			expense := &models.Transaction{
				AccountID:       sender.ID,
				Kind:            models.TransactionKindExpense,
				Amount:          amount,
				StartingBalance: senderAvailable,
				EndingBalance:   senderAvailable.Sub(amount),
				Description:     decorated,
			}
			if err := tx.Create(expense).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}

			income := &models.Transaction{
				AccountID:       receiver.ID,
				Kind:            models.TransactionKindIncome,
				Amount:          amount,
				StartingBalance: receiverStarting,
				EndingBalance:   receiverEnding,
				Description:     decorated,
			}
			if err := tx.Create(income).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}

			return nil
		})
	})
}
