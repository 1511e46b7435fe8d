package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"coinledger/internal/application/service"
	"coinledger/internal/domain/model"
)

var (
	// ErrInsufficientBalance is the ledger's rejection of an expense
	// larger than the current balance, re-exported for handlers.
	ErrInsufficientBalance = service.ErrInsufficientBalance
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// LedgerUseCase is the caller-side policy around the Ledger: it
// validates amounts and builds entries. The insufficient-balance check
// itself lives in Ledger.Debit, atomic with the append.
type LedgerUseCase struct {
	ledger *service.Ledger
	now    func() time.Time
}

func NewLedgerUseCase(ledger *service.Ledger) *LedgerUseCase {
	return &LedgerUseCase{
		ledger: ledger,
		now:    time.Now,
	}
}

// AddExpense writes a debit entry. An amount exceeding the current
// balance is rejected with ErrInsufficientBalance and nothing is
// written.
func (u *LedgerUseCase) AddExpense(ctx context.Context, amount decimal.Decimal, category model.Category) error {
	if amount.Cmp(decimal.Zero) <= 0 {
		return ErrInvalidAmount
	}

	entry := model.Entry{
		ID:        uuid.New(),
		Amount:    amount,
		Direction: model.Debit,
		Category:  category,
		CreatedAt: u.now(),
	}
	return u.ledger.Debit(ctx, entry)
}

// AddFunds writes a credit entry under the catch-all category.
func (u *LedgerUseCase) AddFunds(ctx context.Context, amount decimal.Decimal) error {
	if amount.Cmp(decimal.Zero) <= 0 {
		return ErrInvalidAmount
	}

	entry := model.Entry{
		ID:        uuid.New(),
		Amount:    amount,
		Direction: model.Credit,
		Category:  model.CategoryOther,
		CreatedAt: u.now(),
	}
	return u.ledger.AddEntry(ctx, entry)
}
