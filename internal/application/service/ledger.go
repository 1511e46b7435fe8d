package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"coinledger/internal/concurrency/broadcast"
	"coinledger/internal/domain/model"
	"coinledger/internal/domain/port"
)

// ErrInsufficientBalance rejects a debit larger than the current
// balance before anything reaches the store.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Ledger owns the append-only entry history and the running balance.
// The balance is mutated incrementally on every append and published on
// the balance bus; Reconcile recomputes it from the full entry set to
// detect drift. Store errors on the read path are masked as empty/zero,
// matching the persistence contract of the original system.
type Ledger struct {
	store  port.EntryStore
	bus    *broadcast.Bus[decimal.Decimal]
	logger *slog.Logger

	mu      sync.Mutex
	balance decimal.Decimal
}

func NewLedger(store port.EntryStore, logger *slog.Logger) *Ledger {
	l := &Ledger{
		store:   store,
		bus:     broadcast.NewBus[decimal.Decimal](),
		logger:  logger,
		balance: decimal.Zero,
	}

	sum, err := store.SumAll(context.Background())
	if err != nil {
		l.logger.Warn("failed to load initial balance, starting from zero", "error", err)
		return l
	}
	l.balance = sum
	return l
}

// AddEntry appends the entry, applies it to the running balance and
// publishes the new balance. The append and the balance update happen
// under the same lock so the published stream matches the store order.
func (l *Ledger) AddEntry(ctx context.Context, entry model.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.applyLocked(ctx, entry)
}

// Debit appends a debit entry, rejecting it with ErrInsufficientBalance
// when the amount exceeds the balance. Check and append are one critical
// section, so two concurrent debits cannot both pass against the same
// balance and drive it negative.
func (l *Ledger) Debit(ctx context.Context, entry model.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry.Amount.GreaterThan(l.balance) {
		return ErrInsufficientBalance
	}
	return l.applyLocked(ctx, entry)
}

func (l *Ledger) applyLocked(ctx context.Context, entry model.Entry) error {
	if err := l.store.Append(ctx, entry); err != nil {
		return err
	}
	l.balance = l.balance.Add(entry.Signed())
	l.bus.Publish(l.balance)
	return nil
}

func (l *Ledger) Balance() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// Reconcile recomputes the balance from the full entry set and adopts
// the recomputed value, logging when it diverged from the running one.
func (l *Ledger) Reconcile(ctx context.Context) error {
	sum, err := l.store.SumAll(ctx)
	if err != nil {
		l.logger.Warn("balance reconciliation failed", "error", err)
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.balance.Equal(sum) {
		l.logger.Warn("balance drift detected, adopting recomputed value",
			"running", l.balance, "recomputed", sum)
		l.balance = sum
		l.bus.Publish(l.balance)
	}
	return nil
}

// Entries returns one page, newest first. A page past the end is empty.
// Store errors are logged and surfaced as an empty page.
func (l *Ledger) Entries(ctx context.Context, page, pageSize int) []model.Entry {
	if page < 0 || pageSize <= 0 {
		return nil
	}
	entries, err := l.store.Query(ctx, page*pageSize, pageSize)
	if err != nil {
		l.logger.Warn("failed to query ledger entries", "page", page, "error", err)
		return nil
	}
	return entries
}

// BalanceUpdates exposes the balance-change stream for subscribers.
func (l *Ledger) BalanceUpdates() *broadcast.Bus[decimal.Decimal] {
	return l.bus
}
