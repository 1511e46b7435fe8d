package port

import (
	"context"

	"github.com/shopspring/decimal"

	"coinledger/internal/domain/model"
)

// EntryStore is the append-only ledger persistence collaborator.
type EntryStore interface {
	Append(ctx context.Context, entry model.Entry) error
	// Query returns entries ordered by creation timestamp descending.
	Query(ctx context.Context, offset, limit int) ([]model.Entry, error)
	// SumAll returns the signed total over all entries (credits - debits).
	SumAll(ctx context.Context) (decimal.Decimal, error)
	Ping(ctx context.Context) error
	Close() error
}
