package port

import (
	"context"

	"coinledger/internal/domain/model"
)

// RateCache is the durable last-known-rate store. A save overwrites the
// single existing record; only one rate ever survives.
type RateCache interface {
	SaveLatest(ctx context.Context, rate model.Rate) error
	LoadLatest(ctx context.Context) (*model.Rate, error)
	Ping(ctx context.Context) error
	Close() error
}
