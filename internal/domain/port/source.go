package port

import (
	"context"

	"coinledger/internal/domain/model"
)

// RateSource fetches the current price from an external endpoint.
type RateSource interface {
	Fetch(ctx context.Context) (model.Rate, error)
	Name() string
}
