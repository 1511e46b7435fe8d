package cache

import (
	"context"
	"sync"

	"coinledger/internal/domain/model"
	"coinledger/internal/domain/port"
)

// MemoryAdapter is an in-memory RateCache for tests and single-process
// runs. Like the Redis adapter it holds exactly one record.
type MemoryAdapter struct {
	mu     sync.Mutex
	latest *model.Rate
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{}
}

func (a *MemoryAdapter) SaveLatest(ctx context.Context, rate model.Rate) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.latest = &rate
	return nil
}

func (a *MemoryAdapter) LoadLatest(ctx context.Context) (*model.Rate, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.latest == nil {
		return nil, nil
	}
	r := *a.latest
	return &r, nil
}

func (a *MemoryAdapter) Ping(ctx context.Context) error { return nil }

func (a *MemoryAdapter) Close() error { return nil }

var _ port.RateCache = (*MemoryAdapter)(nil)
