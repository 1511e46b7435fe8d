package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"coinledger/internal/domain/model"
	"coinledger/internal/domain/port"
)

// MemoryAdapter is an in-memory EntryStore, thread-safe for concurrent
// appends and reads. Query results are copies; callers cannot mutate
// internal state.
type MemoryAdapter struct {
	mu      sync.Mutex
	entries []model.Entry
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{entries: make([]model.Entry, 0)}
}

func (m *MemoryAdapter) Append(ctx context.Context, entry model.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MemoryAdapter) Query(ctx context.Context, offset, limit int) ([]model.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sorted := make([]model.Entry, len(m.entries))
	copy(sorted, m.entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	if offset >= len(sorted) {
		return nil, nil
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	out := make([]model.Entry, end-offset)
	copy(out, sorted[offset:end])
	return out, nil
}

func (m *MemoryAdapter) SumAll(ctx context.Context) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := decimal.Zero
	for _, e := range m.entries {
		total = total.Add(e.Signed())
	}
	return total, nil
}

func (m *MemoryAdapter) Ping(ctx context.Context) error { return nil }

func (m *MemoryAdapter) Close() error { return nil }

var _ port.EntryStore = (*MemoryAdapter)(nil)
