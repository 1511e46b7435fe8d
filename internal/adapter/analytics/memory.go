package analytics

import (
	"sync"
	"time"

	"coinledger/internal/domain/model"
	"coinledger/internal/domain/port"
)

// MemoryAnalytics records tracked events in memory and serves filtered
// reads over them.
type MemoryAnalytics struct {
	mu     sync.Mutex
	events []model.Event
}

func NewMemoryAnalytics() *MemoryAnalytics {
	return &MemoryAnalytics{}
}

func (a *MemoryAnalytics) Track(name string, parameters map[string]string) {
	params := make(map[string]string, len(parameters))
	for k, v := range parameters {
		params[k] = v
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, model.Event{
		Name:       name,
		Parameters: params,
		Date:       time.Now(),
	})
}

func (a *MemoryAnalytics) Events(filter port.EventFilter) []model.Event {
	a.mu.Lock()
	defer a.mu.Unlock()

	var out []model.Event
	for _, e := range a.events {
		if filter.Name != "" && e.Name != filter.Name {
			continue
		}
		if !filter.From.IsZero() && e.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.Date.After(filter.To) {
			continue
		}
		out = append(out, e)
	}
	return out
}

var _ port.Analytics = (*MemoryAnalytics)(nil)
