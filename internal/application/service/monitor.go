package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"coinledger/internal/concurrency/broadcast"
	"coinledger/internal/domain/model"
	"coinledger/internal/domain/port"
)

// Monitor polls the rate source on a fixed interval and fans each new
// rate out: in-memory current value, cache write, bus publish. All
// state mutation is serialized through the monitor's mutex, so an
// update appears atomic to other monitor operations.
type Monitor struct {
	source   port.RateSource
	cache    port.RateCache
	bus      *broadcast.Bus[model.Rate]
	logger   *slog.Logger
	interval time.Duration

	mu      sync.Mutex
	current *model.Rate
	running bool
	gen     uint64
	stop    chan struct{}
}

func NewMonitor(source port.RateSource, cache port.RateCache, bus *broadcast.Bus[model.Rate], interval time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = 120 * time.Second
	}
	return &Monitor{
		source:   source,
		cache:    cache,
		bus:      bus,
		logger:   logger,
		interval: interval,
	}
}

// Start triggers an immediate fetch and arms the recurring timer.
// Calling Start on a running monitor is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stop = make(chan struct{})
	gen := m.gen
	stop := m.stop
	m.mu.Unlock()

	go m.loop(ctx, gen, stop)
	m.logger.Info("rate monitoring started", "interval", m.interval, "source", m.source.Name())
}

// Stop disarms the timer. Idempotent; repeated calls are no-ops. After
// Stop returns, a fetch still in flight is discarded, never applied.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.running = false
	m.gen++
	close(m.stop)
	m.logger.Info("rate monitoring stopped")
}

// CurrentRate resolves in a fixed order: in-memory value, then the
// cache's last persisted value, then absent.
func (m *Monitor) CurrentRate(ctx context.Context) (model.Rate, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		return *m.current, true
	}

	cached, err := m.cache.LoadLatest(ctx)
	if err != nil {
		m.logger.Warn("failed to load cached rate", "error", err)
		return model.Rate{}, false
	}
	if cached == nil {
		return model.Rate{}, false
	}
	m.current = cached
	return *cached, true
}

func (m *Monitor) loop(ctx context.Context, gen uint64, stop chan struct{}) {
	m.fetchOnce(ctx, gen)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.fetchOnce(ctx, gen)
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// fetchOnce fetches and applies one rate. A failed fetch leaves the
// existing rate untouched; the next tick is the retry.
func (m *Monitor) fetchOnce(ctx context.Context, gen uint64) {
	rate, err := m.source.Fetch(ctx)
	if err != nil {
		m.logger.Warn("rate fetch failed, keeping stale rate", "error", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		m.logger.Debug("discarding rate fetched after stop", "price", rate.Price)
		return
	}

	m.current = &rate
	if err := m.cache.SaveLatest(ctx, rate); err != nil {
		m.logger.Warn("failed to persist rate", "error", err)
	}
	m.bus.Publish(rate)
	m.logger.Info("rate updated", "price", rate.Price, "currency", rate.Currency)
}
