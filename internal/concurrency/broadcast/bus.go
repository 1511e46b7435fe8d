// Package broadcast implements a multi-subscriber fan-out bus. Every
// subscriber receives every published value in publish order; ordering
// across subscribers is not defined. Subscriptions carry an optional
// operator chain (filter, debounce, time-window collect).
package broadcast

import "sync"

type Handler[T any] func(T)

// BatchHandler receives the values collected within one time window.
type BatchHandler[T any] func([]T)

type Bus[T any] struct {
	mu   sync.RWMutex
	subs map[uint64]*Subscription[T]
	next uint64
}

func NewBus[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[uint64]*Subscription[T])}
}

// Publish delivers v to every live subscription. The subscriber set is
// snapshotted first, so concurrent Subscribe/Unsubscribe calls never
// disrupt a publish in flight. Publish does not wait for handlers; each
// subscription queues values and drains them on its own goroutine.
func (b *Bus[T]) Publish(v T) {
	b.mu.RLock()
	snapshot := make([]*Subscription[T], 0, len(b.subs))
	for _, s := range b.subs {
		snapshot = append(snapshot, s)
	}
	b.mu.RUnlock()

	for _, s := range snapshot {
		select {
		case s.in <- v:
		case <-s.quit:
		}
	}
}

// Subscribe registers fn with an optional operator chain. A WithWindow
// option is ignored here; use SubscribeBatch for windowed collection.
func (b *Bus[T]) Subscribe(fn Handler[T], opts ...Option[T]) *Subscription[T] {
	o := buildOptions(opts)
	s := b.newSubscription()

	stream := s.source(o)
	go func() {
		defer close(s.done)
		for v := range stream {
			fn(v)
		}
	}()
	return s
}

// SubscribeBatch registers fn behind a time-window collect stage: values
// published within one window are delivered together when it elapses.
// Requires WithWindow; empty windows emit nothing.
func (b *Bus[T]) SubscribeBatch(fn BatchHandler[T], opts ...Option[T]) *Subscription[T] {
	o := buildOptions(opts)
	s := b.newSubscription()

	stream := windowStage(s.source(o), s.quit, o.window)
	go func() {
		defer close(s.done)
		for batch := range stream {
			fn(batch)
		}
	}()
	return s
}

// Len reports the number of live subscriptions.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// UnsubscribeAll cancels every live subscription. When it returns no
// subscriber callback can fire anymore; later subscribers see only
// future publishes.
func (b *Bus[T]) UnsubscribeAll() {
	b.mu.Lock()
	subs := make([]*Subscription[T], 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	b.subs = make(map[uint64]*Subscription[T])
	b.mu.Unlock()

	for _, s := range subs {
		s.stop()
	}
}

func (b *Bus[T]) newSubscription() *Subscription[T] {
	s := &Subscription[T]{
		in:   make(chan T),
		quit: make(chan struct{}),
		done: make(chan struct{}),
		bus:  b,
	}
	b.mu.Lock()
	b.next++
	s.id = b.next
	b.subs[s.id] = s
	b.mu.Unlock()
	return s
}

// Subscription is a live registration on a Bus. It must be released
// through Unsubscribe (or the bus-wide UnsubscribeAll) to stop its
// delivery goroutines.
type Subscription[T any] struct {
	id   uint64
	in   chan T
	quit chan struct{}
	done chan struct{}
	once sync.Once
	bus  *Bus[T]
}

// Unsubscribe cancels the subscription and blocks until its handler can
// no longer fire. A value pending behind a debounce is dropped, not
// flushed. Safe to call more than once.
func (s *Subscription[T]) Unsubscribe() {
	s.bus.mu.Lock()
	delete(s.bus.subs, s.id)
	s.bus.mu.Unlock()
	s.stop()
}

func (s *Subscription[T]) stop() {
	s.once.Do(func() { close(s.quit) })
	<-s.done
}

// source builds the per-subscription stage chain up to (but excluding)
// any window stage: unbounded queue, then filter, then debounce.
func (s *Subscription[T]) source(o options[T]) <-chan T {
	stream := queueStage(s.in, s.quit)
	if o.filter != nil {
		stream = filterStage(stream, s.quit, o.filter)
	}
	if o.debounce > 0 {
		stream = debounceStage(stream, s.quit, o.debounce)
	}
	return stream
}
