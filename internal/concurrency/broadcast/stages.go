package broadcast

import "time"

type options[T any] struct {
	filter   func(T) bool
	debounce time.Duration
	window   time.Duration
}

type Option[T any] func(*options[T])

// WithFilter suppresses values not matching pred.
func WithFilter[T any](pred func(T) bool) Option[T] {
	return func(o *options[T]) { o.filter = pred }
}

// WithDebounce emits a value only after no new value arrived for window.
// A newer value supersedes the pending one.
func WithDebounce[T any](window time.Duration) Option[T] {
	return func(o *options[T]) { o.debounce = window }
}

// WithWindow collects values for window and emits them as one batch.
// Only meaningful with SubscribeBatch.
func WithWindow[T any](window time.Duration) Option[T] {
	return func(o *options[T]) { o.window = window }
}

func buildOptions[T any](opts []Option[T]) options[T] {
	var o options[T]
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// queueStage decouples the publisher from the subscriber: values are
// buffered without bound so a slow handler never blocks Publish, and
// FIFO order is preserved.
func queueStage[T any](in <-chan T, quit <-chan struct{}) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		var buf []T
		for {
			if len(buf) == 0 {
				select {
				case v := <-in:
					buf = append(buf, v)
				case <-quit:
					return
				}
				continue
			}
			select {
			case v := <-in:
				buf = append(buf, v)
			case out <- buf[0]:
				buf = buf[1:]
			case <-quit:
				return
			}
		}
	}()
	return out
}

func filterStage[T any](in <-chan T, quit <-chan struct{}, pred func(T) bool) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		for v := range in {
			if !pred(v) {
				continue
			}
			select {
			case out <- v:
			case <-quit:
				return
			}
		}
	}()
	return out
}

func debounceStage[T any](in <-chan T, quit <-chan struct{}, d time.Duration) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		var timer *time.Timer
		var fire <-chan time.Time
		var pending T
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()
		for {
			select {
			case v, ok := <-in:
				if !ok {
					// cancelled upstream: the pending value is dropped
					return
				}
				pending = v
				if timer != nil {
					timer.Stop()
				}
				timer = time.NewTimer(d)
				fire = timer.C
			case <-fire:
				fire = nil
				select {
				case out <- pending:
				case <-quit:
					return
				}
			case <-quit:
				return
			}
		}
	}()
	return out
}

func windowStage[T any](in <-chan T, quit <-chan struct{}, d time.Duration) <-chan []T {
	if d <= 0 {
		d = time.Minute
	}
	out := make(chan []T)
	go func() {
		defer close(out)
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		var batch []T
		for {
			select {
			case v, ok := <-in:
				if !ok {
					return
				}
				batch = append(batch, v)
			case <-ticker.C:
				if len(batch) == 0 {
					continue
				}
				b := batch
				batch = nil
				select {
				case out <- b:
				case <-quit:
					return
				}
			case <-quit:
				return
			}
		}
	}()
	return out
}
