package broadcast

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func collect(t *testing.T, ch <-chan float64, n int) []float64 {
	t.Helper()
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		select {
		case v := <-ch:
			out = append(out, v)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for value %d of %d (got %v)", i+1, n, out)
		}
	}
	return out
}

func TestFanOutDeliversToEverySubscriber(t *testing.T) {
	bus := NewBus[float64]()
	const subscribers = 50

	channels := make([]chan float64, subscribers)
	for i := range channels {
		ch := make(chan float64, 8)
		channels[i] = ch
		bus.Subscribe(func(v float64) { ch <- v })
	}

	if got := bus.Len(); got != subscribers {
		t.Fatalf("Len() = %d, want %d", got, subscribers)
	}

	bus.Publish(50000)
	bus.Publish(75000)

	for i, ch := range channels {
		got := collect(t, ch, 2)
		if got[0] != 50000 || got[1] != 75000 {
			t.Errorf("subscriber %d received %v, want [50000 75000]", i, got)
		}
	}
}

func TestPerSubscriberOrderPreserved(t *testing.T) {
	bus := NewBus[float64]()
	const n = 200

	ch := make(chan float64, n)
	bus.Subscribe(func(v float64) { ch <- v })

	for i := 0; i < n; i++ {
		bus.Publish(float64(i))
	}

	got := collect(t, ch, n)
	for i, v := range got {
		if v != float64(i) {
			t.Fatalf("value %d out of order: got %v, want %v", i, v, float64(i))
		}
	}
}

func TestUnsubscribeAll(t *testing.T) {
	bus := NewBus[float64]()

	var delivered atomic.Int64
	for i := 0; i < 3; i++ {
		bus.Subscribe(func(float64) { delivered.Add(1) })
	}

	bus.Publish(1)
	bus.UnsubscribeAll()
	before := delivered.Load()

	if got := bus.Len(); got != 0 {
		t.Fatalf("Len() after UnsubscribeAll = %d, want 0", got)
	}

	bus.Publish(2)
	time.Sleep(100 * time.Millisecond)
	if got := delivered.Load(); got != before {
		t.Errorf("callbacks fired after UnsubscribeAll: %d -> %d", before, got)
	}

	// a fresh subscription sees only future publishes
	ch := make(chan float64, 1)
	bus.Subscribe(func(v float64) { ch <- v })
	bus.Publish(3)
	if got := collect(t, ch, 1); got[0] != 3 {
		t.Errorf("fresh subscriber received %v, want [3]", got)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus[float64]()

	var delivered atomic.Int64
	sub := bus.Subscribe(func(float64) { delivered.Add(1) })
	keep := make(chan float64, 4)
	bus.Subscribe(func(v float64) { keep <- v })

	sub.Unsubscribe()
	sub.Unsubscribe() // safe to repeat
	after := delivered.Load()

	bus.Publish(5)
	collect(t, keep, 1)

	time.Sleep(50 * time.Millisecond)
	if got := delivered.Load(); got != after {
		t.Errorf("cancelled subscriber still received values: %d -> %d", after, got)
	}
	if got := bus.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestFilterOperator(t *testing.T) {
	bus := NewBus[float64]()

	ch := make(chan float64, 4)
	bus.Subscribe(func(v float64) { ch <- v },
		WithFilter(func(v float64) bool { return v > 50000 }))

	bus.Publish(30000)
	bus.Publish(60000)
	bus.Publish(45000)

	got := collect(t, ch, 1)
	if got[0] != 60000 {
		t.Fatalf("filtered subscriber received %v, want 60000", got[0])
	}
	select {
	case v := <-ch:
		t.Fatalf("unexpected extra value %v", v)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebounceEmitsLatestAfterQuietPeriod(t *testing.T) {
	bus := NewBus[float64]()

	ch := make(chan float64, 4)
	bus.Subscribe(func(v float64) { ch <- v },
		WithDebounce[float64](50*time.Millisecond))

	bus.Publish(1)
	bus.Publish(2)
	bus.Publish(3)

	got := collect(t, ch, 1)
	if got[0] != 3 {
		t.Fatalf("debounce emitted %v, want 3 (latest supersedes)", got[0])
	}

	bus.Publish(4)
	got = collect(t, ch, 1)
	if got[0] != 4 {
		t.Fatalf("debounce emitted %v, want 4", got[0])
	}
}

func TestDebounceCancelDropsPending(t *testing.T) {
	bus := NewBus[float64]()

	var delivered atomic.Int64
	sub := bus.Subscribe(func(float64) { delivered.Add(1) },
		WithDebounce[float64](50*time.Millisecond))

	bus.Publish(1)
	sub.Unsubscribe()

	time.Sleep(150 * time.Millisecond)
	if got := delivered.Load(); got != 0 {
		t.Errorf("pending debounce value fired after Unsubscribe: %d deliveries", got)
	}
}

func TestWindowCollectsBatches(t *testing.T) {
	bus := NewBus[float64]()

	batches := make(chan []float64, 4)
	bus.SubscribeBatch(func(b []float64) { batches <- b },
		WithWindow[float64](80*time.Millisecond))

	bus.Publish(1)
	bus.Publish(2)
	bus.Publish(3)

	select {
	case b := <-batches:
		if len(b) != 3 || b[0] != 1 || b[1] != 2 || b[2] != 3 {
			t.Fatalf("first window = %v, want [1 2 3]", b)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for first window")
	}

	bus.Publish(4)
	select {
	case b := <-batches:
		if len(b) != 1 || b[0] != 4 {
			t.Fatalf("second window = %v, want [4]", b)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for second window")
	}
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	bus := NewBus[float64]()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
				bus.Publish(float64(i))
			}
		}
	}()

	for i := 0; i < 100; i++ {
		sub := bus.Subscribe(func(float64) {})
		sub.Unsubscribe()
	}
	close(stop)
	wg.Wait()

	if got := bus.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
}
