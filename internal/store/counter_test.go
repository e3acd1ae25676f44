package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type stubCounter struct {
	calls atomic.Int32
	n     int
	err   error
	gate  chan struct{}
}

func (s *stubCounter) Count(context.Context) (int, error) {
	s.calls.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	return s.n, s.err
}

func TestCachedCounter_CachesWithinTTL(t *testing.T) {
	inner := &stubCounter{n: 5}
	c := NewCachedCounter(inner, time.Minute)
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		n, err := c.Count(context.Background())
		if err != nil || n != 5 {
			t.Fatalf("Count = %d, %v", n, err)
		}
	}
	if got := inner.calls.Load(); got != 1 {
		t.Fatalf("inner calls = %d, want 1", got)
	}

	now = now.Add(2 * time.Minute)
	inner.n = 6
	if n, _ := c.Count(context.Background()); n != 6 {
		t.Fatalf("after TTL Count = %d, want 6", n)
	}

	c.Invalidate()
	inner.n = 7
	if n, _ := c.Count(context.Background()); n != 7 {
		t.Fatalf("after Invalidate Count = %d, want 7", n)
	}
}

func TestCachedCounter_ErrorsNotCached(t *testing.T) {
	inner := &stubCounter{err: errors.New("down")}
	c := NewCachedCounter(inner, time.Minute)

	if _, err := c.Count(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	inner.err = nil
	inner.n = 3
	if n, err := c.Count(context.Background()); err != nil || n != 3 {
		t.Fatalf("Count = %d, %v after recovery", n, err)
	}
}

func TestCachedCounter_CollapsesConcurrentMisses(t *testing.T) {
	inner := &stubCounter{n: 9, gate: make(chan struct{})}
	c := NewCachedCounter(inner, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if n, err := c.Count(context.Background()); err != nil || n != 9 {
				t.Errorf("Count = %d, %v", n, err)
			}
		}()
	}

	// Let the goroutines pile up behind the first call.
	time.Sleep(50 * time.Millisecond)
	close(inner.gate)
	wg.Wait()

	if got := inner.calls.Load(); got > 2 {
		t.Fatalf("inner calls = %d, want collapsed", got)
	}
}

type gatedCounter struct {
	started chan struct{}
	results chan int
}

func (g *gatedCounter) Count(context.Context) (int, error) {
	g.started <- struct{}{}
	return <-g.results, nil
}

func TestCachedCounter_InvalidateDuringLoad(t *testing.T) {
	inner := &gatedCounter{started: make(chan struct{}), results: make(chan int)}
	c := NewCachedCounter(inner, time.Minute)

	count := func() <-chan int {
		out := make(chan int, 1)
		go func() {
			n, _ := c.Count(context.Background())
			out <- n
		}()
		return out
	}

	first := count()
	<-inner.started // load in flight with the pre-insert value
	c.Invalidate()
	inner.results <- 5
	if n := <-first; n != 5 {
		t.Fatalf("first Count = %d, want 5", n)
	}

	second := count()
	select {
	case <-inner.started:
	case <-time.After(time.Second):
		t.Fatal("stale value was cached across Invalidate")
	}
	inner.results <- 6
	if n := <-second; n != 6 {
		t.Fatalf("second Count = %d, want 6", n)
	}

	// The fresh load is cached.
	if n, _ := c.Count(context.Background()); n != 6 {
		t.Fatalf("cached Count = %d, want 6", n)
	}
}
