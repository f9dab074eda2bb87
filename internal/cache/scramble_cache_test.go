package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func newTestManager(t *testing.T, highWater int) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		HighWater:   highWater,
		LowWater:    1,
		RefillBatch: 3,
		Workers:     4,
		CheckEvery:  time.Hour,
	}, nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func bufferLen(t *testing.T, c *ScrambleCache) int {
	t.Helper()
	n, err := c.buf.Len(context.Background())
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	return n
}

func waitFilled(t *testing.T, c *ScrambleCache) {
	t.Helper()
	waitFor(t, "refill to finish", func() bool {
		return !c.Refilling() && bufferLen(t, c) == c.cfg.HighWater
	})
}

func TestTakeServesBufferedThenShortfall(t *testing.T) {
	m := newTestManager(t, 5)
	s := &fakeScrambler{name: "fake"}
	c := m.For(s)
	waitFilled(t, c)

	got, err := c.Take(context.Background(), 8)
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if len(got) != 8 {
		t.Fatalf("expected 8 scrambles, got %d", len(got))
	}
	for i := range 5 {
		if want := fmt.Sprintf("s-%d", i+1); got[i] != want {
			t.Fatalf("position %d: expected buffered %s, got %s", i, want, got[i])
		}
	}

	// the take kicks off a refill back to the high water mark
	waitFilled(t, c)
}

func TestTakeExactCountAnyOccupancy(t *testing.T) {
	m := newTestManager(t, 10)
	s := &fakeScrambler{name: "fake"}
	c := m.For(s)
	waitFilled(t, c)

	for _, n := range []int{0, 1, 3, 10, 25, 100} {
		got, err := c.Take(context.Background(), n)
		if err != nil {
			t.Fatalf("Take(%d): %v", n, err)
		}
		if len(got) != n {
			t.Fatalf("Take(%d) returned %d scrambles", n, len(got))
		}
	}

	if _, err := c.Take(context.Background(), -1); !errors.Is(err, ErrNegativeCount) {
		t.Fatalf("expected ErrNegativeCount, got %v", err)
	}
}

func TestConcurrentTakeNoDuplicateDelivery(t *testing.T) {
	m := newTestManager(t, 20)
	s := &fakeScrambler{name: "fake"}
	c := m.For(s)

	var (
		mu   sync.Mutex
		seen = make(map[string]int)
		wg   sync.WaitGroup
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 5 {
				got, err := c.Take(context.Background(), 10)
				if err != nil {
					t.Errorf("Take: %v", err)
					return
				}
				if len(got) != 10 {
					t.Errorf("Take returned %d scrambles", len(got))
				}
				mu.Lock()
				for _, sc := range got {
					seen[sc]++
				}
				mu.Unlock()
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("concurrent takes deadlocked")
	}

	if len(seen) != 16*5*10 {
		t.Fatalf("expected %d distinct scrambles, got %d", 16*5*10, len(seen))
	}
	for sc, n := range seen {
		if n != 1 {
			t.Fatalf("scramble %s delivered %d times", sc, n)
		}
	}
}

func TestRefillSingleFlight(t *testing.T) {
	m := newTestManager(t, 6)
	gate := make(chan struct{})
	s := &fakeScrambler{name: "fake", gate: gate}

	c := m.For(s)
	if !c.Refilling() {
		t.Fatalf("expected the first use to start a refill")
	}
	if c.Refill() {
		t.Fatalf("second refill started while one was in flight")
	}

	close(gate)
	waitFilled(t, c)

	if got := s.counter.Load(); got != 6 {
		t.Fatalf("expected 6 generated scrambles, got %d", got)
	}
}

func TestRefillFailureClearsFlagAndRetries(t *testing.T) {
	m := newTestManager(t, 4)
	s := &fakeScrambler{name: "fake"}
	s.fail.Store(true)

	c := m.For(s)
	waitFor(t, "failed refill to finish", func() bool { return !c.Refilling() })
	if n := bufferLen(t, c); n != 0 {
		t.Fatalf("expected empty buffer after failed refill, got %d", n)
	}

	// synchronous generation surfaces the failure to the caller
	if _, err := c.Take(context.Background(), 2); err == nil {
		t.Fatalf("expected Take to fail while the scrambler fails")
	}
	waitFor(t, "retried refill to finish", func() bool { return !c.Refilling() })

	s.fail.Store(false)
	if !c.Refill() {
		t.Fatalf("expected a new refill after the failure")
	}
	waitFilled(t, c)
}

func TestManagerIsolatesPuzzles(t *testing.T) {
	m := newTestManager(t, 3)
	a := m.For(&fakeScrambler{name: "a"})
	b := m.For(&fakeScrambler{name: "b"})
	if a == b {
		t.Fatalf("distinct puzzles share a cache")
	}
	if m.For(&fakeScrambler{name: "a"}) != a {
		t.Fatalf("expected the existing cache for puzzle a")
	}
	waitFilled(t, a)
	waitFilled(t, b)
}

func TestManagerClose(t *testing.T) {
	m := newTestManager(t, 3)
	c := m.For(&fakeScrambler{name: "fake"})
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if c.Refilling() {
		t.Fatalf("refill still running after Close")
	}
	if c.Refill() {
		t.Fatalf("refill started after Close")
	}
	// a closed manager still serves synchronously
	got, err := c.Take(context.Background(), 2)
	if err != nil || len(got) != 2 {
		t.Fatalf("Take after Close: %v, %v", got, err)
	}
}

func TestLowWaterCheckRefillsDrainedBuffer(t *testing.T) {
	m, err := NewManager(Config{
		HighWater:   6,
		LowWater:    3,
		RefillBatch: 2,
		CheckEvery:  5 * time.Millisecond,
	}, nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(func() { m.Close() })

	c := m.For(&fakeScrambler{name: "fake"})
	waitFilled(t, c)

	// drain behind the cache's back, as another process sharing the list would
	if _, err := c.buf.Pop(context.Background(), 6); err != nil {
		t.Fatalf("Pop: %v", err)
	}
	waitFilled(t, c)
}

// stallingScrambler blocks failing generations until release is closed.
type stallingScrambler struct {
	*fakeScrambler
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *stallingScrambler) GenerateScramble(r *rand.Rand) (string, error) {
	if s.fail.Load() {
		s.once.Do(func() { close(s.started) })
		<-s.release
	}
	return s.fakeScrambler.GenerateScramble(r)
}

func TestFailedTakeNeverOverfillsBuffer(t *testing.T) {
	m := newTestManager(t, 5)
	s := &stallingScrambler{
		fakeScrambler: &fakeScrambler{name: "p"},
		started:       make(chan struct{}),
		release:       make(chan struct{}),
	}
	c := m.For(s)
	waitFilled(t, c)

	s.fail.Store(true)
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Take(context.Background(), 8)
		errCh <- err
	}()

	// the 5 buffered scrambles are popped and the shortfall is stalled;
	// refill the buffer to high water behind it
	<-s.started
	if err := c.buf.Push(context.Background(), []string{"r-1", "r-2", "r-3", "r-4", "r-5"}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	close(s.release)

	if err := <-errCh; err == nil {
		t.Fatalf("expected Take to fail")
	}
	waitFor(t, "refill after Take to finish", func() bool { return !c.Refilling() })

	if n := bufferLen(t, c); n > c.cfg.HighWater {
		t.Fatalf("buffer holds %d, above high water %d", n, c.cfg.HighWater)
	}
	got, err := c.buf.Pop(context.Background(), 1)
	if err != nil || len(got) != 1 || got[0] != "r-1" {
		t.Fatalf("expected oldest scramble r-1 at the head, got %v, %v", got, err)
	}
}
