package cache

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"tnoodle-scrambles/internal/puzzle"
)

// fakeScrambler numbers its scrambles so duplicates are detectable.
type fakeScrambler struct {
	name    string
	counter atomic.Int64
	fail    atomic.Bool
	gate    chan struct{} // when non-nil, generation waits for it to close
}

func (f *fakeScrambler) ShortName() string                      { return f.name }
func (f *fakeScrambler) LongName() string                       { return f.name }
func (f *fakeScrambler) Faces() []string                        { return nil }
func (f *fakeScrambler) DefaultColorScheme() puzzle.ColorScheme { return puzzle.ColorScheme{} }

func (f *fakeScrambler) GenerateScramble(_ *rand.Rand) (string, error) {
	if f.gate != nil {
		<-f.gate
	}
	if f.fail.Load() {
		return "", errors.New("generator failure")
	}
	return fmt.Sprintf("s-%d", f.counter.Add(1)), nil
}

func (f *fakeScrambler) GenerateSeededScrambles(seed string, count int) ([]string, error) {
	out := make([]string, count)
	for i := range out {
		out[i] = fmt.Sprintf("%s-%d", seed, i)
	}
	return out, nil
}

func (f *fakeScrambler) ParseColorScheme(string) (puzzle.ColorScheme, error) {
	return puzzle.ColorScheme{}, nil
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
