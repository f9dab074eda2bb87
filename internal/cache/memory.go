package cache

import (
	"context"
	"sync"
)

// MemoryBuffer keeps scrambles in a process-local slice.
type MemoryBuffer struct {
	mu    sync.Mutex
	items []string
}

func NewMemoryBuffer() *MemoryBuffer {
	return &MemoryBuffer{}
}

// Push appends scrambles to the tail.
func (b *MemoryBuffer) Push(_ context.Context, scrambles []string) error {
	b.mu.Lock()
	b.items = append(b.items, scrambles...)
	b.mu.Unlock()
	return nil
}

// Pop removes up to n scrambles from the head, oldest first.
func (b *MemoryBuffer) Pop(_ context.Context, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	n = min(n, len(b.items))
	out := make([]string, n)
	copy(out, b.items[:n])

	// shift instead of reslicing so the backing array does not grow forever
	rest := copy(b.items, b.items[n:])
	clear(b.items[rest:])
	b.items = b.items[:rest]

	return out, nil
}

// Len returns the number of buffered scrambles.
func (b *MemoryBuffer) Len(_ context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items), nil
}

// Clear drops every buffered scramble. Useful for tests or manual resets.
func (b *MemoryBuffer) Clear() {
	b.mu.Lock()
	b.items = nil
	b.mu.Unlock()
}
