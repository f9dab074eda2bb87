package cache

import (
	"context"
	"strings"
)

// Buffer is the FIFO store of pre-generated scrambles for one puzzle.
// Implemented by the in-process memory buffer and a Redis list.
//
// Pop must be atomic: two concurrent Pops never return the same item.
type Buffer interface {
	Push(ctx context.Context, scrambles []string) error
	Pop(ctx context.Context, n int) ([]string, error)
	Len(ctx context.Context) (int, error)
}

// BufferKey builds the storage key for a puzzle's buffer:
// <prefix>:scrambles:<puzzle>.
func BufferKey(prefix, puzzle string) string {
	key := "scrambles:" + puzzle
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}

// PuzzleFromKey recovers the puzzle short name from a BufferKey.
func PuzzleFromKey(key string) (string, bool) {
	_, puzzle, ok := strings.Cut(key, "scrambles:")
	if !ok || puzzle == "" {
		return "", false
	}
	return puzzle, true
}
