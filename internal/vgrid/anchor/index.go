// internal/vgrid/anchor/index.go
package anchor

import (
	"errors"
	"fmt"
)

// ErrDuplicateKey is a configuration error: two items extract the same key.
var ErrDuplicateKey = errors.New("duplicate item key")

// Resolve scans items for the one whose key equals anchorKey.
// Matching is exact string equality.
func Resolve[T any](anchorKey string, items []T, keyFn func(T) string) (int, bool) {
	if anchorKey == "" {
		return 0, false
	}
	for i, item := range items {
		if keyFn(item) == anchorKey {
			return i, true
		}
	}
	return 0, false
}

// Index is a key-to-position lookup built once per item collection.
type Index struct {
	positions map[string]int
}

// NewIndex extracts every key and rejects collections with duplicates.
func NewIndex[T any](items []T, keyFn func(T) string) (*Index, error) {
	positions := make(map[string]int, len(items))
	for i, item := range items {
		key := keyFn(item)
		if prev, exists := positions[key]; exists {
			return nil, fmt.Errorf("%w: %q at positions %d and %d", ErrDuplicateKey, key, prev, i)
		}
		positions[key] = i
	}
	return &Index{positions: positions}, nil
}

// Lookup returns the position of anchorKey.
func (ix *Index) Lookup(anchorKey string) (int, bool) {
	if ix == nil || anchorKey == "" {
		return 0, false
	}
	i, ok := ix.positions[anchorKey]
	return i, ok
}

// Len is the number of indexed keys.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.positions)
}
