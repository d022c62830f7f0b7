package testutil

import (
	"fmt"
	"sync"
)

// FixedIDGenerator generates predictable revision IDs in sequence.
//
// This enables deterministic test execution and golden snapshot comparison:
// the same test with a fresh FixedIDGenerator produces byte-identical
// revision histories.
//
// Thread-safety: FixedIDGenerator is safe for concurrent use.
type FixedIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewFixedIDGenerator creates a generator producing "<prefix>-0001",
// "<prefix>-0002", ... If prefix is empty, "rev" is used.
func NewFixedIDGenerator(prefix string) *FixedIDGenerator {
	if prefix == "" {
		prefix = "rev"
	}
	return &FixedIDGenerator{prefix: prefix}
}

// Generate returns the next ID in the sequence.
//
// Implements store.IDGenerator interface.
func (g *FixedIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
