package world

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator supplies entity ids at creation time.
// Implementations must never return the same id twice.
type IDGenerator interface {
	Generate() string
}

// CounterGenerator produces sequential ids of the form "#0000", "#0001", ...
//
// Thread-safety: safe for concurrent use via internal mutex.
type CounterGenerator struct {
	mu   sync.Mutex
	next int
}

// NewCounterGenerator creates a counter starting at 0.
func NewCounterGenerator() *CounterGenerator {
	return &CounterGenerator{}
}

// Generate returns the next id and advances the counter.
func (g *CounterGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("#%04d", g.next)
	g.next++
	return id
}

// UUIDGenerator generates time-sortable UUIDv7 ids.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDGenerator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDGenerator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined ids in order, for tests.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id.
// Panics if all ids have been consumed.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
