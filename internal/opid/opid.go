// Package opid generates operation IDs that correlate the log lines of one
// repository call (e.g. the INSERT and the read-back of an Insert).
package opid

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces operation IDs.
type Generator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 operation IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SequenceGenerator numbers operations "<prefix>-1", "<prefix>-2", ... in
// call order. Log output stays deterministic, so tests and golden files can
// match op_id values exactly. An empty prefix yields bare numbers.
//
// Thread-safety: SequenceGenerator is safe for concurrent use; each call
// gets a distinct number.
type SequenceGenerator struct {
	prefix string
	n      atomic.Uint64
}

// NewSequenceGenerator creates a generator whose first ID is "<prefix>-1".
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next ID in the sequence.
func (g *SequenceGenerator) Generate() string {
	n := strconv.FormatUint(g.n.Add(1), 10)
	if g.prefix == "" {
		return n
	}
	return g.prefix + "-" + n
}

// Issued returns how many IDs have been generated.
func (g *SequenceGenerator) Issued() uint64 { return g.n.Load() }
