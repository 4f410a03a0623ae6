// Package shielded holds the circuit parameters required to build and verify
// shielded transactions.
package shielded

import (
	"bytes"
	"fmt"
	"iter"
	"sync"

	"github.com/Klingon-tech/klingnet-sdk/internal/log"
)

// ParamCount is the number of blobs in a parameter set.
const ParamCount = 3

// Params is a complete parameter set. Each blob is bound to one circuit.
type Params struct {
	Spend   []byte
	Output  []byte
	Convert []byte
}

// InvariantViolation is the panic value raised when a parameter set of the
// wrong size is installed. It signals an integration bug and is never
// returned as an error.
type InvariantViolation struct {
	Got int
}

func (v *InvariantViolation) Error() string {
	if v.Got > ParamCount {
		return fmt.Sprintf("shielded params: got more than %d blobs", ParamCount)
	}
	return fmt.Sprintf("shielded params: got %d blobs, want %d", v.Got, ParamCount)
}

// Cache holds at most one parameter set.
type Cache struct {
	mu     sync.RWMutex
	params *Params
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Install consumes exactly three blobs, in spend, output, convert order, and
// replaces the cached set with them. Any other count panics with
// *InvariantViolation and leaves the cache untouched.
func (c *Cache) Install(blobs iter.Seq[[]byte]) {
	var got [ParamCount][]byte
	n := 0
	for b := range blobs {
		if n == ParamCount {
			// Stop pulling; one extra blob is enough to know the set is wrong.
			panic(&InvariantViolation{Got: n + 1})
		}
		got[n] = bytes.Clone(b)
		n++
	}
	if n != ParamCount {
		panic(&InvariantViolation{Got: n})
	}

	p := &Params{Spend: got[0], Output: got[1], Convert: got[2]}
	c.mu.Lock()
	c.params = p
	c.mu.Unlock()

	log.Shielded.Debug().
		Int("spend", len(p.Spend)).
		Int("output", len(p.Output)).
		Int("convert", len(p.Convert)).
		Msg("Shielded parameters installed")
}

// Params returns the installed set, or false if none is installed.
// The returned blobs must not be modified.
func (c *Cache) Params() (Params, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.params == nil {
		return Params{}, false
	}
	return *c.params, true
}

// Loaded reports whether a full set is installed.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.params != nil
}
