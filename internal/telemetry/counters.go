package telemetry

import (
	"sync"
	"sync/atomic"
)

// Counter names reported through stats.
const (
	CounterQueries            = "queries_total"
	CounterQueriesFailed      = "queries_failed"
	CounterGenerationAttempts = "generation_attempts"
	CounterGenerationRetries  = "generation_retries"
	CounterChunksIndexed      = "chunks_indexed"
	CounterChunksFailed       = "chunks_failed"
	CounterMemoryErrors       = "memory_update_errors"
)

// Counters is a set of monotonically increasing named counters. The zero
// value is ready to use and safe for concurrent use.
type Counters struct {
	values sync.Map // string -> *atomic.Int64
}

// NewCounters returns an empty counter set.
func NewCounters() *Counters {
	return &Counters{}
}

// Add increments name by delta. A nil receiver is a no-op.
func (c *Counters) Add(name string, delta int64) {
	if c == nil {
		return
	}
	v, _ := c.values.LoadOrStore(name, new(atomic.Int64))
	v.(*atomic.Int64).Add(delta)
}

// Inc increments name by one.
func (c *Counters) Inc(name string) {
	c.Add(name, 1)
}

// IncFailure counts a failure of the given error code, e.g.
// "failures.RETRIEVAL_ERROR".
func (c *Counters) IncFailure(code string) {
	c.Add("failures."+code, 1)
}

// Get returns the current value of name.
func (c *Counters) Get(name string) int64 {
	if c == nil {
		return 0
	}
	v, ok := c.values.Load(name)
	if !ok {
		return 0
	}
	return v.(*atomic.Int64).Load()
}

// Snapshot copies every counter into a map.
func (c *Counters) Snapshot() map[string]int64 {
	out := make(map[string]int64)
	if c == nil {
		return out
	}
	c.values.Range(func(k, v any) bool {
		out[k.(string)] = v.(*atomic.Int64).Load()
		return true
	})
	return out
}
