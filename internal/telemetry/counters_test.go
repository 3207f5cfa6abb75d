package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounters_AddAndSnapshot(t *testing.T) {
	c := NewCounters()
	c.Inc(CounterQueries)
	c.Add(CounterChunksIndexed, 5)
	c.IncFailure("RETRIEVAL_ERROR")

	assert.Equal(t, int64(1), c.Get(CounterQueries))
	assert.Equal(t, int64(0), c.Get(CounterGenerationRetries))

	snap := c.Snapshot()
	assert.Equal(t, int64(5), snap[CounterChunksIndexed])
	assert.Equal(t, int64(1), snap["failures.RETRIEVAL_ERROR"])
}

func TestCounters_Concurrent(t *testing.T) {
	c := NewCounters()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Inc(CounterGenerationAttempts)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(5000), c.Get(CounterGenerationAttempts))
}

func TestCounters_NilReceiver(t *testing.T) {
	var c *Counters
	c.Inc(CounterQueries)

	assert.Equal(t, int64(0), c.Get(CounterQueries))
	assert.Empty(t, c.Snapshot())
}

func TestInit_EmptyDSNIsNoop(t *testing.T) {
	shutdown, err := Init(Config{})
	assert.NoError(t, err)
	shutdown()
}

func TestStartSpan_WithoutClient(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "query", SpanAttributes{UserID: "u1", Operation: "query"})
	defer span.End()

	assert.NotNil(t, ctx)
	span.SetError(errors.New("boom"))
}
