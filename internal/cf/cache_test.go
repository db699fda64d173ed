package cf

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	fetches atomic.Int64
	delay   time.Duration
}

func (s *countingSource) ListRatedProblems(context.Context) ([]Problem, error) {
	s.fetches.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return []Problem{{ContestID: 1, Index: "A", Name: "One", Rating: 1000}}, nil
}

func TestProblemCache_ServesWithinTTL(t *testing.T) {
	source := &countingSource{}
	clock := clockwork.NewFakeClock()
	cache := NewProblemCache(source, 10*time.Minute, clock)

	for i := 0; i < 5; i++ {
		problems, err := cache.ListRatedProblems(context.Background())
		require.NoError(t, err)
		assert.Len(t, problems, 1)
	}
	assert.Equal(t, int64(1), source.fetches.Load())
}

func TestProblemCache_RefetchesAfterExpiry(t *testing.T) {
	source := &countingSource{}
	clock := clockwork.NewFakeClock()
	cache := NewProblemCache(source, 10*time.Minute, clock)

	_, err := cache.ListRatedProblems(context.Background())
	require.NoError(t, err)

	clock.Advance(11 * time.Minute)

	_, err = cache.ListRatedProblems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), source.fetches.Load())
}

func TestProblemCache_SingleFlight(t *testing.T) {
	source := &countingSource{delay: 50 * time.Millisecond}
	clock := clockwork.NewFakeClock()
	cache := NewProblemCache(source, 10*time.Minute, clock)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			problems, err := cache.ListRatedProblems(context.Background())
			assert.NoError(t, err)
			assert.Len(t, problems, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), source.fetches.Load(), "concurrent misses share one fetch")
}
