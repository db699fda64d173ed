package cf

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// ProblemCache fronts a ProblemSource with a freshness window so repeated
// room creations do not hammer the problemset endpoint. An expired cache
// triggers exactly one upstream fetch; concurrent callers share it.
type ProblemCache struct {
	source ProblemSource
	ttl    time.Duration
	clock  clockwork.Clock
	group  singleflight.Group

	mu        sync.Mutex
	problems  []Problem
	fetchedAt time.Time
}

func NewProblemCache(source ProblemSource, ttl time.Duration, clock clockwork.Clock) *ProblemCache {
	return &ProblemCache{source: source, ttl: ttl, clock: clock}
}

// ListRatedProblems returns the cached listing, refetching when stale.
func (c *ProblemCache) ListRatedProblems(ctx context.Context) ([]Problem, error) {
	c.mu.Lock()
	if c.problems != nil && c.clock.Since(c.fetchedAt) < c.ttl {
		problems := c.problems
		c.mu.Unlock()
		return problems, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do("problemset", func() (interface{}, error) {
		problems, err := c.source.ListRatedProblems(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.problems = problems
		c.fetchedAt = c.clock.Now()
		c.mu.Unlock()
		return problems, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Problem), nil
}
