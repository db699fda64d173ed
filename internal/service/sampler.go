package service

import (
	"context"
	"math/rand"
	"strings"

	"lockout_web/internal/cf"
)

// nameDenylist filters a noisy problem category out of the pool.
// Kotlin Heroes rounds share problems with regular rounds under odd ratings.
const nameDenylist = "kotlin"

// ProblemSampler draws a random problem set for a new room.
type ProblemSampler struct {
	source cf.ProblemSource
}

func NewProblemSampler(source cf.ProblemSource) *ProblemSampler {
	return &ProblemSampler{source: source}
}

// Sample returns count distinct problems rated within [min, max], drawn
// uniformly without replacement. Fails with ErrInsufficientProblems when
// the filtered pool is too small.
func (s *ProblemSampler) Sample(ctx context.Context, min, max, count int) ([]cf.Problem, error) {
	all, err := s.source.ListRatedProblems(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	pool := make([]cf.Problem, 0, len(all))
	for _, p := range all {
		if p.Rating < min || p.Rating > max {
			continue
		}
		if strings.Contains(strings.ToLower(p.Name), nameDenylist) {
			continue
		}
		if seen[p.Key()] {
			continue
		}
		seen[p.Key()] = true
		pool = append(pool, p)
	}

	if len(pool) < count {
		return nil, ErrInsufficientProblems
	}
	return sampleDistinct(pool, count), nil
}

// sampleDistinct draws k elements without replacement by rejection
// sampling on indices. k == len(pool) returns a copy of the whole pool.
func sampleDistinct(pool []cf.Problem, k int) []cf.Problem {
	if k >= len(pool) {
		out := make([]cf.Problem, len(pool))
		copy(out, pool)
		return out
	}

	used := make(map[int]bool, k)
	out := make([]cf.Problem, 0, k)
	for len(out) < k {
		i := rand.Intn(len(pool))
		if used[i] {
			continue
		}
		used[i] = true
		out = append(out, pool[i])
	}
	return out
}
