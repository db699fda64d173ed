package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lockout_web/internal/cf"
)

func ratedProblem(contestID int, index, name string, rating int) cf.Problem {
	return cf.Problem{ContestID: contestID, Index: index, Name: name, Rating: rating}
}

func TestSample_RespectsRangeAndCount(t *testing.T) {
	source := &stubProblemSource{problems: []cf.Problem{
		ratedProblem(1, "A", "Watermelon", 800),
		ratedProblem(1, "B", "Theatre Square", 1000),
		ratedProblem(2, "A", "Way Too Long Words", 1200),
		ratedProblem(2, "B", "Tram", 1500),
		ratedProblem(3, "A", "Hard One", 2400),
	}}
	sampler := NewProblemSampler(source)

	picked, err := sampler.Sample(context.Background(), 900, 1600, 3)
	require.NoError(t, err)
	require.Len(t, picked, 3)

	seen := make(map[string]bool)
	for _, p := range picked {
		assert.GreaterOrEqual(t, p.Rating, 900)
		assert.LessOrEqual(t, p.Rating, 1600)
		assert.False(t, seen[p.Key()], "duplicate problem %s", p.Key())
		seen[p.Key()] = true
	}
}

func TestSample_FiltersDenylistedNames(t *testing.T) {
	source := &stubProblemSource{problems: []cf.Problem{
		ratedProblem(10, "A", "Kotlin Island", 1000),
		ratedProblem(10, "B", "Nice Problem", 1000),
		ratedProblem(10, "C", "KOTLIN warmup", 1000),
	}}
	sampler := NewProblemSampler(source)

	picked, err := sampler.Sample(context.Background(), 800, 1200, 1)
	require.NoError(t, err)
	require.Len(t, picked, 1)
	assert.Equal(t, "Nice Problem", picked[0].Name)
}

func TestSample_DeduplicatesByContestIndex(t *testing.T) {
	source := &stubProblemSource{problems: []cf.Problem{
		ratedProblem(5, "A", "Mirror", 1100),
		ratedProblem(5, "A", "Mirror", 1100),
		ratedProblem(5, "B", "Other", 1100),
	}}
	sampler := NewProblemSampler(source)

	_, err := sampler.Sample(context.Background(), 800, 1200, 3)
	assert.ErrorIs(t, err, ErrInsufficientProblems, "duplicates must not pad the pool")
}

func TestSample_FullPool(t *testing.T) {
	source := &stubProblemSource{problems: []cf.Problem{
		ratedProblem(7, "A", "One", 1000),
		ratedProblem(7, "B", "Two", 1000),
		ratedProblem(7, "C", "Three", 1000),
	}}
	sampler := NewProblemSampler(source)

	picked, err := sampler.Sample(context.Background(), 800, 1200, 3)
	require.NoError(t, err)
	assert.Len(t, picked, 3)
}

func TestSample_InsufficientProblems(t *testing.T) {
	source := &stubProblemSource{problems: []cf.Problem{
		ratedProblem(7, "A", "One", 1000),
	}}
	sampler := NewProblemSampler(source)

	_, err := sampler.Sample(context.Background(), 800, 1200, 2)
	assert.ErrorIs(t, err, ErrInsufficientProblems)
}

func TestSample_PropagatesSourceError(t *testing.T) {
	source := &stubProblemSource{err: cf.ErrUnavailable}
	sampler := NewProblemSampler(source)

	_, err := sampler.Sample(context.Background(), 800, 1200, 1)
	assert.ErrorIs(t, err, cf.ErrUnavailable)
}
