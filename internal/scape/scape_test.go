package scape

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegerProblem_ScoresDistanceToTarget(t *testing.T) {
	problem, err := NewIntegerProblem(DefaultIntegerConfig())
	require.NoError(t, err)

	assert.Equal(t, uint64(0), problem.Scorer.Score(589).Value)
	assert.Equal(t, uint64(11), problem.Scorer.Score(600).Value)
	assert.Equal(t, uint64(589), problem.Scorer.Score(0).Value)
	assert.Positive(t, problem.Scorer.Score(600).Compare(problem.Scorer.Score(-600)), "closer is better")
}

func TestIntegerProblem_ScorerIsDeterministic(t *testing.T) {
	problem, err := NewIntegerProblem(DefaultIntegerConfig())
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		g := problem.Distribution.Sample(rng)
		assert.Equal(t, problem.Scorer.Score(g), problem.Scorer.Score(g))
	}
}

func TestIntegerProblem_SamplesStayInRange(t *testing.T) {
	cfg := IntegerConfig{Target: 0, Range: 10, MaxStep: 3}
	problem, err := NewIntegerProblem(cfg)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		g := problem.Distribution.Sample(rng)
		require.GreaterOrEqual(t, g, int64(-10))
		require.LessOrEqual(t, g, int64(10))

		child, err := problem.Mutator.Mutate(g, rng)
		require.NoError(t, err)
		require.LessOrEqual(t, AbsDiff(child, g), uint64(3))
	}
}

func TestIntegerProblem_InvalidConfig(t *testing.T) {
	_, err := NewIntegerProblem(IntegerConfig{Range: 0, MaxStep: 1})
	assert.Error(t, err)
	_, err = NewIntegerProblem(IntegerConfig{Range: 1, MaxStep: 0})
	assert.Error(t, err)
}

func TestAbsDiffAndSaturatingAdd(t *testing.T) {
	assert.Equal(t, uint64(math.MaxUint64), AbsDiff(math.MaxInt64, math.MinInt64))
	assert.Equal(t, uint64(5), AbsDiff(-2, 3))
	assert.Equal(t, int64(math.MaxInt64), SaturatingAdd(math.MaxInt64-1, 10))
	assert.Equal(t, int64(math.MinInt64), SaturatingAdd(math.MinInt64+1, -10))
	assert.Equal(t, int64(7), SaturatingAdd(10, -3))
}

func TestCountOnesProblem(t *testing.T) {
	problem, err := NewCountOnesProblem(CountOnesConfig{Bits: 8})
	require.NoError(t, err)

	g := Bitstring{true, false, true, true, false, false, false, true}
	assert.Equal(t, 4, problem.Scorer.Score(g).Value)
	assert.Equal(t, "10110001", g.String())

	rng := rand.New(rand.NewSource(5))
	sample := problem.Distribution.Sample(rng)
	assert.Len(t, sample, 8)
}

func TestCountOnesProblem_CloneKeepsParentIntact(t *testing.T) {
	problem, err := NewCountOnesProblem(CountOnesConfig{Bits: 64})
	require.NoError(t, err)

	parent := make(Bitstring, 64)
	rng := rand.New(rand.NewSource(11))
	flipped := 0
	for i := 0; i < 50; i++ {
		child, err := problem.Mutator.Mutate(problem.Clone(parent), rng)
		require.NoError(t, err)
		flipped += child.Ones()
	}
	assert.Equal(t, 0, parent.Ones(), "parent must not change")
	assert.Positive(t, flipped, "about one bit per mutation should flip")
}

func TestFlipOneOverLength_EmptyGenome(t *testing.T) {
	_, err := FlipOneOverLength(Bitstring{}, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrEmptyGenome)
}

func TestResolve(t *testing.T) {
	name, err := Resolve("count_ones")
	require.NoError(t, err)
	assert.Equal(t, NameCountOnes, name)

	name, err = Resolve("INT")
	require.NoError(t, err)
	assert.Equal(t, NameInteger, name)

	_, err = Resolve("knapsack")
	assert.ErrorIs(t, err, ErrUnknownProblem)
}
