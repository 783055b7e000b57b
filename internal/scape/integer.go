package scape

import (
	"errors"
	"math"
	"math/rand"

	"searchkit/internal/evo"
	"searchkit/internal/score"
)

type IntegerConfig struct {
	Target int64
	// Range bounds the initial samples to [-Range, Range].
	Range int64
	// MaxStep bounds a mutation to [-MaxStep, MaxStep].
	MaxStep int64
}

func DefaultIntegerConfig() IntegerConfig {
	return IntegerConfig{Target: 589, Range: 1_000_000, MaxStep: 100_000}
}

// NewIntegerProblem searches for Target among int64 values. The score is the
// absolute distance to the target, so smaller is better.
func NewIntegerProblem(cfg IntegerConfig) (Problem[int64, score.Error[uint64]], error) {
	if cfg.Range <= 0 || cfg.Range > math.MaxInt64/2 {
		return Problem[int64, score.Error[uint64]]{}, errors.New("integer range must be in (0, MaxInt64/2]")
	}
	if cfg.MaxStep <= 0 || cfg.MaxStep > math.MaxInt64/2 {
		return Problem[int64, score.Error[uint64]]{}, errors.New("integer max step must be in (0, MaxInt64/2]")
	}
	return Problem[int64, score.Error[uint64]]{
		Name: NameInteger,
		Distribution: evo.DistributionFunc[int64](func(rng *rand.Rand) int64 {
			return rng.Int63n(2*cfg.Range+1) - cfg.Range
		}),
		Scorer: evo.ScorerFunc[int64, score.Error[uint64]](func(g int64) score.Error[uint64] {
			return score.NewError(AbsDiff(g, cfg.Target))
		}),
		Mutator: evo.MutatorFunc[int64](func(g int64, rng *rand.Rand) (int64, error) {
			return SaturatingAdd(g, rng.Int63n(2*cfg.MaxStep+1)-cfg.MaxStep), nil
		}),
		Value: func(s score.Error[uint64]) float64 { return float64(s.Value) },
	}, nil
}

// AbsDiff is |a-b| without overflow.
func AbsDiff(a, b int64) uint64 {
	if a >= b {
		return uint64(a) - uint64(b)
	}
	return uint64(b) - uint64(a)
}

func SaturatingAdd(a, b int64) int64 {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return math.MaxInt64
	case b < 0 && a < math.MinInt64-b:
		return math.MinInt64
	default:
		return a + b
	}
}
