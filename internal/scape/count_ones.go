package scape

import (
	"errors"
	"math/rand"
	"slices"
	"strings"

	"searchkit/internal/evo"
	"searchkit/internal/score"
)

// Bitstring prints as a run of 0s and 1s.
type Bitstring []bool

func (b Bitstring) String() string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, bit := range b {
		if bit {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func (b Bitstring) Ones() int {
	n := 0
	for _, bit := range b {
		if bit {
			n++
		}
	}
	return n
}

type CountOnesConfig struct {
	Bits int
}

func DefaultCountOnesConfig() CountOnesConfig {
	return CountOnesConfig{Bits: 32}
}

// NewCountOnesProblem maximizes the number of set bits in a fixed-length
// bitstring.
func NewCountOnesProblem(cfg CountOnesConfig) (Problem[Bitstring, score.Score[int]], error) {
	if cfg.Bits <= 0 {
		return Problem[Bitstring, score.Score[int]]{}, errors.New("count-ones bits must be > 0")
	}
	return Problem[Bitstring, score.Score[int]]{
		Name: NameCountOnes,
		Distribution: evo.DistributionFunc[Bitstring](func(rng *rand.Rand) Bitstring {
			bits := make(Bitstring, cfg.Bits)
			for i := range bits {
				bits[i] = rng.Intn(2) == 1
			}
			return bits
		}),
		Scorer: evo.ScorerFunc[Bitstring, score.Score[int]](func(g Bitstring) score.Score[int] {
			return score.NewScore(g.Ones())
		}),
		Mutator: evo.MutatorFunc[Bitstring](FlipOneOverLength),
		Clone:   slices.Clone[Bitstring],
		Value:   func(s score.Score[int]) float64 { return float64(s.Value) },
	}, nil
}

// FlipOneOverLength flips each bit of g in place with probability 1/len(g).
// Callers that keep the parent must pass a copy.
func FlipOneOverLength(g Bitstring, rng *rand.Rand) (Bitstring, error) {
	if len(g) == 0 {
		return nil, ErrEmptyGenome
	}
	p := 1 / float64(len(g))
	for i := range g {
		if rng.Float64() < p {
			g[i] = !g[i]
		}
	}
	return g, nil
}
