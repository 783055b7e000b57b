package evo

import (
	"math/rand"

	"searchkit/internal/model"
)

// Distribution produces fresh genomes. Implementations must be safe to call
// from several goroutines as long as each passes its own rng.
type Distribution[G any] interface {
	Sample(rng *rand.Rand) G
}

// Scorer evaluates a genome. The same genome must always get the same score.
type Scorer[G, S any] interface {
	Score(genome G) S
}

// Mutator derives a child genome from a parent.
type Mutator[G any] interface {
	Mutate(genome G, rng *rand.Rand) (G, error)
}

type DistributionFunc[G any] func(rng *rand.Rand) G

func (f DistributionFunc[G]) Sample(rng *rand.Rand) G { return f(rng) }

type ScorerFunc[G, S any] func(genome G) S

func (f ScorerFunc[G, S]) Score(genome G) S { return f(genome) }

type MutatorFunc[G any] func(genome G, rng *rand.Rand) (G, error)

func (f MutatorFunc[G]) Mutate(genome G, rng *rand.Rand) (G, error) { return f(genome, rng) }

// Inspector observes batches of records as an engine emits them.
type Inspector[G, S any] func(batch []model.SampleRecord[G, S])
