// Package scape provides small demo problems to search: a genome
// distribution, a scorer and a mutator bundled under a name.
package scape

import (
	"errors"
	"fmt"

	"searchkit/internal/evo"
	"searchkit/internal/scapeid"
	"searchkit/internal/score"
)

const (
	NameInteger   = "integer"
	NameCountOnes = "count-ones"
)

var (
	ErrUnknownProblem = errors.New("unknown problem")
	ErrEmptyGenome    = errors.New("cannot mutate an empty genome")
)

// Problem bundles what the engines need for one genome space.
type Problem[G any, S score.Comparable[S]] struct {
	Name         string
	Distribution evo.Distribution[G]
	Scorer       evo.Scorer[G, S]
	Mutator      evo.Mutator[G]
	// Clone is nil when G is a plain value.
	Clone func(G) G
	// Value maps a score onto a plot axis.
	Value func(S) float64
}

// Names lists the canonical problem names.
func Names() []string {
	return []string{NameCountOnes, NameInteger}
}

// Resolve canonicalizes name and reports whether it is a known problem.
func Resolve(name string) (string, error) {
	canonical := scapeid.Normalize(name)
	for _, known := range Names() {
		if canonical == known {
			return canonical, nil
		}
	}
	return "", fmt.Errorf("%w: %q (known: %v)", ErrUnknownProblem, name, Names())
}
