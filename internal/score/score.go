// Package score defines totally ordered score types. Which direction counts
// as "better" is a property of the type, never of the engine comparing them.
package score

import (
	"cmp"
	"fmt"

	"golang.org/x/exp/constraints"
)

// Comparable is satisfied by score types that order themselves.
// a.Compare(b) > 0 means a is better than b.
type Comparable[S any] interface {
	Compare(other S) int
}

// Score is a fitness-style value: higher is better.
type Score[T constraints.Ordered] struct {
	Value T
}

func NewScore[T constraints.Ordered](v T) Score[T] {
	return Score[T]{Value: v}
}

func (s Score[T]) Compare(other Score[T]) int {
	return cmp.Compare(s.Value, other.Value)
}

func (s Score[T]) String() string {
	return fmt.Sprint(s.Value)
}

// Error is a distance-style value: lower is better.
type Error[T constraints.Ordered] struct {
	Value T
}

func NewError[T constraints.Ordered](v T) Error[T] {
	return Error[T]{Value: v}
}

func (e Error[T]) Compare(other Error[T]) int {
	return cmp.Compare(other.Value, e.Value)
}

func (e Error[T]) String() string {
	return fmt.Sprint(e.Value)
}

// Improves reports whether candidate is strictly better than incumbent.
func Improves[S Comparable[S]](candidate, incumbent S) bool {
	return candidate.Compare(incumbent) > 0
}

// BestIndex returns the position of the first maximum in scores, or -1 when
// scores is empty. Later equal scores never displace an earlier one.
func BestIndex[S Comparable[S]](scores []S) int {
	if len(scores) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i].Compare(scores[best]) > 0 {
			best = i
		}
	}
	return best
}
