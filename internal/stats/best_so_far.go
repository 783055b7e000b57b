package stats

import (
	"fmt"
	"io"
	"os"

	"searchkit/internal/model"
	"searchkit/internal/score"
)

// BestSoFar prints a line for the first record and for every record that
// strictly beats the best seen before it.
type BestSoFar[G any, S score.Comparable[S]] struct {
	out  io.Writer
	best *model.SampleRecord[G, S]
	seen int
}

// NewBestSoFar writes to out, or to stdout when out is nil.
func NewBestSoFar[G any, S score.Comparable[S]](out io.Writer) *BestSoFar[G, S] {
	if out == nil {
		out = os.Stdout
	}
	return &BestSoFar[G, S]{out: out}
}

func (b *BestSoFar[G, S]) Process(record model.SampleRecord[G, S]) {
	b.seen++
	if b.best != nil && !score.Improves(record.Score, b.best.Score) {
		return
	}
	best := record
	b.best = &best
	fmt.Fprintf(b.out, "New best solution found: %v with score %v at sample number %d\n",
		record.Genome, record.Score, record.Index)
}

// Best returns the current best record, if any record has been seen.
func (b *BestSoFar[G, S]) Best() (model.SampleRecord[G, S], bool) {
	if b.best == nil {
		return model.SampleRecord[G, S]{}, false
	}
	return *b.best, true
}

func (b *BestSoFar[G, S]) Seen() int {
	return b.seen
}
