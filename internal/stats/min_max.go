package stats

import (
	"fmt"
	"io"
	"os"

	"searchkit/internal/model"
	"searchkit/internal/score"
)

// MinMax tracks the lowest and highest records by score order. Ties keep the
// earlier record.
type MinMax[G any, S score.Comparable[S]] struct {
	out io.Writer
	min *model.SampleRecord[G, S]
	max *model.SampleRecord[G, S]
}

// NewMinMax writes its final report to out, or to stdout when out is nil.
func NewMinMax[G any, S score.Comparable[S]](out io.Writer) *MinMax[G, S] {
	if out == nil {
		out = os.Stdout
	}
	return &MinMax[G, S]{out: out}
}

func (m *MinMax[G, S]) Process(record model.SampleRecord[G, S]) {
	if m.max == nil || record.Score.Compare(m.max.Score) > 0 {
		r := record
		m.max = &r
	}
	if m.min == nil || record.Score.Compare(m.min.Score) < 0 {
		r := record
		m.min = &r
	}
}

func (m *MinMax[G, S]) Min() (model.SampleRecord[G, S], bool) {
	if m.min == nil {
		return model.SampleRecord[G, S]{}, false
	}
	return *m.min, true
}

func (m *MinMax[G, S]) Max() (model.SampleRecord[G, S], bool) {
	if m.max == nil {
		return model.SampleRecord[G, S]{}, false
	}
	return *m.max, true
}

func (m *MinMax[G, S]) FinalizeAndPrint() {
	if m.max == nil {
		fmt.Fprintln(m.out, "No samples were processed")
		return
	}
	fmt.Fprintf(m.out, "The best score was  %v: %v at sample number %d\n", m.max.Score, m.max.Genome, m.max.Index)
	fmt.Fprintf(m.out, "The worst score was %v: %v at sample number %d\n", m.min.Score, m.min.Genome, m.min.Index)
}
