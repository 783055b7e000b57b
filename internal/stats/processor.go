// Package stats holds the observers that consume emitted sample records:
// composable processors for reporting, progress, metrics and trajectories.
package stats

import (
	"searchkit/internal/evo"
	"searchkit/internal/model"
)

// Processor consumes records one at a time. It satisfies pipeline.Processor,
// so any processor can sit behind a queue worker.
type Processor[T any] interface {
	Process(record T)
}

// Finalizer is implemented by processors that report once the stream ends.
type Finalizer interface {
	FinalizeAndPrint()
}

// Finalize runs p's final report when it has one.
func Finalize[T any](p Processor[T]) {
	if f, ok := p.(Finalizer); ok {
		f.FinalizeAndPrint()
	}
}

type pair[T any] struct {
	first  Processor[T]
	second Processor[T]
}

// Pair feeds every record to first and then second, and finalizes them in the
// same order.
func Pair[T any](first, second Processor[T]) Processor[T] {
	return &pair[T]{first: first, second: second}
}

func (p *pair[T]) Process(record T) {
	p.first.Process(record)
	p.second.Process(record)
}

func (p *pair[T]) FinalizeAndPrint() {
	Finalize(p.first)
	Finalize(p.second)
}

// Chain folds processors into nested pairs, left to right. A single processor
// is returned as is.
func Chain[T any](first Processor[T], rest ...Processor[T]) Processor[T] {
	out := first
	for _, p := range rest {
		out = Pair(out, p)
	}
	return out
}

// Inspect adapts p to an engine inspector. The caller still owns finalization.
func Inspect[G, S any](p Processor[model.SampleRecord[G, S]]) evo.Inspector[G, S] {
	return func(batch []model.SampleRecord[G, S]) {
		for _, record := range batch {
			p.Process(record)
		}
	}
}

// ProcessorFunc turns a function into a processor without a final report.
type ProcessorFunc[T any] func(record T)

func (f ProcessorFunc[T]) Process(record T) { f(record) }
