package evo

import (
	"sync"
	"sync/atomic"

	"searchkit/internal/model"
	"searchkit/internal/pipeline"
)

// Emitter is where an engine delivers its records: either an inspector
// callback, serialized by one lock taken once per batch, or the sending side
// of a telemetry queue.
type Emitter[G, S any] struct {
	inspect Inspector[G, S]
	sender  *pipeline.Sender[model.SampleRecord[G, S]]

	mu      *sync.Mutex
	emitted *atomic.Int64
}

func NewEmitter[G, S any](inspect Inspector[G, S], sender *pipeline.Sender[model.SampleRecord[G, S]]) (*Emitter[G, S], error) {
	if (inspect == nil) == (sender == nil) {
		return nil, ErrNoEmitter
	}
	return &Emitter[G, S]{
		inspect: inspect,
		sender:  sender,
		mu:      &sync.Mutex{},
		emitted: &atomic.Int64{},
	}, nil
}

// Emit delivers batch. On the sender path every record is pushed in order and
// a full queue blocks the caller.
func (e *Emitter[G, S]) Emit(batch []model.SampleRecord[G, S]) error {
	if len(batch) == 0 {
		return nil
	}
	if e.sender != nil {
		if err := e.sender.SendAll(batch); err != nil {
			return err
		}
		e.emitted.Add(int64(len(batch)))
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inspect(batch)
	e.emitted.Add(int64(len(batch)))
	return nil
}

// Fork returns an emitter for one more producer goroutine. On the sender path
// it holds its own cloned handle, which the caller must Close; on the
// inspector path it shares this emitter's lock. Forks share the emitted count.
func (e *Emitter[G, S]) Fork() (*Emitter[G, S], error) {
	if e.sender == nil {
		return e, nil
	}
	clone, err := e.sender.Clone()
	if err != nil {
		return nil, err
	}
	return &Emitter[G, S]{sender: clone, mu: e.mu, emitted: e.emitted}, nil
}

// Close releases the sending handle so the consumer can observe end of
// stream. It is a no-op for inspectors and safe to call more than once.
func (e *Emitter[G, S]) Close() {
	if e.sender != nil {
		e.sender.Release()
	}
}

// Emitted is the number of records delivered through this emitter and its forks.
func (e *Emitter[G, S]) Emitted() int {
	return int(e.emitted.Load())
}
