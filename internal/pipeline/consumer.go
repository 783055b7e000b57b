package pipeline

// Processor is the consumer-side sink. stats.Processor values satisfy it.
type Processor[T any] interface {
	Process(record T)
}

type finalizer interface {
	FinalizeAndPrint()
}

// Consume drains q into p until every sender is released and the buffer is
// empty, then finalizes p if it supports finalization. It returns the number
// of values processed.
func Consume[T any](q *Queue[T], p Processor[T]) int {
	n := 0
	for {
		v, ok := q.Receive()
		if !ok {
			break
		}
		p.Process(v)
		n++
	}
	if f, ok := p.(finalizer); ok {
		f.FinalizeAndPrint()
	}
	return n
}

// Worker is a consumer running on its own goroutine.
type Worker struct {
	done      chan struct{}
	processed int
}

// Start launches Consume on a dedicated goroutine.
func Start[T any](q *Queue[T], p Processor[T]) *Worker {
	w := &Worker{done: make(chan struct{})}
	go func() {
		defer close(w.done)
		w.processed = Consume(q, p)
	}()
	return w
}

// Wait blocks until the queue has been drained and the processor finalized,
// and returns how many values were processed.
func (w *Worker) Wait() int {
	<-w.done
	return w.processed
}

// Done is closed once the worker has finished.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}
