// Package pipeline decouples a search engine from its observers with a
// bounded queue. Producers hold Sender handles; a single consumer drains the
// queue into a processor until every handle has been released.
package pipeline

import (
	"errors"
	"sync"
)

// DefaultCapacity is the queue size used by the CLI when none is configured.
const DefaultCapacity = 1000

var (
	ErrInvalidCapacity = errors.New("queue capacity must be > 0")
	ErrSenderReleased  = errors.New("sender handle already released")
)

// Queue is a fixed-capacity FIFO. Send blocks while it is full, so a slow
// consumer throttles the producer instead of growing a buffer.
type Queue[T any] struct {
	ch      chan T
	metrics *Metrics

	mu      sync.Mutex
	senders int
	closed  bool
}

// Sender is one producer-side handle. The queue closes once every handle
// created by NewQueue or Clone has been released; a handle that is never
// released keeps the consumer waiting forever.
//
// A handle must not be released while the same handle is sending from another
// goroutine; give each producer goroutine its own clone instead.
type Sender[T any] struct {
	q *Queue[T]

	mu       sync.RWMutex
	released bool
}

type Option func(*options)

type options struct {
	metrics *Metrics
}

// NewQueue returns the queue and its first sending handle.
func NewQueue[T any](capacity int, opts ...Option) (*Queue[T], *Sender[T], error) {
	if capacity <= 0 {
		return nil, nil, ErrInvalidCapacity
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = NewMetrics(nil)
	}
	q := &Queue[T]{
		ch:      make(chan T, capacity),
		metrics: o.metrics,
		senders: 1,
	}
	return q, &Sender[T]{q: q}, nil
}

func (q *Queue[T]) Cap() int { return cap(q.ch) }

func (q *Queue[T]) Len() int { return len(q.ch) }

// Closed reports whether every sender has been released. Buffered values may
// still be waiting to be received.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Receive blocks until a value is available. It returns false only once the
// queue is closed and drained.
func (q *Queue[T]) Receive() (T, bool) {
	v, ok := <-q.ch
	if ok {
		q.metrics.received.Inc()
		q.metrics.depth.Set(float64(len(q.ch)))
	}
	return v, ok
}

func (q *Queue[T]) retain() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.senders++
}

func (q *Queue[T]) release() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.senders--
	if q.senders == 0 && !q.closed {
		q.closed = true
		close(q.ch)
	}
}

// Send pushes v, blocking while the queue is full. Values are never dropped.
func (s *Sender[T]) Send(v T) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.released {
		return ErrSenderReleased
	}
	q := s.q
	if len(q.ch) == cap(q.ch) {
		q.metrics.full.Inc()
	}
	q.ch <- v
	q.metrics.sent.Inc()
	q.metrics.depth.Set(float64(len(q.ch)))
	return nil
}

// SendAll pushes every value in order.
func (s *Sender[T]) SendAll(values []T) error {
	for _, v := range values {
		if err := s.Send(v); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns an additional handle on the same queue.
func (s *Sender[T]) Clone() (*Sender[T], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.released {
		return nil, ErrSenderReleased
	}
	s.q.retain()
	return &Sender[T]{q: s.q}, nil
}

// Release gives the handle up. Releasing twice is a no-op.
func (s *Sender[T]) Release() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	s.mu.Unlock()
	s.q.release()
}
