package stats

import (
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"
)

const DefaultProgressInterval = 2 * time.Second

// Progress logs how many records have gone by, at most once per interval.
type Progress[T any] struct {
	logger  *slog.Logger
	limiter *rate.Limiter
	started time.Time
	count   uint64
}

// NewProgress logs through logger (slog.Default when nil). An interval <= 0
// uses DefaultProgressInterval.
func NewProgress[T any](logger *slog.Logger, interval time.Duration) *Progress[T] {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	return &Progress[T]{
		logger:  logger,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		started: time.Now(),
	}
}

func (p *Progress[T]) Process(T) {
	p.count++
	// The first record only spends the initial token.
	if p.count == 1 {
		p.limiter.Allow()
		return
	}
	if !p.limiter.Allow() {
		return
	}
	p.logger.Info("search progress",
		slog.String("processed", humanize.Comma(int64(p.count))),
		slog.String("rate", p.rate()),
	)
}

func (p *Progress[T]) Count() uint64 {
	return p.count
}

func (p *Progress[T]) FinalizeAndPrint() {
	p.logger.Info("search complete",
		slog.String("processed", humanize.Comma(int64(p.count))),
		slog.String("rate", p.rate()),
		slog.Duration("elapsed", time.Since(p.started)),
	)
}

func (p *Progress[T]) rate() string {
	elapsed := time.Since(p.started).Seconds()
	if elapsed <= 0 {
		return "n/a"
	}
	return humanize.FormatFloat("#,###.#", float64(p.count)/elapsed) + "/s"
}
