package evo

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"searchkit/internal/model"
	"searchkit/internal/pipeline"
)

const DefaultChunkSize = 1000

var tracer = otel.Tracer("searchkit/internal/evo")

type RandomSearchConfig[G, S any] struct {
	NumToSearch int
	// Parallel splits the index range into ChunkSize chunks evaluated on up
	// to Workers goroutines. Cross-chunk emission order is unspecified.
	Parallel     bool
	ChunkSize    int
	Workers      int
	Seed         int64
	Distribution Distribution[G]
	Scorer       Scorer[G, S]
	// Exactly one of Inspector and Sender must be set. The engine releases
	// Sender when Search returns.
	Inspector Inspector[G, S]
	Sender    *pipeline.Sender[model.SampleRecord[G, S]]
	Logger    *slog.Logger
}

func DefaultRandomSearchConfig[G, S any]() RandomSearchConfig[G, S] {
	return RandomSearchConfig[G, S]{
		NumToSearch: 1000,
		Parallel:    true,
		ChunkSize:   DefaultChunkSize,
		Seed:        1,
	}
}

// RandomSearch scores independent samples from a distribution. It is meant to
// be run once.
type RandomSearch[G, S any] struct {
	cfg     RandomSearchConfig[G, S]
	emitter *Emitter[G, S]
	logger  *slog.Logger
}

func NewRandomSearch[G, S any](cfg RandomSearchConfig[G, S]) (*RandomSearch[G, S], error) {
	if cfg.Distribution == nil {
		return nil, fmt.Errorf("distribution is required")
	}
	if cfg.Scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}
	if cfg.NumToSearch < 0 {
		return nil, fmt.Errorf("num to search must be >= 0")
	}
	if cfg.Parallel && cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size %d: %w", cfg.ChunkSize, ErrZeroSizedChunk)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	emitter, err := NewEmitter(cfg.Inspector, cfg.Sender)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RandomSearch[G, S]{cfg: cfg, emitter: emitter, logger: logger}, nil
}

// Search emits exactly one record per index in [0, NumToSearch). Context
// cancellation is checked between samples (sequential) or chunks (parallel).
func (s *RandomSearch[G, S]) Search(ctx context.Context) (err error) {
	defer s.emitter.Close()

	ctx, span := tracer.Start(ctx, "evo.RandomSearch", trace.WithAttributes(
		attribute.Int("num_to_search", s.cfg.NumToSearch),
		attribute.Bool("parallel", s.cfg.Parallel),
		attribute.Int("chunk_size", s.cfg.ChunkSize),
		attribute.Int("workers", s.cfg.Workers),
	))
	started := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	s.logger.Info("random search started",
		slog.Int("num_to_search", s.cfg.NumToSearch),
		slog.Bool("parallel", s.cfg.Parallel),
		slog.Int("chunk_size", s.cfg.ChunkSize),
		slog.Int("workers", s.cfg.Workers),
	)

	if s.cfg.Parallel {
		err = s.searchParallel(ctx)
	} else {
		err = s.searchSequential(ctx)
	}
	if err != nil {
		s.logger.Error("random search aborted", slog.Int("emitted", s.emitter.Emitted()), slog.Any("error", err))
		return err
	}

	s.logger.Info("random search finished",
		slog.Int("emitted", s.emitter.Emitted()),
		slog.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// Emitted is the number of records delivered so far.
func (s *RandomSearch[G, S]) Emitted() int {
	return s.emitter.Emitted()
}

func (s *RandomSearch[G, S]) searchSequential(ctx context.Context) error {
	rng := rand.New(rand.NewSource(s.cfg.Seed))
	for i := 0; i < s.cfg.NumToSearch; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.emitter.Emit([]model.SampleRecord[G, S]{s.sample(i, rng)}); err != nil {
			return err
		}
	}
	return nil
}

func (s *RandomSearch[G, S]) searchParallel(ctx context.Context) error {
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.Workers)

	chunkSize := s.cfg.ChunkSize
	for start := 0; start < s.cfg.NumToSearch; start += chunkSize {
		if gctx.Err() != nil {
			break
		}
		chunk := start / chunkSize
		lo, hi := start, min(start+chunkSize, s.cfg.NumToSearch)

		emitter, err := s.emitter.Fork()
		if err != nil {
			_ = group.Wait()
			return err
		}
		group.Go(func() error {
			defer emitter.Close()
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(chunkSeed(s.cfg.Seed, chunk)))
			batch := make([]model.SampleRecord[G, S], 0, hi-lo)
			for i := lo; i < hi; i++ {
				batch = append(batch, s.sample(i, rng))
			}
			return emitter.Emit(batch)
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *RandomSearch[G, S]) sample(index int, rng *rand.Rand) model.SampleRecord[G, S] {
	genome := s.cfg.Distribution.Sample(rng)
	return model.SampleRecord[G, S]{Index: index, Genome: genome, Score: s.cfg.Scorer.Score(genome)}
}

// chunkSeed derives an independent stream per chunk so results do not depend
// on which worker picks a chunk up.
func chunkSeed(seed int64, chunk int) int64 {
	z := uint64(seed) + uint64(chunk+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}
