package tuning

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"searchkit/internal/evo"
	"searchkit/internal/model"
	"searchkit/internal/pipeline"
	"searchkit/internal/score"
)

var tracer = otel.Tracer("searchkit/internal/tuning")

type HillClimberConfig[G any, S score.Comparable[S]] struct {
	NumToSearch        int
	NumChildrenPerStep int
	// AlwaysReplace accepts the best child of every step even when it is
	// worse than the incumbent.
	AlwaysReplace bool
	// Workers > 1 scores the children of a step concurrently.
	Workers      int
	Seed         int64
	Distribution evo.Distribution[G]
	Mutator      evo.Mutator[G]
	Scorer       evo.Scorer[G, S]
	// Clone copies the incumbent before each mutation. Leave nil when G is a
	// plain value.
	Clone     func(G) G
	Inspector evo.Inspector[G, S]
	Sender    *pipeline.Sender[model.SampleRecord[G, S]]
	Logger    *slog.Logger
}

func DefaultHillClimberConfig[G any, S score.Comparable[S]]() HillClimberConfig[G, S] {
	return HillClimberConfig[G, S]{
		NumToSearch:        1000,
		NumChildrenPerStep: 1,
		Workers:            1,
		Seed:               1,
	}
}

// HillClimber keeps a single incumbent and replaces it with the best of a
// batch of sibling mutations. Only accepted incumbents are emitted.
type HillClimber[G any, S score.Comparable[S]] struct {
	cfg     HillClimberConfig[G, S]
	emitter *evo.Emitter[G, S]
	logger  *slog.Logger
	report  Report
}

func NewHillClimber[G any, S score.Comparable[S]](cfg HillClimberConfig[G, S]) (*HillClimber[G, S], error) {
	if cfg.Distribution == nil {
		return nil, errors.New("distribution is required")
	}
	if cfg.Mutator == nil {
		return nil, errors.New("mutator is required")
	}
	if cfg.Scorer == nil {
		return nil, errors.New("scorer is required")
	}
	if cfg.NumChildrenPerStep <= 0 {
		return nil, evo.ErrZeroSizedChunk
	}
	if cfg.NumToSearch < 0 {
		return nil, errors.New("num to search must be >= 0")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	emitter, err := evo.NewEmitter(cfg.Inspector, cfg.Sender)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &HillClimber[G, S]{cfg: cfg, emitter: emitter, logger: logger}, nil
}

func (h *HillClimber[G, S]) Name() string {
	return "hill_climber"
}

// Report is valid once Search has returned.
func (h *HillClimber[G, S]) Report() Report {
	return h.report
}

// Emitted is the number of incumbents delivered so far, the initial sample
// included.
func (h *HillClimber[G, S]) Emitted() int {
	return h.emitter.Emitted()
}

// Search runs the climb until the budget is spent and returns the final
// incumbent. The initial sample is always emitted, even when NumToSearch is
// below one. A failed mutation aborts the run with a *evo.MutationError.
func (h *HillClimber[G, S]) Search(ctx context.Context) (incumbent model.SampleRecord[G, S], err error) {
	defer h.emitter.Close()

	ctx, span := tracer.Start(ctx, "tuning.HillClimber", trace.WithAttributes(
		attribute.Int("num_to_search", h.cfg.NumToSearch),
		attribute.Int("children_per_step", h.cfg.NumChildrenPerStep),
		attribute.Bool("always_replace", h.cfg.AlwaysReplace),
		attribute.Int("workers", h.cfg.Workers),
	))
	started := time.Now()
	defer func() {
		span.SetAttributes(
			attribute.Int("steps", h.report.StepsExecuted),
			attribute.Int("accepted", h.report.AcceptedCandidates),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	steps := 0
	if h.cfg.NumToSearch > 1 {
		steps = (h.cfg.NumToSearch - 1 + h.cfg.NumChildrenPerStep - 1) / h.cfg.NumChildrenPerStep
	}
	h.report = Report{StepsPlanned: steps}
	h.logger.Info("hill climb started",
		slog.Int("num_to_search", h.cfg.NumToSearch),
		slog.Int("children_per_step", h.cfg.NumChildrenPerStep),
		slog.Int("steps", steps),
		slog.Bool("always_replace", h.cfg.AlwaysReplace),
	)

	rng := rand.New(rand.NewSource(h.cfg.Seed))
	initial := h.cfg.Distribution.Sample(rng)
	incumbent = model.SampleRecord[G, S]{Index: 0, Genome: initial, Score: h.cfg.Scorer.Score(initial)}
	h.report.CandidateEvaluations++
	if err := h.emitter.Emit([]model.SampleRecord[G, S]{incumbent}); err != nil {
		return incumbent, err
	}

	for lo := 1; lo < h.cfg.NumToSearch; lo += h.cfg.NumChildrenPerStep {
		if err := ctx.Err(); err != nil {
			return incumbent, err
		}
		hi := min(lo+h.cfg.NumChildrenPerStep, h.cfg.NumToSearch)
		best, err := h.step(incumbent.Genome, lo, hi, rng)
		if err != nil {
			h.logger.Error("hill climb aborted", slog.Int("index", lo), slog.Any("error", err))
			return incumbent, err
		}
		h.report.StepsExecuted++
		h.report.CandidateEvaluations += hi - lo

		if !h.cfg.AlwaysReplace && !score.Improves(best.Score, incumbent.Score) {
			h.report.RejectedCandidates++
			continue
		}
		h.report.AcceptedCandidates++
		incumbent = best
		h.logger.Debug("incumbent replaced", slog.Int("index", incumbent.Index), slog.Any("score", incumbent.Score))
		if err := h.emitter.Emit([]model.SampleRecord[G, S]{incumbent}); err != nil {
			return incumbent, err
		}
	}

	h.logger.Info("hill climb finished",
		slog.Int("accepted", h.report.AcceptedCandidates),
		slog.Int("rejected", h.report.RejectedCandidates),
		slog.Int("best_index", incumbent.Index),
		slog.Any("best_score", incumbent.Score),
		slog.Duration("elapsed", time.Since(started)),
	)
	return incumbent, nil
}

// step mutates parent once per index in [lo, hi) and returns the best child.
// Mutation runs in index order on the climber's rng; scoring may fan out.
// Among equal scores the lowest index wins.
func (h *HillClimber[G, S]) step(parent G, lo, hi int, rng *rand.Rand) (model.SampleRecord[G, S], error) {
	var zero model.SampleRecord[G, S]
	if hi <= lo {
		return zero, evo.ErrZeroSizedChunk
	}
	children := make([]model.SampleRecord[G, S], hi-lo)
	for i := range children {
		index := lo + i
		genome, err := h.cfg.Mutator.Mutate(h.clone(parent), rng)
		if err != nil {
			return zero, &evo.MutationError{Index: index, Err: err}
		}
		children[i] = model.SampleRecord[G, S]{Index: index, Genome: genome}
	}
	h.scoreAll(children)

	scores := make([]S, len(children))
	for i := range children {
		scores[i] = children[i].Score
	}
	return children[score.BestIndex(scores)], nil
}

func (h *HillClimber[G, S]) scoreAll(children []model.SampleRecord[G, S]) {
	if h.cfg.Workers <= 1 || len(children) == 1 {
		for i := range children {
			children[i].Score = h.cfg.Scorer.Score(children[i].Genome)
		}
		return
	}
	p := pool.New().WithMaxGoroutines(min(h.cfg.Workers, len(children)))
	for i := range children {
		p.Go(func() {
			children[i].Score = h.cfg.Scorer.Score(children[i].Genome)
		})
	}
	p.Wait()
}

func (h *HillClimber[G, S]) clone(g G) G {
	if h.cfg.Clone == nil {
		return g
	}
	return h.cfg.Clone(g)
}
