package searchkit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"searchkit/internal/config"
	"searchkit/internal/evo"
	"searchkit/internal/model"
	"searchkit/internal/pipeline"
	"searchkit/internal/scape"
	"searchkit/internal/score"
	"searchkit/internal/stats"
	"searchkit/internal/storage"
	"searchkit/internal/tuning"
)

var tracer = otel.Tracer("searchkit/pkg/searchkit")

type RunRequest struct {
	Mode        model.RunMode
	Problem     string
	NumToSearch int
	Seed        int64

	// Random search.
	Parallel  bool
	ChunkSize int
	// Workers bounds parallel chunks (random) or concurrent child scoring
	// (hill climb).
	Workers int

	// Hill climb.
	ChildrenPerStep int
	AlwaysReplace   bool

	// UseQueue decouples the processors from the engine behind a bounded queue.
	UseQueue         bool
	QueueCapacity    int
	ProgressInterval time.Duration
	// PlotPath, when set, receives a plot of the best-score trajectory.
	PlotPath string

	Integer   scape.IntegerConfig
	CountOnes scape.CountOnesConfig
}

// RunRequestFromConfig maps a loaded configuration onto a request for mode.
func RunRequestFromConfig(cfg config.Config, mode model.RunMode) RunRequest {
	req := RunRequest{
		Mode:             mode,
		Problem:          cfg.Problem,
		NumToSearch:      cfg.NumToSearch,
		Seed:             cfg.Seed,
		Parallel:         cfg.Random.Parallel,
		ChunkSize:        cfg.Random.ChunkSize,
		Workers:          cfg.Random.Workers,
		ChildrenPerStep:  cfg.HillClimb.ChildrenPerStep,
		AlwaysReplace:    cfg.HillClimb.AlwaysReplace,
		UseQueue:         cfg.Pipeline.UseQueue,
		QueueCapacity:    cfg.Pipeline.QueueCapacity,
		ProgressInterval: cfg.Pipeline.ProgressInterval,
		PlotPath:         cfg.Pipeline.PlotPath,
		Integer: scape.IntegerConfig{
			Target:  cfg.Integer.Target,
			Range:   cfg.Integer.Range,
			MaxStep: cfg.Integer.MaxStep,
		},
		CountOnes: scape.CountOnesConfig{Bits: cfg.CountOnes.Bits},
	}
	if mode == model.RunModeHillClimb {
		req.Workers = cfg.HillClimb.Workers
	}
	return req
}

// Run executes one search, reports it to the client's writer and stores its
// summary. A failed search is not stored; the partial summary is returned
// alongside the error.
func (c *Client) Run(ctx context.Context, req RunRequest) (summary model.RunSummary, err error) {
	if err := c.Init(ctx); err != nil {
		return model.RunSummary{}, err
	}
	name, err := scape.Resolve(req.Problem)
	if err != nil {
		return model.RunSummary{}, err
	}
	req.Problem = name
	if req.Mode == "" {
		req.Mode = model.RunModeRandom
	}
	if req.QueueCapacity <= 0 {
		req.QueueCapacity = pipeline.DefaultCapacity
	}
	if req.Integer == (scape.IntegerConfig{}) {
		req.Integer = scape.DefaultIntegerConfig()
	}
	if req.CountOnes == (scape.CountOnesConfig{}) {
		req.CountOnes = scape.DefaultCountOnesConfig()
	}

	ctx, span := tracer.Start(ctx, "searchkit.Run")
	defer func() {
		span.SetAttributes(
			attribute.String("run_id", summary.RunID),
			attribute.Int("emitted", summary.Emitted),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	switch name {
	case scape.NameInteger:
		problem, err := scape.NewIntegerProblem(req.Integer)
		if err != nil {
			return model.RunSummary{}, err
		}
		return runProblem(ctx, c, req, problem)
	case scape.NameCountOnes:
		problem, err := scape.NewCountOnesProblem(req.CountOnes)
		if err != nil {
			return model.RunSummary{}, err
		}
		return runProblem(ctx, c, req, problem)
	default:
		return model.RunSummary{}, fmt.Errorf("%w: %s", scape.ErrUnknownProblem, name)
	}
}

// searchFunc runs one engine against exactly one of inspect and sender and
// reports how many records it emitted. It releases sender on every path.
type searchFunc[G any, S score.Comparable[S]] func(ctx context.Context, inspect evo.Inspector[G, S], sender *pipeline.Sender[model.SampleRecord[G, S]]) (int, error)

func runProblem[G any, S score.Comparable[S]](ctx context.Context, c *Client, req RunRequest, problem scape.Problem[G, S]) (model.RunSummary, error) {
	runID := uuid.NewString()
	started := time.Now()
	logger := c.logger.With(
		slog.String("run_id", runID),
		slog.String("problem", problem.Name),
		slog.String("mode", string(req.Mode)),
	)

	search, err := engineFor(req, problem, logger)
	if err != nil {
		return model.RunSummary{}, err
	}

	best := stats.NewBestSoFar[G, S](c.out)
	extremes := stats.NewMinMax[G, S](c.out)
	trajectory := stats.NewTrajectory[G, S](problem.Value)
	chain := stats.Chain[model.SampleRecord[G, S]](
		best,
		extremes,
		trajectory,
		stats.NewProgress[model.SampleRecord[G, S]](logger, req.ProgressInterval),
		stats.NewMetrics[G, S](c.searchMetrics),
	)

	var emitted int
	var searchErr error
	if req.UseQueue {
		q, sender, err := pipeline.NewQueue[model.SampleRecord[G, S]](req.QueueCapacity, pipeline.WithMetrics(c.queueMetrics))
		if err != nil {
			return model.RunSummary{}, err
		}
		worker := pipeline.Start[model.SampleRecord[G, S]](q, chain)
		emitted, searchErr = search(ctx, nil, sender)
		processed := worker.Wait()
		logger.Debug("consumer drained", slog.Int("processed", processed))
	} else {
		emitted, searchErr = search(ctx, stats.Inspect(chain), nil)
		stats.Finalize(chain)
	}

	bestRecord, hasBest := best.Best()
	minRecord, hasMin := extremes.Min()
	maxRecord, hasMax := extremes.Max()
	summary := model.RunSummary{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		RunID:        runID,
		Mode:         req.Mode,
		Problem:      problem.Name,
		CreatedAtUTC: started.UTC(),
		Seed:         req.Seed,
		NumToSearch:  req.NumToSearch,
		Emitted:      emitted,
		Best:         summarize(bestRecord, hasBest),
		Min:          summarize(minRecord, hasMin),
		Max:          summarize(maxRecord, hasMax),
		Trajectory:   trajectory.Points(),
	}
	if searchErr != nil {
		return summary, searchErr
	}

	if err := c.store.SaveRun(ctx, summary); err != nil {
		return summary, fmt.Errorf("save run %s: %w", runID, err)
	}
	if req.PlotPath != "" && len(summary.Trajectory) > 0 {
		title := fmt.Sprintf("%s %s", problem.Name, req.Mode)
		if err := trajectory.WritePlot(req.PlotPath, title); err != nil {
			return summary, err
		}
	}
	logger.Info("run stored",
		slog.Int("emitted", summary.Emitted),
		slog.Duration("elapsed", time.Since(started)),
	)
	return summary, nil
}

func engineFor[G any, S score.Comparable[S]](req RunRequest, problem scape.Problem[G, S], logger *slog.Logger) (searchFunc[G, S], error) {
	switch req.Mode {
	case model.RunModeRandom:
		return func(ctx context.Context, inspect evo.Inspector[G, S], sender *pipeline.Sender[model.SampleRecord[G, S]]) (int, error) {
			cfg := evo.DefaultRandomSearchConfig[G, S]()
			cfg.NumToSearch = req.NumToSearch
			cfg.Parallel = req.Parallel
			cfg.ChunkSize = req.ChunkSize
			cfg.Workers = req.Workers
			cfg.Seed = req.Seed
			cfg.Distribution = problem.Distribution
			cfg.Scorer = problem.Scorer
			cfg.Inspector = inspect
			cfg.Sender = sender
			cfg.Logger = logger
			engine, err := evo.NewRandomSearch(cfg)
			if err != nil {
				releaseSender(sender)
				return 0, err
			}
			err = engine.Search(ctx)
			return engine.Emitted(), err
		}, nil
	case model.RunModeHillClimb:
		return func(ctx context.Context, inspect evo.Inspector[G, S], sender *pipeline.Sender[model.SampleRecord[G, S]]) (int, error) {
			cfg := tuning.DefaultHillClimberConfig[G, S]()
			cfg.NumToSearch = req.NumToSearch
			cfg.NumChildrenPerStep = req.ChildrenPerStep
			cfg.AlwaysReplace = req.AlwaysReplace
			cfg.Workers = req.Workers
			cfg.Seed = req.Seed
			cfg.Distribution = problem.Distribution
			cfg.Mutator = problem.Mutator
			cfg.Scorer = problem.Scorer
			cfg.Clone = problem.Clone
			cfg.Inspector = inspect
			cfg.Sender = sender
			cfg.Logger = logger
			engine, err := tuning.NewHillClimber(cfg)
			if err != nil {
				releaseSender(sender)
				return 0, err
			}
			_, err = engine.Search(ctx)
			report := engine.Report()
			logger.Info("hill climb report",
				slog.Int("steps", report.StepsExecuted),
				slog.Int("evaluations", report.CandidateEvaluations),
				slog.Int("accepted", report.AcceptedCandidates),
				slog.Int("rejected", report.RejectedCandidates),
			)
			return engine.Emitted(), err
		}, nil
	default:
		return nil, fmt.Errorf("unsupported run mode: %q", req.Mode)
	}
}

func releaseSender[T any](sender *pipeline.Sender[T]) {
	if sender != nil {
		sender.Release()
	}
}

func summarize[G, S any](record model.SampleRecord[G, S], ok bool) *model.RecordSummary {
	if !ok {
		return nil
	}
	return &model.RecordSummary{
		Index:  record.Index,
		Genome: fmt.Sprint(record.Genome),
		Score:  fmt.Sprint(record.Score),
	}
}
