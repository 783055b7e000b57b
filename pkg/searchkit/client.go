// Package searchkit is the public entry point: it wires a demo problem to a
// search engine, the observation pipeline and a run store.
package searchkit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"searchkit/internal/model"
	"searchkit/internal/pipeline"
	"searchkit/internal/stats"
	"searchkit/internal/storage"
)

const (
	defaultDBPath     = "searchkit.db"
	defaultExportsDir = "exports"
	defaultRunsLimit  = 20
)

var ErrRunNotFound = errors.New("run not found")

type Options struct {
	StoreKind  string
	DBPath     string
	ExportsDir string
	// Out receives the console report (best-so-far lines, extremes). Defaults
	// to stdout.
	Out        io.Writer
	Logger     *slog.Logger
	Registerer prometheus.Registerer
}

type Client struct {
	store      storage.Store
	exportsDir string
	out        io.Writer
	logger     *slog.Logger

	queueMetrics  *pipeline.Metrics
	searchMetrics *stats.SearchMetrics

	initMu      sync.Mutex
	initialized bool
}

type RunsRequest struct {
	Limit int
}

type ShowRequest struct {
	RunID  string
	Latest bool
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:         store,
		exportsDir:    exportsDir,
		out:           out,
		logger:        logger,
		queueMetrics:  pipeline.NewMetrics(opts.Registerer),
		searchMetrics: stats.NewSearchMetrics(opts.Registerer),
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Init prepares the store. Every other method calls it as needed.
func (c *Client) Init(ctx context.Context) error {
	c.initMu.Lock()
	defer c.initMu.Unlock()
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	c.initialized = true
	return nil
}

// Runs lists stored runs, newest first.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]model.RunSummary, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	if req.Limit <= 0 {
		req.Limit = defaultRunsLimit
	}
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) > req.Limit {
		runs = runs[:req.Limit]
	}
	return runs, nil
}

func (c *Client) Show(ctx context.Context, req ShowRequest) (model.RunSummary, error) {
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return model.RunSummary{}, err
	}
	summary, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return model.RunSummary{}, err
	}
	if !ok {
		return model.RunSummary{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return summary, nil
}

// Export writes a stored run's summary, trajectory CSV and plot under
// OutDir/<run id>.
func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	summary, err := c.Show(ctx, ShowRequest{RunID: req.RunID, Latest: req.Latest})
	if err != nil {
		return ExportSummary{}, err
	}
	outDir := req.OutDir
	if outDir == "" {
		outDir = c.exportsDir
	}
	dir, err := stats.WriteRunArtifacts(outDir, summary)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: summary.RunID, Directory: filepath.Clean(dir)}, nil
}

func (c *Client) Delete(ctx context.Context, runID string) error {
	if err := c.Init(ctx); err != nil {
		return err
	}
	deleted, err := c.store.DeleteRun(ctx, runID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

func (c *Client) resolveRunID(ctx context.Context, runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if runID == "" && !latest {
		return "", errors.New("run id or latest is required")
	}
	if err := c.Init(ctx); err != nil {
		return "", err
	}
	if runID != "" {
		return runID, nil
	}
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("%w: no runs stored", ErrRunNotFound)
	}
	return runs[0].RunID, nil
}
