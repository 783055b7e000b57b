package searchkit

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"searchkit/internal/config"
	"searchkit/internal/evo"
	"searchkit/internal/model"
	"searchkit/internal/scape"
)

func newTestClient(t *testing.T, out io.Writer, reg prometheus.Registerer) *Client {
	t.Helper()
	client, err := New(Options{
		StoreKind:  "memory",
		ExportsDir: filepath.Join(t.TempDir(), "exports"),
		Out:        out,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Registerer: reg,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

// metricValue reads a counter or gauge from reg by its full name.
func metricValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name || len(family.GetMetric()) == 0 {
			continue
		}
		m := family.GetMetric()[0]
		if c := m.GetCounter(); c != nil {
			return c.GetValue()
		}
		return m.GetGauge().GetValue()
	}
	t.Fatalf("metric %s not registered", name)
	return 0
}

func assertImprovingTrajectory(t *testing.T, summary model.RunSummary, lowerIsBetter bool) {
	t.Helper()
	if len(summary.Trajectory) == 0 {
		t.Fatal("expected a non-empty trajectory")
	}
	for i := 1; i < len(summary.Trajectory); i++ {
		prev, cur := summary.Trajectory[i-1], summary.Trajectory[i]
		if cur.Index <= prev.Index {
			t.Fatalf("trajectory indices not increasing: %+v", summary.Trajectory)
		}
		if lowerIsBetter && cur.Value >= prev.Value || !lowerIsBetter && cur.Value <= prev.Value {
			t.Fatalf("trajectory does not strictly improve: %+v", summary.Trajectory)
		}
	}
}

func TestClientRunRandomRunsAndExport(t *testing.T) {
	var out bytes.Buffer
	client := newTestClient(t, &out, nil)
	ctx := context.Background()

	summary, err := client.Run(ctx, RunRequest{
		Mode:        model.RunModeRandom,
		Problem:     "integer",
		NumToSearch: 200,
		Seed:        7,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.RunID == "" {
		t.Fatal("expected run id")
	}
	if summary.Emitted != 200 {
		t.Fatalf("unexpected emitted count: %d", summary.Emitted)
	}
	if summary.Best == nil || summary.Min == nil || summary.Max == nil {
		t.Fatalf("expected best and extremes: %+v", summary)
	}
	if summary.Best.Index != summary.Max.Index {
		t.Fatalf("best %+v and max %+v disagree", summary.Best, summary.Max)
	}
	assertImprovingTrajectory(t, summary, true)
	if !strings.Contains(out.String(), "New best solution found:") {
		t.Fatalf("expected best-so-far report, got %q", out.String())
	}
	if !strings.Contains(out.String(), "The best score was") {
		t.Fatalf("expected min/max report, got %q", out.String())
	}

	runs, err := client.Runs(ctx, RunsRequest{Limit: 5})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != summary.RunID {
		t.Fatalf("expected run %s in runs list: %+v", summary.RunID, runs)
	}

	latest, err := client.Show(ctx, ShowRequest{Latest: true})
	if err != nil {
		t.Fatalf("show latest: %v", err)
	}
	if latest.RunID != summary.RunID || latest.Emitted != summary.Emitted {
		t.Fatalf("show mismatch: got=%+v want=%+v", latest, summary)
	}

	exported, err := client.Export(ctx, ExportRequest{RunID: summary.RunID})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, name := range []string{"summary.json", "trajectory.csv", "trajectory.png"} {
		if _, err := os.Stat(filepath.Join(exported.Directory, name)); err != nil {
			t.Fatalf("expected exported %s: %v", name, err)
		}
	}
}

func TestClientRunHillClimbThroughQueue(t *testing.T) {
	reg := prometheus.NewRegistry()
	client := newTestClient(t, io.Discard, reg)
	ctx := context.Background()

	summary, err := client.Run(ctx, RunRequest{
		Mode:            model.RunModeHillClimb,
		Problem:         "onemax",
		NumToSearch:     301,
		Seed:            3,
		ChildrenPerStep: 4,
		Workers:         2,
		UseQueue:        true,
		QueueCapacity:   2,
		CountOnes:       scape.CountOnesConfig{Bits: 24},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Problem != scape.NameCountOnes {
		t.Fatalf("expected canonical problem name, got %q", summary.Problem)
	}
	if summary.Emitted < 1 || summary.Emitted > 76 {
		t.Fatalf("unexpected emitted count: %d", summary.Emitted)
	}
	if len(summary.Trajectory) != summary.Emitted {
		t.Fatalf("every accepted incumbent improves: trajectory=%d emitted=%d", len(summary.Trajectory), summary.Emitted)
	}
	assertImprovingTrajectory(t, summary, false)

	if got := metricValue(t, reg, "searchkit_samples_total"); got != float64(summary.Emitted) {
		t.Fatalf("samples metric=%v want=%d", got, summary.Emitted)
	}
	if got := metricValue(t, reg, "searchkit_queue_received_total"); got != float64(summary.Emitted) {
		t.Fatalf("queue received metric=%v want=%d", got, summary.Emitted)
	}
}

func TestClientRunsShareMetricsAcrossRuns(t *testing.T) {
	reg := prometheus.NewRegistry()
	client := newTestClient(t, io.Discard, reg)
	ctx := context.Background()

	for _, useQueue := range []bool{false, true, true} {
		if _, err := client.Run(ctx, RunRequest{
			Problem:     "count-ones",
			NumToSearch: 10,
			Seed:        1,
			UseQueue:    useQueue,
		}); err != nil {
			t.Fatalf("run (queue=%v): %v", useQueue, err)
		}
	}
	if got := metricValue(t, reg, "searchkit_samples_total"); got != 30 {
		t.Fatalf("samples metric=%v want=30", got)
	}
	runs, err := client.Runs(ctx, RunsRequest{})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 stored runs, got %d", len(runs))
	}
}

func TestClientRunReproducibleWithSeed(t *testing.T) {
	client := newTestClient(t, io.Discard, nil)
	ctx := context.Background()
	req := RunRequest{
		Mode:        model.RunModeRandom,
		Problem:     "integer",
		NumToSearch: 64,
		Seed:        99,
		Parallel:    true,
		ChunkSize:   8,
		Workers:     4,
	}

	first, err := client.Run(ctx, req)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := client.Run(ctx, req)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first.RunID == second.RunID {
		t.Fatal("expected distinct run ids")
	}
	if first.Max.Score != second.Max.Score || first.Min.Score != second.Min.Score {
		t.Fatalf("same seed should find the same extremes: %+v vs %+v", first, second)
	}
}

func TestClientRunFailuresAreNotStored(t *testing.T) {
	client := newTestClient(t, io.Discard, nil)
	ctx := context.Background()

	_, err := client.Run(ctx, RunRequest{Problem: "integer", NumToSearch: 10, Parallel: true})
	if !errors.Is(err, evo.ErrZeroSizedChunk) {
		t.Fatalf("expected zero-sized chunk error, got %v", err)
	}
	_, err = client.Run(ctx, RunRequest{Mode: model.RunModeHillClimb, Problem: "integer", NumToSearch: 10})
	if !errors.Is(err, evo.ErrZeroSizedChunk) {
		t.Fatalf("expected zero-sized chunk error for zero children, got %v", err)
	}
	_, err = client.Run(ctx, RunRequest{Problem: "travelling-salesman", NumToSearch: 10})
	if !errors.Is(err, scape.ErrUnknownProblem) {
		t.Fatalf("expected unknown problem error, got %v", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	summary, err := client.Run(canceled, RunRequest{Problem: "integer", NumToSearch: 10, UseQueue: true})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if summary.Emitted != 0 {
		t.Fatalf("canceled run emitted %d records", summary.Emitted)
	}

	runs, err := client.Runs(ctx, RunsRequest{})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected no stored runs, got %+v", runs)
	}
}

func TestClientShowAndDelete(t *testing.T) {
	client := newTestClient(t, io.Discard, nil)
	ctx := context.Background()

	if _, err := client.Show(ctx, ShowRequest{Latest: true}); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected not found on empty store, got %v", err)
	}
	if _, err := client.Show(ctx, ShowRequest{}); err == nil {
		t.Fatal("expected error without run id or latest")
	}
	if _, err := client.Show(ctx, ShowRequest{RunID: "x", Latest: true}); err == nil {
		t.Fatal("expected error with both run id and latest")
	}

	summary, err := client.Run(ctx, RunRequest{Problem: "count-ones", NumToSearch: 5})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := client.Delete(ctx, summary.RunID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := client.Delete(ctx, summary.RunID); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if _, err := client.Show(ctx, ShowRequest{RunID: summary.RunID}); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestClientRunWritesPlot(t *testing.T) {
	client := newTestClient(t, io.Discard, nil)
	plotPath := filepath.Join(t.TempDir(), "climb.png")

	if _, err := client.Run(context.Background(), RunRequest{
		Mode:            model.RunModeHillClimb,
		Problem:         "integer",
		NumToSearch:     50,
		ChildrenPerStep: 5,
		PlotPath:        plotPath,
	}); err != nil {
		t.Fatalf("run: %v", err)
	}
	info, err := os.Stat(plotPath)
	if err != nil {
		t.Fatalf("stat plot: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("expected a non-empty plot")
	}
}

func TestRunRequestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Random.Workers = 3
	cfg.HillClimb.Workers = 5

	random := RunRequestFromConfig(cfg, model.RunModeRandom)
	if random.Workers != 3 || random.Mode != model.RunModeRandom {
		t.Fatalf("unexpected random request: %+v", random)
	}
	climb := RunRequestFromConfig(cfg, model.RunModeHillClimb)
	if climb.Workers != 5 || climb.ChildrenPerStep != cfg.HillClimb.ChildrenPerStep {
		t.Fatalf("unexpected hill climb request: %+v", climb)
	}
	if climb.Integer.Range != cfg.Integer.Range || climb.CountOnes.Bits != cfg.CountOnes.Bits {
		t.Fatalf("problem settings not carried over: %+v", climb)
	}
}
