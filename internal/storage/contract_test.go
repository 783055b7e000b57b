package storage

import (
	"context"
	"reflect"
	"testing"
	"time"

	"searchkit/internal/model"
)

func sampleRun(id string, created time.Time) model.RunSummary {
	return model.RunSummary{
		RunID:        id,
		Mode:         model.RunModeRandom,
		Problem:      "integer",
		CreatedAtUTC: created.UTC(),
		Seed:         7,
		NumToSearch:  100,
		Emitted:      100,
		Best:         &model.RecordSummary{Index: 12, Genome: "4190", Score: "3"},
		Min:          &model.RecordSummary{Index: 40, Genome: "-998", Score: "5191"},
		Max:          &model.RecordSummary{Index: 12, Genome: "4190", Score: "3"},
		Trajectory: []model.TrajectoryPoint{
			{Index: 0, Value: -812},
			{Index: 12, Value: -3},
		},
	}
}

// exerciseStore checks the behaviour every backend must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	older := sampleRun("run-a", base)
	newer := sampleRun("run-b", base.Add(time.Minute))
	newer.Mode = model.RunModeHillClimb
	for _, run := range []model.RunSummary{older, newer} {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run %s: %v", run.RunID, err)
		}
	}

	loaded, ok, err := store.GetRun(ctx, older.RunID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatalf("expected run %s", older.RunID)
	}
	want := older
	want.SchemaVersion = CurrentSchemaVersion
	want.CodecVersion = CurrentCodecVersion
	if !reflect.DeepEqual(loaded, want) {
		t.Fatalf("unexpected run loaded:\n got=%+v\nwant=%+v", loaded, want)
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != newer.RunID || runs[1].RunID != older.RunID {
		t.Fatalf("expected newest first, got %+v", runs)
	}

	updated := older
	updated.Emitted = 42
	if err := store.SaveRun(ctx, updated); err != nil {
		t.Fatalf("overwrite run: %v", err)
	}
	loaded, _, err = store.GetRun(ctx, older.RunID)
	if err != nil || loaded.Emitted != 42 {
		t.Fatalf("expected overwritten run, got %+v err=%v", loaded, err)
	}

	deleted, err := store.DeleteRun(ctx, older.RunID)
	if err != nil || !deleted {
		t.Fatalf("delete run: deleted=%v err=%v", deleted, err)
	}
	deleted, err = store.DeleteRun(ctx, older.RunID)
	if err != nil || deleted {
		t.Fatalf("second delete should report nothing deleted: deleted=%v err=%v", deleted, err)
	}
	if _, ok, err := store.GetRun(ctx, older.RunID); err != nil || ok {
		t.Fatalf("deleted run still present: ok=%v err=%v", ok, err)
	}

	if err := store.SaveRun(ctx, model.RunSummary{}); err == nil {
		t.Fatal("expected run id validation error")
	}
}
