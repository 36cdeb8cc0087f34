package janitor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tycoonteritory/AutoCut/internal/db"
	"github.com/tycoonteritory/AutoCut/internal/model"
)

func newTestStore(t *testing.T) *db.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "autocut.db")
	store, err := db.NewSQLite(path)
	if err != nil {
		t.Fatalf("db.NewSQLite returned error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSweepDeletesExpiredTerminalJobs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	outDir := t.TempDir()
	jobDir := filepath.Join(outDir, "job-old")
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		t.Fatalf("failed to create job output dir: %v", err)
	}

	old := &model.Job{
		ID:        "job-old",
		CreatedAt: time.Now().Add(-48 * time.Hour),
		Status:    model.StatusCompleted,
		OutputDir: jobDir,
	}
	if err := store.CreateJob(ctx, old); err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}

	fresh := &model.Job{
		ID:        "job-fresh",
		CreatedAt: time.Now(),
		Status:    model.StatusCompleted,
	}
	if err := store.CreateJob(ctx, fresh); err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}

	j := New(store, 24*time.Hour, "")
	j.Sweep(ctx)

	if _, err := store.GetJob(ctx, "job-old"); err == nil {
		t.Error("expected expired job to be deleted")
	}
	if _, err := store.GetJob(ctx, "job-fresh"); err != nil {
		t.Errorf("expected fresh job to survive the sweep, got error: %v", err)
	}
	if _, err := os.Stat(jobDir); !os.IsNotExist(err) {
		t.Errorf("expected the expired job's output dir to be removed, stat err: %v", err)
	}
}

func TestSweepNeverRemovesInFlightJobs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inFlight := &model.Job{
		ID:        "job-running",
		CreatedAt: time.Now().Add(-48 * time.Hour),
		Status:    model.StatusAnalyzing,
	}
	if err := store.CreateJob(ctx, inFlight); err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}

	j := New(store, 24*time.Hour, "")
	j.Sweep(ctx)

	if _, err := store.GetJob(ctx, "job-running"); err != nil {
		t.Errorf("expected in-flight job to survive the sweep despite its age, got error: %v", err)
	}
}

func TestNewDefaultsScheduleToHourly(t *testing.T) {
	store := newTestStore(t)
	j := New(store, time.Hour, "")
	if j.schedule != "@hourly" {
		t.Errorf("schedule = %q, want @hourly", j.schedule)
	}
}
