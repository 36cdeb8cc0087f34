package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/tycoonteritory/AutoCut/internal/config"
	"github.com/tycoonteritory/AutoCut/internal/db"
	"github.com/tycoonteritory/AutoCut/internal/model"
	"github.com/tycoonteritory/AutoCut/internal/orchestrator"
	"github.com/tycoonteritory/AutoCut/internal/probe"
	"github.com/tycoonteritory/AutoCut/internal/realtime"
	"github.com/tycoonteritory/AutoCut/internal/svc"
	"github.com/tycoonteritory/AutoCut/internal/upload"
)

func newTestServiceContext(t *testing.T) *svc.ServiceContext {
	t.Helper()
	store, err := db.NewSQLite(filepath.Join(t.TempDir(), "autocut.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg, err := config.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	orch := orchestrator.New(orchestrator.Deps{Store: store}, 1)
	return svc.New(cfg, store, orch, realtime.NewRegistry(), upload.NewAdmitter(t.TempDir(), 1<<20))
}

func TestNewRouterServesHealthz(t *testing.T) {
	svcCtx := newTestServiceContext(t)
	r := newRouter(svcCtx)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", w.Code, w.Body.String())
	}
}

func TestNewRouterServesJobLookup(t *testing.T) {
	svcCtx := newTestServiceContext(t)
	job := &model.Job{ID: "job-1", Settings: model.DefaultSettings(), Status: model.StatusUploaded}
	if err := svcCtx.Store.CreateJob(context.Background(), job); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	r := newRouter(svcCtx)
	req := httptest.NewRequest(http.MethodGet, "/jobs/job-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", w.Code, w.Body.String())
	}
}

func TestSubmitPendingSubmitsUploadedJobsOnlyOnce(t *testing.T) {
	store, err := db.NewSQLite(filepath.Join(t.TempDir(), "autocut.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	orch := orchestrator.New(orchestrator.Deps{
		Store:  store,
		Hubs:   realtime.NewRegistry(),
		Prober: &probe.Prober{ProbeBinary: "/nonexistent/autocut-test-ffprobe-binary"},
	}, 1)
	cfg, err := config.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	svcCtx := svc.New(cfg, store, orch, realtime.NewRegistry(), upload.NewAdmitter(t.TempDir(), 1<<20))
	ctx := context.Background()

	uploaded := &model.Job{ID: "job-uploaded", Settings: model.DefaultSettings(), Status: model.StatusUploaded, SourcePath: "/nonexistent/source.mp4"}
	analyzing := &model.Job{ID: "job-analyzing", Settings: model.DefaultSettings(), Status: model.StatusAnalyzing}
	if err := svcCtx.Store.CreateJob(ctx, uploaded); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if err := svcCtx.Store.CreateJob(ctx, analyzing); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	if err := submitPending(ctx, svcCtx); err != nil {
		t.Fatalf("submitPending: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	var saved *model.Job
	for time.Now().Before(deadline) {
		saved, err = svcCtx.Store.GetJob(ctx, "job-uploaded")
		if err != nil {
			t.Fatalf("GetJob: %v", err)
		}
		if saved.Status == model.StatusFailed {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if saved.Status != model.StatusFailed {
		t.Fatalf("expected the uploaded job to reach status failed (proving submitPending submitted it), got %s", saved.Status)
	}
	if saved.ErrorReason != model.ReasonProbeFailed {
		t.Errorf("error reason = %s, want %s", saved.ErrorReason, model.ReasonProbeFailed)
	}

	stillAnalyzing, err := svcCtx.Store.GetJob(ctx, "job-analyzing")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if stillAnalyzing.Status != model.StatusAnalyzing {
		t.Errorf("did not expect submitPending to touch a job already past StatusUploaded, got %s", stillAnalyzing.Status)
	}
}
