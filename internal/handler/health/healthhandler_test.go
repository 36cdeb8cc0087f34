package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/tycoonteritory/AutoCut/internal/config"
	"github.com/tycoonteritory/AutoCut/internal/db"
	"github.com/tycoonteritory/AutoCut/internal/orchestrator"
	"github.com/tycoonteritory/AutoCut/internal/realtime"
	"github.com/tycoonteritory/AutoCut/internal/svc"
	"github.com/tycoonteritory/AutoCut/internal/upload"
)

func TestHandlerReportsWorkerOccupancy(t *testing.T) {
	store, err := db.NewSQLite(filepath.Join(t.TempDir(), "autocut.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	orch := orchestrator.New(orchestrator.Deps{Store: store}, 3)
	cfg, err := config.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	svcCtx := svc.New(cfg, store, orch, realtime.NewRegistry(), upload.NewAdmitter(t.TempDir(), 1<<20))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	Handler(svcCtx)(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got["status"] != "ok" {
		t.Errorf("status field = %v, want ok", got["status"])
	}
	if int(got["worker_capacity"].(float64)) != 3 {
		t.Errorf("worker_capacity = %v, want 3", got["worker_capacity"])
	}
	if int(got["worker_in_flight"].(float64)) != 0 {
		t.Errorf("worker_in_flight = %v, want 0", got["worker_in_flight"])
	}
}
