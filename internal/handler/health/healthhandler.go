// Package health exposes a liveness probe reporting worker pool occupancy.
package health

import (
	"net/http"

	"github.com/tycoonteritory/AutoCut/internal/httputil"
	"github.com/tycoonteritory/AutoCut/internal/svc"
)

// Handler handles GET /healthz.
func Handler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		capacity, inFlight := svcCtx.Orchestrator.Occupancy()
		httputil.OkJSON(w, map[string]any{
			"status":           "ok",
			"worker_capacity":  capacity,
			"worker_in_flight": inFlight,
		})
	}
}
