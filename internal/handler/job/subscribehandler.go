package job

import (
	"net/http"

	"github.com/tycoonteritory/AutoCut/internal/httputil"
	"github.com/tycoonteritory/AutoCut/internal/svc"
)

// SubscribeHandler handles GET /jobs/{id}/subscribe, upgrading to a
// WebSocket that streams realtime.Event progress pushes for the job.
func SubscribeHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := httputil.PathVar(r, "id")
		hub := svcCtx.Hubs.HubFor(id)
		hub.ServeWS(r.Context(), w, r)
	}
}
