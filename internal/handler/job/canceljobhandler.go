package job

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/tycoonteritory/AutoCut/internal/httputil"
	"github.com/tycoonteritory/AutoCut/internal/logging"
	"github.com/tycoonteritory/AutoCut/internal/model"
	"github.com/tycoonteritory/AutoCut/internal/svc"
)

// CancelJobHandler handles POST /jobs/{id}/cancel.
// Cancelling a job already in a terminal state is a no-op, not an error.
func CancelJobHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := httputil.PathVar(r, "id")
		ctx := r.Context()

		j, err := svcCtx.Store.GetJob(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				httputil.NotFound(w, "job not found")
				return
			}
			logging.Errorf("get job %s for cancel: %v", id, err)
			httputil.InternalError(w, "could not load job")
			return
		}

		if j.Status.Terminal() {
			httputil.OkJSON(w, j)
			return
		}

		if !svcCtx.Orchestrator.Cancel(id) {
			// Not submitted in this process (e.g. left over from before a
			// restart); mark it cancelled directly.
			j.Status = model.StatusCancelled
			j.ErrorReason = model.ReasonCancelled
			j.Message = "cancelled before analysis started"
			if err := svcCtx.Store.SaveJob(ctx, j); err != nil {
				logging.Errorf("cancel job %s: %v", id, err)
				httputil.InternalError(w, "could not cancel job")
				return
			}
		}

		j, err = svcCtx.Store.GetJob(ctx, id)
		if err != nil {
			httputil.InternalError(w, "could not reload job")
			return
		}
		httputil.OkJSON(w, j)
	}
}
