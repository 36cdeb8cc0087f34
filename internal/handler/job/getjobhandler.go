// Package job handles job lookup, cancellation, result download, and
// progress subscription.
package job

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/tycoonteritory/AutoCut/internal/httputil"
	"github.com/tycoonteritory/AutoCut/internal/logging"
	"github.com/tycoonteritory/AutoCut/internal/svc"
)

// GetJobHandler handles GET /jobs/{id}.
func GetJobHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := httputil.PathVar(r, "id")

		j, err := svcCtx.Store.GetJob(r.Context(), id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				httputil.NotFound(w, "job not found")
				return
			}
			logging.Errorf("get job %s: %v", id, err)
			httputil.InternalError(w, "could not load job")
			return
		}
		httputil.OkJSON(w, j)
	}
}

const defaultPageSize = 20

// ListJobsHandler handles GET /jobs?page=&pageSize=, grounded on the
// teacher's list-handler pagination shape.
func ListJobsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := httputil.QueryInt(r, "page", 1)
		if page < 1 {
			page = 1
		}
		pageSize := httputil.QueryInt(r, "pageSize", defaultPageSize)
		if pageSize < 1 {
			pageSize = defaultPageSize
		}

		jobs, total, err := svcCtx.Store.ListJobsPage(r.Context(), (page-1)*pageSize, pageSize)
		if err != nil {
			logging.Errorf("list jobs: %v", err)
			httputil.InternalError(w, "could not list jobs")
			return
		}
		httputil.OkJSON(w, map[string]any{
			"jobs":     jobs,
			"page":     page,
			"pageSize": pageSize,
			"total":    total,
		})
	}
}
