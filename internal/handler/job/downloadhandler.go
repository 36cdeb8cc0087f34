package job

import (
	"database/sql"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/tycoonteritory/AutoCut/internal/httputil"
	"github.com/tycoonteritory/AutoCut/internal/logging"
	"github.com/tycoonteritory/AutoCut/internal/svc"
)

// DownloadHandler handles GET /jobs/{id}/download/{artifact}, serving one
// of the files named in the job's ResultPaths (edl_legacy, edl_structural,
// srt, vtt, txt).
func DownloadHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := httputil.PathVar(r, "id")
		artifact := httputil.PathVar(r, "artifact")

		j, err := svcCtx.Store.GetJob(r.Context(), id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				httputil.NotFound(w, "job not found")
				return
			}
			logging.Errorf("get job %s for download: %v", id, err)
			httputil.InternalError(w, "could not load job")
			return
		}

		relPath, ok := j.ResultPaths[artifact]
		if !ok {
			httputil.NotFound(w, "artifact not available for this job")
			return
		}

		w.Header().Set("Content-Disposition", "attachment; filename=\""+filepath.Base(relPath)+"\"")
		http.ServeFile(w, r, filepath.Join(j.OutputDir, relPath))
	}
}
