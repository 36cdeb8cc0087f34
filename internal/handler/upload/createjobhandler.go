// Package upload handles job creation: admitting the uploaded source file
// and enqueueing the analysis pipeline.
package upload

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tycoonteritory/AutoCut/internal/httputil"
	"github.com/tycoonteritory/AutoCut/internal/logging"
	"github.com/tycoonteritory/AutoCut/internal/model"
	"github.com/tycoonteritory/AutoCut/internal/svc"
)

// maxFormMemory bounds how much of a multipart request chi/net/http will
// buffer in memory before spilling to temp files.
const maxFormMemory = 32 << 20 // 32MB

// CreateJobHandler handles POST /jobs: a multipart upload of the source
// video plus optional analysis settings overrides.
func CreateJobHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			httputil.ErrorWithReason(w, http.StatusBadRequest, "could not parse multipart form: "+err.Error(), string(model.ReasonInputInvalid))
			return
		}

		file, header, err := r.FormFile("source")
		if err != nil {
			httputil.ErrorWithReason(w, http.StatusBadRequest, "missing \"source\" file part", string(model.ReasonInputInvalid))
			return
		}
		defer file.Close()

		settings, err := parseSettings(r)
		if err != nil {
			httputil.ErrorWithReason(w, http.StatusBadRequest, err.Error(), string(model.ReasonInputInvalid))
			return
		}

		jobID := uuid.New().String()
		outputDir := filepath.Join(svcCtx.Config.OutputRoot, jobID)

		job := &model.Job{
			ID:             jobID,
			CreatedAt:      time.Now().UTC(),
			SourceFilename: header.Filename,
			OutputDir:      outputDir,
			Settings:       settings,
			Status:         model.StatusUploading,
		}

		sourcePath, err := svcCtx.Admitter.Accept(jobID, header, file)
		if err != nil {
			httputil.ErrorWithReason(w, http.StatusBadRequest, err.Error(), string(model.ReasonInputInvalid))
			return
		}
		job.SourcePath = sourcePath
		job.Status = model.StatusUploaded

		if err := svcCtx.Store.CreateJob(ctx, job); err != nil {
			logging.Errorf("create job %s: %v", jobID, err)
			httputil.InternalError(w, "could not persist job")
			return
		}

		svcCtx.Orchestrator.Submit(job)

		httputil.WriteJSON(w, http.StatusAccepted, job)
	}
}

// knownSettingsFields is the upload operation's recognized option block;
// any other multipart field name is rejected outright.
var knownSettingsFields = map[string]bool{
	"silence_threshold_db":     true,
	"min_silence_ms":           true,
	"padding_ms":               true,
	"fps":                      true,
	"detect_fillers":           true,
	"filler_sensitivity":       true,
	"transcription_model_size": true,
}

// parseSettings reads form field overrides onto model.DefaultSettings(),
// validating each against the allowed options and their ranges. A field
// left empty keeps its default. Any field name outside the recognized
// option block is rejected.
func parseSettings(r *http.Request) (model.Settings, error) {
	s := model.DefaultSettings()

	if r.MultipartForm != nil {
		for name := range r.MultipartForm.Value {
			if !knownSettingsFields[name] {
				return s, fmt.Errorf("unknown option %q", name)
			}
		}
	}

	if v := r.FormValue("silence_threshold_db"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < -60 || n > -20 {
			return s, fmt.Errorf("silence_threshold_db must be an integer between -60 and -20")
		}
		s.SilenceThresholdDB = n
	}
	if v := r.FormValue("min_silence_ms"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 100 || n > 5000 {
			return s, fmt.Errorf("min_silence_ms must be an integer between 100 and 5000")
		}
		s.MinSilenceMs = n
	}
	if v := r.FormValue("padding_ms"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 1000 {
			return s, fmt.Errorf("padding_ms must be an integer between 0 and 1000")
		}
		s.PaddingMs = n
	}
	if v := r.FormValue("fps"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || !fpsAllowed(f) {
			return s, fmt.Errorf("fps must be one of the supported frame rates")
		}
		s.Fps = f
	}
	if v := r.FormValue("detect_fillers"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return s, fmt.Errorf("detect_fillers must be a boolean")
		}
		s.DetectFillers = b
	}
	if v := r.FormValue("filler_sensitivity"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 1 {
			return s, fmt.Errorf("filler_sensitivity must be between 0 and 1")
		}
		s.FillerSensitivity = f
	}
	if v := r.FormValue("transcription_model_size"); v != "" {
		if !modelSizeAllowed(v) {
			return s, fmt.Errorf("transcription_model_size must be one of the supported sizes")
		}
		s.TranscriptionModel = v
	}
	return s, nil
}

func fpsAllowed(fps float64) bool {
	for _, allowed := range model.AllowedFps {
		if fps == allowed {
			return true
		}
	}
	return false
}

func modelSizeAllowed(size string) bool {
	for _, allowed := range model.AllowedModelSizes {
		if size == allowed {
			return true
		}
	}
	return false
}
