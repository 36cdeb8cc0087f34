package model

import "time"

// Status is the job's position in the state machine. Terminal states
// are Completed, Failed, and Cancelled.
type Status string

const (
	StatusUploading Status = "uploading"
	StatusUploaded  Status = "uploaded"
	StatusAnalyzing Status = "analyzing"
	StatusExporting Status = "exporting"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether s is one of the DAG's terminal states.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// transitions enumerates the legal edges of the job state machine. An edge
// not listed here is a fatal programmer error.
var transitions = map[Status][]Status{
	StatusUploading: {StatusUploaded, StatusFailed, StatusCancelled},
	StatusUploaded:  {StatusAnalyzing, StatusFailed, StatusCancelled},
	StatusAnalyzing: {StatusExporting, StatusFailed, StatusCancelled},
	StatusExporting: {StatusCompleted, StatusFailed, StatusCancelled},
}

// CanTransition reports whether moving from 'from' to 'to' is a legal edge.
func CanTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ErrorReason is a coarse, user-facing failure classification.
type ErrorReason string

const (
	ReasonInputInvalid            ErrorReason = "input_invalid"
	ReasonProbeFailed             ErrorReason = "probe_failed"
	ReasonDecodeFailed            ErrorReason = "decode_failed"
	ReasonAnalysisInternal        ErrorReason = "analysis_internal"
	ReasonTranscriptionUnavailable ErrorReason = "transcription_unavailable"
	ReasonCancelled               ErrorReason = "cancelled"
	ReasonInterrupted             ErrorReason = "interrupted"
)

// Settings is the effective, validated configuration for one job.
type Settings struct {
	SilenceThresholdDB   int     `json:"silence_threshold_db"`
	MinSilenceMs         int     `json:"min_silence_ms"`
	PaddingMs            int     `json:"padding_ms"`
	Fps                  float64 `json:"fps"`
	DetectFillers        bool    `json:"detect_fillers"`
	FillerSensitivity    float64 `json:"filler_sensitivity"`
	TranscriptionModel   string  `json:"transcription_model_size"`
}

// DefaultSettings returns AutoCut's out-of-the-box defaults.
func DefaultSettings() Settings {
	return Settings{
		SilenceThresholdDB: -45,
		MinSilenceMs:       800,
		PaddingMs:          250,
		Fps:                30,
		DetectFillers:      false,
		FillerSensitivity:  0.7,
		TranscriptionModel: "base",
	}
}

// AllowedFps is the frame-grid whitelist accepted for job settings.
var AllowedFps = []float64{23.976, 24, 25, 29.97, 30, 50, 59.94, 60}

// AllowedModelSizes is the transcription_model_size enum.
var AllowedModelSizes = []string{"tiny", "base", "small", "medium", "large"}

// Job is the process-wide record for one upload through to its terminal
// state. It is owned exclusively by the orchestrator; all mutation
// flows through db.Store.
type Job struct {
	ID            string         `json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	SourceFilename string        `json:"source_filename"`
	SourcePath    string         `json:"-"`
	OutputDir     string         `json:"-"`
	Settings      Settings       `json:"settings"`
	Status        Status         `json:"status"`
	Progress      float64        `json:"progress"`
	Phase         string         `json:"phase,omitempty"`
	Message       string         `json:"message,omitempty"`
	Report        *AnalysisReport `json:"result,omitempty"`
	ErrorReason   ErrorReason    `json:"error_reason,omitempty"`
	ErrorDetail   string         `json:"error,omitempty"`
	ResultPaths   map[string]string `json:"result_paths,omitempty"`
}

// Clone returns a deep-enough copy for safe hand-off to a reader that must
// not observe subsequent mutation.
func (j *Job) Clone() *Job {
	cp := *j
	if j.Report != nil {
		r := *j.Report
		cp.Report = &r
	}
	if j.ResultPaths != nil {
		cp.ResultPaths = make(map[string]string, len(j.ResultPaths))
		for k, v := range j.ResultPaths {
			cp.ResultPaths[k] = v
		}
	}
	return &cp
}
