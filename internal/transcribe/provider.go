// Package transcribe converts decoded PCM audio into TranscriptSegments
// with word-level timings, feeding both the filler detector and the
// SRT/VTT/TXT exports.
package transcribe

import (
	"context"
	"errors"

	"github.com/tycoonteritory/AutoCut/internal/model"
)

// ErrUnavailable is returned when the transcription model refuses or is
// missing.
var ErrUnavailable = errors.New("transcribe: model unavailable")

// Options configures one transcription run.
type Options struct {
	Language  string // BCP-47 code, empty lets the provider auto-detect
	ModelSize string // one of model.AllowedModelSizes
}

// Provider transcribes a full utterance of mono PCM audio (already
// resampled to the rate the provider expects) into transcript segments
// with word-level timings.
type Provider interface {
	Transcribe(ctx context.Context, samples []float32, sampleRateHz int, opts Options) ([]model.TranscriptSegment, error)
	Close() error
}

// modelPathFor maps a model-size enum value to the corresponding
// whisper.cpp GGML model file name.
func modelPathFor(baseDir, size string) string {
	name := size
	if name == "" {
		name = "base"
	}
	return baseDir + "/ggml-" + name + ".bin"
}
