package orchestrator

import (
	"context"
	"os"
	"path/filepath"

	"github.com/tycoonteritory/AutoCut/internal/probe"
)

// decodeFloatSamples re-streams the source through the decoder (decoding
// is restartable) and collects it into a single normalized
// float32 buffer, the input shape transcribe.Provider expects.
func decodeFloatSamples(ctx context.Context, path string, decoder *probe.Decoder, sampleRateHz int) ([]float32, error) {
	pcmCh, _, handle, err := decoder.Stream(ctx, path, sampleRateHz, 1)
	if err != nil {
		return nil, err
	}
	defer handle.Terminate()

	assembler := probe.NewFrameAssembler(1)
	var samples []float32
	for chunk := range pcmCh {
		for _, frame := range assembler.Push(chunk) {
			samples = append(samples, float32(frame[0])/32768.0)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return samples, nil
}

// writeFileAtomic writes data to <dir>/<name> via a temp file + rename so
// a reader racing an in-progress export never observes a partial file.
func writeFileAtomic(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	final := filepath.Join(dir, name)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, final)
}
