// This file implements the NativeProvider backed by the whisper.cpp Go
// bindings (CGO). The whisper.cpp static library and headers must be
// available at link time, matching the native whisper provider used by the
// discord-bot reference this package is grounded on.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/tycoonteritory/AutoCut/internal/model"
)

var _ Provider = (*NativeProvider)(nil)

// NativeProvider loads a whisper.cpp model once and serves transcription
// requests by creating a fresh context per call (contexts are not
// goroutine-safe; the model is).
type NativeProvider struct {
	mu     sync.Mutex
	models map[string]whisperlib.Model
	modelsDir string
}

// NewNative creates a NativeProvider that lazily loads GGML models from
// modelsDir as requested model sizes are used.
func NewNative(modelsDir string) *NativeProvider {
	return &NativeProvider{
		models:    make(map[string]whisperlib.Model),
		modelsDir: modelsDir,
	}
}

func (p *NativeProvider) modelFor(size string) (whisperlib.Model, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if m, ok := p.models[size]; ok {
		return m, nil
	}
	path := modelPathFor(p.modelsDir, size)
	m, err := whisperlib.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: load model %q: %v", ErrUnavailable, path, err)
	}
	p.models[size] = m
	return m, nil
}

// Transcribe runs whisper.cpp inference over samples and translates its
// segment list into model.TranscriptSegment, including word-level timings
// when whisper.cpp's token-level timestamps are available.
func (p *NativeProvider) Transcribe(ctx context.Context, samples []float32, sampleRateHz int, opts Options) ([]model.TranscriptSegment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := p.modelFor(opts.ModelSize)
	if err != nil {
		return nil, err
	}

	wctx, err := m.NewContext()
	if err != nil {
		return nil, fmt.Errorf("%w: create context: %v", ErrUnavailable, err)
	}
	if opts.Language != "" {
		_ = wctx.SetLanguage(opts.Language)
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("%w: process audio: %v", ErrUnavailable, err)
	}

	var segments []model.TranscriptSegment
	for {
		seg, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read segment: %v", ErrUnavailable, err)
		}
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		segments = append(segments, model.TranscriptSegment{
			Start: seg.Start.Seconds(),
			End:   seg.End.Seconds(),
			Text:  text,
			Words: wordsFromTokens(seg),
		})
	}
	return segments, nil
}

// wordsFromTokens builds word-level timings from whisper.cpp's per-token
// timestamps when the bindings expose them. A segment lacking token
// detail yields no words (nil); the filler detector then falls back to
// the segment's own interval.
func wordsFromTokens(seg whisperlib.Segment) []model.Word {
	tokens := seg.Tokens
	if len(tokens) == 0 {
		return nil
	}
	words := make([]model.Word, 0, len(tokens))
	for _, t := range tokens {
		text := strings.TrimSpace(t.Text)
		if text == "" || strings.HasPrefix(text, "[_") {
			continue
		}
		words = append(words, model.Word{
			Text:       text,
			Start:      t.Start.Seconds(),
			End:        t.End.Seconds(),
			Confidence: float64(t.P),
		})
	}
	return words
}

// Close releases every loaded model.
func (p *NativeProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	for _, m := range p.models {
		if err := m.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
