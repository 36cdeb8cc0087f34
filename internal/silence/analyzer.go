// Package silence implements Component B: an energy-based silence analyzer
// over a streamed PCM signal.
package silence

import (
	"context"
	"math"
	"time"

	"github.com/tycoonteritory/AutoCut/internal/model"
)

// windowMs is the fixed analysis window.
const windowMs = 10

// fullScaleI16 is the max absolute amplitude of a 16-bit signed sample,
// used as the dB-full-scale reference.
const fullScaleI16 = 32768.0

// ProgressSink receives fractional progress updates in [0,1], rate-limited
// by the caller to roughly one update per 200ms of wall time.
type ProgressSink func(fraction float64)

// Options configures one analysis run.
type Options struct {
	SampleRateHz  int
	ThresholdDB   float64
	MinSilenceMs  int
	Progress      ProgressSink
	// TotalWindows, when known in advance (the usual case: probe already
	// reported duration_s), lets progress be reported as a true fraction
	// instead of a constant 1.0 on every update.
	TotalWindows int
	// Cancel, if non-nil, is polled once per window batch; when it returns
	// true the analyzer stops and returns context.Canceled (cancellation
	// checkpoint "before each PCM window batch").
	Cancel func() bool
}

type state int

const (
	stateSpeech state = iota
	stateSilence
)

// Analyze consumes PCM frames (mono or interleaved-channel int16 samples,
// already averaged to mono by the caller via model frame windows) from
// windows and returns the sorted, non-overlapping list of silence intervals.
//
// windows delivers fixed-size windows of sampleRate/100 frames (10ms,
// 1); the last window of the stream may be short. Analyze is deterministic:
// identical input windows in identical order always produce identical
// output, regardless of how fast the producer delivers them
// "Guarantees").
func Analyze(ctx context.Context, windows <-chan []int16, opts Options) ([]model.TimeInterval, error) {
	sr := opts.SampleRateHz
	if sr <= 0 {
		sr = 44100
	}
	windowSize := sr / 100
	if windowSize <= 0 {
		windowSize = 1
	}
	windowDur := float64(windowSize) / float64(sr)

	var (
		st            = stateSpeech
		silenceStart  int
		out           []model.TimeInterval
		idx           int
		lastProgressAt = time.Now()
	)

	minSilenceWindows := int(math.Ceil(float64(opts.MinSilenceMs) / windowMs))

	emit := func(startWin, endWin int) {
		if endWin-startWin < minSilenceWindows {
			return
		}
		out = append(out, model.TimeInterval{
			Start: float64(startWin) * windowDur,
			End:   float64(endWin) * windowDur,
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case win, ok := <-windows:
			if !ok {
				if st == stateSilence {
					emit(silenceStart, idx)
				}
				return out, nil
			}
			if opts.Cancel != nil && opts.Cancel() {
				return nil, context.Canceled
			}

			level := levelDB(win)
			silent := level <= opts.ThresholdDB

			switch {
			case st == stateSpeech && silent:
				st = stateSilence
				silenceStart = idx
			case st == stateSilence && !silent:
				emit(silenceStart, idx)
				st = stateSpeech
			}

			idx++
			if opts.Progress != nil && time.Since(lastProgressAt) >= 200*time.Millisecond {
				frac := 1.0
				if opts.TotalWindows > 0 {
					frac = float64(idx) / float64(opts.TotalWindows)
				}
				opts.Progress(clamp01(frac))
				lastProgressAt = time.Now()
			}
		}
	}
}

// levelDB computes 20*log10(rms/fullScale) for one window of int16 samples.
// A window whose RMS rounds to 0 is assigned negative infinity so it always
// compares below any finite threshold.
func levelDB(win []int16) float64 {
	if len(win) == 0 {
		return math.Inf(-1)
	}
	var sumSq float64
	for _, s := range win {
		v := float64(s)
		sumSq += v * v
	}
	rms := math.Sqrt(sumSq / float64(len(win)))
	if math.Round(rms) == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(rms/fullScaleI16)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
