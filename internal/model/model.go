// Package model holds the data shapes shared across the analysis pipeline:
// intervals, cuts, filler hits, transcript segments, and the job record.
package model

import (
	"fmt"
	"sort"
)

// TimeInterval is a closed-open half-interval [Start, End) of source media
// time, in seconds. Start must be < End and both must be non-negative.
type TimeInterval struct {
	Start float64 `json:"start_s"`
	End   float64 `json:"end_s"`
}

// Duration returns End-Start.
func (t TimeInterval) Duration() float64 {
	return t.End - t.Start
}

// Valid reports whether the interval obeys the non-negative, non-empty
// invariant from the data model.
func (t TimeInterval) Valid() bool {
	return t.Start >= 0 && t.End > t.Start
}

// SortIntervals sorts intervals ascending by Start in place and returns them.
func SortIntervals(in []TimeInterval) []TimeInterval {
	sort.Slice(in, func(i, j int) bool { return in[i].Start < in[j].Start })
	return in
}

// AssertSortedNonOverlapping returns an error if in is not sorted ascending
// by Start with no overlaps and no zero/negative-duration members. Used by
// property tests and by stages that must not silently propagate a broken
// invariant; a violation here is a bug, reported as AnalysisInternal.
func AssertSortedNonOverlapping(in []TimeInterval) error {
	for i, iv := range in {
		if !iv.Valid() {
			return fmt.Errorf("model: interval %d has non-positive duration: %+v", i, iv)
		}
		if i > 0 && iv.Start < in[i-1].End {
			return fmt.Errorf("model: interval %d overlaps or precedes interval %d", i, i-1)
		}
	}
	return nil
}

// Cut is a keep-segment: a TimeInterval plus the integer frame indices
// derived from it at a given fps.
type Cut struct {
	TimeInterval
	InFrame  int64 `json:"in_frame"`
	OutFrame int64 `json:"out_frame"`
}

// FillerHit is a single detected disfluency occurrence.
type FillerHit struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start_s"`
	End        float64 `json:"end_s"`
	Confidence float64 `json:"confidence"`
}

// Interval converts a FillerHit to a plain TimeInterval.
func (f FillerHit) Interval() TimeInterval {
	return TimeInterval{Start: f.Start, End: f.End}
}

// Word is a single word-level timing inside a TranscriptSegment.
type Word struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start_s"`
	End        float64 `json:"end_s"`
	Confidence float64 `json:"confidence"`
}

// TranscriptSegment is one utterance produced by the transcription
// collaborator. Words is optional; when absent, consumers fall back to the
// segment-level interval.
type TranscriptSegment struct {
	Start float64 `json:"start_s"`
	End   float64 `json:"end_s"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

// Interval converts a TranscriptSegment to a plain TimeInterval.
func (s TranscriptSegment) Interval() TimeInterval {
	return TimeInterval{Start: s.Start, End: s.End}
}

// AnalysisReport is the bundle carried between pipeline stages and returned
// to the client once a job completes.
type AnalysisReport struct {
	DurationS      float64        `json:"duration_s"`
	SampleRateHz   int            `json:"sample_rate_hz"`
	Silences       []TimeInterval `json:"silences,omitempty"`
	Fillers        []FillerHit    `json:"fillers,omitempty"`
	Cuts           []Cut          `json:"cuts"`
	PaddingMs      int            `json:"padding_ms"`
	Fps            float64        `json:"fps"`
	TotalKeptS     float64        `json:"total_kept_s"`
	TotalRemovedS  float64        `json:"total_removed_s"`
}

// DropSilences releases the raw silence list once the cut planner has
// consumed it (consumed by move, not copied).
func (r *AnalysisReport) DropSilences() {
	r.Silences = nil
}
