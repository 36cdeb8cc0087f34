// Package planner implements Component D: merges silence and filler
// removal intervals, shrinks them by padding, and inverts the result into
// an ordered keep-cut list.
package planner

import (
	"math"
	"sort"

	"github.com/tycoonteritory/AutoCut/internal/model"
)

// Plan runs the full cut-planning algorithm: fuse -> shrink -> invert -> frame-round
// -> drop-below-one-frame -> empty-keep fallback.
func Plan(durationS float64, silences []model.TimeInterval, fillers []model.FillerHit, paddingMs int, fps float64) []model.Cut {
	removals := toIntervals(silences, fillers)
	removals = fuse(removals, paddingMs)
	removals = shrink(removals, paddingMs, durationS)

	keeps := invert(removals, durationS)
	keeps = fuseKeeps(keeps)

	cuts := toCuts(keeps, fps)
	if len(cuts) == 0 {
		cuts = fullSourceFallback(durationS, fps)
	}
	return cuts
}

// toIntervals merges silences and filler hits into one removal list sorted
// by start (step 1, first half).
func toIntervals(silences []model.TimeInterval, fillers []model.FillerHit) []model.TimeInterval {
	out := make([]model.TimeInterval, 0, len(silences)+len(fillers))
	out = append(out, silences...)
	for _, f := range fillers {
		out = append(out, f.Interval())
	}
	model.SortIntervals(out)
	return out
}

// fuse merges removal intervals that overlap or whose gap is <= paddingMs
// (step 1, second half / tie-break rule).
func fuse(in []model.TimeInterval, paddingMs int) []model.TimeInterval {
	if len(in) == 0 {
		return nil
	}
	gapS := float64(paddingMs) / 1000.0

	out := make([]model.TimeInterval, 0, len(in))
	cur := in[0]
	for _, iv := range in[1:] {
		if iv.Start <= cur.End+gapS {
			if iv.End > cur.End {
				cur.End = iv.End
			}
			continue
		}
		out = append(out, cur)
		cur = iv
	}
	out = append(out, cur)
	return out
}

// shrink shrinks each removal interval inward by paddingMs/2 on each side,
// clamps to [0, duration], and discards any interval whose shrunken form is
// non-positive (step 2).
func shrink(in []model.TimeInterval, paddingMs int, durationS float64) []model.TimeInterval {
	half := float64(paddingMs) / 2.0 / 1000.0
	out := make([]model.TimeInterval, 0, len(in))
	for _, iv := range in {
		start := iv.Start + half
		end := iv.End - half
		if start < 0 {
			start = 0
		}
		if end > durationS {
			end = durationS
		}
		if end <= start {
			continue
		}
		out = append(out, model.TimeInterval{Start: start, End: end})
	}
	return out
}

// invert computes the complement of the removal list against [0, duration)
// (step 3).
func invert(removals []model.TimeInterval, durationS float64) []model.TimeInterval {
	var out []model.TimeInterval
	cursor := 0.0
	for _, r := range removals {
		if r.Start > cursor {
			out = append(out, model.TimeInterval{Start: cursor, End: r.Start})
		}
		if r.End > cursor {
			cursor = r.End
		}
	}
	if cursor < durationS {
		out = append(out, model.TimeInterval{Start: cursor, End: durationS})
	}
	return out
}

// fuseKeeps merges keep-intervals that end up touching at exactly one frame
// boundary after padding shrink collapsed the gap between them (tie-break
// tie-break rule used in the fuse step.
func fuseKeeps(in []model.TimeInterval) []model.TimeInterval {
	if len(in) == 0 {
		return in
	}
	out := make([]model.TimeInterval, 0, len(in))
	cur := in[0]
	for _, iv := range in[1:] {
		if iv.Start <= cur.End {
			if iv.End > cur.End {
				cur.End = iv.End
			}
			continue
		}
		out = append(out, cur)
		cur = iv
	}
	out = append(out, cur)
	return out
}

// toCuts computes integer frame indices for each keep interval and drops
// any cut that rounds to less than one frame (step 4).
func toCuts(keeps []model.TimeInterval, fps float64) []model.Cut {
	out := make([]model.Cut, 0, len(keeps))
	for _, k := range keeps {
		inFrame := int64(math.Floor(k.Start*fps + 0.5))
		outFrame := int64(math.Floor(k.End*fps + 0.5))
		if outFrame <= inFrame {
			continue
		}
		out = append(out, model.Cut{
			TimeInterval: k,
			InFrame:      inFrame,
			OutFrame:     outFrame,
		})
	}
	return out
}

// fullSourceFallback returns a single cut spanning the entire source so the
// editor always receives a playable timeline (step 5).
func fullSourceFallback(durationS float64, fps float64) []model.Cut {
	outFrame := int64(math.Floor(durationS*fps + 0.5))
	if outFrame <= 0 {
		outFrame = 1
	}
	return []model.Cut{{
		TimeInterval: model.TimeInterval{Start: 0, End: durationS},
		InFrame:      0,
		OutFrame:     outFrame,
	}}
}

// Complement returns the removed intervals implied by a cut list over
// [0, duration) — the inverse operation of Plan's invert step, used by the
// idempotence property test.
func Complement(cuts []model.Cut, durationS float64) []model.TimeInterval {
	ivs := make([]model.TimeInterval, len(cuts))
	for i, c := range cuts {
		ivs[i] = c.TimeInterval
	}
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].Start < ivs[j].Start })
	return invert(ivs, durationS)
}
