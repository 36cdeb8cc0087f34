package filler

import (
	"sort"
	"strings"

	"github.com/tycoonteritory/AutoCut/internal/logging"
	"github.com/tycoonteritory/AutoCut/internal/model"
)

// maxPhraseWords is the longest lexicon phrase in word-tokens ("en fait",
// "du coup", "tu vois", "enfin bon", "bon ben" are all two words).
const maxPhraseWords = 2

// duplicateWindowMs is the immediate-repetition window for filler detection.
const duplicateWindowMs = 250

// Detect returns the sorted, de-duplicated filler hits across segments,
// gated by sensitivity.
func Detect(segments []model.TranscriptSegment, sensitivity float64) []model.FillerHit {
	minTier := minTierFor(sensitivity)
	confGate := sensitivity * 0.5

	var hits []model.FillerHit
	sawMissingWords := false

	for _, seg := range segments {
		if len(seg.Words) == 0 {
			sawMissingWords = true
			hits = append(hits, detectFromText(seg, minTier, confGate)...)
			continue
		}
		hits = append(hits, detectFromWords(seg.Words, minTier, confGate)...)
	}

	if sawMissingWords && len(hits) == 0 {
		logging.Warnf("filler: some segments lacked word-level timings; falling back to segment intervals")
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Start < hits[j].Start })
	return dedupe(hits)
}

// detectFromWords scans a segment's word-level timings for lexicon matches
// and duplicate-word repetitions.
func detectFromWords(words []model.Word, minTier tier, confGate float64) []model.FillerHit {
	norm := make([]string, len(words))
	for i, w := range words {
		norm[i] = normalize(w.Text)
	}

	var hits []model.FillerHit
	for i := 0; i < len(words); {
		matched := false
		for plen := maxPhraseWords; plen >= 1; plen-- {
			if i+plen > len(words) {
				continue
			}
			phrase := strings.Join(norm[i:i+plen], " ")
			t := tierOf(phrase)
			if t == tierNone || !admits(minTier, t) {
				continue
			}
			conf := minConfidence(words[i : i+plen])
			if conf < confGate {
				continue
			}
			hits = append(hits, model.FillerHit{
				Word:       phrase,
				Start:      words[i].Start,
				End:        words[i+plen-1].End,
				Confidence: conf,
			})
			i += plen
			matched = true
			break
		}
		if matched {
			continue
		}

		// Immediate duplicate-word repetition ("je je"), tier1 only, within
		// the 250ms window.
		if i+1 < len(words) && norm[i] != "" && norm[i] == norm[i+1] {
			gapMs := (words[i+1].Start - words[i].End) * 1000
			if gapMs <= duplicateWindowMs {
				conf := minConfidence(words[i : i+2])
				if conf >= confGate {
					hits = append(hits, model.FillerHit{
						Word:       norm[i] + " " + norm[i],
						Start:      words[i].Start,
						End:        words[i+1].End,
						Confidence: conf,
					})
				}
				i += 2
				continue
			}
		}
		i++
	}
	return hits
}

// detectFromText is the fallback path when a segment has no word-level
// timings: it still finds lexicon matches but can only attribute them to
// the whole segment interval rather than fabricate a timing.
func detectFromText(seg model.TranscriptSegment, minTier tier, confGate float64) []model.FillerHit {
	tokens := strings.Fields(normalize(seg.Text))
	var hits []model.FillerHit
	for i := 0; i < len(tokens); {
		matched := false
		for plen := maxPhraseWords; plen >= 1; plen-- {
			if i+plen > len(tokens) {
				continue
			}
			phrase := strings.Join(tokens[i:i+plen], " ")
			t := tierOf(phrase)
			if t == tierNone || !admits(minTier, t) {
				continue
			}
			const fallbackConfidence = 1.0
			if fallbackConfidence < confGate {
				continue
			}
			hits = append(hits, model.FillerHit{
				Word:       phrase,
				Start:      seg.Start,
				End:        seg.End,
				Confidence: fallbackConfidence,
			})
			i += plen
			matched = true
			break
		}
		if !matched {
			i++
		}
	}
	return hits
}

func minConfidence(words []model.Word) float64 {
	m := words[0].Confidence
	for _, w := range words[1:] {
		if w.Confidence < m {
			m = w.Confidence
		}
	}
	return m
}

// dedupe removes exact duplicate hits (same word, start, end) that can
// arise when overlapping segments both cover a boundary word.
func dedupe(hits []model.FillerHit) []model.FillerHit {
	if len(hits) < 2 {
		return hits
	}
	out := hits[:1]
	for _, h := range hits[1:] {
		last := out[len(out)-1]
		if h.Word == last.Word && h.Start == last.Start && h.End == last.End {
			continue
		}
		out = append(out, h)
	}
	return out
}
