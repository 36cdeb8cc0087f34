package filler

import (
	"testing"

	"github.com/tycoonteritory/AutoCut/internal/model"
)

func TestDetectTier1AlwaysAdmitted(t *testing.T) {
	segs := []model.TranscriptSegment{
		{
			Start: 0, End: 2, Text: "euh bonjour",
			Words: []model.Word{
				{Text: "euh", Start: 0, End: 0.3, Confidence: 0.95},
				{Text: "bonjour", Start: 0.4, End: 1.0, Confidence: 0.99},
			},
		},
	}
	hits := Detect(segs, 0.0)
	if len(hits) != 1 || hits[0].Word != "euh" {
		t.Fatalf("expected tier1 'euh' to be admitted at sensitivity 0, got %+v", hits)
	}
}

func TestDetectTier2RequiresSensitivity(t *testing.T) {
	segs := []model.TranscriptSegment{
		{
			Start: 0, End: 2,
			Words: []model.Word{
				{Text: "ben", Start: 0, End: 0.3, Confidence: 0.95},
			},
		},
	}
	if hits := Detect(segs, 0.2); len(hits) != 0 {
		t.Errorf("expected tier2 'ben' to be gated out below 0.5, got %+v", hits)
	}
	if hits := Detect(segs, 0.5); len(hits) != 1 {
		t.Errorf("expected tier2 'ben' to be admitted at sensitivity 0.5, got %+v", hits)
	}
}

func TestDetectTier3RequiresHighSensitivity(t *testing.T) {
	segs := []model.TranscriptSegment{
		{
			Start: 0, End: 2,
			Words: []model.Word{
				{Text: "du", Start: 0, End: 0.2, Confidence: 0.9},
				{Text: "coup", Start: 0.2, End: 0.4, Confidence: 0.9},
			},
		},
	}
	if hits := Detect(segs, 0.6); len(hits) != 0 {
		t.Errorf("expected tier3 'du coup' to be gated out below 0.7, got %+v", hits)
	}
	if hits := Detect(segs, 0.7); len(hits) != 1 {
		t.Errorf("expected tier3 'du coup' to be admitted at sensitivity 0.7, got %+v", hits)
	}
}

func TestDetectDuplicateWordRepetition(t *testing.T) {
	segs := []model.TranscriptSegment{
		{
			Start: 0, End: 2,
			Words: []model.Word{
				{Text: "je", Start: 0, End: 0.1, Confidence: 0.9},
				{Text: "je", Start: 0.15, End: 0.25, Confidence: 0.9},
				{Text: "pars", Start: 0.3, End: 0.6, Confidence: 0.9},
			},
		},
	}
	hits := Detect(segs, 1.0)
	if len(hits) != 1 || hits[0].Word != "je je" {
		t.Fatalf("expected a single duplicate-repetition hit, got %+v", hits)
	}
}

func TestDetectDuplicateOutsideWindowIgnored(t *testing.T) {
	segs := []model.TranscriptSegment{
		{
			Start: 0, End: 2,
			Words: []model.Word{
				{Text: "je", Start: 0, End: 0.1, Confidence: 0.9},
				{Text: "je", Start: 2.0, End: 2.1, Confidence: 0.9}, // far beyond 250ms
			},
		},
	}
	if hits := Detect(segs, 1.0); len(hits) != 0 {
		t.Errorf("expected no hit for a repetition outside the duplicate window, got %+v", hits)
	}
}

func TestDetectFallsBackToSegmentIntervalWithoutWords(t *testing.T) {
	segs := []model.TranscriptSegment{
		{Start: 1.0, End: 3.0, Text: "euh je ne sais pas"},
	}
	hits := Detect(segs, 0.0)
	if len(hits) != 1 {
		t.Fatalf("expected one hit from text fallback, got %+v", hits)
	}
	if hits[0].Start != 1.0 || hits[0].End != 3.0 {
		t.Errorf("expected fallback hit to span the whole segment, got %+v", hits[0])
	}
}

func TestDetectConfidenceGate(t *testing.T) {
	segs := []model.TranscriptSegment{
		{
			Start: 0, End: 2,
			Words: []model.Word{
				{Text: "euh", Start: 0, End: 0.3, Confidence: 0.1},
			},
		},
	}
	if hits := Detect(segs, 1.0); len(hits) != 0 {
		t.Errorf("expected low-confidence word to be gated out at high sensitivity, got %+v", hits)
	}
}
