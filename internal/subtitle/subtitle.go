// Package subtitle renders transcript segments as SRT, WebVTT, and plain
// text, in the formats AutoCut exposes for download.
package subtitle

import (
	"fmt"
	"strings"

	"github.com/tycoonteritory/AutoCut/internal/model"
)

// SRT renders standard sequence-numbered SubRip blocks.
func SRT(segments []model.TranscriptSegment) string {
	var b strings.Builder
	for i, s := range segments {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, srtTimestamp(s.Start), srtTimestamp(s.End), s.Text)
	}
	return b.String()
}

// VTT renders standard WebVTT with cue blocks.
func VTT(segments []model.TranscriptSegment) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, s := range segments {
		fmt.Fprintf(&b, "%s --> %s\n%s\n\n", vttTimestamp(s.Start), vttTimestamp(s.End), s.Text)
	}
	return b.String()
}

// TXT renders one sentence per line with no timecodes.
func TXT(segments []model.TranscriptSegment) string {
	var b strings.Builder
	for _, s := range segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return b.String()
}

func srtTimestamp(s float64) string {
	return formatTimestamp(s, ",")
}

func vttTimestamp(s float64) string {
	return formatTimestamp(s, ".")
}

func formatTimestamp(seconds float64, msSep string) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMs := int64(seconds*1000 + 0.5)
	ms := totalMs % 1000
	totalS := totalMs / 1000
	sec := totalS % 60
	totalM := totalS / 60
	min := totalM % 60
	hr := totalM / 60
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", hr, min, sec, msSep, ms)
}
