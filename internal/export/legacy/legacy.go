// Package legacy renders a cut list as a legacy xmeml-style editor XML
// document: one sequence, one video track, one stereo audio
// track, with file elements shared by id across clipitems.
package legacy

import (
	"encoding/xml"
	"fmt"
	"math"
	"net/url"
	"path/filepath"

	"github.com/tycoonteritory/AutoCut/internal/model"
)

type xmeml struct {
	XMLName xml.Name `xml:"xmeml"`
	Version string   `xml:"version,attr"`
	Sequence sequence `xml:"sequence"`
}

type sequence struct {
	ID       string `xml:"id,attr"`
	Name     string `xml:"name"`
	Duration int64  `xml:"duration"`
	Rate     rate   `xml:"rate"`
	Media    media  `xml:"media"`
}

type rate struct {
	Timebase int  `xml:"timebase"`
	NTSC     bool `xml:"ntsc"`
}

type media struct {
	Video mediaTrackSet `xml:"video"`
	Audio mediaTrackSet `xml:"audio"`
}

type mediaTrackSet struct {
	Track track `xml:"track"`
}

type track struct {
	ClipItems []clipItem `xml:"clipitem"`
}

type clipItem struct {
	ID      string   `xml:"id,attr"`
	Name    string   `xml:"name"`
	Enabled bool     `xml:"enabled"`
	Start   int64    `xml:"start"`
	End     int64    `xml:"end"`
	In      int64    `xml:"in"`
	Out     int64    `xml:"out"`
	File    *fileRef `xml:"file"`
	SourceTrack sourceTrack `xml:"sourcetrack"`
}

type sourceTrack struct {
	MediaType string `xml:"mediatype"`
}

// fileRef is the clipitem's <file> element. When Ref is set, this is a
// by-id reference to an earlier full definition (the id-sharing
// requirement); otherwise Name/PathURL/Duration/Rate define the file for
// the first time.
type fileRef struct {
	ID       string `xml:"id,attr"`
	Ref      string `xml:"-"`
	Name     string `xml:"name,omitempty"`
	PathURL  string `xml:"pathurl,omitempty"`
	Duration int64  `xml:"duration,omitempty"`
	Rate     *rate  `xml:"rate,omitempty"`
}

// MarshalXML lets fileRef render as a bare <file id="..."/> reference when
// Ref is set, and as a full definition otherwise.
func (f fileRef) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if f.Ref != "" {
		start.Attr = []xml.Attr{{Name: xml.Name{Local: "id"}, Value: f.Ref}}
		return e.EncodeElement(struct{}{}, start)
	}
	type alias fileRef
	start.Attr = []xml.Attr{{Name: xml.Name{Local: "id"}, Value: f.ID}}
	return e.EncodeElement(alias(f), start)
}

// Options configures one export.
type Options struct {
	SourcePath string // absolute or relative path to the source media
	Fps        float64
}

// Render builds the legacy editor XML document for cuts, in source order.
func Render(cuts []model.Cut, opts Options) ([]byte, error) {
	stem := stemOf(opts.SourcePath)
	pathURL := toFileURL(opts.SourcePath)
	fileID := "file-1"

	var videoClips, audioClips []clipItem
	var cursor int64
	for i, c := range cuts {
		durFrames := c.OutFrame - c.InFrame
		start := cursor
		end := start + durFrames

		var file *fileRef
		if i == 0 {
			file = &fileRef{
				ID:       fileID,
				Name:     stem,
				PathURL:  pathURL,
				Duration: int64(math.Round(c.Duration() * opts.Fps)),
				Rate:     &rate{Timebase: int(math.Round(opts.Fps)), NTSC: isNTSC(opts.Fps)},
			}
		} else {
			file = &fileRef{Ref: fileID}
		}

		videoClips = append(videoClips, clipItem{
			ID:      fmt.Sprintf("clip-v%d-%d", 1, i),
			Name:    stem,
			Enabled: true,
			Start:   start,
			End:     end,
			In:      c.InFrame,
			Out:     c.OutFrame,
			File:    file,
		})

		audioFile := &fileRef{Ref: fileID}
		audioClips = append(audioClips, clipItem{
			ID:      fmt.Sprintf("clip-a%d-%d", 1, i),
			Name:    stem,
			Enabled: true,
			Start:   start,
			End:     end,
			In:      c.InFrame,
			Out:     c.OutFrame,
			File:    audioFile,
			SourceTrack: sourceTrack{MediaType: "audio"},
		})

		cursor = end
	}

	doc := xmeml{
		Version: "5",
		Sequence: sequence{
			ID:       "sequence-1",
			Name:     stem,
			Duration: cursor,
			Rate:     rate{Timebase: int(math.Round(opts.Fps)), NTSC: isNTSC(opts.Fps)},
			Media: media{
				Video: mediaTrackSet{Track: track{ClipItems: videoClips}},
				Audio: mediaTrackSet{Track: track{ClipItems: audioClips}},
			},
		},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

func stemOf(p string) string {
	base := filepath.Base(p)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}

func toFileURL(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = p
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String()
}

func isNTSC(fps float64) bool {
	return fps == 23.976 || fps == 29.97 || fps == 59.94
}
