// Package structural renders a cut list as the newer structural editor XML
// resources (format + asset) and a library/event/project/sequence
// hierarchy whose spine holds one asset-clip per cut, all times expressed
// as reduced rationals except the first clip's zero offset, which keeps
// the frame-duration denominator (e.g. "0/30s").
package structural

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/tycoonteritory/AutoCut/internal/export/rational"
	"github.com/tycoonteritory/AutoCut/internal/model"
)

type fcpxml struct {
	XMLName   xml.Name  `xml:"fcpxml"`
	Version   string    `xml:"version,attr"`
	Resources resources `xml:"resources"`
	Library   library   `xml:"library"`
}

type resources struct {
	Format format `xml:"format"`
	Asset  asset  `xml:"asset"`
}

type format struct {
	ID            string `xml:"id,attr"`
	FrameDuration string `xml:"frameDuration,attr"`
	Width         int    `xml:"width,attr"`
	Height        int    `xml:"height,attr"`
}

type asset struct {
	ID       string  `xml:"id,attr"`
	Name     string  `xml:"name,attr"`
	Src      string  `xml:"src,attr"`
	Duration string  `xml:"duration,attr"`
	HasVideo string  `xml:"hasVideo,attr"`
	HasAudio string  `xml:"hasAudio,attr"`
}

type library struct {
	Event event `xml:"event"`
}

type event struct {
	Name    string  `xml:"name,attr"`
	Project project `xml:"project"`
}

type project struct {
	Name     string   `xml:"name,attr"`
	Sequence sequence `xml:"sequence"`
}

type sequence struct {
	Duration string `xml:"duration,attr"`
	Spine    spine  `xml:"spine"`
}

type spine struct {
	AssetClips []assetClip `xml:"asset-clip"`
}

type assetClip struct {
	Ref      string `xml:"ref,attr"`
	Name     string `xml:"name,attr"`
	Offset   string `xml:"offset,attr"`
	Duration string `xml:"duration,attr"`
	Start    string `xml:"start,attr"`
}

// Options configures one export. Width/Height are placeholders
// ("resources ... width/height placeholders") since AutoCut never
// re-renders pixels.
type Options struct {
	SourcePath    string
	Fps           float64
	Width, Height int
}

// Render builds the structural editor XML document for cuts.
func Render(cuts []model.Cut, opts Options) ([]byte, error) {
	width, height := opts.Width, opts.Height
	if width == 0 {
		width = 1920
	}
	if height == 0 {
		height = 1080
	}

	frameDur := rational.FrameDuration(opts.Fps)
	stem := stemOf(opts.SourcePath)
	pathURL := toFileURL(opts.SourcePath)

	totalDurFrames := int64(0)
	for _, c := range cuts {
		totalDurFrames += c.OutFrame - c.InFrame
	}
	srcAssetDur := rational.FromFrames(totalDurFramesOfSource(cuts), frameDur)

	var clips []assetClip
	offset := rational.R{Num: 0, Den: frameDur.Den}
	for i, c := range cuts {
		dur := rational.FromFrames(c.OutFrame-c.InFrame, frameDur)
		start := rational.FromFrames(c.InFrame, frameDur)
		clips = append(clips, assetClip{
			Ref:      "asset-1",
			Name:     fmt.Sprintf("%s-%d", stem, i+1),
			Offset:   offset.String(),
			Duration: dur.String(),
			Start:    start.String(),
		})
		offset = rational.Add(offset, dur)
	}

	seqDur := rational.FromFrames(totalDurFrames, frameDur)

	doc := fcpxml{
		Version: "1.10",
		Resources: resources{
			Format: format{
				ID:            "format-1",
				FrameDuration: frameDur.String(),
				Width:         width,
				Height:        height,
			},
			Asset: asset{
				ID:       "asset-1",
				Name:     stem,
				Src:      pathURL,
				Duration: srcAssetDur.String(),
				HasVideo: "1",
				HasAudio: "1",
			},
		},
		Library: library{
			Event: event{
				Name: stem + " Event",
				Project: project{
					Name: stem,
					Sequence: sequence{
						Duration: seqDur.String(),
						Spine:    spine{AssetClips: clips},
					},
				},
			},
		},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

// totalDurFramesOfSource approximates the source asset's total duration as
// the highest out-frame referenced by any cut, since AutoCut does not probe
// the container again at export time (the probe result lives on the Job).
func totalDurFramesOfSource(cuts []model.Cut) int64 {
	var max int64
	for _, c := range cuts {
		if c.OutFrame > max {
			max = c.OutFrame
		}
	}
	return max
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
