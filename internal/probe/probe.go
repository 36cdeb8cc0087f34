// Package probe implements Component A: invoking an external media
// toolchain to report container metadata and stream decoded PCM.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
)

// Info is the result of probing a container.
type Info struct {
	DurationS     float64
	ContainerFps  float64
	Channels      uint16
	SampleRateHz  uint32
}

// ErrUnreadableContainer is returned when the toolchain cannot parse the
// container's headers.
var ErrUnreadableContainer = errors.New("probe: unreadable container")

// probeJSON mirrors the subset of an ffprobe-style JSON report AutoCut
// needs: one stream with duration, frame rate, channel count and sample
// rate.
type probeJSON struct {
	Format struct {
		DurationS string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType    string `json:"codec_type"`
		RFrameRate   string `json:"r_frame_rate"`
		Channels     int    `json:"channels"`
		SampleRate   string `json:"sample_rate"`
	} `json:"streams"`
}

// Prober invokes the configured external toolchain binary.
type Prober struct {
	// ProbeBinary is the executable that reports container metadata as
	// JSON on stdout, e.g. "ffprobe".
	ProbeBinary string
}

// Probe reports duration/fps/channels/sample-rate for path. It never
// shells out through a shell: path is passed as a distinct argv element
// (duration, sample rate, channel count).
func (p *Prober) Probe(ctx context.Context, path string) (Info, error) {
	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	}
	cmd := exec.CommandContext(ctx, p.binary(), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Stdin = nil

	if err := cmd.Run(); err != nil {
		return Info{}, fmt.Errorf("%w: %s", ErrUnreadableContainer, tail(stderr.Bytes(), 4096))
	}

	var parsed probeJSON
	if err := json.Unmarshal(stdout.Bytes(), &parsed); err != nil {
		return Info{}, fmt.Errorf("%w: malformed probe output: %v", ErrUnreadableContainer, err)
	}

	info := Info{}
	if _, err := fmt.Sscanf(parsed.Format.DurationS, "%g", &info.DurationS); err != nil {
		return Info{}, fmt.Errorf("%w: missing duration", ErrUnreadableContainer)
	}

	for _, s := range parsed.Streams {
		switch s.CodecType {
		case "video":
			info.ContainerFps = parseFraction(s.RFrameRate)
		case "audio":
			info.Channels = uint16(s.Channels)
			var sr uint32
			fmt.Sscanf(s.SampleRate, "%d", &sr)
			info.SampleRateHz = sr
		}
	}
	if info.SampleRateHz == 0 {
		return Info{}, fmt.Errorf("%w: no audio stream", ErrUnreadableContainer)
	}
	return info, nil
}

func (p *Prober) binary() string {
	if p.ProbeBinary != "" {
		return p.ProbeBinary
	}
	return "ffprobe"
}

// parseFraction parses "num/den" frame-rate strings such as "30000/1001".
func parseFraction(s string) float64 {
	var num, den float64
	if n, _ := fmt.Sscanf(s, "%g/%g", &num, &den); n == 2 && den != 0 {
		return num / den
	}
	var v float64
	fmt.Sscanf(s, "%g", &v)
	return v
}

// tail returns the last n bytes of b, used to cap stderr embedded in error
// messages (last ~4 KB of tool stderr).
func tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[len(b)-n:])
}
