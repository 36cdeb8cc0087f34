package probe

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tycoonteritory/AutoCut/internal/logging"
)

// ErrToolchainFailed wraps a non-zero decoder exit.
var ErrToolchainFailed = errors.New("probe: decoder toolchain failed")

// DecodeProgress is a parsed "key=value" line from the decoder's stderr.
type DecodeProgress struct {
	OutTimeS float64
}

// Decoder spawns an external converter that streams raw signed 16-bit
// little-endian PCM on stdout. The process is restartable: each call to
// Stream starts a fresh subprocess from the beginning of path.
type Decoder struct {
	// DecoderBinary is the external converter, e.g. "ffmpeg".
	DecoderBinary string
	// PipePath, if set, makes Stream write PCM to a named pipe instead of
	// reading the child's stdout directly; fsnotify watches for the first
	// write so callers can start consuming without racing the mkfifo.
	// Used only when the host sandbox does not allow inheriting stdout as
	// a pipe fd (rare; most runs leave this unset).
	PipePath string
}

// Handle lets the caller terminate an in-flight decode (cancellation:
// "sends termination to any child decode process").
type Handle struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	done   chan struct{}
}

// Terminate cancels the decode context, which makes exec.CommandContext
// kill the child (SIGKILL), and waits for the child to exit, never
// orphaning it.
func (h *Handle) Terminate() {
	h.cancel()
	<-h.done
}

// Stream starts the decoder and returns a channel of raw PCM byte chunks,
// a channel of progress reports, and a Handle for cancellation. The PCM
// channel is closed when the process exits; a short stream (fewer bytes
// than expected) is tolerated — whatever was read is still delivered.
func (d *Decoder) Stream(ctx context.Context, path string, targetSampleRate int, channels int) (<-chan []byte, <-chan DecodeProgress, *Handle, error) {
	ctx, cancel := context.WithCancel(ctx)

	args := []string{
		"-hide_banner",
		"-i", path,
		"-vn",
		"-ac", strconv.Itoa(channels),
		"-ar", strconv.Itoa(targetSampleRate),
		"-f", "s16le",
		"-progress", "pipe:2",
		"-nostats",
	}
	outTarget := "pipe:1"
	if d.PipePath != "" {
		outTarget = d.PipePath
	}
	args = append(args, outTarget)

	cmd := exec.CommandContext(ctx, d.binary(), args...)
	cmd.Stdin = nil

	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}

	var stdoutReader io.ReadCloser
	var watcher *fsnotify.Watcher
	if d.PipePath == "" {
		stdoutReader, err = cmd.StdoutPipe()
		if err != nil {
			cancel()
			return nil, nil, nil, err
		}
	} else {
		watcher, err = fsnotify.NewWatcher()
		if err != nil {
			cancel()
			return nil, nil, nil, err
		}
		if err := watcher.Add(d.PipePath); err != nil {
			watcher.Close()
			cancel()
			return nil, nil, nil, err
		}
	}

	if err := cmd.Start(); err != nil {
		cancel()
		if watcher != nil {
			watcher.Close()
		}
		return nil, nil, nil, err
	}

	pcmCh := make(chan []byte, 8)
	progressCh := make(chan DecodeProgress, 4)
	done := make(chan struct{})
	var stderrTail strings.Builder
	var mu sync.Mutex

	go func() {
		sc := bufio.NewScanner(stderr)
		for sc.Scan() {
			line := sc.Text()
			mu.Lock()
			stderrTail.WriteString(line + "\n")
			if stderrTail.Len() > 4096 {
				s := stderrTail.String()
				stderrTail.Reset()
				stderrTail.WriteString(s[len(s)-4096:])
			}
			mu.Unlock()
			if p, ok := parseProgressLine(line); ok {
				select {
				case progressCh <- p:
				default:
				}
			}
		}
	}()

	go func() {
		defer close(pcmCh)
		defer close(progressCh)
		defer close(done)
		defer cancel()

		var reader io.Reader = stdoutReader
		if watcher != nil {
			defer watcher.Close()
			f, err := waitForPipeReady(watcher, d.PipePath, ctx)
			if err != nil {
				logging.Errorf("probe: named pipe %s never became ready: %v", d.PipePath, err)
				cmd.Wait()
				return
			}
			defer f.Close()
			reader = f
		}

		buf := make([]byte, 64*1024)
		for {
			n, err := reader.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case pcmCh <- chunk:
				case <-ctx.Done():
					cmd.Wait()
					return
				}
			}
			if err != nil {
				break
			}
		}

		waitErr := cmd.Wait()
		if waitErr != nil && ctx.Err() == nil {
			mu.Lock()
			tail := stderrTail.String()
			mu.Unlock()
			logging.Errorf("%v: %s", fmt.Errorf("%w", ErrToolchainFailed), tail)
		}
	}()

	return pcmCh, progressCh, &Handle{cmd: cmd, cancel: cancel, done: done}, nil
}

func (d *Decoder) binary() string {
	if d.DecoderBinary != "" {
		return d.DecoderBinary
	}
	return "ffmpeg"
}

// parseProgressLine parses one "key=value" line from ffmpeg's -progress
// output, returning the out_time_us field translated to seconds.
func parseProgressLine(line string) (DecodeProgress, bool) {
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return DecodeProgress{}, false
	}
	if parts[0] != "out_time_us" {
		return DecodeProgress{}, false
	}
	us, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return DecodeProgress{}, false
	}
	return DecodeProgress{OutTimeS: float64(us) / 1e6}, true
}

// waitForPipeReady blocks until the named pipe has at least one write
// event (or ctx is done), then opens it for reading.
func waitForPipeReady(watcher *fsnotify.Watcher, path string, ctx context.Context) (*os.File, error) {
	select {
	case <-watcher.Events:
	case err := <-watcher.Errors:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(30 * time.Second):
		return nil, errors.New("probe: timed out waiting for decoder pipe")
	}
	return os.Open(path)
}

// BytesPerFrame returns the byte stride of one interleaved PCM frame for
// 16-bit signed samples at the given channel count.
func BytesPerFrame(channels int) int {
	return 2 * channels
}

// FrameAssembler drains raw byte chunks into interleaved int16 frames,
// buffering any trailing partial frame across chunk boundaries.
type FrameAssembler struct {
	channels int
	carry    []byte
}

// NewFrameAssembler returns an assembler for the given channel count.
func NewFrameAssembler(channels int) *FrameAssembler {
	return &FrameAssembler{channels: channels}
}

// Push appends raw bytes and returns any complete int16 frames.
func (a *FrameAssembler) Push(b []byte) [][]int16 {
	data := append(a.carry, b...)
	stride := BytesPerFrame(a.channels)
	n := len(data) / stride
	frames := make([][]int16, 0, n)
	for i := 0; i < n; i++ {
		off := i * stride
		frame := make([]int16, a.channels)
		for c := 0; c < a.channels; c++ {
			frame[c] = int16(binary.LittleEndian.Uint16(data[off+c*2 : off+c*2+2]))
		}
		frames = append(frames, frame)
	}
	rem := len(data) - n*stride
	a.carry = append([]byte(nil), data[len(data)-rem:]...)
	return frames
}
