package silence

// Windower accumulates raw, possibly multi-channel int16 frames into
// fixed-size mono windows of windowFrames samples, averaging channels per
// frame the way the analyzer requires ("mono and stereo are treated
// uniformly by averaging channels per window").
type Windower struct {
	channels     int
	windowFrames int
	buf          []int16
	pending      int
}

// NewWindower creates a Windower for the given channel count and window
// size in frames (sampleRate/100 for the mandated 10ms window).
func NewWindower(channels, windowFrames int) *Windower {
	if channels < 1 {
		channels = 1
	}
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Windower{
		channels:     channels,
		windowFrames: windowFrames,
		buf:          make([]int16, windowFrames),
	}
}

// Push feeds one frame's worth of interleaved samples (len == channels) and
// returns a completed mono window plus true when one is ready. The returned
// slice is only valid until the next call to Push or Flush.
func (w *Windower) Push(frame []int16) ([]int16, bool) {
	var sum int32
	for _, s := range frame {
		sum += int32(s)
	}
	mono := int16(sum / int32(len(frame)))

	w.buf[w.pending] = mono
	w.pending++
	if w.pending == w.windowFrames {
		w.pending = 0
		return w.buf, true
	}
	return nil, false
}

// Flush returns the final, possibly short, partial window if any frames are
// pending (tolerates fewer bytes than expected at end of stream).
func (w *Windower) Flush() ([]int16, bool) {
	if w.pending == 0 {
		return nil, false
	}
	out := append([]int16(nil), w.buf[:w.pending]...)
	w.pending = 0
	return out, true
}
