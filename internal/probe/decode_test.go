package probe

import "testing"

func TestParseProgressLineOutTimeUs(t *testing.T) {
	p, ok := parseProgressLine("out_time_us=1500000")
	if !ok {
		t.Fatal("expected parseProgressLine to recognize out_time_us")
	}
	if p.OutTimeS != 1.5 {
		t.Errorf("OutTimeS = %v, want 1.5", p.OutTimeS)
	}
}

func TestParseProgressLineIgnoresOtherKeys(t *testing.T) {
	if _, ok := parseProgressLine("frame=120"); ok {
		t.Error("expected parseProgressLine to ignore non out_time_us keys")
	}
}

func TestParseProgressLineMalformed(t *testing.T) {
	if _, ok := parseProgressLine("nonsense"); ok {
		t.Error("expected parseProgressLine to reject a line without '='")
	}
	if _, ok := parseProgressLine("out_time_us=notanumber"); ok {
		t.Error("expected parseProgressLine to reject a non-numeric value")
	}
}

func TestBytesPerFrame(t *testing.T) {
	if got := BytesPerFrame(2); got != 4 {
		t.Errorf("BytesPerFrame(2) = %d, want 4", got)
	}
	if got := BytesPerFrame(1); got != 2 {
		t.Errorf("BytesPerFrame(1) = %d, want 2", got)
	}
}

func TestFrameAssemblerCompleteFrames(t *testing.T) {
	a := NewFrameAssembler(1)
	// Two little-endian int16 frames: 1 and -1.
	raw := []byte{0x01, 0x00, 0xff, 0xff}
	frames := a.Push(raw)
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d: %+v", len(frames), frames)
	}
	if frames[0][0] != 1 {
		t.Errorf("frames[0][0] = %d, want 1", frames[0][0])
	}
	if frames[1][0] != -1 {
		t.Errorf("frames[1][0] = %d, want -1", frames[1][0])
	}
}

func TestFrameAssemblerCarriesPartialFrameAcrossPushes(t *testing.T) {
	a := NewFrameAssembler(1)
	frames := a.Push([]byte{0x01}) // half a frame
	if len(frames) != 0 {
		t.Fatalf("expected no complete frames yet, got %+v", frames)
	}
	frames = a.Push([]byte{0x00}) // completes the frame
	if len(frames) != 1 || frames[0][0] != 1 {
		t.Fatalf("expected the carried byte to complete one frame of value 1, got %+v", frames)
	}
}

func TestFrameAssemblerMultiChannel(t *testing.T) {
	a := NewFrameAssembler(2)
	raw := []byte{0x02, 0x00, 0x03, 0x00} // one stereo frame: L=2, R=3
	frames := a.Push(raw)
	if len(frames) != 1 {
		t.Fatalf("expected 1 stereo frame, got %d", len(frames))
	}
	if frames[0][0] != 2 || frames[0][1] != 3 {
		t.Errorf("frame = %+v, want [2 3]", frames[0])
	}
}
