package rational

import "testing"

func TestIsNTSC(t *testing.T) {
	for _, fps := range []float64{23.976, 29.97, 59.94} {
		if !IsNTSC(fps) {
			t.Errorf("IsNTSC(%v) = false, want true", fps)
		}
	}
	for _, fps := range []float64{24, 25, 30, 50, 60} {
		if IsNTSC(fps) {
			t.Errorf("IsNTSC(%v) = true, want false", fps)
		}
	}
}

func TestFrameDurationNTSC(t *testing.T) {
	cases := []struct {
		fps      float64
		num, den int64
	}{
		{23.976, 1001, 24000},
		{29.97, 1001, 30000},
		{59.94, 1001, 60000},
	}
	for _, c := range cases {
		got := FrameDuration(c.fps)
		if got.Num != c.num || got.Den != c.den {
			t.Errorf("FrameDuration(%v) = %d/%d, want %d/%d", c.fps, got.Num, got.Den, c.num, c.den)
		}
	}
}

func TestFrameDurationIntegerFps(t *testing.T) {
	cases := []struct {
		fps      float64
		num, den int64
	}{
		{25, 1, 25},
		{30, 1, 30},
		{24, 1, 24},
	}
	for _, c := range cases {
		got := FrameDuration(c.fps)
		if got.Num != c.num || got.Den != c.den {
			t.Errorf("FrameDuration(%v) = %d/%d, want %d/%d", c.fps, got.Num, got.Den, c.num, c.den)
		}
	}
}

func TestFromFrames(t *testing.T) {
	dur := FrameDuration(25) // 1/25s
	got := FromFrames(75, dur)
	if got.Num != 3 || got.Den != 1 {
		t.Errorf("FromFrames(75, 1/25) = %d/%d, want 3/1", got.Num, got.Den)
	}
}

func TestAddSameDenominator(t *testing.T) {
	got := Add(R{Num: 1, Den: 25}, R{Num: 2, Den: 25})
	if got.Num != 3 || got.Den != 25 {
		t.Errorf("Add = %d/%d, want 3/25", got.Num, got.Den)
	}
}

func TestAddDifferentDenominators(t *testing.T) {
	got := Add(R{Num: 1, Den: 2}, R{Num: 1, Den: 3})
	if got.Num != 5 || got.Den != 6 {
		t.Errorf("Add(1/2, 1/3) = %d/%d, want 5/6", got.Num, got.Den)
	}
}

func TestSub(t *testing.T) {
	got := Sub(R{Num: 3, Den: 4}, R{Num: 1, Den: 4})
	if got.Num != 1 || got.Den != 2 {
		t.Errorf("Sub(3/4, 1/4) = %d/%d, want 1/2", got.Num, got.Den)
	}
}

func TestReduceZero(t *testing.T) {
	got := Reduce(R{Num: 0, Den: 5})
	if got.Num != 0 || got.Den != 1 {
		t.Errorf("Reduce(0/5) = %d/%d, want 0/1", got.Num, got.Den)
	}
}

func TestReduceNegativeDenominator(t *testing.T) {
	got := Reduce(R{Num: 1, Den: -2})
	if got.Num != -1 || got.Den != 2 {
		t.Errorf("Reduce(1/-2) = %d/%d, want -1/2", got.Num, got.Den)
	}
}

func TestReduceDivByGCD(t *testing.T) {
	got := Reduce(R{Num: 10, Den: 20})
	if got.Num != 1 || got.Den != 2 {
		t.Errorf("Reduce(10/20) = %d/%d, want 1/2", got.Num, got.Den)
	}
}

func TestString(t *testing.T) {
	r := R{Num: 1001, Den: 30000}
	if got := r.String(); got != "1001/30000s" {
		t.Errorf("String() = %q, want %q", got, "1001/30000s")
	}
}
