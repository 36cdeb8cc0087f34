package model

import "testing"

func TestTimeIntervalValid(t *testing.T) {
	cases := []struct {
		iv   TimeInterval
		want bool
	}{
		{TimeInterval{0, 1}, true},
		{TimeInterval{1, 1}, false},
		{TimeInterval{1, 0.5}, false},
		{TimeInterval{-1, 2}, false},
	}
	for _, c := range cases {
		if got := c.iv.Valid(); got != c.want {
			t.Errorf("%+v.Valid() = %v, want %v", c.iv, got, c.want)
		}
	}
}

func TestTimeIntervalDuration(t *testing.T) {
	iv := TimeInterval{Start: 1.5, End: 4.0}
	if got := iv.Duration(); got != 2.5 {
		t.Errorf("Duration() = %v, want 2.5", got)
	}
}

func TestSortIntervals(t *testing.T) {
	in := []TimeInterval{{Start: 3, End: 4}, {Start: 1, End: 2}, {Start: 2, End: 3}}
	out := SortIntervals(in)
	for i := 1; i < len(out); i++ {
		if out[i].Start < out[i-1].Start {
			t.Fatalf("SortIntervals did not sort ascending: %+v", out)
		}
	}
}

func TestAssertSortedNonOverlapping(t *testing.T) {
	ok := []TimeInterval{{0, 1}, {1, 2}, {3, 4}}
	if err := AssertSortedNonOverlapping(ok); err != nil {
		t.Errorf("expected no error for valid sorted intervals, got %v", err)
	}

	overlapping := []TimeInterval{{0, 2}, {1, 3}}
	if err := AssertSortedNonOverlapping(overlapping); err == nil {
		t.Error("expected an error for overlapping intervals")
	}

	invalid := []TimeInterval{{2, 2}}
	if err := AssertSortedNonOverlapping(invalid); err == nil {
		t.Error("expected an error for a zero-duration interval")
	}

	unsorted := []TimeInterval{{2, 3}, {0, 1}}
	if err := AssertSortedNonOverlapping(unsorted); err == nil {
		t.Error("expected an error for an out-of-order list")
	}
}

func TestFillerHitInterval(t *testing.T) {
	f := FillerHit{Word: "euh", Start: 1, End: 2}
	iv := f.Interval()
	if iv.Start != 1 || iv.End != 2 {
		t.Errorf("Interval() = %+v, want {1 2}", iv)
	}
}

func TestAnalysisReportDropSilences(t *testing.T) {
	r := &AnalysisReport{Silences: []TimeInterval{{0, 1}}}
	r.DropSilences()
	if r.Silences != nil {
		t.Errorf("DropSilences() left Silences non-nil: %+v", r.Silences)
	}
}
