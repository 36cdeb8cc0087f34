// Package rational provides exact fractional-seconds arithmetic for the
// structural editor XML exporter, avoiding floating-point seconds per
// the structural export never emits floating-point seconds.
package rational

import (
	"fmt"
	"math"
)

// R is a reduced fraction Num/Den representing a duration in seconds.
type R struct {
	Num int64
	Den int64
}

// ntscFpsSet is the NTSC fps family from the GLOSSARY.
var ntscFpsSet = map[float64]bool{23.976: true, 29.97: true, 59.94: true}

// IsNTSC reports whether fps belongs to the NTSC family.
func IsNTSC(fps float64) bool {
	return ntscFpsSet[fps]
}

// FrameDuration returns the per-frame rational duration for fps: "1001/Nx1000"
// for NTSC rates (e.g. 30000/1001 fps -> 1001/30000s per frame) and "1/N"
// otherwise, matching the structural export's frameDuration convention.
func FrameDuration(fps float64) R {
	if IsNTSC(fps) {
		n := int64(math.Round(fps)) // 23.976->24, 29.97->30, 59.94->60
		return Reduce(R{Num: 1001, Den: n * 1000})
	}
	n := int64(math.Round(fps))
	if n <= 0 {
		n = 1
	}
	return Reduce(R{Num: 1, Den: n})
}

// FromFrames converts a frame count to an exact rational number of seconds
// at the given frame duration: frames * frameDuration.
func FromFrames(frames int64, frameDur R) R {
	return Reduce(R{Num: frames * frameDur.Num, Den: frameDur.Den})
}

// Add returns a+b reduced to a common denominator and lowest terms.
func Add(a, b R) R {
	if a.Den == b.Den {
		return Reduce(R{Num: a.Num + b.Num, Den: a.Den})
	}
	return Reduce(R{Num: a.Num*b.Den + b.Num*a.Den, Den: a.Den * b.Den})
}

// Sub returns a-b.
func Sub(a, b R) R {
	if a.Den == b.Den {
		return Reduce(R{Num: a.Num - b.Num, Den: a.Den})
	}
	return Reduce(R{Num: a.Num*b.Den - b.Num*a.Den, Den: a.Den * b.Den})
}

// Reduce divides Num and Den by their GCD, always leaving Den positive.
func Reduce(r R) R {
	if r.Den < 0 {
		r.Num, r.Den = -r.Num, -r.Den
	}
	if r.Num == 0 {
		return R{Num: 0, Den: 1}
	}
	g := gcd(abs64(r.Num), r.Den)
	if g == 0 {
		return r
	}
	return R{Num: r.Num / g, Den: r.Den / g}
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// String renders "NUM/DENs", the fractional-seconds form the structural export requires.
func (r R) String() string {
	return fmt.Sprintf("%d/%ds", r.Num, r.Den)
}
