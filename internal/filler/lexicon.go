// Package filler implements Component C: filler-word detection over
// word-level transcript timings, gated by a sensitivity tier.
package filler

import (
	"strings"
	"unicode"
)

// tier is the disfluency-strength bucket a lexicon entry belongs to, per
// the GLOSSARY's "Filler lexicon".
type tier int

const (
	tierNone tier = iota
	tier1
	tier2
	tier3
)

// lexicon maps a normalized word/phrase to its tier.
var lexicon = map[string]tier{
	// Tier 1: always admitted.
	"euh": tier1, "heu": tier1, "euuh": tier1, "heuuh": tier1,
	"hum": tier1, "hmm": tier1, "mmmh": tier1,
	// Tier 2: sensitivity >= 0.5.
	"ben": tier2, "bah": tier2, "bof": tier2, "ah": tier2, "aah": tier2,
	"oh": tier2, "ooh": tier2,
	// Tier 3: sensitivity >= 0.7.
	"en fait": tier3, "du coup": tier3, "genre": tier3, "tu vois": tier3,
	"c'est-a-dire": tier3, "enfin bon": tier3, "bon ben": tier3,
}

// minTierFor maps a sensitivity scalar to the weakest tier it admits:
// tier1 always admitted, tier2 at 0.5+, tier3 at 0.7+.
func minTierFor(sensitivity float64) tier {
	switch {
	case sensitivity >= 0.7:
		return tier3
	case sensitivity >= 0.5:
		return tier2
	default:
		return tier1
	}
}

// admits reports whether a word/phrase of tier t is admitted when the
// gate's weakest-admitted tier is min. Lower tier numbers are stronger
// signals and always admitted once any gate is open; tier3 requires the
// 0.7+ band explicitly.
func admits(min, t tier) bool {
	if t == tierNone {
		return false
	}
	switch min {
	case tier3:
		return true
	case tier2:
		return t == tier1 || t == tier2
	default:
		return t == tier1
	}
}

// tierOf looks up the tier of a normalized word, also checking whether it
// participates in tier3's multi-word phrases is the caller's job (phrase
// matching happens on the full segment text, not single tokens).
func tierOf(word string) tier {
	if t, ok := lexicon[word]; ok {
		return t
	}
	return tierNone
}

// normalize lowercases, strips punctuation, and folds accents the way
// the filler-detection rules require before a lexicon lookup.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		r = foldAccent(r)
		if unicode.IsLetter(r) || unicode.IsSpace(r) || r == '\'' || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// foldAccent maps common French accented letters to their plain ASCII
// equivalent; anything else passes through unchanged.
func foldAccent(r rune) rune {
	switch r {
	case 'à', 'â', 'ä':
		return 'a'
	case 'é', 'è', 'ê', 'ë':
		return 'e'
	case 'î', 'ï':
		return 'i'
	case 'ô', 'ö':
		return 'o'
	case 'ù', 'û', 'ü':
		return 'u'
	case 'ç':
		return 'c'
	default:
		return r
	}
}
