// Package scoring turns yes/no answers into the shareable results URL and
// decodes results URLs back into scored views.
package scoring

import (
	"strings"
	"unicode"
)

const (
	// MinCategoryScore and MaxCategoryScore bound every decoded category score.
	MinCategoryScore = 0
	MaxCategoryScore = 2

	// ScoreParamPrefix prefixes every category key on the wire, e.g. ScoreSEO.
	ScoreParamPrefix = "Score"
	// NameParam carries the respondent name.
	NameParam = "Name"
)

// Clamp forces n into [MinCategoryScore, MaxCategoryScore].
func Clamp(n int) int {
	return min(MaxCategoryScore, max(MinCategoryScore, n))
}

// ScoreParam returns the query key for category c.
func ScoreParam(c string) string {
	return ScoreParamPrefix + c
}

// saturate keeps huge literals from overflowing; anything past it clamps the same way.
const saturate = 1 << 30

// parseLeadingInt parses the integer prefix of s the way JavaScript's parseInt
// does without a radix: leading whitespace, an optional sign, an optional 0x
// prefix, then digits. Trailing garbage is ignored. ok is false when no digit
// was consumed.
func parseLeadingInt(s string) (n int, ok bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	base := 10
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		// A hex prefix with no hex digit after it is not a number at all.
		if len(s) == 2 || !isHex(s[2]) {
			return 0, false
		}
		base = 16
		s = s[2:]
	}
digits:
	for i := 0; i < len(s); i++ {
		c := s[i]
		var d int
		switch {
		case '0' <= c && c <= '9':
			d = int(c - '0')
		case base == 16 && isHex(c):
			d = int(unhex(c))
		default:
			break digits
		}
		ok = true
		if n < saturate {
			n = n*base + d
		}
	}
	if n > saturate {
		n = saturate
	}
	if neg {
		n = -n
	}
	return n, ok
}
