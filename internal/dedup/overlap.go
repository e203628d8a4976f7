package dedup

import (
	"strings"
	"unicode"

	"github.com/MikeSquared-Agency/scribe/internal/preference"
)

// overlapThreshold is the ratio above which two statements count as duplicates.
const overlapThreshold = 0.6

// fallbackPrefix is shared by every verbatim fallback statement and carries no preference.
const fallbackPrefix = "text should incorporate user preference:"

func overlapsAny(candidate preference.Statement, existing []preference.Statement) bool {
	for _, s := range existing {
		if OverlapRatio(candidate.Statement, s.Statement) > overlapThreshold {
			return true
		}
	}
	return false
}

// OverlapRatio returns 2*|common words| / (|words a| + |words b|) over the
// distinct normalized words of each text. Only common words longer than two
// characters count.
func OverlapRatio(a, b string) float64 {
	ta := tokens(a)
	tb := tokens(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 0
	}

	common := 0
	for w := range ta {
		if len([]rune(w)) > 2 && tb[w] {
			common++
		}
	}
	return 2 * float64(common) / float64(len(ta)+len(tb))
}

func tokens(s string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.Fields(Normalize(s)) {
		out[w] = true
	}
	return out
}

// Normalize lowercases s, drops punctuation and collapses whitespace. The
// prefix of verbatim fallback statements is removed first.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, fallbackPrefix)

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
