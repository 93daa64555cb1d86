// Package str provides string manipulations required by other packages
// of gnbarcode. Identifier parsing lives here because the join keys and
// pipeline parameters are all derived from raw sequence identifiers.
package str

import (
	"strings"
	"unicode"
)

// controlSuffix marks negative-control specimens.
const controlSuffix = "-NC"

// SpecimenID extracts the specimen identifier from a raw sequence
// identifier. The specimen identifier is the prefix of the sequence
// identifier up to, but not including, the first underscore. An
// identifier without underscores is its own specimen identifier.
func SpecimenID(seqID string) string {
	if i := strings.IndexByte(seqID, '_'); i >= 0 {
		return seqID[:i]
	}
	return seqID
}

// IsControl reports whether a specimen identifier belongs to a
// negative-control sample.
func IsControl(specimenID string) bool {
	return strings.HasSuffix(specimenID, controlSuffix)
}

// BracketFloat parses a bracket-delimited numeric field like "[1.3]".
// It returns false for empty fields, missing brackets, and content
// that is not a single number (for example "[NA]").
func BracketFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 3 || s[0] != '[' || s[len(s)-1] != ']' {
		return 0, false
	}
	return parseNum(s[1 : len(s)-1])
}

// SeqIDParam extracts a numeric parameter embedded in a sequence
// identifier after a literal marker, for example marker "_r_" in
// "BGE00123-NC_r_1.3_s_100". The parameter is the longest run of
// digits with at most one decimal point that follows the marker.
// A missing marker, or a marker not followed by a digit, returns false.
func SeqIDParam(seqID, marker string) (float64, bool) {
	i := strings.Index(seqID, marker)
	if i < 0 {
		return 0, false
	}
	rest := seqID[i+len(marker):]
	end := 0
	dot := false
	for end < len(rest) {
		c := rest[end]
		if c == '.' && !dot && end+1 < len(rest) && isDigit(rest[end+1]) {
			dot = true
			end++
			continue
		}
		if !isDigit(c) {
			break
		}
		end++
	}
	if end == 0 {
		return 0, false
	}
	return parseNum(rest[:end])
}

// parseNum accepts digits with at most one decimal point. It avoids
// strconv.ParseFloat leniency ("1e5", "Inf", leading signs) because
// none of those forms occur in well-formed source data.
func parseNum(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	var res float64
	var frac float64
	dot := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '.' {
			if dot || i == 0 || i == len(s)-1 {
				return 0, false
			}
			dot = true
			frac = 1
			continue
		}
		if !isDigit(c) {
			return 0, false
		}
		if dot {
			frac /= 10
			res += float64(c-'0') * frac
		} else {
			res = res*10 + float64(c-'0')
		}
	}
	return res, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ShortLabel truncates a table label to 45 characters if necessary.
func ShortLabel(label string) string {
	if len(label) < 45 {
		return label
	}
	return label[0:41] + "..."
}

// QuoteString adds single quotes around a string and escapes
// any single quotes.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// CapitalizeRank normalizes a taxonomic rank value: first letter upper
// case, the rest untouched. Empty strings stay empty.
func CapitalizeRank(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
