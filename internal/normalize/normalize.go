// Package normalize canonicalizes the raw string fields of a beneficiary
// record (C1): Arabic and mixed-script name text, phone/ID digit strings,
// and the children list, so that downstream similarity scoring and
// blocking see a single consistent representation regardless of how the
// source spreadsheet happened to encode diacritics, letter variants, or
// punctuation.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Arabic diacritic (tashkil) ranges stripped before folding.
var diacriticRanges = [][2]rune{
	{0x064B, 0x065F},
	{0x0610, 0x061A},
	{0x06D6, 0x06ED},
}

// Letter-variant folds applied after diacritic stripping.
var letterFolds = map[rune]rune{
	0x0622: 0x0627, // Alef with madda above -> Alef
	0x0623: 0x0627, // Alef with hamza above -> Alef
	0x0625: 0x0627, // Alef with hamza below -> Alef
	0x0624: 0x0648, // Waw with hamza above -> Waw
	0x0626: 0x064A, // Yeh with hamza above -> Yeh
	0x0629: 0x0647, // Teh marbuta -> Heh
}

func isDiacritic(r rune) bool {
	for _, rg := range diacriticRanges {
		if r >= rg[0] && r <= rg[1] {
			return true
		}
	}
	return false
}

func isKeptRune(r rune) bool {
	switch {
	case r >= 0x0600 && r <= 0x06FF:
		return true
	case unicode.IsLetter(r) && r < 0x80:
		return true
	case unicode.IsDigit(r) && r < 0x80:
		return true
	case unicode.IsSpace(r):
		return true
	default:
		return false
	}
}

// Normalize canonicalizes s: Unicode compatibility composition, Arabic
// diacritic stripping, Alef/waw/ya/teh-marbuta folding, replacement of
// any character outside {Arabic block, ASCII letters, digits,
// whitespace} with a single space, whitespace collapse, trim, and
// lowercasing. Normalize is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	composed := norm.NFKC.String(s)

	var b strings.Builder
	b.Grow(len(composed))
	for _, r := range composed {
		if isDiacritic(r) {
			continue
		}
		if folded, ok := letterFolds[r]; ok {
			r = folded
		}
		if isKeptRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	collapsed := strings.Join(strings.Fields(b.String()), " ")
	return strings.ToLower(collapsed)
}

// Tokens splits the normalized form of s on whitespace.
func Tokens(s string) []string {
	n := Normalize(s)
	if n == "" {
		return nil
	}
	return strings.Split(n, " ")
}

// DigitsOnly keeps only ASCII digits from s.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LastNDigits returns the last n digits of DigitsOnly(s), or "" if
// fewer than n digits are present.
func LastNDigits(s string, n int) string {
	d := DigitsOnly(s)
	if len(d) < n {
		return ""
	}
	return d[len(d)-n:]
}

// childrenSeparators splits a single free-text children field on any
// of these delimiters (semicolon, comma, pipe, Arabic comma U+060C).
const childrenSeparators = ";,|،"

// NormalizeChildrenField accepts either an ordered sequence already (an
// identity pass-through: entries are copied as given, not normalized;
// a decoded JSON array keeps its string entries) or a single string
// split on childrenSeparators.
func NormalizeChildrenField(v any) []string {
	switch val := v.(type) {
	case []string:
		out := make([]string, 0, len(val))
		for _, s := range val {
			out = append(out, s)
		}
		return out
	case []any:
		out := make([]string, 0, len(val))
		for _, e := range val {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		parts := strings.FieldsFunc(val, func(r rune) bool {
			return strings.ContainsRune(childrenSeparators, r)
		})
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return nil
	}
}

// NormalizedChildren normalizes each child-name string in children,
// preserving order, dropping entries that normalize to empty.
func NormalizedChildren(children []string) []string {
	out := make([]string, 0, len(children))
	for _, c := range children {
		n := Normalize(c)
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
