// Package similarity provides the primitive string- and set-similarity
// functions (C2) that the pairwise scorer composes: Jaro-Winkler on
// strings, token Jaccard on sets, and an order-free composite name
// score built from both.
package similarity

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/internal/normalize"
)

// JaroWinkler returns the standard Jaro-Winkler similarity in [0,1]:
// matching distance floor(max(|a|,|b|)/2)-1, transpositions halved, and
// a prefix boost of 0.1*prefix*(1-jaro) on up to the first 4 equal
// characters. Empty input on either side returns 0.
//
// Delegates to antzucaro/matchr, which implements the same standard
// definition (prefix scale 0.1, max prefix 4).
func JaroWinkler(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return matchr.JaroWinkler(a, b, false)
}

// TokenJaccard returns |A∩B| / |A∪B| over token sets; 0 when both are
// empty.
func TokenJaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	setA := toSet(a)
	setB := toSet(b)

	intersection := 0
	union := make(map[string]struct{}, len(setA)+len(setB))
	for tok := range setA {
		union[tok] = struct{}{}
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	for tok := range setB {
		union[tok] = struct{}{}
	}

	if len(union) == 0 {
		return 0
	}
	return float64(intersection) / float64(len(union))
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

// NameOrderFreeScore scores two name strings ignoring token order:
// 0.7 * TokenJaccard(tokens) + 0.3 * JaroWinkler(sorted-and-joined tokens).
func NameOrderFreeScore(a, b string) float64 {
	tokensA := normalize.Tokens(a)
	tokensB := normalize.Tokens(b)

	jaccard := TokenJaccard(tokensA, tokensB)
	jw := JaroWinkler(sortedJoin(tokensA), sortedJoin(tokensB))

	return 0.7*jaccard + 0.3*jw
}

func sortedJoin(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	sorted := make([]string, len(tokens))
	copy(sorted, tokens)
	sort.Strings(sorted)
	return strings.Join(sorted, " ")
}
