// Package blocking partitions records into candidate buckets so the
// scorer only ever sees intra-bucket pairs (C4), bounding the
// otherwise-quadratic cost of pairwise comparison.
package blocking

import (
	"context"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
)

// ProgressFunc is invoked periodically while candidate pairs are
// emitted from the buckets; building the buckets reports no progress.
type ProgressFunc func(completed, total int)

// sentinelBucket catches records that produced no other bucket key.
const sentinelBucket = "blk:all"

// Pair is an ordered candidate pair, a < b.
type Pair struct {
	A int
	B int
}

func firstN(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}

func firstToken(normalized string) string {
	for i, r := range normalized {
		if r == ' ' {
			return normalized[:i]
		}
	}
	return normalized
}

func keys(r models.Record) []string {
	wFirst := firstN(firstToken(r.WomanNameNormalized), 3)
	hFirst := firstN(firstToken(r.HusbandNameNormalized), 3)
	idLast4 := lastNDigits(r.NationalID, 4)
	phoneLast4 := lastNDigits(r.Phone, 4)
	village := firstN(r.VillageNormalized, 6)

	var out []string
	if wFirst != "" && hFirst != "" && idLast4 != "" && phoneLast4 != "" {
		out = append(out, "full:"+wFirst+":"+hFirst+":"+idLast4+":"+phoneLast4)
	}
	if wFirst != "" && phoneLast4 != "" {
		out = append(out, "wp:"+wFirst+":"+phoneLast4)
	}
	if wFirst != "" && idLast4 != "" {
		out = append(out, "wi:"+wFirst+":"+idLast4)
	}
	if wFirst != "" && hFirst != "" {
		out = append(out, "wh:"+wFirst+":"+hFirst)
	}
	if hFirst != "" {
		out = append(out, "h:"+hFirst)
	}
	if wFirst != "" {
		out = append(out, "w:"+wFirst)
	}
	if village != "" {
		out = append(out, "v:"+village)
	}
	if len(out) == 0 {
		out = append(out, sentinelBucket)
	}
	return out
}

func lastNDigits(s string, n int) string {
	var digits []byte
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}
	if len(digits) < n {
		return ""
	}
	return string(digits[len(digits)-n:])
}

// BuildBuckets assigns every record index into every non-empty bucket
// it qualifies for.
func BuildBuckets(records []models.Record) map[string][]int {
	buckets := make(map[string][]int)
	for i, r := range records {
		for _, k := range keys(r) {
			buckets[k] = append(buckets[k], i)
		}
	}
	return buckets
}

// CandidatePairs returns the deduplicated union of intra-bucket pairs
// across buckets, chunking any bucket larger than chunkSize into
// contiguous chunks of that size (a chunk is only paired with itself).
// progress is invoked every 20 buckets processed.
func CandidatePairs(ctx context.Context, records []models.Record, chunkSize int, progress ProgressFunc) ([]Pair, error) {
	buckets := BuildBuckets(records)

	seen := make(map[Pair]struct{})
	var pairs []Pair

	total := len(buckets)
	processed := 0
	for _, members := range buckets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if chunkSize > 0 && len(members) > chunkSize {
			for start := 0; start < len(members); start += chunkSize {
				end := start + chunkSize
				if end > len(members) {
					end = len(members)
				}
				emitPairs(members[start:end], seen, &pairs)
			}
		} else {
			emitPairs(members, seen, &pairs)
		}

		processed++
		if progress != nil && processed%20 == 0 {
			progress(processed, total)
		}
	}
	if progress != nil {
		progress(total, total)
	}

	return pairs, nil
}

func emitPairs(members []int, seen map[Pair]struct{}, pairs *[]Pair) {
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			a, b := members[i], members[j]
			if a > b {
				a, b = b, a
			}
			p := Pair{A: a, B: b}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			*pairs = append(*pairs, p)
		}
	}
}
