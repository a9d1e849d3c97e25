// Package scoring implements the pairwise scorer (C3): a strict,
// ordered fold over short-circuit domain rules followed by a
// weighted-sum fallback, grounded on the ordered evidence-rule
// dispatch of the teacher's llr engine but operating on a single
// deterministic score per pair instead of an accumulated LLR.
package scoring

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/internal/normalize"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/internal/similarity"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
)

// Similarity threshold tiers named the way the domain rules below refer
// to them.
const (
	s90 = 0.90
	s93 = 0.93
	s95 = 0.95
)

// outcome is the result of a rule or the scorer itself.
type outcome struct {
	score   float64
	reasons []string
}

// rule is one ordered, independently testable short-circuit check.
// A rule that does not apply returns ok=false and must never mutate a
// or b.
type rule func(a, b models.Record, cfg models.Configuration) (out outcome, ok bool)

// Score computes {score, breakdown, reasons} for the unordered pair
// (a, b). The scorer is pure: it never mutates its inputs, and
// Score(a, b, cfg) == Score(b, a, cfg) up to operand order inside the
// symmetric primitives it composes.
func Score(a, b models.Record, cfg models.Configuration) (float64, models.ScoreBreakdown, []string) {
	if out, ok := exactIDRule(a, b, cfg); ok {
		return out.score, models.ScoreBreakdown{}, out.reasons
	}

	if cfg.Rules.EnablePolygamyRules {
		if out, ok := safeApply(polygamyRule, a, b, cfg); ok {
			return out.score, models.ScoreBreakdown{}, out.reasons
		}
	}

	for _, r := range additionalRules {
		if out, ok := safeApply(r, a, b, cfg); ok {
			score := out.score
			if score > 1 {
				score = 1
			}
			return score, models.ScoreBreakdown{}, out.reasons
		}
	}

	return weightedSum(a, b, cfg)
}

// safeApply swallows any panic raised by a rule (short/missing tokens,
// unexpected indexing) and treats it as the rule declining, per the
// engine's best-effort tolerance on input quality.
func safeApply(r rule, a, b models.Record, cfg models.Configuration) (out outcome, ok bool) {
	defer func() {
		if recover() != nil {
			out, ok = outcome{}, false
		}
	}()
	return r(a, b, cfg)
}

func exactIDRule(a, b models.Record, _ models.Configuration) (outcome, bool) {
	if a.NationalID == "" || b.NationalID == "" {
		return outcome{}, false
	}
	if a.NationalID != b.NationalID {
		return outcome{}, false
	}
	return outcome{score: 0.99, reasons: []string{models.ReasonExactID}}, true
}

func polygamyRule(a, b models.Record, _ models.Configuration) (outcome, bool) {
	husbandJW := similarity.JaroWinkler(a.HusbandNameNormalized, b.HusbandNameNormalized)
	if husbandJW < s95 {
		return outcome{}, false
	}

	tokensA := normalize.Tokens(a.WomanNameNormalized)
	tokensB := normalize.Tokens(b.WomanNameNormalized)
	if len(tokensA) < 3 || len(tokensB) < 3 {
		return outcome{}, false
	}

	secondJW := similarity.JaroWinkler(tokensA[1], tokensB[1])
	thirdJW := similarity.JaroWinkler(tokensA[2], tokensB[2])
	if secondJW >= s93 && thirdJW >= s90 {
		return outcome{score: 0.97, reasons: []string{models.ReasonPolygamyPattern}}, true
	}
	return outcome{}, false
}

// additionalRules is the ordered list of domain rules tried after the
// polygamy rule and before the weighted-sum fallback.
var additionalRules = []rule{
	tokenReorderRule,
	strongHouseholdChildrenRule,
	womanLineageMatchRule,
	mixedDepthLineageRule,
	fullLineageAndHusbandRule,
}

func additionalScore(cfg models.Configuration, delta float64) float64 {
	return cfg.Thresholds.MinPair + delta
}

func tokenReorderRule(a, b models.Record, cfg models.Configuration) (outcome, bool) {
	jaccard := similarity.TokenJaccard(normalize.Tokens(a.WomanNameNormalized), normalize.Tokens(b.WomanNameNormalized))
	if jaccard < 0.80 {
		return outcome{}, false
	}
	return outcome{score: additionalScore(cfg, 0.22), reasons: []string{models.ReasonTokenReorder}}, true
}

func strongHouseholdChildrenRule(a, b models.Record, cfg models.Configuration) (outcome, bool) {
	tokensA := normalize.Tokens(a.WomanNameNormalized)
	tokensB := normalize.Tokens(b.WomanNameNormalized)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return outcome{}, false
	}
	firstJW := similarity.JaroWinkler(tokensA[0], tokensB[0])
	if firstJW < s93 {
		return outcome{}, false
	}

	husbandJW := similarity.JaroWinkler(a.HusbandNameNormalized, b.HusbandNameNormalized)
	husbandOrderFree := similarity.NameOrderFreeScore(a.HusbandNameNormalized, b.HusbandNameNormalized)
	if husbandJW < s90 && husbandOrderFree < s90 {
		return outcome{}, false
	}

	childrenJaccard := similarity.TokenJaccard(a.ChildrenNormalized, b.ChildrenNormalized)
	if childrenJaccard < s90 {
		return outcome{}, false
	}

	return outcome{score: additionalScore(cfg, 0.25), reasons: []string{models.ReasonDuplicatedHusbandLineage}}, true
}

// matchedLineageParts compares the first 4 woman-name tokens of a and b
// position-wise and returns how many positions meet JW >= s93. Both
// names must carry at least 4 tokens, or the rule declines.
func matchedLineageParts(a, b models.Record) (matched int, ok bool) {
	tokensA := normalize.Tokens(a.WomanNameNormalized)
	tokensB := normalize.Tokens(b.WomanNameNormalized)
	if len(tokensA) < 4 || len(tokensB) < 4 {
		return 0, false
	}
	for i := 0; i < 4; i++ {
		if similarity.JaroWinkler(tokensA[i], tokensB[i]) >= s93 {
			matched++
		}
	}
	return matched, true
}

func husbandFirstJW(a, b models.Record) float64 {
	tokensA := normalize.Tokens(a.HusbandNameNormalized)
	tokensB := normalize.Tokens(b.HusbandNameNormalized)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}
	return similarity.JaroWinkler(tokensA[0], tokensB[0])
}

func womanLineageMatchRule(a, b models.Record, cfg models.Configuration) (outcome, bool) {
	matched, ok := matchedLineageParts(a, b)
	if !ok || matched < 3 {
		return outcome{}, false
	}
	if husbandFirstJW(a, b) >= 0.70 {
		return outcome{}, false
	}
	return outcome{score: additionalScore(cfg, 0.18), reasons: []string{models.ReasonWomanLineageMatch}}, true
}

// mixedDepthLineageRule catches a 4-token woman name against a 5-token
// one where the extra token is an inserted ancestor level: the short
// name's second token (father) aligns with the long name's third token
// (grandfather slot), not its own second token, while first and last
// tokens and the husband's first name still match strongly.
func mixedDepthLineageRule(a, b models.Record, cfg models.Configuration) (outcome, bool) {
	tokensA := normalize.Tokens(a.WomanNameNormalized)
	tokensB := normalize.Tokens(b.WomanNameNormalized)

	short, long := tokensA, tokensB
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) != 4 || len(long) != 5 {
		return outcome{}, false
	}

	if husbandFirstJW(a, b) < s93 {
		return outcome{}, false
	}
	if similarity.JaroWinkler(short[0], long[0]) < s93 {
		return outcome{}, false
	}
	if similarity.JaroWinkler(short[3], long[4]) < s93 {
		return outcome{}, false
	}

	shiftedMatch := similarity.JaroWinkler(short[1], long[2]) >= s90
	samePositionMatch := similarity.JaroWinkler(short[1], long[1]) >= s90
	if !shiftedMatch || samePositionMatch {
		return outcome{}, false
	}

	return outcome{score: additionalScore(cfg, 0.20), reasons: []string{models.ReasonDuplicatedHusbandLineage}}, true
}

func fullLineageAndHusbandRule(a, b models.Record, cfg models.Configuration) (outcome, bool) {
	matched, ok := matchedLineageParts(a, b)
	if !ok || matched < 4 {
		return outcome{}, false
	}

	husbandJW := similarity.JaroWinkler(a.HusbandNameNormalized, b.HusbandNameNormalized)
	husbandOrderFree := similarity.NameOrderFreeScore(a.HusbandNameNormalized, b.HusbandNameNormalized)
	if husbandJW < s95 && husbandOrderFree < s95 {
		return outcome{}, false
	}

	return outcome{score: additionalScore(cfg, 0.23), reasons: []string{models.ReasonDuplicatedHusbandLineage}}, true
}

// weightedSum is the step-4 fallback: compute the nine breakdown
// components, combine with configured weights, apply the synergy
// bonus, and clamp to [0,1].
func weightedSum(a, b models.Record, cfg models.Configuration) (float64, models.ScoreBreakdown, []string) {
	breakdown := computeBreakdown(a, b)
	w := cfg.FinalScoreWeights

	score := w.FirstNameScore*breakdown.FirstNameScore +
		w.FamilyNameScore*breakdown.FamilyNameScore +
		w.AdvancedNameScore*breakdown.AdvancedNameScore +
		w.TokenReorderScore*breakdown.TokenReorderScore +
		w.HusbandScore*breakdown.HusbandScore +
		w.IDScore*breakdown.IDScore +
		w.PhoneScore*breakdown.PhoneScore +
		w.ChildrenScore*breakdown.ChildrenScore +
		w.LocationScore*breakdown.LocationScore

	strongCount := 0
	for _, v := range []float64{breakdown.FirstNameScore, breakdown.FamilyNameScore, breakdown.TokenReorderScore} {
		if v >= 0.85 {
			strongCount++
		}
	}
	if strongCount >= 2 {
		score += 0.04
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	var reasons []string
	if breakdown.TokenReorderScore > 0.85 {
		reasons = append(reasons, models.ReasonTokenReorder)
	}

	return score, breakdown, reasons
}

func computeBreakdown(a, b models.Record) models.ScoreBreakdown {
	tokensA := normalize.Tokens(a.WomanNameNormalized)
	tokensB := normalize.Tokens(b.WomanNameNormalized)

	firstA, restA := splitFirst(tokensA)
	firstB, restB := splitFirst(tokensB)

	husbandJW := similarity.JaroWinkler(a.HusbandNameNormalized, b.HusbandNameNormalized)
	husbandOrderFree := similarity.NameOrderFreeScore(a.HusbandNameNormalized, b.HusbandNameNormalized)
	husbandScore := husbandJW
	if husbandOrderFree > husbandScore {
		husbandScore = husbandOrderFree
	}

	advanced := similarity.JaroWinkler(root3(tokensA), root3(tokensB))
	if advanced > 0.5 {
		advanced = 0.5
	}

	return models.ScoreBreakdown{
		FirstNameScore:    similarity.JaroWinkler(firstA, firstB),
		FamilyNameScore:   similarity.JaroWinkler(strings.Join(restA, " "), strings.Join(restB, " ")),
		AdvancedNameScore: advanced,
		TokenReorderScore: similarity.NameOrderFreeScore(a.WomanNameNormalized, b.WomanNameNormalized),
		HusbandScore:      husbandScore,
		IDScore:           idScore(a.NationalID, b.NationalID),
		PhoneScore:        phoneScore(a.Phone, b.Phone),
		ChildrenScore:     similarity.TokenJaccard(a.ChildrenNormalized, b.ChildrenNormalized),
		LocationScore:     locationScore(a, b),
	}
}

func splitFirst(tokens []string) (first string, rest []string) {
	if len(tokens) == 0 {
		return "", nil
	}
	return tokens[0], tokens[1:]
}

// root3 joins the first 3 runes of each token with a space, used by
// the advanced-name-score fuzzy-root comparison.
func root3(tokens []string) string {
	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		runes := []rune(tok)
		if len(runes) > 3 {
			runes = runes[:3]
		}
		parts = append(parts, string(runes))
	}
	return strings.Join(parts, " ")
}

func idScore(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	last5A := normalize.LastNDigits(a, 5)
	last5B := normalize.LastNDigits(b, 5)
	if last5A != "" && last5A == last5B {
		return 0.75
	}
	return 0
}

func phoneScore(a, b string) float64 {
	digitsA := normalize.DigitsOnly(a)
	digitsB := normalize.DigitsOnly(b)
	if digitsA == "" || digitsB == "" {
		return 0
	}
	if digitsA == digitsB {
		return 1
	}
	if last6A, last6B := normalize.LastNDigits(a, 6), normalize.LastNDigits(b, 6); last6A != "" && last6A == last6B {
		return 0.85
	}
	if last4A, last4B := normalize.LastNDigits(a, 4), normalize.LastNDigits(b, 4); last4A != "" && last4A == last4B {
		return 0.60
	}
	return 0
}

// locationScore compares village (precomputed normalized field) and
// subdistrict. Subdistrict is deliberately normalized here and only
// here, not attached to Record by the normalizer — see DESIGN.md Open
// Question 2.
func locationScore(a, b models.Record) float64 {
	score := 0.0
	if a.VillageNormalized != "" && a.VillageNormalized == b.VillageNormalized {
		score += 0.40
	}
	subdistrictA := normalize.Normalize(a.Subdistrict)
	subdistrictB := normalize.Normalize(b.Subdistrict)
	if subdistrictA != "" && subdistrictA == subdistrictB {
		score += 0.25
	}
	if score > 0.50 {
		score = 0.50
	}
	return score
}

// NewEdge builds a models.Edge with a < b, stamping a random UUID EdgeID and
// an independently verifiable AuditHash over its contents, the same
// way the teacher's evidence-edge constructor does.
func NewEdge(aIdx, bIdx int, score float64, breakdown models.ScoreBreakdown, reasons []string) models.Edge {
	if aIdx > bIdx {
		aIdx, bIdx = bIdx, aIdx
	}

	edgeID := uuid.New().String()
	hashPayload := fmt.Sprintf("%s|%d|%d|%f|%v", edgeID, aIdx, bIdx, score, reasons)
	sum := sha256.Sum256([]byte(hashPayload))

	bd := breakdown
	return models.Edge{
		A:         aIdx,
		B:         bIdx,
		Score:     score,
		Reasons:   reasons,
		Breakdown: &bd,
		EdgeID:    edgeID,
		AuditHash: hex.EncodeToString(sum[:]),
	}
}
