// Package shadow compares the clustering a candidate configuration
// would produce against the configuration currently in production,
// over the same input records, before the candidate is promoted —
// adapted from the teacher's shadow-vs-production heuristics runner,
// swapped from per-transaction heuristic-flag diffing to whole-run
// cluster-partition comparison.
package shadow

import (
	"context"
	"log"
	"time"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/internal/engine"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/internal/metrics"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/internal/store"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
)

// ComparisonResult captures how much a candidate configuration's
// clustering diverges from production's, over one shared input.
type ComparisonResult struct {
	ProductionClusterCount int       `json:"productionClusterCount"`
	CandidateClusterCount  int       `json:"candidateClusterCount"`
	AdjustedRandIndex      float64   `json:"adjustedRandIndex"`
	VariationOfInformation float64   `json:"variationOfInformation"`
	CreatedAt              time.Time `json:"createdAt"`
}

// Runner drives production-vs-candidate comparisons and optionally
// persists them.
type Runner struct {
	cacheStore *store.Store
}

// NewRunner builds a Runner; cacheStore may be nil to skip persistence.
func NewRunner(cacheStore *store.Store) *Runner {
	return &Runner{cacheStore: cacheStore}
}

// Compare runs the clustering pipeline once under production and once
// under candidate, then scores how similar the two partitions are.
// Neither run's progress messages are surfaced: both runs use a no-op
// emitter. If the Runner was built with a cache store, the
// comparison is also persisted under cacheID for trend inspection.
func (r *Runner) Compare(ctx context.Context, cacheID string, records []models.Record, production, candidate models.Configuration) (ComparisonResult, error) {
	noop := func(engine.Message) {}

	prodResult, err := engine.RunClustering(ctx, records, production, noop)
	if err != nil {
		return ComparisonResult{}, err
	}
	candidateResult, err := engine.RunClustering(ctx, records, candidate, noop)
	if err != nil {
		return ComparisonResult{}, err
	}

	n := len(records)
	prodLabels := metrics.ClusterLabels(n, clusterMemberLists(prodResult.Clusters))
	candidateLabels := metrics.ClusterLabels(n, clusterMemberLists(candidateResult.Clusters))

	result := ComparisonResult{
		ProductionClusterCount: len(prodResult.Clusters),
		CandidateClusterCount:  len(candidateResult.Clusters),
		AdjustedRandIndex:      metrics.AdjustedRandIndex(candidateLabels, prodLabels),
		VariationOfInformation: metrics.VariationOfInformation(candidateLabels, prodLabels),
		CreatedAt:              time.Now(),
	}

	if result.AdjustedRandIndex < 0.85 {
		log.Printf("[shadow] candidate configuration diverges from production: ari=%.3f vi=%.3f prod_clusters=%d candidate_clusters=%d",
			result.AdjustedRandIndex, result.VariationOfInformation, result.ProductionClusterCount, result.CandidateClusterCount)
	}

	if r.cacheStore != nil {
		if err := r.cacheStore.SaveShadowComparison(ctx, cacheID, result); err != nil {
			log.Printf("[shadow] failed to persist comparison for %q: %v", cacheID, err)
		}
	}

	return result, nil
}

func clusterMemberLists(clusters []models.Cluster) [][]int {
	out := make([][]int, len(clusters))
	for i, c := range clusters {
		out[i] = c.Records
	}
	return out
}
