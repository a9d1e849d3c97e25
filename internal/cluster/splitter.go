package cluster

import (
	"sort"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/internal/scoring"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
)

// localEdge is an intra-subset pair score keyed by original record
// index, computed fresh by the splitter rather than reused from the
// blocking-produced edge list.
type localEdge struct {
	a, b    int
	score   float64
	reasons []string
}

// Split re-partitions subset into sub-clusters of at most 4 members
// using only the edges local to subset, recomputed from scratch.
//
// When |subset| <= 4 it returns exactly one cluster covering every
// member. Otherwise it scores every intra-pair, keeps those scoring at
// least cfg.Thresholds.MinInternal, and greedily unions them subject to
// the 4-member cap; any surviving group that still exceeds 4 is
// recursively split with minInternal raised to max(minInternal, 0.45) —
// preserve this literal clamp, it is intentional.
func Split(subset []int, records []models.Record, cfg models.Configuration) []models.Cluster {
	if len(subset) < 2 {
		return nil
	}

	localEdges := scoreIntraPairs(subset, records, cfg, cfg.Thresholds.MinInternal)

	if len(subset) <= 4 {
		return []models.Cluster{buildCluster(subset, localEdges)}
	}

	sortLocalEdges(localEdges)

	uf := newUnionFind(len(subset))
	posOf := make(map[int]int, len(subset))
	for pos, idx := range subset {
		posOf[idx] = pos
	}

	for _, e := range localEdges {
		posA, posB := posOf[e.a], posOf[e.b]
		rootA, rootB := uf.Find(posA), uf.Find(posB)
		if rootA == rootB {
			continue
		}
		if uf.Size(rootA)+uf.Size(rootB) <= 4 {
			uf.Union(rootA, rootB)
		}
	}

	groups := make(map[int][]int)
	for pos := range subset {
		root := uf.Find(pos)
		groups[root] = append(groups[root], subset[pos])
	}

	var clusters []models.Cluster
	raisedCfg := cfg
	raisedCfg.Thresholds.MinInternal = maxFloat(cfg.Thresholds.MinInternal, 0.45)

	for _, members := range groups {
		switch {
		case len(members) < 2:
			continue
		case len(members) > 4:
			// Unreachable under the cap-merge policy above; guarded per spec.
			clusters = append(clusters, Split(members, records, raisedCfg)...)
		default:
			sort.Ints(members)
			clusters = append(clusters, buildCluster(members, edgesWithin(members, localEdges)))
		}
	}

	sortClustersDeterministically(clusters)
	return clusters
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func scoreIntraPairs(subset []int, records []models.Record, cfg models.Configuration, minInternal float64) []localEdge {
	var edges []localEdge
	for i := 0; i < len(subset); i++ {
		for j := i + 1; j < len(subset); j++ {
			a, b := subset[i], subset[j]
			if a > b {
				a, b = b, a
			}
			score, _, reasons := scoring.Score(records[a], records[b], cfg)
			if score >= minInternal {
				edges = append(edges, localEdge{a: a, b: b, score: score, reasons: reasons})
			}
		}
	}
	return edges
}

func sortLocalEdges(edges []localEdge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].score != edges[j].score {
			return edges[i].score > edges[j].score
		}
		if edges[i].a != edges[j].a {
			return edges[i].a < edges[j].a
		}
		return edges[i].b < edges[j].b
	})
}

func edgesWithin(members []int, edges []localEdge) []localEdge {
	set := make(map[int]struct{}, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}
	var out []localEdge
	for _, e := range edges {
		_, okA := set[e.a]
		_, okB := set[e.b]
		if okA && okB {
			out = append(out, e)
		}
	}
	return out
}

func buildCluster(members []int, edges []localEdge) models.Cluster {
	sorted := append([]int(nil), members...)
	sort.Ints(sorted)

	var reasons []string
	var pairScores []models.PairScore
	for _, e := range edges {
		pairScores = append(pairScores, models.PairScore{A: e.a, B: e.b, Score: e.score})
		for _, r := range e.reasons {
			if !containsString(reasons, r) {
				reasons = append(reasons, r)
			}
		}
	}

	return models.Cluster{
		Records:    sorted,
		Reasons:    reasons,
		PairScores: pairScores,
	}
}

func containsString(haystack []string, needle string) bool {
	for _, h := range haystack {
		if h == needle {
			return true
		}
	}
	return false
}

// sortClustersDeterministically orders sibling clusters produced by a
// single Split call by their smallest member index. Output order is a
// pure function of input either way; this is stronger than strict
// assembly order — see DESIGN.md's Open Question notes.
func sortClustersDeterministically(clusters []models.Cluster) {
	sort.Slice(clusters, func(i, j int) bool {
		return clusters[i].Records[0] < clusters[j].Records[0]
	})
}
