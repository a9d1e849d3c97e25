// Package cluster implements the edge-weighted union-find cluster
// assembler (C5) and the deterministic splitter (C6) that keeps every
// finished cluster within the 4-member cap, generalized from the
// teacher's address-clustering union-find to operate over record
// indices and similarity-scored edges instead of addresses and
// ownership-heuristic edges.
package cluster

import (
	"context"
	"sort"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
)

// ProgressFunc is invoked every 200 edges consumed and once more at
// completion.
type ProgressFunc func(completed, total int)

// Result is the outcome of assembling clusters from a scored edge list.
type Result struct {
	Clusters  []models.Cluster
	EdgesUsed int
}

// Assemble consumes edges in strictly descending score order (ties
// broken by ascending (a,b)), merging components subject to the
// 4-member cap and invoking the splitter on overflow or on leftover
// multi-member components once every edge has been processed.
func Assemble(ctx context.Context, n int, edges []models.Edge, records []models.Record, cfg models.Configuration, progress ProgressFunc) (Result, error) {
	sorted := append([]models.Edge(nil), edges...)
	sortEdgesDeterministically(sorted)

	uf := newUnionFind(n)
	finalized := make([]bool, n)

	var clusters []models.Cluster
	edgesUsed := 0
	total := len(sorted)

	for i, e := range sorted {
		if i%200 == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
			if progress != nil {
				progress(i, total)
			}
		}

		if finalized[e.A] || finalized[e.B] {
			continue
		}

		rootA, rootB := uf.Find(e.A), uf.Find(e.B)
		uf.AddReason(rootA, e.Reasons)
		uf.AddReason(rootB, e.Reasons)
		edgesUsed++

		if rootA == rootB {
			continue
		}

		if uf.Size(rootA)+uf.Size(rootB) <= 4 {
			uf.Union(rootA, rootB)
			continue
		}

		members := uf.MembersOfRoots(rootA, rootB)
		sub := Split(members, records, cfg)
		clusters = append(clusters, sub...)
		for _, m := range members {
			finalized[m] = true
		}
	}

	if progress != nil {
		progress(total, total)
	}

	visitedRoots := make(map[int]bool)
	for i := 0; i < n; i++ {
		if finalized[i] {
			continue
		}
		root := uf.Find(i)
		if visitedRoots[root] {
			continue
		}
		visitedRoots[root] = true

		members := uf.MembersOfRoot(root)
		if len(members) < 2 {
			continue
		}
		sub := Split(members, records, cfg)
		clusters = append(clusters, sub...)
		for _, m := range members {
			finalized[m] = true
		}
	}

	sortClustersDeterministically(clusters)

	return Result{Clusters: clusters, EdgesUsed: edgesUsed}, nil
}

func sortEdgesDeterministically(edges []models.Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Score != edges[j].Score {
			return edges[i].Score > edges[j].Score
		}
		if edges[i].A != edges[j].A {
			return edges[i].A < edges[j].A
		}
		return edges[i].B < edges[j].B
	})
}
