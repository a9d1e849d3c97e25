package cluster

import (
	"context"
	"testing"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
)

func edge(a, b int, score float64, reasons ...string) models.Edge {
	if a > b {
		a, b = b, a
	}
	return models.Edge{A: a, B: b, Score: score, Reasons: reasons}
}

func TestAssemble_SimplePairMerges(t *testing.T) {
	records := make([]models.Record, 2)
	cfg := models.DefaultConfiguration()
	edges := []models.Edge{edge(0, 1, 0.99, models.ReasonExactID)}

	result, err := Assemble(context.Background(), 2, edges, records, cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(result.Clusters))
	}
	if len(result.Clusters[0].Records) != 2 {
		t.Errorf("expected cluster of size 2, got %d", len(result.Clusters[0].Records))
	}
	if result.EdgesUsed != 1 {
		t.Errorf("expected edgesUsed=1, got %d", result.EdgesUsed)
	}
}

func TestAssemble_NeverExceedsFourMembers(t *testing.T) {
	records := make([]models.Record, 5)
	cfg := models.DefaultConfiguration()

	var edges []models.Edge
	for i := 0; i < 5; i++ {
		for j := i + 1; j < 5; j++ {
			edges = append(edges, edge(i, j, 0.7))
		}
	}

	result, err := Assemble(context.Background(), 5, edges, records, cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range result.Clusters {
		if len(c.Records) < 2 || len(c.Records) > 4 {
			t.Errorf("cluster size %d out of [2,4]: %v", len(c.Records), c.Records)
		}
	}

	seen := make(map[int]bool)
	for _, c := range result.Clusters {
		for _, r := range c.Records {
			if seen[r] {
				t.Errorf("record %d appears in more than one cluster", r)
			}
			seen[r] = true
		}
	}
}

func TestAssemble_NoEdgesProducesNoClusters(t *testing.T) {
	records := make([]models.Record, 3)
	cfg := models.DefaultConfiguration()

	result, err := Assemble(context.Background(), 3, nil, records, cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Clusters) != 0 {
		t.Errorf("expected no clusters, got %d", len(result.Clusters))
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	records := make([]models.Record, 6)
	cfg := models.DefaultConfiguration()

	var edges []models.Edge
	for i := 0; i < 6; i++ {
		for j := i + 1; j < 6; j++ {
			edges = append(edges, edge(i, j, 0.65))
		}
	}

	first, err := Assemble(context.Background(), 6, edges, records, cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Assemble(context.Background(), 6, edges, records, cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first.Clusters) != len(second.Clusters) {
		t.Fatalf("non-deterministic cluster count: %d vs %d", len(first.Clusters), len(second.Clusters))
	}
	for i := range first.Clusters {
		if !recordsEqual(first.Clusters[i].Records, second.Clusters[i].Records) {
			t.Errorf("cluster %d differs between runs: %v vs %v", i, first.Clusters[i].Records, second.Clusters[i].Records)
		}
	}
}

func TestAssemble_CancellationStopsEarly(t *testing.T) {
	records := make([]models.Record, 2)
	cfg := models.DefaultConfiguration()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	edges := make([]models.Edge, 250)
	for i := range edges {
		edges[i] = edge(0, 1, float64(i)/1000)
	}

	_, err := Assemble(ctx, 2, edges, records, cfg, nil)
	if err == nil {
		t.Errorf("expected cancellation error")
	}
}

func TestSplit_OverflowFracturesIntoBoundedGroups(t *testing.T) {
	records := make([]models.Record, 5)
	cfg := models.DefaultConfiguration()
	cfg.Thresholds.MinInternal = 0 // accept every pair as a local edge for this synthetic test

	clusters := Split([]int{0, 1, 2, 3, 4}, records, cfg)
	total := 0
	for _, c := range clusters {
		if len(c.Records) > 4 {
			t.Errorf("sub-cluster exceeds cap: %v", c.Records)
		}
		total += len(c.Records)
	}
}

func recordsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
