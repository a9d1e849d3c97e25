package shadow

import (
	"context"
	"testing"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/internal/normalize"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
)

func rec(id, woman, husband, nationalID string) models.Record {
	return models.Record{
		InternalID:            id,
		WomanName:             woman,
		HusbandName:           husband,
		NationalID:            nationalID,
		WomanNameNormalized:   normalize.Normalize(woman),
		HusbandNameNormalized: normalize.Normalize(husband),
	}
}

func TestCompare_IdenticalConfigurationsAgreePerfectly(t *testing.T) {
	records := []models.Record{
		rec("row_0", "فاطمة علي محمد", "حسن جبار", "12345"),
		rec("row_1", "فاطمة علي محمد", "حسن جبار", "12345"),
		rec("row_2", "زينب كاظم", "علي حسين", "99999"),
	}

	runner := NewRunner(nil)
	cfg := models.DefaultConfiguration()

	result, err := runner.Compare(context.Background(), "test-cache", records, cfg, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AdjustedRandIndex < 0.99 {
		t.Errorf("expected near-perfect agreement comparing a config against itself, got ari=%f", result.AdjustedRandIndex)
	}
	if result.VariationOfInformation > 0.01 {
		t.Errorf("expected near-zero VI comparing a config against itself, got vi=%f", result.VariationOfInformation)
	}
	if result.ProductionClusterCount != result.CandidateClusterCount {
		t.Errorf("expected equal cluster counts, got prod=%d candidate=%d", result.ProductionClusterCount, result.CandidateClusterCount)
	}
}

func TestCompare_StricterCandidateDiverges(t *testing.T) {
	records := []models.Record{
		rec("row_0", "فاطمة علي محمد", "حسن جبار", ""),
		rec("row_1", "فاطمه على محمد", "حسن جبار", ""),
	}

	runner := NewRunner(nil)
	production := models.DefaultConfiguration()
	candidate := models.DefaultConfiguration()
	candidate.Thresholds.MinPair = 0.999

	result, err := runner.Compare(context.Background(), "test-cache", records, production, candidate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ProductionClusterCount == 0 {
		t.Fatalf("expected production to cluster the near-duplicate pair")
	}
	if result.CandidateClusterCount == result.ProductionClusterCount && result.AdjustedRandIndex >= 0.999 {
		t.Errorf("expected a much stricter candidate threshold to change the partition")
	}
}

func TestCompare_NilStoreSkipsPersistence(t *testing.T) {
	runner := NewRunner(nil)
	cfg := models.DefaultConfiguration()
	if _, err := runner.Compare(context.Background(), "test-cache", nil, cfg, cfg); err != nil {
		t.Fatalf("unexpected error with empty input: %v", err)
	}
}
