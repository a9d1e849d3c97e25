package blocking

import (
	"context"
	"testing"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/internal/normalize"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
)

func rec(woman, husband, id, phone, village string) models.Record {
	return models.Record{
		WomanName:             woman,
		HusbandName:           husband,
		NationalID:            id,
		Phone:                 phone,
		Village:               village,
		WomanNameNormalized:   normalize.Normalize(woman),
		HusbandNameNormalized: normalize.Normalize(husband),
		VillageNormalized:     normalize.Normalize(village),
	}
}

func TestBuildBuckets_SentinelForEmptyRecord(t *testing.T) {
	buckets := BuildBuckets([]models.Record{{}})
	if members, ok := buckets[sentinelBucket]; !ok || len(members) != 1 {
		t.Errorf("expected empty record in sentinel bucket, got %v", buckets)
	}
}

func TestBuildBuckets_SharedPrefixCoOccur(t *testing.T) {
	records := []models.Record{
		rec("فاطمة علي", "محمد حسن", "111", "07701111111", "بغداد"),
		rec("فاطمة سارة", "محمد جبار", "222", "07702222222", "بغداد"),
	}
	buckets := BuildBuckets(records)
	if members, ok := buckets["w:فاط"]; !ok || len(members) != 2 {
		t.Errorf("expected both records sharing wFirst bucket, got %v", buckets["w:فاط"])
	}
}

func TestCandidatePairs_DedupedAcrossBuckets(t *testing.T) {
	records := []models.Record{
		rec("فاطمة علي", "محمد حسن", "111", "07701111111", "بغداد"),
		rec("فاطمة علي", "محمد حسن", "111", "07701111111", "بغداد"),
	}
	pairs, err := CandidatePairs(context.Background(), records, 3000, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pairs) != 1 {
		t.Errorf("expected exactly 1 deduplicated pair, got %d: %v", len(pairs), pairs)
	}
	if pairs[0] != (Pair{A: 0, B: 1}) {
		t.Errorf("expected pair {0,1}, got %+v", pairs[0])
	}
}

func TestCandidatePairs_ChunkingBoundsOversizedBucket(t *testing.T) {
	records := make([]models.Record, 5)
	for i := range records {
		records[i] = rec("فاطمة", "محمد", "", "", "")
	}
	pairs, err := CandidatePairs(context.Background(), records, 2, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 5 records chunked by 2 -> chunks {0,1},{2,3},{4}: pairs (0,1) and (2,3) only.
	if len(pairs) != 2 {
		t.Errorf("expected 2 pairs after chunking, got %d: %v", len(pairs), pairs)
	}
}

func TestCandidatePairs_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := []models.Record{rec("a", "b", "", "", ""), rec("c", "d", "", "", "")}
	_, err := CandidatePairs(ctx, records, 3000, nil)
	if err == nil {
		t.Errorf("expected cancellation error, got nil")
	}
}
