package engine

import (
	"context"
	"testing"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
)

func TestRun_ExactDuplicateProducesCluster(t *testing.T) {
	input := Input{
		Records: []map[string]any{
			{"womanName": "فاطمة علي محمد", "husbandName": "حسن جبار", "nationalId": "12345"},
			{"womanName": "فاطمة علي محمد", "husbandName": "حسن جبار", "nationalId": "12345"},
		},
	}

	var messages []Message
	err := Run(context.Background(), input, func(m Message) { messages = append(messages, m) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	last := messages[len(messages)-1]
	if last.Type != "done" {
		t.Fatalf("expected last message to be done, got %s", last.Type)
	}
	if len(last.Payload.Clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(last.Payload.Clusters))
	}
	if len(last.Payload.Clusters[0].Records) != 2 {
		t.Errorf("expected cluster of size 2, got %d", len(last.Payload.Clusters[0].Records))
	}
	found := false
	for _, r := range last.Payload.Clusters[0].Reasons {
		if r == models.ReasonExactID {
			found = true
		}
	}
	if !found {
		t.Errorf("expected EXACT_ID reason in cluster, got %v", last.Payload.Clusters[0].Reasons)
	}
}

func TestRun_EmptyInputNoError(t *testing.T) {
	var messages []Message
	err := Run(context.Background(), Input{}, func(m Message) { messages = append(messages, m) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := messages[len(messages)-1]
	if last.Type != "done" {
		t.Fatalf("expected done, got %s", last.Type)
	}
	if len(last.Payload.Clusters) != 0 {
		t.Errorf("expected no clusters for empty input, got %d", len(last.Payload.Clusters))
	}
}

func TestRun_MappingRedirectsColumns(t *testing.T) {
	input := Input{
		Records: []map[string]any{
			{"col_woman": "هدى كريم", "col_id": "999", "extra": "keepme"},
		},
		Mapping: map[string]string{"womanName": "col_woman", "nationalId": "col_id"},
	}

	var messages []Message
	err := Run(context.Background(), input, func(m Message) { messages = append(messages, m) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := messages[len(messages)-1]
	row := last.Payload.Rows[0]
	if row.WomanName != "هدى كريم" {
		t.Errorf("mapping did not redirect womanName, got %q", row.WomanName)
	}
	if row.NationalID != "999" {
		t.Errorf("mapping did not redirect nationalId, got %q", row.NationalID)
	}
	if row.Passthrough["extra"] != "keepme" {
		t.Errorf("expected passthrough to retain unmapped column, got %v", row.Passthrough)
	}
}

func TestRun_PairwiseOnlySkipsClustering(t *testing.T) {
	input := Input{
		Records: []map[string]any{
			{"womanName": "a"},
			{"womanName": "b"},
			{"womanName": "c"},
		},
		PairwiseOnly: true,
	}

	var messages []Message
	err := Run(context.Background(), input, func(m Message) { messages = append(messages, m) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sawPairwise bool
	for _, m := range messages {
		if m.Type == "pairwise-result" {
			sawPairwise = true
			if len(m.Pairs) != 3 {
				t.Errorf("expected 3 pairs for 3 records, got %d", len(m.Pairs))
			}
		}
	}
	if !sawPairwise {
		t.Errorf("expected a pairwise-result message")
	}
	if messages[len(messages)-1].Type != "done" {
		t.Errorf("expected done as last message")
	}
}

func TestRun_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var messages []Message
	err := Run(ctx, Input{Records: []map[string]any{{"womanName": "a"}, {"womanName": "b"}}}, func(m Message) {
		messages = append(messages, m)
	})
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
	last := messages[len(messages)-1]
	if last.Type != "error" {
		t.Errorf("expected error message, got %s", last.Type)
	}
}
