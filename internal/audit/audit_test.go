package audit

import (
	"testing"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
)

func TestDuplicateID(t *testing.T) {
	records := []models.Record{
		{InternalID: "row_0", NationalID: "77"},
		{InternalID: "row_1", NationalID: "77"},
		{InternalID: "row_2", NationalID: "77"},
		{InternalID: "row_3", NationalID: "99"},
	}

	findings := Run(records, nil)
	count := 0
	for _, f := range findings {
		if f.Type == models.FindingDuplicateID {
			count++
			if len(f.Records) != 3 {
				t.Errorf("expected 3 records in duplicate-id finding, got %d", len(f.Records))
			}
			if f.Severity != models.SeverityHigh {
				t.Errorf("expected high severity, got %s", f.Severity)
			}
		}
	}
	if count != 1 {
		t.Errorf("expected exactly 1 DUPLICATE_ID finding, got %d", count)
	}
}

func TestWomanMultipleHusbands(t *testing.T) {
	records := []models.Record{
		{InternalID: "row_0", WomanName: "فاطمة علي", HusbandName: "محمد"},
		{InternalID: "row_1", WomanName: "فاطمة علي", HusbandName: "احمد"},
	}

	findings := Run(records, nil)
	found := false
	for _, f := range findings {
		if f.Type == models.FindingWomanMultipleHusbands {
			found = true
			if f.Severity != models.SeverityHigh {
				t.Errorf("expected high severity, got %s", f.Severity)
			}
			if len(f.Records) != 2 {
				t.Errorf("expected 2 records, got %d", len(f.Records))
			}
		}
	}
	if !found {
		t.Errorf("expected a WOMAN_MULTIPLE_HUSBANDS finding")
	}
}

func TestHighSimilarity(t *testing.T) {
	records := []models.Record{
		{WomanName: "فاطمة علي محمد", HusbandName: "حسن جبار"},
		{WomanName: "فاطمة علي محمد", HusbandName: "حسن جبار"},
	}
	clusters := []models.Cluster{{Records: []int{0, 1}}}

	findings := Run(records, clusters)
	found := false
	for _, f := range findings {
		if f.Type == models.FindingHighSimilarity {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a HIGH_SIMILARITY finding for near-identical names")
	}
}

func TestDuplicateCouple(t *testing.T) {
	records := []models.Record{
		{WomanName: "Fatima Ali", HusbandName: "Mohammed Hassan"},
		{WomanName: "fatima ali", HusbandName: "mohammed hassan"},
	}

	findings := Run(records, nil)
	found := false
	for _, f := range findings {
		if f.Type == models.FindingDuplicateCouple {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a DUPLICATE_COUPLE finding")
	}
}

func TestRun_EmptyInputNoFindings(t *testing.T) {
	findings := Run(nil, nil)
	if len(findings) != 0 {
		t.Errorf("expected no findings for empty input, got %d", len(findings))
	}
}
