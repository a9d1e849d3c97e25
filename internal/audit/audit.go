// Package audit implements the post-clustering rule engine (C7): a
// pure function of the finished cluster list that surfaces suspected
// integrity problems for human review.
package audit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/internal/similarity"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
)

// Run applies every audit rule to clusters and returns the findings in
// a stable order (rule order, then ascending first-member index).
func Run(records []models.Record, clusters []models.Cluster) []models.Finding {
	var findings []models.Finding
	findings = append(findings, duplicateID(records, clusters)...)
	findings = append(findings, womanMultipleHusbands(records, clusters)...)
	findings = append(findings, highSimilarity(records, clusters)...)
	findings = append(findings, duplicateCouple(records, clusters)...)
	return findings
}

// duplicateID groups every record in the input (not just clustered
// ones) by non-empty nationalId, emitting one high-severity finding
// per id shared by 2 or more records.
func duplicateID(records []models.Record, _ []models.Cluster) []models.Finding {
	groups := make(map[string][]int)
	for i, r := range records {
		if r.NationalID == "" {
			continue
		}
		groups[r.NationalID] = append(groups[r.NationalID], i)
	}

	var findings []models.Finding
	for id, members := range groups {
		if len(members) < 2 {
			continue
		}
		sort.Ints(members)
		findings = append(findings, models.Finding{
			Type:        models.FindingDuplicateID,
			Severity:    models.SeverityHigh,
			Description: fmt.Sprintf("%d records share national id %q", len(members), id),
			Records:     members,
		})
	}
	sortFindings(findings)
	return findings
}

// womanMultipleHusbands groups by raw woman name (internalId when
// blank) and fires when a group carries 2 or more distinct non-empty
// husband names.
func womanMultipleHusbands(records []models.Record, _ []models.Cluster) []models.Finding {
	groups := make(map[string][]int)
	for i, r := range records {
		key := r.WomanName
		if key == "" {
			key = r.InternalID
		}
		groups[key] = append(groups[key], i)
	}

	var findings []models.Finding
	for _, members := range groups {
		husbands := make(map[string]struct{})
		for _, idx := range members {
			if h := records[idx].HusbandName; h != "" {
				husbands[h] = struct{}{}
			}
		}
		if len(husbands) < 2 {
			continue
		}
		sort.Ints(members)
		findings = append(findings, models.Finding{
			Type:        models.FindingWomanMultipleHusbands,
			Severity:    models.SeverityHigh,
			Description: fmt.Sprintf("woman name linked to %d distinct husbands across %d records", len(husbands), len(members)),
			Records:     members,
		})
	}
	sortFindings(findings)
	return findings
}

// highSimilarity fires per intra-cluster pair whose raw woman and
// husband names are both strongly similar by Jaro-Winkler.
func highSimilarity(records []models.Record, clusters []models.Cluster) []models.Finding {
	var findings []models.Finding
	for _, c := range clusters {
		members := append([]int(nil), c.Records...)
		sort.Ints(members)
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				a, b := members[i], members[j]
				womanJW := similarity.JaroWinkler(records[a].WomanName, records[b].WomanName)
				husbandJW := similarity.JaroWinkler(records[a].HusbandName, records[b].HusbandName)
				if womanJW >= 0.92 && husbandJW >= 0.90 {
					findings = append(findings, models.Finding{
						Type:        models.FindingHighSimilarity,
						Severity:    models.SeverityMedium,
						Description: fmt.Sprintf("records %d and %d score %.2f/%.2f on woman/husband name similarity", a, b, womanJW, husbandJW),
						Records:     []int{a, b},
					})
				}
			}
		}
	}
	sortFindings(findings)
	return findings
}

// duplicateCouple groups by lowercase "womanName|husbandName" and
// fires once per group with 2 or more records.
func duplicateCouple(records []models.Record, _ []models.Cluster) []models.Finding {
	groups := make(map[string][]int)
	for i, r := range records {
		key := strings.ToLower(r.WomanName) + "|" + strings.ToLower(r.HusbandName)
		groups[key] = append(groups[key], i)
	}

	var findings []models.Finding
	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		sort.Ints(members)
		findings = append(findings, models.Finding{
			Type:        models.FindingDuplicateCouple,
			Severity:    models.SeverityMedium,
			Description: fmt.Sprintf("%d records share the same woman/husband name pair", len(members)),
			Records:     members,
		})
	}
	sortFindings(findings)
	return findings
}

func sortFindings(findings []models.Finding) {
	sort.Slice(findings, func(i, j int) bool {
		if len(findings[i].Records) == 0 || len(findings[j].Records) == 0 {
			return false
		}
		return findings[i].Records[0] < findings[j].Records[0]
	})
}
