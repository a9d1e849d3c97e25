package engine

import (
	"fmt"
	"strconv"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/internal/normalize"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
)

// canonicalFields lists every column the mapping may redirect, in the
// order they're documented.
var canonicalFields = []string{
	"womanName", "husbandName", "nationalId", "phone", "village", "subdistrict", "children",
}

// Input is the engine's single entry value.
type Input struct {
	Records      []map[string]any      `json:"records"`
	Mapping      map[string]string     `json:"mapping,omitempty"`
	Options      *models.ConfigOptions `json:"options,omitempty"`
	PairwiseOnly bool                  `json:"pairwiseOnly,omitempty"`
}

// sourceColumn resolves which raw column backs a canonical field,
// honoring the mapping when present.
func sourceColumn(mapping map[string]string, field string) string {
	if mapping == nil {
		return field
	}
	if col, ok := mapping[field]; ok && col != "" {
		return col
	}
	return field
}

// resolveRecords turns raw input rows into canonical Records, assigning
// a stable internalId and carrying every unconsumed column through as
// passthrough. Missing fields resolve to empty string / nil list,
// never an error — malformed input is tolerated, not rejected.
func resolveRecords(raw []map[string]any, mapping map[string]string) []models.Record {
	consumed := make(map[string]bool, len(canonicalFields)+1)
	for _, f := range canonicalFields {
		consumed[sourceColumn(mapping, f)] = true
	}
	beneficiaryIDCol := sourceColumn(mapping, "beneficiaryId")
	if beneficiaryIDCol != "beneficiaryId" || mapping["beneficiaryId"] != "" {
		consumed[beneficiaryIDCol] = true
	}

	records := make([]models.Record, len(raw))
	for i, row := range raw {
		r := models.Record{
			InternalID:  fmt.Sprintf("row_%d", i),
			WomanName:   asString(row[sourceColumn(mapping, "womanName")]),
			HusbandName: asString(row[sourceColumn(mapping, "husbandName")]),
			NationalID:  asString(row[sourceColumn(mapping, "nationalId")]),
			Phone:       asString(row[sourceColumn(mapping, "phone")]),
			Village:     asString(row[sourceColumn(mapping, "village")]),
			Subdistrict: asString(row[sourceColumn(mapping, "subdistrict")]),
			Children:    normalize.NormalizeChildrenField(row[sourceColumn(mapping, "children")]),
		}

		var passthrough map[string]any
		for k, v := range row {
			if consumed[k] {
				continue
			}
			if passthrough == nil {
				passthrough = make(map[string]any)
			}
			passthrough[k] = v
		}
		if beneficiaryIDCol != "beneficiaryId" {
			if v, ok := row[beneficiaryIDCol]; ok {
				if passthrough == nil {
					passthrough = make(map[string]any)
				}
				passthrough["beneficiaryId"] = v
			}
		}
		r.Passthrough = passthrough

		r.WomanNameNormalized = normalize.Normalize(r.WomanName)
		r.HusbandNameNormalized = normalize.Normalize(r.HusbandName)
		r.VillageNormalized = normalize.Normalize(r.Village)
		r.ChildrenNormalized = normalize.NormalizedChildren(r.Children)

		records[i] = r
	}
	return records
}

func asString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
