package engine

import (
	"github.com/malzubairisfd-blip/Beneficiary-Insight/internal/audit"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
)

// ResolveRecords exposes the driver's column-mapping/normalization step
// for callers (the API host, the shadow comparison feature) that need
// canonical Records without running the full pipeline.
func ResolveRecords(raw []map[string]any, mapping map[string]string) []models.Record {
	return resolveRecords(raw, mapping)
}

// Reaudit re-runs the audit engine (C7) over an already-finished
// cluster set, without redoing blocking, scoring or assembly — used by
// the host to refresh findings after a cache file has been edited or
// simply to re-apply updated audit rules.
func Reaudit(records []models.Record, clusters []models.Cluster) []models.Finding {
	return audit.Run(records, clusters)
}
