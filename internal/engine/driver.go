package engine

import (
	"context"
	goerrors "errors"

	"github.com/juju/errors"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/internal/audit"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/internal/blocking"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/internal/cluster"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/internal/scoring"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
)

// ErrCancelled is returned, and streamed as error:"cancelled", when the
// caller's context is done before the run finishes.
var ErrCancelled = goerrors.New("cancelled")

// Emitter receives every message in order; Run never sends after it
// returns.
type Emitter func(Message)

// Run drives the whole pipeline for one input: blocking, scoring,
// assembly, annotation. It emits progress messages throughout and
// exactly one terminal message, "done" or "error". The returned error
// mirrors the terminal "error" message, if any.
func Run(ctx context.Context, input Input, emit Emitter) error {
	cfg := input.Options.Resolve()
	records := resolveRecords(input.Records, input.Mapping)

	if input.PairwiseOnly {
		return runPairwiseOnly(ctx, records, cfg, emit)
	}

	result, err := RunClustering(ctx, records, cfg, emit)
	if err != nil {
		return terminalError(emit, err)
	}
	emit(doneMessage(result))
	return nil
}

// RunClustering runs blocking, scoring, assembly and annotation over
// already-normalized records and returns the result without emitting a
// terminal message — Run wraps this for the single-shot entry point,
// and the shadow config-comparison feature calls it twice directly to
// compare two configurations over the same records.
func RunClustering(ctx context.Context, records []models.Record, cfg models.Configuration, emit Emitter) (models.RunResult, error) {
	emit(progressMessage(PhaseBlocking, 0))
	pairs, err := blocking.CandidatePairs(ctx, records, cfg.Thresholds.BlockChunkSize, func(completed, total int) {
		emit(progressMessageWithCounts(PhaseBlocking, scalePercent(completed, total, 0, 20), completed, total))
	})
	if err != nil {
		return models.RunResult{}, err
	}

	emit(progressMessage(PhaseBuildingEdges, 20))
	edges := make([]models.Edge, 0, len(pairs))
	for i, p := range pairs {
		if i%500 == 0 {
			if err := ctx.Err(); err != nil {
				return models.RunResult{}, err
			}
			emit(progressMessageWithCounts(PhaseBuildingEdges, scalePercent(i, len(pairs), 20, 60), i, len(pairs)))
		}
		score, breakdown, reasons := scoring.Score(records[p.A], records[p.B], cfg)
		if score < cfg.Thresholds.MinPair {
			continue
		}
		edges = append(edges, scoring.NewEdge(p.A, p.B, score, breakdown, reasons))
	}

	emit(progressMessage(PhaseEdgesBuilt, 60))

	emit(progressMessage(PhaseMergingEdges, 60))
	assembled, err := cluster.Assemble(ctx, len(records), edges, records, cfg, func(completed, total int) {
		emit(progressMessageWithCounts(PhaseMergingEdges, scalePercent(completed, total, 60, 95), completed, total))
	})
	if err != nil {
		return models.RunResult{}, err
	}

	emit(progressMessage(PhaseAnnotating, 95))
	findings := audit.Run(records, assembled.Clusters)

	return models.RunResult{
		Rows:          records,
		Clusters:      assembled.Clusters,
		EdgesUsed:     assembled.EdgesUsed,
		AuditFindings: findings,
	}, nil
}

func runPairwiseOnly(ctx context.Context, records []models.Record, cfg models.Configuration, emit Emitter) error {
	total := len(records) * (len(records) - 1) / 2
	pairs := make([]models.PairwiseResult, 0, total)

	processed := 0
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			if processed%500 == 0 {
				if err := ctx.Err(); err != nil {
					return terminalError(emit, err)
				}
				emit(progressMessageWithCounts(PhaseBuildingEdges, scalePercent(processed, total, 0, 90), processed, total))
			}
			score, breakdown, reasons := scoring.Score(records[i], records[j], cfg)
			pairs = append(pairs, models.PairwiseResult{
				AIndex:    i,
				BIndex:    j,
				Score:     score,
				Breakdown: breakdown,
				Reasons:   reasons,
			})
			processed++
		}
	}

	emit(pairwiseResultMessage(pairs))
	emit(doneMessage(models.RunResult{Rows: records}))
	return nil
}

func terminalError(emit Emitter, err error) error {
	if goerrors.Is(err, context.Canceled) || goerrors.Is(err, context.DeadlineExceeded) {
		err = ErrCancelled
	} else {
		err = errors.Annotate(err, "dedupe run failed")
	}
	emit(errorMessage(err))
	return err
}

// scalePercent maps completed/total onto [lo,hi], clamped, with total=0
// treated as fully complete for that sub-phase.
func scalePercent(completed, total, lo, hi int) int {
	if total <= 0 {
		return hi
	}
	if completed > total {
		completed = total
	}
	span := hi - lo
	return lo + (completed*span)/total
}
