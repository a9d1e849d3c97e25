package engine

import "github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"

// Phase names streamed by the driver, in order.
const (
	PhaseBlocking      = "blocking"
	PhaseBuildingEdges = "building-edges"
	PhaseEdgesBuilt    = "edges-built"
	PhaseMergingEdges  = "merging-edges"
	PhaseAnnotating    = "annotating"
	PhaseDone          = "done"
)

// Message is one entry in the engine's output stream. Only the fields
// relevant to Type are populated.
type Message struct {
	Type      string                  `json:"type"`
	Status    string                  `json:"status,omitempty"`
	Progress  int                     `json:"progress,omitempty"`
	Completed *int                    `json:"completed,omitempty"`
	Total     *int                    `json:"total,omitempty"`
	Pairs     []models.PairwiseResult `json:"pairs,omitempty"`
	Payload   *models.RunResult       `json:"payload,omitempty"`
	Error     string                  `json:"error,omitempty"`
}

func progressMessage(status string, progress int) Message {
	return Message{Type: "progress", Status: status, Progress: progress}
}

func progressMessageWithCounts(status string, progress, completed, total int) Message {
	return Message{Type: "progress", Status: status, Progress: progress, Completed: &completed, Total: &total}
}

func pairwiseResultMessage(pairs []models.PairwiseResult) Message {
	return Message{Type: "pairwise-result", Pairs: pairs}
}

func doneMessage(result models.RunResult) Message {
	return Message{Type: "done", Payload: &result}
}

func errorMessage(err error) Message {
	return Message{Type: "error", Error: err.Error()}
}
