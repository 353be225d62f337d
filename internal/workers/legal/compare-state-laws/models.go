// internal/workers/legal/compare-state-laws/models.go
package comparestatelaws

import "legal-rag-workers/internal/models"

type Input struct {
	Concept string   `json:"concept"`
	States  []string `json:"states"`
}

type Output struct {
	Comparison *models.StateComparison `json:"stateComparison"`
	// States whose retrieval failed; their entries carry the error.
	UnavailableStates []string `json:"unavailableStates"`
}
