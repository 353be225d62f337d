// internal/workers/legal/analyze-citation-network/models.go
package analyzecitationnetwork

import "legal-rag-workers/internal/models"

type Input struct {
	CaseID string `json:"caseId"`
	// Hops in each direction; DefaultDepth when absent.
	Depth *int `json:"depth,omitempty"`
}

type Output struct {
	Network *models.CitationGraph `json:"citationNetwork"`
}
