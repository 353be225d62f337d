// internal/workers/legal/get-evidence-requirements/models.go
package getevidencerequirements

import "legal-rag-workers/internal/models"

type Input struct {
	ClaimType    string `json:"claimType"`
	Jurisdiction string `json:"jurisdiction"`
}

type Output struct {
	Requirements *models.EvidenceRequirements `json:"evidenceRequirements"`
	// Set when jurisdictional authorities could not be retrieved.
	Degraded bool `json:"degraded"`
}
