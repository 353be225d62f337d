// internal/workers/legal/get-legal-definition/models.go
package getlegaldefinition

import "legal-rag-workers/internal/models"

type Input struct {
	Term         string `json:"term"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
	// Defaults to true when absent.
	IncludePlainLanguage *bool `json:"includePlainLanguage,omitempty"`
}

type Output struct {
	Definition *models.Definition `json:"legalDefinition"`
}
