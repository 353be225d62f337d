// internal/workers/legal/legal-query/models.go
package legalquery

import "legal-rag-workers/internal/models"

type Input struct {
	Question      string     `json:"question"`
	Jurisdiction  string     `json:"jurisdiction,omitempty"`
	DocumentTypes []string   `json:"documentTypes,omitempty"`
	DateRange     *DateRange `json:"dateRange,omitempty"`
	MaxResults    int        `json:"maxResults,omitempty"`
	// Defaults to true when absent.
	IncludePlainLanguage *bool `json:"includePlainLanguage,omitempty"`
}

// DateRange bounds effective dates, inclusive, as YYYY-MM-DD strings.
type DateRange struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

type Output struct {
	LegalResponse *models.Response `json:"legalResponse"`
	Confidence    float64          `json:"confidence"`
	Degraded      bool             `json:"degraded"`
}
