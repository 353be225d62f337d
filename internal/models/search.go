package models

import "time"

type SearchSource string

const (
	SourceVector  SearchSource = "vector"
	SourceKeyword SearchSource = "keyword"
)

// SearchHit is one entry of a source-local ranking. Scores are not comparable across sources.
type SearchHit struct {
	DocumentID string       `json:"documentId"`
	Source     SearchSource `json:"source"`
	Rank       int          `json:"rank"`
	Score      float64      `json:"score"`
}

// DateRange is an inclusive range on the document effective date.
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// SearchFilters is applied identically by every retrieval source.
type SearchFilters struct {
	Jurisdiction  string         `json:"jurisdiction,omitempty"`
	DocumentTypes []DocumentType `json:"documentTypes,omitempty"`
	DateRange     *DateRange     `json:"dateRange,omitempty"`
}

// FusedCandidate is a document scored across all retrieval sources.
type FusedCandidate struct {
	DocumentID string               `json:"documentId"`
	FusedScore float64              `json:"fusedScore"`
	Sources    []SearchSource       `json:"sources"`
	Ranks      map[SearchSource]int `json:"ranks"`
}

// MinRank is the best rank the candidate reached in any source.
func (c FusedCandidate) MinRank() int {
	min := 0
	for _, r := range c.Ranks {
		if min == 0 || r < min {
			min = r
		}
	}
	return min
}

func (c FusedCandidate) FoundBy(src SearchSource) bool {
	_, ok := c.Ranks[src]
	return ok
}

// RankedResult is a reranked candidate with its document snapshot.
type RankedResult struct {
	FusedCandidate
	RerankScore   float64          `json:"rerankScore"`
	Excerpt       string           `json:"excerpt"`
	PlainLanguage string           `json:"plainLanguage,omitempty"`
	Metadata      DocumentMetadata `json:"metadata"`
}
