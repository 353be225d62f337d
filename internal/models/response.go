package models

import "time"

type IntentType string

const (
	IntentDefinition   IntentType = "definition"
	IntentProcedure    IntentType = "procedure"
	IntentCaseLaw      IntentType = "case_law"
	IntentStatute      IntentType = "statute"
	IntentComparison   IntentType = "comparison"
	IntentGeneralQuery IntentType = "general_query"
)

func (t IntentType) Valid() bool {
	switch t {
	case IntentDefinition, IntentProcedure, IntentCaseLaw, IntentStatute, IntentComparison, IntentGeneralQuery:
		return true
	}
	return false
}

type Intent struct {
	Type          IntentType `json:"type"`
	Concepts      []string   `json:"concepts"`
	Jurisdictions []string   `json:"jurisdictions"`
	TimeSensitive bool       `json:"timeSensitive"`
}

// Provenance records which collaborators were unavailable while building a response.
type Provenance struct {
	Degraded           bool           `json:"degraded"`
	UnavailableSources []SearchSource `json:"unavailableSources,omitempty"`
	RerankFallback     bool           `json:"rerankFallback,omitempty"`
}

type CrossReference struct {
	FromDocumentID string `json:"fromDocumentId"`
	CaseID         string `json:"caseId"`
	Relation       string `json:"relation"` // cites or cited_by
}

// Response is built once per query and never mutated afterwards.
type Response struct {
	ID              string           `json:"id"`
	Query           string           `json:"query"`
	Intent          Intent           `json:"intent"`
	Results         []RankedResult   `json:"results"`
	Definitions     []Definition     `json:"definitions"`
	CrossReferences []CrossReference `json:"crossReferences"`
	NextSteps       []string         `json:"nextSteps"`
	Confidence      float64          `json:"confidence"`
	SourceCount     int              `json:"sourceCount"`
	Provenance      Provenance       `json:"provenance"`
	Timestamp       time.Time        `json:"timestamp"`
}

// QueryRequest is the validated input of the query operation.
type QueryRequest struct {
	Question             string
	Jurisdiction         string
	DocumentTypes        []DocumentType
	DateRange            *DateRange
	MaxResults           int
	IncludePlainLanguage bool
}
