package models

type CitationDirection string

const (
	DirectionCites   CitationDirection = "cites"
	DirectionCitedBy CitationDirection = "cited_by"
)

// CaseInfo is the graph-side metadata used to weight a citing case.
type CaseInfo struct {
	CaseID      string `json:"caseId"`
	Court       string `json:"court,omitempty"`
	CourtLevel  int    `json:"courtLevel"` // 1 trial .. 4 supreme
	DecidedYear int    `json:"decidedYear,omitempty"`
}

// CitationNode is a case reached from a root case after Hop citation edges.
type CitationNode struct {
	CaseID string `json:"caseId"`
	Hop    int    `json:"hop"`
}

// CitationGraph is the result of one bounded traversal. No id appears twice within a set.
type CitationGraph struct {
	CaseID               string   `json:"caseId"`
	Cites                []string `json:"cites"`
	CitedBy              []string `json:"citedBy"`
	Related              []string `json:"relatedCases"`
	Depth                int      `json:"depth"`
	PrecedentialStrength float64  `json:"precedentialStrength"`
}
