package models

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// StateEntry is one state's column of a comparison.
type StateEntry struct {
	State            string   `json:"state"`
	Available        bool     `json:"available"`
	Error            string   `json:"error,omitempty"`
	LegalSystem      string   `json:"legalSystem,omitempty"`
	KeyRules         []string `json:"keyRules,omitempty"`
	StatuteCitations []string `json:"statuteCitations,omitempty"`
	UniqueFeatures   []string `json:"uniqueFeatures,omitempty"`
	Confidence       float64  `json:"confidence"`
}

// StateComparison keeps per-state entries in the caller's state order, including in JSON.
type StateComparison struct {
	Concept         string                                     `json:"concept"`
	States          []string                                   `json:"states"`
	Comparisons     *orderedmap.OrderedMap[string, StateEntry] `json:"comparisons"`
	KeyDifferences  []string                                   `json:"keyDifferences"`
	Recommendations []string                                   `json:"recommendations"`
}

// NewStateComparison builds an empty comparison with one slot per state.
func NewStateComparison(concept string, states []string) *StateComparison {
	return &StateComparison{
		Concept:     concept,
		States:      states,
		Comparisons: orderedmap.New[string, StateEntry](len(states)),
	}
}

// Entries returns the per-state entries in caller order.
func (c *StateComparison) Entries() []StateEntry {
	out := make([]StateEntry, 0, c.Comparisons.Len())
	for pair := c.Comparisons.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}
