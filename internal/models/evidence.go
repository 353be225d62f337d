package models

type EvidenceItem struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	TimePeriod  string `json:"timePeriod,omitempty"`
}

type EvidenceRequirements struct {
	ClaimType              string            `json:"claimType"`
	Jurisdiction           string            `json:"jurisdiction"`
	RequiredEvidence       []EvidenceItem    `json:"requiredEvidence"`
	OptionalEvidence       []EvidenceItem    `json:"optionalEvidence"`
	AdmissibilityRules     map[string]string `json:"admissibilityRules"`
	PreservationGuidelines []string          `json:"preservationGuidelines"`
	Examples               []string          `json:"examples"`
	Authorities            []string          `json:"authorities,omitempty"`
	Degraded               bool              `json:"degraded,omitempty"`
}
