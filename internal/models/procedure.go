package models

type ProcedureStep struct {
	Number        int    `json:"number"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	EstimatedTime string `json:"estimatedTime,omitempty"`
}

type Procedure struct {
	ProcedureType     string            `json:"procedureType"`
	Jurisdiction      string            `json:"jurisdiction"`
	Steps             []ProcedureStep   `json:"steps"`
	TimeEstimates     map[string]string `json:"timeEstimates"`
	RequiredForms     []string          `json:"requiredForms"`
	CostEstimate      string            `json:"costEstimate,omitempty"`
	GoverningStatutes []string          `json:"governingStatutes"`
	Source            string            `json:"source"` // catalog or retrieval
}
