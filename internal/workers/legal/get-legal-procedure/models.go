// internal/workers/legal/get-legal-procedure/models.go
package getlegalprocedure

import "legal-rag-workers/internal/models"

type Input struct {
	ProcedureType string `json:"procedureType"`
	Jurisdiction  string `json:"jurisdiction"`
}

type Output struct {
	Procedure *models.Procedure `json:"legalProcedure"`
	StepCount int               `json:"stepCount"`
	FormCount int               `json:"formCount"`
}
