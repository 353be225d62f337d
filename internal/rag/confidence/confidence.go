// Package confidence scores how much a ranked answer can be trusted.
package confidence

import (
	"math"

	"legal-rag-workers/internal/models"
)

const (
	relevanceWeight   = 0.5
	agreementWeight   = 0.3
	intentMatchWeight = 0.2
)

// expectedTypes maps each intent to the document types that answer it.
var expectedTypes = map[models.IntentType][]models.DocumentType{
	models.IntentDefinition: {models.DocTypeDefinition, models.DocTypeStatute},
	models.IntentProcedure:  {models.DocTypeProcedure, models.DocTypeForm, models.DocTypeRegulation},
	models.IntentCaseLaw:    {models.DocTypeCase},
	models.IntentStatute:    {models.DocTypeStatute, models.DocTypeRegulation},
	models.IntentComparison: {models.DocTypeStatute, models.DocTypeCase, models.DocTypeRegulation},
}

// Score combines the sigmoid of the top rerank score, the fraction of results
// found by both retrieval sources and the fraction whose type fits the intent.
// It is 0 for no results and always within [0,1].
func Score(results []models.RankedResult, intent models.Intent) float64 {
	if len(results) == 0 {
		return 0
	}

	top := sigmoid(results[0].RerankScore)

	var agreed, matched int
	for _, r := range results {
		if r.FoundBy(models.SourceVector) && r.FoundBy(models.SourceKeyword) {
			agreed++
		}
		if IntentMatches(intent.Type, r.Metadata.Type) {
			matched++
		}
	}
	n := float64(len(results))

	score := relevanceWeight*top + agreementWeight*float64(agreed)/n + intentMatchWeight*float64(matched)/n
	return math.Max(0, math.Min(1, score))
}

// IntentMatches reports whether a document type answers the intent.
// A general query is answered by any type.
func IntentMatches(intent models.IntentType, docType models.DocumentType) bool {
	types, ok := expectedTypes[intent]
	if !ok {
		return true
	}
	for _, t := range types {
		if t == docType {
			return true
		}
	}
	return false
}

func sigmoid(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return 1 / (1 + math.Exp(-x))
}
