// Package intent classifies a legal question with the generation model.
package intent

import (
	"context"
	"fmt"
	"strings"

	"legal-rag-workers/internal/common/logger"
	"legal-rag-workers/internal/common/validation"
	"legal-rag-workers/internal/models"
)

// MinConfidence is the classifier confidence below which a question is treated as general.
const MinConfidence = 0.5

type JSONGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, v interface{}) error
}

type Classifier struct {
	generator JSONGenerator
	logger    logger.Logger
}

type classification struct {
	Type          string   `json:"type"`
	Concepts      []string `json:"concepts"`
	Jurisdictions []string `json:"jurisdictions"`
	TimeSensitive bool     `json:"time_sensitive"`
	Confidence    *float64 `json:"confidence"`
}

func NewClassifier(generator JSONGenerator, log logger.Logger) *Classifier {
	return &Classifier{generator: generator, logger: log}
}

// Classify never fails: generator errors, malformed answers and low confidence
// all yield a general_query intent.
func (c *Classifier) Classify(ctx context.Context, question, jurisdiction string) models.Intent {
	var out classification
	if err := c.generator.GenerateJSON(ctx, buildPrompt(question, jurisdiction), &out); err != nil {
		c.logger.Warn("intent classification failed, using general_query", map[string]interface{}{
			"error": err.Error(),
		})
		return Fallback(jurisdiction)
	}

	intentType := models.IntentType(strings.ToLower(strings.TrimSpace(out.Type)))
	if !intentType.Valid() {
		c.logger.Debug("unknown intent type", map[string]interface{}{"type": out.Type})
		return Fallback(jurisdiction)
	}

	intent := models.Intent{
		Type:          intentType,
		Concepts:      cleanConcepts(out.Concepts),
		Jurisdictions: mergeJurisdictions(jurisdiction, out.Jurisdictions),
		TimeSensitive: out.TimeSensitive,
	}
	if out.Confidence != nil && *out.Confidence < MinConfidence {
		intent.Type = models.IntentGeneralQuery
	}
	return intent
}

// Fallback is the intent used when classification is unavailable.
func Fallback(jurisdiction string) models.Intent {
	return models.Intent{
		Type:          models.IntentGeneralQuery,
		Concepts:      []string{},
		Jurisdictions: mergeJurisdictions(jurisdiction, nil),
	}
}

func buildPrompt(question, jurisdiction string) string {
	if jurisdiction == "" {
		jurisdiction = "Not specified"
	}
	return fmt.Sprintf(`Classify the following legal question.
Question: %s
Jurisdiction: %s

Return a JSON object with:
- "type": one of definition, procedure, case_law, statute, comparison, general_query
- "concepts": legal concepts mentioned, as short noun phrases
- "jurisdictions": two-letter US state codes involved, or "US" for federal law
- "time_sensitive": true when the answer depends on deadlines or recent changes
- "confidence": your confidence in the type, from 0 to 1`, question, jurisdiction)
}

func cleanConcepts(concepts []string) []string {
	seen := make(map[string]bool, len(concepts))
	out := make([]string, 0, len(concepts))
	for _, c := range concepts {
		c = strings.TrimSpace(c)
		key := strings.ToLower(c)
		if c == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

// mergeJurisdictions puts the caller's jurisdiction first and drops unknown codes.
func mergeJurisdictions(primary string, extra []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, j := range append([]string{primary}, extra...) {
		code, err := validation.NormalizeOptionalJurisdiction(j)
		if err != nil || code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}
