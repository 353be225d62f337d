package enrichment

import "legal-rag-workers/internal/models"

// ConsultAttorney closes every list of next steps.
const ConsultAttorney = "Consult with a licensed attorney in your jurisdiction before taking action"

var nextStepRules = map[models.IntentType][]string{
	models.IntentDefinition: {
		"Review the legal reference",
		"Check how the term is applied in your jurisdiction's statutes",
	},
	models.IntentProcedure: {
		"Review the procedural requirements",
		"Gather necessary documentation",
		"Note filing deadlines and court fees",
	},
	models.IntentCaseLaw: {
		"Read the full opinions of the cited cases",
		"Check whether the precedent is still good law",
	},
	models.IntentStatute: {
		"Review the legal reference",
		"Confirm the statute's effective date and any amendments",
	},
	models.IntentComparison: {
		"Identify which jurisdiction's law governs your situation",
		"Review the legal reference for each jurisdiction",
	},
	models.IntentGeneralQuery: {
		"Review the legal reference",
		"Gather necessary documentation",
	},
}

// NextSteps returns the advisory steps for an intent. Unknown intents get the general set.
func NextSteps(intent models.IntentType) []string {
	rules, ok := nextStepRules[intent]
	if !ok {
		rules = nextStepRules[models.IntentGeneralQuery]
	}
	steps := make([]string, 0, len(rules)+1)
	steps = append(steps, rules...)
	return append(steps, ConsultAttorney)
}
