// Package evidence assembles evidence requirements for a claim type.
package evidence

import (
	"context"
	"fmt"
	"strings"

	"legal-rag-workers/internal/common/logger"
	"legal-rag-workers/internal/models"
)

const authorityResults = 5

var authorityTypes = []models.DocumentType{models.DocTypeStatute, models.DocTypeRegulation, models.DocTypeCase}

type QueryRunner interface {
	Query(ctx context.Context, req models.QueryRequest) (*models.Response, error)
}

type Advisor struct {
	runner QueryRunner
	logger logger.Logger
}

func NewAdvisor(runner QueryRunner, log logger.Logger) *Advisor {
	return &Advisor{runner: runner, logger: log}
}

// Requirements combines the claim-type rule table with authorities retrieved for
// the jurisdiction. When retrieval fails the table alone is returned, marked degraded.
func (a *Advisor) Requirements(ctx context.Context, claimType, jurisdiction string) *models.EvidenceRequirements {
	rules := lookup(claimType)

	admissibility := make(map[string]string, len(baseAdmissibility)+len(rules.admissibility))
	for k, v := range baseAdmissibility {
		admissibility[k] = v
	}
	for k, v := range rules.admissibility {
		admissibility[k] = v
	}

	out := &models.EvidenceRequirements{
		ClaimType:              claimType,
		Jurisdiction:           jurisdiction,
		RequiredEvidence:       append([]models.EvidenceItem(nil), rules.required...),
		OptionalEvidence:       append([]models.EvidenceItem(nil), rules.optional...),
		AdmissibilityRules:     admissibility,
		PreservationGuidelines: append([]string(nil), PreservationGuidelines...),
		Examples:               append([]string(nil), rules.examples...),
		Authorities:            []string{},
	}

	if a.runner == nil {
		out.Degraded = true
		return out
	}
	resp, err := a.runner.Query(ctx, models.QueryRequest{
		Question:      fmt.Sprintf("evidence required to prove a %s claim in %s", humanize(claimType), jurisdiction),
		Jurisdiction:  jurisdiction,
		DocumentTypes: authorityTypes,
		MaxResults:    authorityResults,
	})
	if err != nil {
		a.logger.Warn("evidence authority retrieval failed, using rule table only", map[string]interface{}{
			"claimType":    claimType,
			"jurisdiction": jurisdiction,
			"error":        err.Error(),
		})
		out.Degraded = true
		return out
	}
	out.Authorities = authorities(resp.Results)
	return out
}

func authorities(results []models.RankedResult) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, r := range results {
		cite := r.Metadata.Citation
		if cite == "" {
			cite = r.Metadata.Title
		}
		if cite == "" || seen[cite] {
			continue
		}
		seen[cite] = true
		out = append(out, cite)
	}
	return out
}

// lookup returns the rules for a claim type, or the generic set when it is unknown.
func lookup(claimType string) claimRules {
	key := Normalize(claimType)
	if alias, ok := claimAliases[key]; ok {
		key = alias
	}
	if rules, ok := claimTable[key]; ok {
		return rules
	}
	return genericRules
}

// Normalize maps "Breach of Contract" and "breach-of-contract" to "breach_of_contract".
func Normalize(claimType string) string {
	s := strings.ToLower(strings.TrimSpace(claimType))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), "_")
}

func humanize(claimType string) string {
	return strings.ReplaceAll(Normalize(claimType), "_", " ")
}
