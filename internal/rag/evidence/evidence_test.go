package evidence

import (
	"context"
	"errors"
	"testing"

	"legal-rag-workers/internal/common/logger"
	"legal-rag-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	resp *models.Response
	err  error
	req  models.QueryRequest
}

func (s *stubRunner) Query(_ context.Context, req models.QueryRequest) (*models.Response, error) {
	s.req = req
	return s.resp, s.err
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"Breach of Contract":  "breach_of_contract",
		"breach-of-contract":  "breach_of_contract",
		"  personal_injury  ": "personal_injury",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestLookup_AliasesAndFallback(t *testing.T) {
	assert.Equal(t, claimTable["personal_injury"].required, lookup("Car Accident").required)
	assert.Equal(t, genericRules.required, lookup("space law").required)
}

func TestRequirements_AddsAuthorities(t *testing.T) {
	runner := &stubRunner{resp: &models.Response{Results: []models.RankedResult{
		{Metadata: models.DocumentMetadata{Citation: "Cal. Civ. Code 3333", Type: models.DocTypeStatute}},
		{Metadata: models.DocumentMetadata{Title: "Smith v. Jones", Type: models.DocTypeCase}},
		{Metadata: models.DocumentMetadata{Citation: "Cal. Civ. Code 3333", Type: models.DocTypeStatute}},
	}}}
	a := NewAdvisor(runner, logger.NewTestLogger(t))

	out := a.Requirements(context.Background(), "Personal Injury", "CA")

	assert.False(t, out.Degraded)
	assert.Equal(t, []string{"Cal. Civ. Code 3333", "Smith v. Jones"}, out.Authorities)
	assert.Equal(t, "CA", runner.req.Jurisdiction)
	assert.ElementsMatch(t, authorityTypes, runner.req.DocumentTypes)
	assert.Contains(t, runner.req.Question, "personal injury claim in CA")

	require.NotEmpty(t, out.RequiredEvidence)
	assert.Equal(t, "medical_records", out.RequiredEvidence[0].Type)
	assert.Contains(t, out.AdmissibilityRules, "hearsay")
	assert.Contains(t, out.AdmissibilityRules, "expert_testimony")
	assert.Equal(t, PreservationGuidelines, out.PreservationGuidelines)
}

func TestRequirements_DegradesToTableOnRetrievalFailure(t *testing.T) {
	a := NewAdvisor(&stubRunner{err: errors.New("both sources down")}, logger.NewTestLogger(t))

	out := a.Requirements(context.Background(), "breach of contract", "NY")

	assert.True(t, out.Degraded)
	assert.Empty(t, out.Authorities)
	assert.Len(t, out.RequiredEvidence, 4)
	assert.Contains(t, out.AdmissibilityRules, "parol_evidence")
}

func TestRequirements_DoesNotShareTableSlices(t *testing.T) {
	a := NewAdvisor(nil, logger.NewTestLogger(t))

	out := a.Requirements(context.Background(), "divorce", "TX")
	out.RequiredEvidence[0].Type = "changed"
	out.AdmissibilityRules["relevance"] = "changed"

	assert.Equal(t, "financial_records", claimTable["divorce"].required[0].Type)
	assert.NotEqual(t, "changed", baseAdmissibility["relevance"])
}
