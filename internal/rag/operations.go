package rag

import (
	"context"
	"fmt"
	"strings"

	"legal-rag-workers/internal/analytics"
	"legal-rag-workers/internal/common/errors"
	"legal-rag-workers/internal/common/validation"
	"legal-rag-workers/internal/models"
	"legal-rag-workers/internal/stores/cache"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const procedureResults = 10

var procedureTypes = []models.DocumentType{models.DocTypeProcedure, models.DocTypeForm, models.DocTypeStatute}

// GetDefinition serves a stored definition through the cache, falling back to a
// definition-only pipeline query. Generated plain language is never cached.
func (a *Agent) GetDefinition(ctx context.Context, term, jurisdiction string, plainLanguage bool) (*models.Definition, error) {
	start := a.now()
	def, err := a.getDefinition(ctx, term, jurisdiction, plainLanguage)
	a.report(ctx, analytics.Event{Operation: "get_definition", Subject: term, Jurisdiction: jurisdiction, ResultCount: count(def != nil)}, start, err)
	return def, err
}

func (a *Agent) getDefinition(ctx context.Context, term, jurisdiction string, plainLanguage bool) (*models.Definition, error) {
	term, err := validation.RequireText("term", term)
	if err != nil {
		return nil, err
	}
	if jurisdiction, err = validation.NormalizeOptionalJurisdiction(jurisdiction); err != nil {
		return nil, err
	}

	ctx, span := a.deps.Tracer.Start(ctx, "legal.get_definition", trace.WithAttributes(attribute.String("term", term)))
	defer span.End()

	key := cache.DefinitionKey(term, jurisdiction)
	def, hit := a.cachedDefinition(ctx, key)
	if !hit {
		var stored bool
		if def, stored, err = a.lookupDefinition(ctx, term, jurisdiction); err != nil {
			return nil, err
		}
		if stored && a.deps.DefinitionCache != nil {
			if err := a.deps.DefinitionCache.Set(ctx, key, def, a.config.DefinitionTTL); err != nil {
				a.logger.Warn("failed to cache definition", map[string]interface{}{"key": key, "error": err.Error()})
			}
		}
	}
	span.SetAttributes(attribute.Bool("cache_hit", hit))

	if !plainLanguage {
		def.PlainLanguage = ""
		return def, nil
	}
	if def.PlainLanguage == "" && a.deps.Generator != nil {
		text, err := a.deps.Generator.Generate(ctx, definitionPrompt(def))
		if err != nil {
			a.logger.Warn("plain language generation failed", map[string]interface{}{"term": term, "error": err.Error()})
		} else {
			def.PlainLanguage = strings.TrimSpace(text)
		}
	}
	return def, nil
}

func (a *Agent) cachedDefinition(ctx context.Context, key string) (*models.Definition, bool) {
	if a.deps.DefinitionCache == nil {
		return nil, false
	}
	var def models.Definition
	hit, err := a.deps.DefinitionCache.Get(ctx, key, &def)
	if err != nil {
		a.logger.Warn("definition cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		return nil, false
	}
	if !hit {
		return nil, false
	}
	return &def, true
}

// lookupDefinition reports stored=true only for an entry from the definitions
// table; pipeline-built definitions are not cached.
func (a *Agent) lookupDefinition(ctx context.Context, term, jurisdiction string) (def *models.Definition, stored bool, err error) {
	defs, err := a.deps.Documents.SearchDefinitions(ctx, term, jurisdiction)
	if err != nil {
		return nil, false, err
	}
	if len(defs) > 0 {
		d := defs[0]
		return &d, true, nil
	}

	resp, err := a.runQuery(ctx, models.QueryRequest{
		Question:      "definition of " + term,
		Jurisdiction:  jurisdiction,
		DocumentTypes: []models.DocumentType{models.DocTypeDefinition},
		MaxResults:    1,
	})
	if err != nil {
		return nil, false, err
	}
	if len(resp.Results) == 0 {
		return nil, false, errors.NewDefinitionNotFoundError(term, jurisdiction)
	}
	top := resp.Results[0]
	return &models.Definition{
		Term:         term,
		Definition:   top.Excerpt,
		Jurisdiction: top.Metadata.Jurisdiction.Code(),
		Source:       top.Metadata.Title,
		Citation:     top.Metadata.Citation,
	}, false, nil
}

func definitionPrompt(d *models.Definition) string {
	return fmt.Sprintf("Explain the legal term %q in plain language a non-lawyer can follow, in two or three sentences. "+
		"Do not give legal advice.\n\nLegal definition: %s", d.Term, d.Definition)
}

// GetProcedure serves a catalogued procedure, or assembles one from retrieved
// procedure, form and statute documents.
func (a *Agent) GetProcedure(ctx context.Context, procedureType, jurisdiction string) (*models.Procedure, error) {
	start := a.now()
	proc, err := a.getProcedure(ctx, procedureType, jurisdiction)
	ev := analytics.Event{Operation: "get_procedure", Subject: procedureType, Jurisdiction: jurisdiction}
	if proc != nil {
		ev.ResultCount = len(proc.Steps)
	}
	a.report(ctx, ev, start, err)
	return proc, err
}

func (a *Agent) getProcedure(ctx context.Context, procedureType, jurisdiction string) (*models.Procedure, error) {
	procedureType, err := validation.RequireText("procedureType", procedureType)
	if err != nil {
		return nil, err
	}
	if jurisdiction, err = validation.NormalizeJurisdiction(jurisdiction); err != nil {
		return nil, err
	}

	ctx, span := a.deps.Tracer.Start(ctx, "legal.get_procedure", trace.WithAttributes(
		attribute.String("procedure_type", procedureType),
		attribute.String("jurisdiction", jurisdiction),
	))
	defer span.End()

	proc, err := a.deps.Documents.FetchProcedure(ctx, procedureType, jurisdiction)
	if err != nil {
		return nil, err
	}
	if proc != nil {
		return proc, nil
	}

	resp, err := a.runQuery(ctx, models.QueryRequest{
		Question:      fmt.Sprintf("how to %s in %s", strings.ReplaceAll(procedureType, "_", " "), jurisdiction),
		Jurisdiction:  jurisdiction,
		DocumentTypes: procedureTypes,
		MaxResults:    procedureResults,
	})
	if err != nil {
		return nil, err
	}

	proc = AssembleProcedure(procedureType, jurisdiction, resp.Results)
	if len(proc.Steps) == 0 && len(proc.RequiredForms) == 0 {
		return nil, errors.NewProcedureNotFoundError(procedureType, jurisdiction)
	}
	return proc, nil
}

// AssembleProcedure turns ranked results into a procedure in rank order.
func AssembleProcedure(procedureType, jurisdiction string, results []models.RankedResult) *models.Procedure {
	proc := &models.Procedure{
		ProcedureType:     procedureType,
		Jurisdiction:      jurisdiction,
		Steps:             []models.ProcedureStep{},
		TimeEstimates:     map[string]string{},
		RequiredForms:     []string{},
		GoverningStatutes: []string{},
		Source:            "retrieval",
	}
	for _, r := range results {
		switch r.Metadata.Type {
		case models.DocTypeProcedure:
			proc.Steps = append(proc.Steps, models.ProcedureStep{
				Number:      len(proc.Steps) + 1,
				Title:       r.Metadata.Title,
				Description: r.Excerpt,
			})
		case models.DocTypeForm:
			proc.RequiredForms = append(proc.RequiredForms, labelOf(r))
		case models.DocTypeStatute:
			proc.GoverningStatutes = append(proc.GoverningStatutes, labelOf(r))
		}
	}
	return proc
}

func labelOf(r models.RankedResult) string {
	if r.Metadata.Citation != "" {
		return r.Metadata.Citation
	}
	return r.Metadata.Title
}

// CompareStates runs the concept through the pipeline once per state.
func (a *Agent) CompareStates(ctx context.Context, concept string, states []string) (*models.StateComparison, error) {
	start := a.now()
	out, err := a.compareStates(ctx, concept, states)
	ev := analytics.Event{Operation: "compare_states", Subject: concept, Jurisdiction: strings.Join(states, ",")}
	if out != nil {
		for _, e := range out.Entries() {
			if e.Available {
				ev.ResultCount++
			} else {
				ev.Degraded = true
			}
		}
	}
	a.report(ctx, ev, start, err)
	return out, err
}

func (a *Agent) compareStates(ctx context.Context, concept string, states []string) (*models.StateComparison, error) {
	concept, err := validation.RequireText("concept", concept)
	if err != nil {
		return nil, err
	}
	if states, err = validation.NormalizeStates(states); err != nil {
		return nil, err
	}

	ctx, span := a.deps.Tracer.Start(ctx, "legal.compare_states", trace.WithAttributes(
		attribute.String("concept", concept),
		attribute.StringSlice("states", states),
	))
	defer span.End()

	return a.comparator.Compare(ctx, concept, states)
}

// GetEvidenceRequirements never fails after validation; missing authorities mark the result degraded.
func (a *Agent) GetEvidenceRequirements(ctx context.Context, claimType, jurisdiction string) (*models.EvidenceRequirements, error) {
	start := a.now()
	out, err := a.getEvidenceRequirements(ctx, claimType, jurisdiction)
	ev := analytics.Event{Operation: "get_evidence_requirements", Subject: claimType, Jurisdiction: jurisdiction}
	if out != nil {
		ev.ResultCount = len(out.RequiredEvidence)
		ev.Degraded = out.Degraded
	}
	a.report(ctx, ev, start, err)
	return out, err
}

func (a *Agent) getEvidenceRequirements(ctx context.Context, claimType, jurisdiction string) (*models.EvidenceRequirements, error) {
	claimType, err := validation.RequireText("claimType", claimType)
	if err != nil {
		return nil, err
	}
	if jurisdiction, err = validation.NormalizeJurisdiction(jurisdiction); err != nil {
		return nil, err
	}

	ctx, span := a.deps.Tracer.Start(ctx, "legal.get_evidence_requirements", trace.WithAttributes(
		attribute.String("claim_type", claimType),
		attribute.String("jurisdiction", jurisdiction),
	))
	defer span.End()

	return a.evidence.Requirements(ctx, claimType, jurisdiction), nil
}

// AnalyzeCitationNetwork returns the bounded citation graph around caseID.
func (a *Agent) AnalyzeCitationNetwork(ctx context.Context, caseID string, depth int) (*models.CitationGraph, error) {
	start := a.now()
	out, err := a.analyzeCitationNetwork(ctx, caseID, depth)
	ev := analytics.Event{Operation: "analyze_citation_network", Subject: caseID}
	if out != nil {
		ev.ResultCount = len(out.Cites) + len(out.CitedBy)
	}
	a.report(ctx, ev, start, err)
	return out, err
}

func (a *Agent) analyzeCitationNetwork(ctx context.Context, caseID string, depth int) (*models.CitationGraph, error) {
	caseID, err := validation.RequireText("caseId", caseID)
	if err != nil {
		return nil, err
	}
	if depth < 1 {
		return nil, errors.NewInvalidInputError("depth", fmt.Sprintf("must be at least 1, got %d", depth))
	}

	ctx, span := a.deps.Tracer.Start(ctx, "legal.analyze_citation_network", trace.WithAttributes(
		attribute.String("case_id", caseID),
		attribute.Int("depth", depth),
	))
	defer span.End()

	return a.deps.Citations.Analyze(ctx, caseID, depth)
}

func count(ok bool) int {
	if ok {
		return 1
	}
	return 0
}
