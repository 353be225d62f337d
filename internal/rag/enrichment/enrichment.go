// Package enrichment decorates ranked results with definitions, cross-references,
// plain-language text and next steps.
package enrichment

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"legal-rag-workers/internal/common/errors"
	"legal-rag-workers/internal/common/logger"
	"legal-rag-workers/internal/models"
)

const crossReferenceDepth = 1

type DefinitionSource interface {
	SearchDefinitions(ctx context.Context, term, jurisdiction string) ([]models.Definition, error)
}

type CitationAnalyzer interface {
	Analyze(ctx context.Context, caseID string, depth int) (*models.CitationGraph, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Enricher struct {
	definitions DefinitionSource
	citations   CitationAnalyzer
	generator   Generator
	callTimeout time.Duration
	logger      logger.Logger
}

type Input struct {
	Intent               models.Intent
	Jurisdiction         string
	Results              []models.RankedResult
	IncludePlainLanguage bool
}

type Output struct {
	Results         []models.RankedResult
	Definitions     []models.Definition
	CrossReferences []models.CrossReference
	NextSteps       []string
}

// NewEnricher accepts nil collaborators; the matching enrichment is then skipped.
func NewEnricher(defs DefinitionSource, citations CitationAnalyzer, gen Generator, callTimeout time.Duration, log logger.Logger) *Enricher {
	return &Enricher{definitions: defs, citations: citations, generator: gen, callTimeout: callTimeout, logger: log}
}

// Enrich never fails; collaborator errors drop the affected enrichment only.
// The input results are copied, never modified.
func (e *Enricher) Enrich(ctx context.Context, in Input) Output {
	results := make([]models.RankedResult, len(in.Results))
	copy(results, in.Results)

	var caseIDs []string
	for _, r := range results {
		if r.Metadata.Type == models.DocTypeCase {
			caseIDs = append(caseIDs, r.DocumentID)
		}
	}

	var (
		wg    sync.WaitGroup
		defs  []models.Definition
		xrefs []models.CrossReference
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		defs = e.lookupDefinitions(ctx, taggedConcepts(in.Intent.Concepts, results), in.Jurisdiction)
	}()
	go func() {
		defer wg.Done()
		xrefs = e.crossReferences(ctx, caseIDs)
	}()
	go func() {
		defer wg.Done()
		e.plainLanguage(ctx, results, in.IncludePlainLanguage)
	}()
	wg.Wait()

	return Output{
		Results:         results,
		Definitions:     defs,
		CrossReferences: xrefs,
		NextSteps:       NextSteps(in.Intent.Type),
	}
}

func (e *Enricher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.callTimeout)
}

// lookupDefinitions returns at most one definition per concept, deduplicated by term case-insensitively.
func (e *Enricher) lookupDefinitions(ctx context.Context, concepts []string, jurisdiction string) []models.Definition {
	out := []models.Definition{}
	if e.definitions == nil {
		return out
	}
	terms := uniqueFold(concepts)
	found := make([]*models.Definition, len(terms))

	var wg sync.WaitGroup
	for i, term := range terms {
		wg.Add(1)
		go func(i int, term string) {
			defer wg.Done()
			cctx, cancel := e.withTimeout(ctx)
			defer cancel()
			defs, err := e.definitions.SearchDefinitions(cctx, term, jurisdiction)
			if err != nil {
				e.logger.Warn("definition lookup failed", map[string]interface{}{"term": term, "error": err.Error()})
				return
			}
			if len(defs) > 0 {
				found[i] = &defs[0]
			}
		}(i, term)
	}
	wg.Wait()

	seen := make(map[string]bool, len(found))
	for _, d := range found {
		if d == nil {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(d.Term))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, *d)
	}
	return out
}

// crossReferences lists the direct citations of every case result.
func (e *Enricher) crossReferences(ctx context.Context, caseIDs []string) []models.CrossReference {
	out := []models.CrossReference{}
	if e.citations == nil {
		return out
	}
	graphs := make([]*models.CitationGraph, len(caseIDs))

	var wg sync.WaitGroup
	for i, id := range caseIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			cctx, cancel := e.withTimeout(ctx)
			defer cancel()
			g, err := e.citations.Analyze(cctx, id, crossReferenceDepth)
			if err != nil {
				if !stderrors.Is(err, errors.ErrCaseNotFound) {
					e.logger.Warn("cross-reference lookup failed", map[string]interface{}{"caseId": id, "error": err.Error()})
				}
				return
			}
			graphs[i] = g
		}(i, id)
	}
	wg.Wait()

	for i, g := range graphs {
		if g == nil {
			continue
		}
		for _, c := range g.Cites {
			out = append(out, models.CrossReference{FromDocumentID: caseIDs[i], CaseID: c, Relation: string(models.DirectionCites)})
		}
		for _, c := range g.CitedBy {
			out = append(out, models.CrossReference{FromDocumentID: caseIDs[i], CaseID: c, Relation: string(models.DirectionCitedBy)})
		}
	}
	return out
}

// plainLanguage fills in missing translations in place, or strips them when not requested.
func (e *Enricher) plainLanguage(ctx context.Context, results []models.RankedResult, include bool) {
	if !include {
		for i := range results {
			results[i].PlainLanguage = ""
		}
		return
	}
	if e.generator == nil {
		return
	}

	var wg sync.WaitGroup
	for i := range results {
		if results[i].PlainLanguage != "" {
			continue
		}
		wg.Add(1)
		go func(r *models.RankedResult) {
			defer wg.Done()
			cctx, cancel := e.withTimeout(ctx)
			defer cancel()
			text, err := e.generator.Generate(cctx, PlainLanguagePrompt(*r))
			if err != nil {
				e.logger.Debug("plain language generation failed", map[string]interface{}{
					"documentId": r.DocumentID,
					"error":      err.Error(),
				})
				return
			}
			r.PlainLanguage = strings.TrimSpace(text)
		}(&results[i])
	}
	wg.Wait()
}

func PlainLanguagePrompt(r models.RankedResult) string {
	return fmt.Sprintf("Explain the following %s in plain language a non-lawyer can follow. "+
		"Keep it under 120 words and do not give legal advice.\n\nTitle: %s\nCitation: %s\n\n%s",
		r.Metadata.Type, r.Metadata.Title, r.Metadata.Citation, r.Excerpt)
}

// taggedConcepts keeps the concepts that at least one result is tagged with.
func taggedConcepts(concepts []string, results []models.RankedResult) []string {
	var out []string
	for _, c := range concepts {
		for _, r := range results {
			if r.Metadata.HasTag(c) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func uniqueFold(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		key := strings.ToLower(it)
		if it == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out
}
