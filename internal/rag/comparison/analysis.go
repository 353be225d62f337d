package comparison

import (
	"fmt"
	"strings"

	"legal-rag-workers/internal/models"

	"github.com/hbollon/go-edlib"
)

// RuleSimilarityThreshold is the Levenshtein similarity above which two rules count as equivalent.
const RuleSimilarityThreshold = 0.8

const maxUniqueRulesPerPair = 3

var communityPropertyStates = map[string]bool{
	"AZ": true, "CA": true, "ID": true, "LA": true, "NV": true,
	"NM": true, "TX": true, "WA": true, "WI": true,
}

var maritalPropertyTerms = []string{"property", "marital", "divorce", "spous", "alimony", "community"}

// LegalSystem labels a state's approach to concept when no generated label is available.
func LegalSystem(concept, state string) string {
	c := strings.ToLower(concept)
	for _, term := range maritalPropertyTerms {
		if strings.Contains(c, term) {
			if communityPropertyStates[state] {
				return "community property"
			}
			return "equitable distribution"
		}
	}
	if state == "LA" {
		return "civil law"
	}
	return "common law"
}

// Extract builds a state summary from ranked results alone.
func Extract(concept, state string, results []models.RankedResult) models.StateEntry {
	var rules, citations []string
	for _, r := range results {
		if r.Metadata.Title != "" {
			rules = append(rules, r.Metadata.Title)
		}
		switch r.Metadata.Type {
		case models.DocTypeStatute, models.DocTypeRegulation:
			if r.Metadata.Citation != "" {
				citations = append(citations, r.Metadata.Citation)
			}
		}
	}
	return models.StateEntry{
		LegalSystem:      LegalSystem(concept, state),
		KeyRules:         dedupe(rules),
		StatuteCitations: dedupe(citations),
		UniqueFeatures:   []string{},
	}
}

// Build assembles the comparison in caller state order from per-state entries.
func Build(concept string, states []string, byState map[string]models.StateEntry) *models.StateComparison {
	out := models.NewStateComparison(concept, states)
	var available []models.StateEntry
	for _, s := range states {
		entry, ok := byState[s]
		if !ok {
			entry = models.StateEntry{State: s, Error: "no result"}
		}
		out.Comparisons.Set(s, entry)
		if entry.Available {
			available = append(available, entry)
		}
	}

	out.KeyDifferences = KeyDifferences(concept, available)
	out.Recommendations = Recommendations(concept, available)
	return out
}

// KeyDifferences compares every pair of successful states in order.
func KeyDifferences(concept string, entries []models.StateEntry) []string {
	diffs := []string{}
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i], entries[j]
			if a.LegalSystem != "" && b.LegalSystem != "" && !strings.EqualFold(a.LegalSystem, b.LegalSystem) {
				diffs = append(diffs, fmt.Sprintf("%s follows %s while %s follows %s for %s",
					a.State, a.LegalSystem, b.State, b.LegalSystem, concept))
			}
			for _, r := range uniqueRules(a.KeyRules, b.KeyRules, maxUniqueRulesPerPair) {
				diffs = append(diffs, fmt.Sprintf("%s: %s (no equivalent in %s)", a.State, r, b.State))
			}
			for _, r := range uniqueRules(b.KeyRules, a.KeyRules, maxUniqueRulesPerPair) {
				diffs = append(diffs, fmt.Sprintf("%s: %s (no equivalent in %s)", b.State, r, a.State))
			}
		}
	}
	return diffs
}

// Recommendations are derived from successful states only and end with attorney advice.
func Recommendations(concept string, entries []models.StateEntry) []string {
	recs := []string{}
	if len(entries) == 0 {
		return recs
	}
	if len(entries) > 1 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.State
		}
		recs = append(recs, fmt.Sprintf("Determine which state's law governs your %s matter among %s",
			concept, strings.Join(names, ", ")))
	}
	for _, e := range entries {
		if len(e.StatuteCitations) > 0 {
			recs = append(recs, fmt.Sprintf("In %s, review %s", e.State, strings.Join(e.StatuteCitations, "; ")))
		}
		if strings.EqualFold(e.LegalSystem, "community property") {
			recs = append(recs, fmt.Sprintf("In %s, identify which assets were acquired during the marriage", e.State))
		}
	}
	return append(recs, "Consult with a licensed attorney in each state involved")
}

// AssignUniqueFeatures fills empty UniqueFeatures with the key rules that have
// no equivalent in any other successful state.
func AssignUniqueFeatures(entries []models.StateEntry) {
	for i := range entries {
		if !entries[i].Available || len(entries[i].UniqueFeatures) > 0 {
			continue
		}
		var others []string
		for j := range entries {
			if j != i && entries[j].Available {
				others = append(others, entries[j].KeyRules...)
			}
		}
		if len(others) == 0 {
			entries[i].UniqueFeatures = []string{}
			continue
		}
		entries[i].UniqueFeatures = uniqueRules(entries[i].KeyRules, others, len(entries[i].KeyRules))
	}
}

// uniqueRules returns up to limit rules of a that are not similar to any rule of b.
func uniqueRules(a, b []string, limit int) []string {
	out := []string{}
	for _, r := range a {
		if len(out) >= limit {
			break
		}
		if !hasSimilar(r, b) {
			out = append(out, r)
		}
	}
	return out
}

func hasSimilar(rule string, candidates []string) bool {
	r := strings.ToLower(rule)
	for _, c := range candidates {
		sim, err := edlib.StringsSimilarity(r, strings.ToLower(c), edlib.Levenshtein)
		if err == nil && sim >= RuleSimilarityThreshold {
			return true
		}
	}
	return false
}
