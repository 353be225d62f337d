package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "legal-rag-workers/internal/common/errors"
	"legal-rag-workers/internal/models"
)

const (
	MinMaxResults = 1
	MaxMaxResults = 20
	MinStates     = 2
	MaxStates     = 5
)

var jurisdictionPattern = regexp.MustCompile(`^[A-Z]{2}$`)

// supportedJurisdictions lists the fifty states, DC and US for federal law.
var supportedJurisdictions = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true, "CT": true, "DE": true,
	"FL": true, "GA": true, "HI": true, "ID": true, "IL": true, "IN": true, "IA": true, "KS": true,
	"KY": true, "LA": true, "ME": true, "MD": true, "MA": true, "MI": true, "MN": true, "MS": true,
	"MO": true, "MT": true, "NE": true, "NV": true, "NH": true, "NJ": true, "NM": true, "NY": true,
	"NC": true, "ND": true, "OH": true, "OK": true, "OR": true, "PA": true, "RI": true, "SC": true,
	"SD": true, "TN": true, "TX": true, "UT": true, "VT": true, "VA": true, "WA": true, "WV": true,
	"WI": true, "WY": true, "DC": true, "US": true,
}

// NormalizeJurisdiction upper-cases and validates a two-letter jurisdiction code.
func NormalizeJurisdiction(code string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if !jurisdictionPattern.MatchString(normalized) || !supportedJurisdictions[normalized] {
		return "", apperrors.NewInvalidJurisdictionError(code)
	}
	return normalized, nil
}

// NormalizeOptionalJurisdiction accepts an empty code.
func NormalizeOptionalJurisdiction(code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", nil
	}
	return NormalizeJurisdiction(code)
}

// NormalizeStates validates a comparison state list, keeping caller order.
func NormalizeStates(states []string) ([]string, error) {
	if len(states) < MinStates || len(states) > MaxStates {
		return nil, apperrors.NewInvalidInputError("states",
			fmt.Sprintf("expected %d to %d states, got %d", MinStates, MaxStates, len(states)))
	}

	seen := make(map[string]bool, len(states))
	out := make([]string, 0, len(states))
	for _, s := range states {
		code, err := NormalizeJurisdiction(s)
		if err != nil {
			return nil, err
		}
		if code == "US" {
			return nil, apperrors.NewInvalidJurisdictionError(s)
		}
		if seen[code] {
			return nil, apperrors.NewInvalidInputError("states", fmt.Sprintf("duplicate state %s", code))
		}
		seen[code] = true
		out = append(out, code)
	}
	return out, nil
}

// NormalizeMaxResults returns def for zero and rejects values outside 1..20.
func NormalizeMaxResults(n, def int) (int, error) {
	if n == 0 {
		return def, nil
	}
	if n < MinMaxResults || n > MaxMaxResults {
		return 0, apperrors.NewInvalidInputError("maxResults",
			fmt.Sprintf("must be between %d and %d, got %d", MinMaxResults, MaxMaxResults, n))
	}
	return n, nil
}

// NormalizeDocumentTypes validates and de-duplicates a document type allow-list.
func NormalizeDocumentTypes(types []string) ([]models.DocumentType, error) {
	if len(types) == 0 {
		return nil, nil
	}
	seen := make(map[models.DocumentType]bool, len(types))
	out := make([]models.DocumentType, 0, len(types))
	for _, t := range types {
		dt := models.DocumentType(strings.ToLower(strings.TrimSpace(t)))
		if !dt.Valid() {
			return nil, apperrors.NewInvalidInputError("documentTypes", fmt.Sprintf("unknown document type %q", t))
		}
		if !seen[dt] {
			seen[dt] = true
			out = append(out, dt)
		}
	}
	return out, nil
}

// ValidateDateRange checks that from is not after to when both are set.
func ValidateDateRange(r *models.DateRange) error {
	if r == nil || r.From == nil || r.To == nil {
		return nil
	}
	if r.From.After(*r.To) {
		return apperrors.NewInvalidInputError("dateRange",
			fmt.Sprintf("from %s is after to %s", r.From.Format(time.DateOnly), r.To.Format(time.DateOnly)))
	}
	return nil
}

// RequireText rejects empty or whitespace-only text fields.
func RequireText(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", apperrors.NewInvalidInputError(field, "must not be empty")
	}
	return trimmed, nil
}
