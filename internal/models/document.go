package models

import (
	"strings"
	"time"
	"unicode"
)

type DocumentType string

const (
	DocTypeStatute    DocumentType = "statute"
	DocTypeCase       DocumentType = "case"
	DocTypeRegulation DocumentType = "regulation"
	DocTypeDefinition DocumentType = "definition"
	DocTypeProcedure  DocumentType = "procedure"
	DocTypeForm       DocumentType = "form"
)

// AllDocumentTypes lists every document type in a stable order.
var AllDocumentTypes = []DocumentType{
	DocTypeStatute, DocTypeCase, DocTypeRegulation, DocTypeDefinition, DocTypeProcedure, DocTypeForm,
}

func (t DocumentType) Valid() bool {
	for _, dt := range AllDocumentTypes {
		if t == dt {
			return true
		}
	}
	return false
}

type JurisdictionLevel string

const (
	LevelFederal JurisdictionLevel = "federal"
	LevelState   JurisdictionLevel = "state"
	LevelCounty  JurisdictionLevel = "county"
	LevelLocal   JurisdictionLevel = "local"
)

type Jurisdiction struct {
	Level  JurisdictionLevel `json:"level"`
	State  string            `json:"state,omitempty"`
	County string            `json:"county,omitempty"`
	Court  string            `json:"court,omitempty"`
}

// Code returns the two-letter filter code: the state, or US for federal documents.
func (j Jurisdiction) Code() string {
	if j.State != "" {
		return j.State
	}
	if j.Level == LevelFederal {
		return "US"
	}
	return ""
}

type DocumentStatus string

const (
	StatusActive     DocumentStatus = "active"
	StatusSuperseded DocumentStatus = "superseded"
	StatusRepealed   DocumentStatus = "repealed"
)

// LegalDocument is a corpus entry as returned by the document store. It is read-only within a query.
type LegalDocument struct {
	ID              string         `json:"id"`
	Type            DocumentType   `json:"type"`
	Title           string         `json:"title"`
	Citation        string         `json:"citation"`
	FullText        string         `json:"fullText,omitempty"`
	Jurisdiction    Jurisdiction   `json:"jurisdiction"`
	PublicationDate *time.Time     `json:"publicationDate,omitempty"`
	EffectiveDate   *time.Time     `json:"effectiveDate,omitempty"`
	Status          DocumentStatus `json:"status"`
	Summary         string         `json:"summary,omitempty"`
	PlainLanguage   string         `json:"plainLanguage,omitempty"`
	ReadingLevel    *float64       `json:"readingLevel,omitempty"`
	Tags            []string       `json:"tags,omitempty"`
}

// Excerpt returns the summary, or the full text cut at maxRunes on a word boundary.
func (d *LegalDocument) Excerpt(maxRunes int) string {
	if d.Summary != "" {
		return d.Summary
	}
	text := strings.TrimSpace(d.FullText)
	runes := []rune(text)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return text
	}
	cut := runes[:maxRunes]
	for i := len(cut) - 1; i > maxRunes/2; i-- {
		if unicode.IsSpace(cut[i]) {
			cut = cut[:i]
			break
		}
	}
	return strings.TrimSpace(string(cut)) + "…"
}

// DocumentMetadata is the snapshot of a document attached to a ranked result.
type DocumentMetadata struct {
	Type          DocumentType   `json:"type"`
	Title         string         `json:"title"`
	Citation      string         `json:"citation"`
	Jurisdiction  Jurisdiction   `json:"jurisdiction"`
	EffectiveDate *time.Time     `json:"effectiveDate,omitempty"`
	Status        DocumentStatus `json:"status,omitempty"`
	Tags          []string       `json:"tags,omitempty"`
}

// HasTag reports whether the document carries tag, ignoring case.
func (m DocumentMetadata) HasTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	for _, t := range m.Tags {
		if strings.EqualFold(strings.TrimSpace(t), tag) {
			return true
		}
	}
	return false
}

func (d *LegalDocument) Metadata() DocumentMetadata {
	return DocumentMetadata{
		Type:          d.Type,
		Title:         d.Title,
		Citation:      d.Citation,
		Jurisdiction:  d.Jurisdiction,
		EffectiveDate: d.EffectiveDate,
		Status:        d.Status,
		Tags:          d.Tags,
	}
}
