// Package documentstore reads documents, definitions and procedures from the corpus database.
package documentstore

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"legal-rag-workers/internal/common/errors"
	"legal-rag-workers/internal/models"

	"github.com/lib/pq"
)

const documentColumns = `id, doc_type, title, citation, full_text, jurisdiction_level, jurisdiction_state,
	jurisdiction_county, jurisdiction_court, publication_date, effective_date, status, summary,
	plain_language, reading_level, tags`

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*models.LegalDocument, error) {
	var doc models.LegalDocument
	var docType, level, status string
	var state, county, court sql.NullString
	var citation, fullText, summary, plain sql.NullString
	var publication, effective sql.NullTime
	var readingLevel sql.NullFloat64
	var tags pq.StringArray
	if err := row.Scan(&doc.ID, &docType, &doc.Title, &citation, &fullText, &level, &state,
		&county, &court, &publication, &effective, &status, &summary, &plain, &readingLevel, &tags); err != nil {
		return nil, err
	}

	doc.Type = models.DocumentType(docType)
	doc.Status = models.DocumentStatus(status)
	doc.Citation = citation.String
	doc.FullText = fullText.String
	doc.Summary = summary.String
	doc.PlainLanguage = plain.String
	doc.Jurisdiction = models.Jurisdiction{
		Level:  models.JurisdictionLevel(level),
		State:  state.String,
		County: county.String,
		Court:  court.String,
	}
	if publication.Valid {
		t := publication.Time
		doc.PublicationDate = &t
	}
	if effective.Valid {
		t := effective.Time
		doc.EffectiveDate = &t
	}
	if readingLevel.Valid {
		v := readingLevel.Float64
		doc.ReadingLevel = &v
	}
	doc.Tags = []string(tags)
	return &doc, nil
}

// Fetch returns one document or a DOCUMENT_NOT_FOUND error.
func (s *Store) Fetch(ctx context.Context, id string) (*models.LegalDocument, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM legal_documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewDocumentNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewDocumentStoreError("fetch", err)
	}
	return doc, nil
}

// FetchMany returns the documents that exist among ids, keyed by id.
func (s *Store) FetchMany(ctx context.Context, ids []string) (map[string]*models.LegalDocument, error) {
	out := make(map[string]*models.LegalDocument, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+documentColumns+` FROM legal_documents WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, errors.NewDocumentStoreError("fetch_many", err)
	}
	defer rows.Close()

	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, errors.NewDocumentStoreError("fetch_many", err)
		}
		out[doc.ID] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDocumentStoreError("fetch_many", err)
	}
	return out, nil
}

// SearchDefinitions returns stored definitions for term, case-insensitive.
// With a jurisdiction, entries for that jurisdiction sort before general ones.
func (s *Store) SearchDefinitions(ctx context.Context, term, jurisdiction string) ([]models.Definition, error) {
	query := `SELECT term, definition, plain_language, jurisdiction, source, citation, related_terms, examples
		FROM legal_definitions WHERE lower(term) = lower($1)`
	args := []interface{}{strings.TrimSpace(term)}
	if jurisdiction != "" {
		query += ` AND (jurisdiction = $2 OR jurisdiction IS NULL OR jurisdiction = '')
		ORDER BY CASE WHEN jurisdiction = $2 THEN 0 ELSE 1 END, source`
		args = append(args, jurisdiction)
	} else {
		query += ` ORDER BY source`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewDocumentStoreError("search_definitions", err)
	}
	defer rows.Close()

	var defs []models.Definition
	for rows.Next() {
		var d models.Definition
		var plain, jur, citation sql.NullString
		var related, examples pq.StringArray
		if err := rows.Scan(&d.Term, &d.Definition, &plain, &jur, &d.Source, &citation, &related, &examples); err != nil {
			return nil, errors.NewDocumentStoreError("search_definitions", err)
		}
		d.PlainLanguage = plain.String
		d.Jurisdiction = jur.String
		d.Citation = citation.String
		d.RelatedTerms = []string(related)
		d.Examples = []string(examples)
		defs = append(defs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDocumentStoreError("search_definitions", err)
	}
	return defs, nil
}

// FetchProcedure returns the catalogued procedure, or nil when none is stored.
func (s *Store) FetchProcedure(ctx context.Context, procedureType, jurisdiction string) (*models.Procedure, error) {
	row := s.db.QueryRowContext(ctx, `SELECT procedure_type, jurisdiction, steps, time_estimates, required_forms,
		cost_estimate, governing_statutes FROM legal_procedures
		WHERE lower(procedure_type) = lower($1) AND jurisdiction = $2`, procedureType, jurisdiction)

	var p models.Procedure
	var steps, estimates []byte
	var forms, statutes pq.StringArray
	var cost sql.NullString
	err := row.Scan(&p.ProcedureType, &p.Jurisdiction, &steps, &estimates, &forms, &cost, &statutes)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewDocumentStoreError("fetch_procedure", err)
	}

	if len(steps) > 0 {
		if err := json.Unmarshal(steps, &p.Steps); err != nil {
			return nil, errors.NewDocumentStoreError("fetch_procedure", fmt.Errorf("decode steps: %w", err))
		}
	}
	if len(estimates) > 0 {
		if err := json.Unmarshal(estimates, &p.TimeEstimates); err != nil {
			return nil, errors.NewDocumentStoreError("fetch_procedure", fmt.Errorf("decode time estimates: %w", err))
		}
	}
	p.RequiredForms = []string(forms)
	p.GoverningStatutes = []string(statutes)
	p.CostEstimate = cost.String
	p.Source = "catalog"
	return &p, nil
}
