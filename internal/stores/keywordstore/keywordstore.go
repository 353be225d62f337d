// Package keywordstore runs BM25 search over the legal corpus index in Elasticsearch.
package keywordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"legal-rag-workers/internal/common/errors"
	"legal-rag-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const source = string(models.SourceKeyword)

// searchFields are the analysed fields, boosted towards titles and citations.
var searchFields = []string{"title^3", "citation^2", "summary^1.5", "full_text", "tags"}

type Store struct {
	transport esapi.Transport
	index     string
}

// New accepts any esapi.Transport; *elasticsearch.Client satisfies it.
func New(transport esapi.Transport, index string) *Store {
	return &Store{transport: transport, index: index}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID    string  `json:"_id"`
			Score float64 `json:"_score"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search returns up to topK documents ranked by BM25 relevance to text.
func (s *Store) Search(ctx context.Context, text string, filters models.SearchFilters, topK int) ([]models.SearchHit, error) {
	if topK <= 0 {
		return nil, nil
	}

	body, err := json.Marshal(BuildQuery(text, filters, topK))
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(source, fmt.Errorf("encode keyword query: %w", err))
	}

	req := esapi.SearchRequest{
		Index:          []string{s.index},
		Body:           bytes.NewReader(body),
		SourceIncludes: []string{"id"},
	}
	res, err := req.Do(ctx, s.transport)
	if err != nil {
		return nil, errors.NewSearchError(ctx, source, fmt.Errorf("keyword search: %w", err))
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError(source, fmt.Errorf("keyword search failed: %s", res.String()))
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, errors.NewSearchError(ctx, source, fmt.Errorf("decode keyword response: %w", err))
	}

	hits := make([]models.SearchHit, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		hits = append(hits, models.SearchHit{
			DocumentID: h.ID,
			Source:     models.SourceKeyword,
			Rank:       len(hits) + 1,
			Score:      h.Score,
		})
	}
	return hits, nil
}

// BuildQuery renders the bool query: multi_match scoring with non-scoring filters.
func BuildQuery(text string, filters models.SearchFilters, topK int) map[string]interface{} {
	filterClauses := []interface{}{}

	switch filters.Jurisdiction {
	case "":
	case "US":
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"jurisdiction.level": string(models.LevelFederal)},
		})
	default:
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"jurisdiction.state": filters.Jurisdiction},
		})
	}

	if len(filters.DocumentTypes) > 0 {
		types := make([]string, len(filters.DocumentTypes))
		for i, t := range filters.DocumentTypes {
			types[i] = string(t)
		}
		filterClauses = append(filterClauses, map[string]interface{}{
			"terms": map[string]interface{}{"type": types},
		})
	}

	if r := filters.DateRange; r != nil && (r.From != nil || r.To != nil) {
		rng := map[string]interface{}{}
		if r.From != nil {
			rng["gte"] = r.From.Format(time.DateOnly)
		}
		if r.To != nil {
			rng["lte"] = r.To.Format(time.DateOnly)
		}
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{"effective_date": rng},
		})
	}

	return map[string]interface{}{
		"size": topK,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{
						"multi_match": map[string]interface{}{
							"query":  text,
							"fields": searchFields,
							"type":   "best_fields",
						},
					},
				},
				"filter": filterClauses,
			},
		},
	}
}
