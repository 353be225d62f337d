// Package relevance calls a hosted cross-encoder that scores question/passage pairs.
package relevance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"legal-rag-workers/internal/common/errors"
	httpclient "legal-rag-workers/internal/common/http"
)

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

type Scorer struct {
	client  *httpclient.Client
	baseURL string
	apiKey  string
}

type scoreRequest struct {
	Query   string `json:"query"`
	Passage string `json:"passage"`
}

type scoreResponse struct {
	Score float64 `json:"score"`
}

func NewScorer(cfg Config) *Scorer {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Scorer{
		client:  httpclient.NewClient(cfg.Timeout).WithRetries(cfg.MaxRetries, 100*time.Millisecond),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}
}

// Score returns the cross-encoder relevance of passage to question. Higher is more relevant.
func (s *Scorer) Score(ctx context.Context, question, passage string) (float64, error) {
	body, err := json.Marshal(scoreRequest{Query: question, Passage: passage})
	if err != nil {
		return 0, errors.NewRelevanceScoringFailedError(err)
	}

	resp, err := s.client.DoWithRetry(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/score", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if s.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+s.apiKey)
		}
		return req, nil
	})
	if err != nil {
		return 0, errors.NewRelevanceScoringFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, errors.NewRelevanceScoringFailedError(
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))))
	}

	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, errors.NewRelevanceScoringFailedError(fmt.Errorf("decode score: %w", err))
	}
	return out.Score, nil
}
