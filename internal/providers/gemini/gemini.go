// Package gemini implements the embedder and generator on the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"legal-rag-workers/internal/common/errors"
	"legal-rag-workers/internal/common/logger"

	"google.golang.org/genai"
)

// contentGenerator is the subset of genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

type Config struct {
	APIKey          string
	GenerationModel string
	EmbeddingModel  string
	Timeout         time.Duration
	Temperature     float32
}

type Client struct {
	models contentGenerator
	config Config
	logger logger.Logger
}

// New creates a Gemini API client.
func New(ctx context.Context, cfg Config, log logger.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return newWithModels(client.Models, cfg, log), nil
}

func newWithModels(models contentGenerator, cfg Config, log logger.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{models: models, config: cfg, logger: log}
}

// Generate returns the model's text answer to prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.config.Temperature),
	})
}

// GenerateJSON asks for a JSON answer and decodes it into v.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, v interface{}) error {
	text, err := c.generate(ctx, prompt, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), v); err != nil {
		return errors.NewGenerationFailedError(fmt.Errorf("malformed json answer: %w", err))
	}
	return nil
}

func (c *Client) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	resp, err := c.models.GenerateContent(ctx, c.config.GenerationModel, genai.Text(prompt), cfg)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return "", errors.NewGenerationTimeoutError(err)
		}
		c.logger.Warn("generation failed", map[string]interface{}{
			"model": c.config.GenerationModel,
			"error": err.Error(),
		})
		return "", errors.NewGenerationFailedError(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.NewGenerationFailedError(fmt.Errorf("empty answer from %s", c.config.GenerationModel))
	}
	return text, nil
}

// Embed returns the embedding of text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	resp, err := c.models.EmbedContent(ctx, c.config.EmbeddingModel, genai.Text(text), &genai.EmbedContentConfig{
		TaskType: "RETRIEVAL_QUERY",
	})
	if err != nil {
		return nil, errors.NewEmbeddingFailedError(err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.NewEmbeddingFailedError(fmt.Errorf("no embedding returned by %s", c.config.EmbeddingModel))
	}
	return resp.Embeddings[0].Values, nil
}

// stripCodeFence removes a ```json fence some models wrap around JSON answers.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
