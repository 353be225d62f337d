// internal/workers/legal/legal-query/handler.go
package legalquery

import (
	"context"
	"time"

	"legal-rag-workers/internal/common/camunda"
	"legal-rag-workers/internal/common/errors"
	"legal-rag-workers/internal/common/logger"
	"legal-rag-workers/internal/common/metrics"
	"legal-rag-workers/internal/common/validation"
	"legal-rag-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "legal-query"

var ErrInvalidDate = errors.NewInvalidInputError("dateRange", "dates must use the YYYY-MM-DD format")

// Service answers a natural-language legal question.
type Service interface {
	Query(ctx context.Context, req models.QueryRequest) (*models.Response, error)
}

type Handler struct {
	config  *Config
	service Service
	schema  map[string]interface{}
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(cfg *Config, service Service, schema map[string]interface{}, log logger.Logger) *Handler {
	return &Handler{
		config:  cfg,
		service: service,
		schema:  schema,
		errors:  errors.NewErrorHandler(log),
		logger:  log.With(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing legal query", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		return h.failJob(ctx, client, job, err)
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		return h.failJob(ctx, client, job, err)
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return err
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.logger.Info("Legal query completed", map[string]interface{}{
		"jobKey":     job.GetKey(),
		"results":    len(output.LegalResponse.Results),
		"confidence": output.Confidence,
		"degraded":   output.Degraded,
	})
	return nil
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	var input Input
	if err := camunda.DecodeJob(job, h.schema, &input); err != nil {
		return nil, err
	}
	return &input, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) error {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
	return err
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	req, err := toRequest(input)
	if err != nil {
		return nil, err
	}

	resp, err := h.service.Query(ctx, req)
	if err != nil {
		return nil, err
	}

	return &Output{
		LegalResponse: resp,
		Confidence:    resp.Confidence,
		Degraded:      resp.Provenance.Degraded,
	}, nil
}

// Execute runs the query without a Zeebe job.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func toRequest(input *Input) (models.QueryRequest, error) {
	req := models.QueryRequest{
		Question:             input.Question,
		Jurisdiction:         input.Jurisdiction,
		MaxResults:           input.MaxResults,
		IncludePlainLanguage: input.IncludePlainLanguage == nil || *input.IncludePlainLanguage,
	}

	types, err := validation.NormalizeDocumentTypes(input.DocumentTypes)
	if err != nil {
		return req, err
	}
	req.DocumentTypes = types

	if input.DateRange != nil {
		from, err := parseDate(input.DateRange.From)
		if err != nil {
			return req, err
		}
		to, err := parseDate(input.DateRange.To)
		if err != nil {
			return req, err
		}
		if from != nil || to != nil {
			req.DateRange = &models.DateRange{From: from, To: to}
		}
	}
	return req, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &t, nil
}
