// internal/workers/legal/get-legal-definition/handler.go
package getlegaldefinition

import (
	"context"
	"time"

	"legal-rag-workers/internal/common/camunda"
	"legal-rag-workers/internal/common/errors"
	"legal-rag-workers/internal/common/logger"
	"legal-rag-workers/internal/common/metrics"
	"legal-rag-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "get-legal-definition"

// Service resolves legal terms to definitions.
type Service interface {
	GetDefinition(ctx context.Context, term, jurisdiction string, plainLanguage bool) (*models.Definition, error)
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

	h.logger.Info("Processing definition lookup", map[string]interface{}{
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
	h.logger.Info("Definition lookup completed", map[string]interface{}{
		"jobKey": job.GetKey(),
		"term":   output.Definition.Term,
		"source": output.Definition.Source,
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
	def, err := h.service.GetDefinition(ctx, input.Term, input.Jurisdiction,
		input.IncludePlainLanguage == nil || *input.IncludePlainLanguage)
	if err != nil {
		return nil, err
	}
	return &Output{Definition: def}, nil
}

// Execute resolves a definition without a Zeebe job.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
