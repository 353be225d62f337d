// internal/workers/legal/get-evidence-requirements/handler.go
package getevidencerequirements

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

const TaskType = "get-evidence-requirements"

// Service lists the evidence needed to prove a claim.
type Service interface {
	GetEvidenceRequirements(ctx context.Context, claimType, jurisdiction string) (*models.EvidenceRequirements, error)
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

	h.logger.Info("Processing evidence requirements", map[string]interface{}{
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
	h.logger.Info("Evidence requirements completed", map[string]interface{}{
		"jobKey":    job.GetKey(),
		"claimType": output.Requirements.ClaimType,
		"degraded":  output.Degraded,
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
	req, err := h.service.GetEvidenceRequirements(ctx, input.ClaimType, input.Jurisdiction)
	if err != nil {
		return nil, err
	}
	return &Output{Requirements: req, Degraded: req.Degraded}, nil
}

// Execute builds evidence requirements without a Zeebe job.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
