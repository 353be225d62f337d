// internal/workers/legal/get-legal-procedure/handler.go
package getlegalprocedure

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

const TaskType = "get-legal-procedure"

// Service returns the steps, forms and statutes of a legal procedure.
type Service interface {
	GetProcedure(ctx context.Context, procedureType, jurisdiction string) (*models.Procedure, error)
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

	h.logger.Info("Processing procedure lookup", map[string]interface{}{
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
	h.logger.Info("Procedure lookup completed", map[string]interface{}{
		"jobKey":        job.GetKey(),
		"procedureType": output.Procedure.ProcedureType,
		"steps":         output.StepCount,
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
	proc, err := h.service.GetProcedure(ctx, input.ProcedureType, input.Jurisdiction)
	if err != nil {
		return nil, err
	}
	return &Output{
		Procedure: proc,
		StepCount: len(proc.Steps),
		FormCount: len(proc.RequiredForms),
	}, nil
}

// Execute looks up a procedure without a Zeebe job.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
