// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"legal-rag-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// JobHandler completes or fails the job itself; a returned error is only logged.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

// JobHandlerFunc adapts a plain function to JobHandler.
type JobHandlerFunc func(client worker.JobClient, job entities.Job) error

func (f JobHandlerFunc) Handle(client worker.JobClient, job entities.Job) error {
	return f(client, job)
}

type WorkerOptions struct {
	MaxJobsActive int
	Timeout       time.Duration
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

// NewWorker opens a job worker for taskType and records job outcomes on obs.
func NewWorker(
	client zbc.Client,
	taskType string,
	opts WorkerOptions,
	handler JobHandler,
	obs *observability.Observability,
	logger *zap.Logger,
) *CamundaWorker {
	cmd := client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(taskType, handler, obs, logger)).
		MaxJobsActive(opts.MaxJobsActive)
	if opts.Timeout > 0 {
		cmd = cmd.Timeout(opts.Timeout)
	}

	w := &CamundaWorker{
		worker:   cmd.Open(),
		logger:   logger,
		taskType: taskType,
	}
	logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", opts.MaxJobsActive))
	return w
}

// Instrument wraps handler into a Zeebe handler func that records duration and status.
func Instrument(taskType string, handler JobHandler, obs *observability.Observability, logger *zap.Logger) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		status := "completed"
		if err := handler.Handle(client, job); err != nil {
			status = "failed"
			logger.Error("Handler returned error",
				zap.Error(err),
				zap.String("taskType", taskType),
				zap.Int64("jobKey", job.Key))
		}
		ctx := context.Background()
		obs.RecordJobProcessed(ctx, taskType, status)
		obs.RecordJobDuration(ctx, taskType, time.Since(start), status)
	}
}

func (w *CamundaWorker) TaskType() string {
	return w.taskType
}

func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
	w.worker.AwaitClose()
}
