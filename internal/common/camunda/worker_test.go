package camunda

import (
	"errors"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInstrument_LogsHandlerErrors(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	job := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42, Type: "legal-query"}}

	calls := 0
	h := JobHandlerFunc(func(_ worker.JobClient, j entities.Job) error {
		calls++
		assert.Equal(t, int64(42), j.Key)
		return errors.New("boom")
	})

	Instrument("legal-query", h, nil, zap.New(core))(nil, job)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, "Handler returned error", logs.All()[0].Message)
}

func TestInstrument_SilentOnSuccess(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	job := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 7}}

	h := JobHandlerFunc(func(worker.JobClient, entities.Job) error { return nil })
	Instrument("legal-query", h, nil, zap.New(core))(nil, job)

	assert.Zero(t, logs.Len())
}

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		code string
	}{
		{"context deadline exceeded", "TIMEOUT"},
		{"process not found", "RESOURCE_NOT_FOUND"},
		{"connection refused", "EXTERNAL_SERVICE_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			err := mapZeebeError(errors.New(tt.msg), "topology")
			assert.Contains(t, err.Error(), tt.code)
		})
	}
}
