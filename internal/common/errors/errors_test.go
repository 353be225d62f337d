package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("query pipeline: %w", NewCaseNotFoundError("case-1"))

	assert.True(t, stderrors.Is(err, ErrCaseNotFound))
	assert.False(t, stderrors.Is(err, ErrRetrievalUnavailable))

	stdErr, ok := AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, "case-1", stdErr.Metadata["caseId"])
}

func TestRetrievalUnavailable_UnwrapsCauses(t *testing.T) {
	vecErr := stderrors.New("pgvector down")
	kwErr := stderrors.New("elasticsearch down")

	err := NewRetrievalUnavailableError(vecErr, kwErr)

	assert.True(t, err.Retryable)
	assert.True(t, stderrors.Is(err, vecErr))
	assert.True(t, stderrors.Is(err, kwErr))
	assert.Contains(t, err.Error(), "pgvector down")
}

func TestNewSearchError(t *testing.T) {
	plain := NewSearchError(context.Background(), "vector", stderrors.New("syntax error"))
	assert.Equal(t, ErrCodeSearchQueryFailed, plain.Code)

	wrapped := NewSearchError(context.Background(), "keyword", fmt.Errorf("do: %w", context.DeadlineExceeded))
	assert.Equal(t, ErrCodeSearchTimeout, wrapped.Code)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	expired := NewSearchError(ctx, "vector", stderrors.New("pq: canceling statement due to user request"))
	assert.Equal(t, ErrCodeSearchTimeout, expired.Code)
	assert.True(t, expired.Retryable)
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{"retrieval unavailable retries", NewRetrievalUnavailableError(stderrors.New("a"), stderrors.New("b")), "RETRIEVAL_UNAVAILABLE", 3},
		{"invalid jurisdiction never retries", NewInvalidJurisdictionError("XX"), "INVALID_JURISDICTION", 0},
		{"graph store mapped", NewGraphStoreError("neighbors", stderrors.New("locked")), "CITATION_GRAPH_UNAVAILABLE", 3},
		{"unknown code passes through", NewCacheError("get", stderrors.New("eof")), "CACHE_FAILED", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmnErr := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmnErr.Code)
			assert.Equal(t, tt.wantRetries, bpmnErr.Retries)
			assert.Equal(t, string(tt.err.Code), bpmnErr.ErrorVariables["originalErrorCode"])
		})
	}
}

func TestConvertToBPMNError_CarriesMetadata(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewInvalidJurisdictionError("ZZ"))
	vars := bpmnErr.ToErrorVariables()

	assert.Equal(t, "ZZ", vars["jurisdiction"])
	assert.Equal(t, false, vars["retryable"])
}

func TestNormalize_WrapsPlainErrors(t *testing.T) {
	stdErr := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, stdErr.Code)
	assert.False(t, stdErr.Retryable)
}

func TestRemainingRetries(t *testing.T) {
	job := entities.Job{ActivatedJob: &pb.ActivatedJob{Retries: 5}}

	retryable := ConvertToBPMNError(NewSearchTimeoutError("keyword", stderrors.New("deadline")))
	assert.Equal(t, int32(2), RemainingRetries(job, retryable))

	job.Retries = 1
	assert.Equal(t, int32(0), RemainingRetries(job, retryable))

	business := ConvertToBPMNError(NewCaseNotFoundError("x"))
	assert.Equal(t, int32(0), RemainingRetries(job, business))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidJurisdiction))
	assert.Equal(t, "NOT_FOUND", GetErrorCategory(ErrCodeCaseNotFound))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeRetrievalUnavailable))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeGraphStoreFailed))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeRelevanceScoringFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}
