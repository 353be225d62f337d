// internal/workers/legal/compare-state-laws/handler_test.go
package comparestatelaws

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"legal-rag-workers/internal/common/errors"
	"legal-rag-workers/internal/common/logger"
	"legal-rag-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CompareStates(ctx context.Context, concept string, states []string) (*models.StateComparison, error) {
	args := m.Called(ctx, concept, states)
	if c := args.Get(0); c != nil {
		return c.(*models.StateComparison), args.Error(1)
	}
	return nil, args.Error(1)
}

var testSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"concept", "states"},
	"properties": map[string]interface{}{
		"concept": map[string]interface{}{"type": "string", "minLength": 1},
		"states": map[string]interface{}{
			"type":     "array",
			"minItems": 2,
			"maxItems": 5,
			"items":    map[string]interface{}{"type": "string"},
		},
	},
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	return NewHandler(&Config{Enabled: true, Timeout: 5 * time.Second}, svc, testSchema, logger.NewTestLogger(t))
}

func createMockJob(variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 3, Type: TaskType, Variables: variables}}
}

func TestHandler_Execute_ReportsUnavailableStates(t *testing.T) {
	states := []string{"TX", "CA", "NY"}
	cmp := models.NewStateComparison("divorce", states)
	cmp.Comparisons.Set("TX", models.StateEntry{State: "TX", Available: true})
	cmp.Comparisons.Set("CA", models.StateEntry{State: "CA", Available: false, Error: "retrieval unavailable"})
	cmp.Comparisons.Set("NY", models.StateEntry{State: "NY", Available: true})

	svc := new(MockService)
	svc.On("CompareStates", mock.Anything, "divorce", states).Return(cmp, nil)

	out, err := newTestHandler(t, svc).Execute(context.Background(), &Input{Concept: "divorce", States: states})
	require.NoError(t, err)
	assert.Same(t, cmp, out.Comparison)
	assert.Equal(t, []string{"CA"}, out.UnavailableStates)
}

func TestHandler_Execute_AllAvailable(t *testing.T) {
	states := []string{"WA", "OR"}
	cmp := models.NewStateComparison("negligence", states)
	for _, s := range states {
		cmp.Comparisons.Set(s, models.StateEntry{State: s, Available: true})
	}

	svc := new(MockService)
	svc.On("CompareStates", mock.Anything, "negligence", states).Return(cmp, nil)

	out, err := newTestHandler(t, svc).Execute(context.Background(), &Input{Concept: "negligence", States: states})
	require.NoError(t, err)
	assert.NotNil(t, out.UnavailableStates)
	assert.Empty(t, out.UnavailableStates)
}

func TestHandler_Execute_ServiceError(t *testing.T) {
	svc := new(MockService)
	svc.On("CompareStates", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.NewInvalidInputError("states", "duplicate state CA"))

	_, err := newTestHandler(t, svc).Execute(context.Background(), &Input{Concept: "x", States: []string{"CA", "CA"}})
	assert.True(t, stderrors.Is(err, errors.ErrInvalidInput))
}

func TestHandler_ParseInput(t *testing.T) {
	h := newTestHandler(t, new(MockService))

	input, err := h.parseInput(createMockJob(`{"concept":"adverse possession","states":["FL","GA"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"FL", "GA"}, input.States)

	tests := []struct {
		name      string
		variables string
	}{
		{"single state", `{"concept":"x","states":["FL"]}`},
		{"too many states", `{"concept":"x","states":["FL","GA","AL","SC","NC","TN"]}`},
		{"missing concept", `{"states":["FL","GA"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.parseInput(createMockJob(tt.variables))
			assert.True(t, stderrors.Is(err, errors.ErrInvalidInput))
		})
	}
}
