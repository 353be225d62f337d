// internal/workers/legal/get-legal-definition/handler_test.go
package getlegaldefinition

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

func (m *MockService) GetDefinition(ctx context.Context, term, jurisdiction string, plainLanguage bool) (*models.Definition, error) {
	args := m.Called(ctx, term, jurisdiction, plainLanguage)
	if d := args.Get(0); d != nil {
		return d.(*models.Definition), args.Error(1)
	}
	return nil, args.Error(1)
}

var testSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"term"},
	"properties": map[string]interface{}{
		"term":                 map[string]interface{}{"type": "string", "minLength": 1},
		"jurisdiction":         map[string]interface{}{"type": "string"},
		"includePlainLanguage": map[string]interface{}{"type": "boolean"},
	},
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	return NewHandler(&Config{Enabled: true, Timeout: 5 * time.Second}, svc, testSchema, logger.NewTestLogger(t))
}

func createMockJob(variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Type: TaskType, Variables: variables}}
}

func TestHandler_Execute(t *testing.T) {
	no := false

	tests := []struct {
		name      string
		input     *Input
		wantPlain bool
	}{
		{"plain language by default", &Input{Term: "tort", Jurisdiction: "CA"}, true},
		{"plain language opt out", &Input{Term: "tort", Jurisdiction: "CA", IncludePlainLanguage: &no}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			def := &models.Definition{Term: "tort", Definition: "A civil wrong."}
			svc.On("GetDefinition", mock.Anything, "tort", "CA", tt.wantPlain).Return(def, nil)

			out, err := newTestHandler(t, svc).Execute(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Same(t, def, out.Definition)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_Execute_NotFound(t *testing.T) {
	svc := new(MockService)
	svc.On("GetDefinition", mock.Anything, "mystery", "", true).
		Return(nil, errors.NewDefinitionNotFoundError("mystery", ""))

	_, err := newTestHandler(t, svc).Execute(context.Background(), &Input{Term: "mystery"})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrDefinitionNotFound))

	bpmn := errors.ConvertToBPMNError(errors.Normalize(err))
	assert.False(t, bpmn.Retryable)
}

func TestHandler_ParseInput(t *testing.T) {
	h := newTestHandler(t, new(MockService))

	input, err := h.parseInput(createMockJob(`{"term":"consideration","jurisdiction":"NY","includePlainLanguage":true}`))
	require.NoError(t, err)
	assert.Equal(t, "consideration", input.Term)
	assert.Equal(t, "NY", input.Jurisdiction)
	require.NotNil(t, input.IncludePlainLanguage)
	assert.True(t, *input.IncludePlainLanguage)

	_, err = h.parseInput(createMockJob(`{"jurisdiction":"NY"}`))
	assert.True(t, stderrors.Is(err, errors.ErrInvalidInput))

	_, err = h.parseInput(createMockJob(`{"term":"x","includePlainLanguage":"yes"}`))
	assert.True(t, stderrors.Is(err, errors.ErrInvalidInput))
}
