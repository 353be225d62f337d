// internal/workers/legal/legal-query/handler_test.go
package legalquery

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

// ==========================
// Test Logger Implementation
// ==========================

type TestLogger struct {
	t      *testing.T
	fields map[string]interface{}
}

func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{t: t, fields: map[string]interface{}{}}
}

func (l *TestLogger) Debug(msg string, fields map[string]interface{}) { l.log("DEBUG", msg, fields) }
func (l *TestLogger) Info(msg string, fields map[string]interface{})  { l.log("INFO", msg, fields) }
func (l *TestLogger) Warn(msg string, fields map[string]interface{})  { l.log("WARN", msg, fields) }
func (l *TestLogger) Error(msg string, fields map[string]interface{}) { l.log("ERROR", msg, fields) }

func (l *TestLogger) With(fields map[string]interface{}) logger.Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &TestLogger{t: l.t, fields: merged}
}

func (l *TestLogger) WithFields(fields map[string]interface{}) logger.Logger { return l.With(fields) }

func (l *TestLogger) WithError(err error) logger.Logger {
	return l.With(map[string]interface{}{"error": err.Error()})
}

func (l *TestLogger) log(level, msg string, fields map[string]interface{}) {
	l.t.Logf("%s: %s %v %v", level, msg, l.fields, fields)
}

// ==========================
// Mocks
// ==========================

type MockService struct {
	mock.Mock
}

func (m *MockService) Query(ctx context.Context, req models.QueryRequest) (*models.Response, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*models.Response), args.Error(1)
	}
	return nil, args.Error(1)
}

var testSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"question"},
	"properties": map[string]interface{}{
		"question":   map[string]interface{}{"type": "string", "minLength": 1},
		"maxResults": map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 20},
	},
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	return NewHandler(&Config{Enabled: true, Timeout: 5 * time.Second}, svc, testSchema, NewTestLogger(t))
}

func createMockJob(variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                12345,
		ProcessInstanceKey: 67890,
		Type:               TaskType,
		Variables:          variables,
	}}
}

func boolPtr(b bool) *bool { return &b }

// ==========================
// Execute
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	svc := new(MockService)
	h := newTestHandler(t, svc)

	resp := &models.Response{
		ID:         "r1",
		Confidence: 0.72,
		Results:    []models.RankedResult{{FusedCandidate: models.FusedCandidate{DocumentID: "d1"}}},
		Provenance: models.Provenance{Degraded: true, UnavailableSources: []models.SearchSource{models.SourceKeyword}},
	}

	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.On("Query", mock.Anything, mock.MatchedBy(func(req models.QueryRequest) bool {
		return req.Question == "What is negligence?" &&
			req.Jurisdiction == "ca" &&
			req.MaxResults == 3 &&
			req.IncludePlainLanguage &&
			assert.ObjectsAreEqual([]models.DocumentType{models.DocTypeCase, models.DocTypeStatute}, req.DocumentTypes) &&
			req.DateRange != nil && req.DateRange.From.Equal(from) && req.DateRange.To == nil
	})).Return(resp, nil)

	input := &Input{
		Question:      "What is negligence?",
		Jurisdiction:  "ca",
		DocumentTypes: []string{"Case", "statute", "case"},
		DateRange:     &DateRange{From: "2020-01-01"},
		MaxResults:    3,
	}

	out, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Same(t, resp, out.LegalResponse)
	assert.Equal(t, 0.72, out.Confidence)
	assert.True(t, out.Degraded)
	svc.AssertExpectations(t)
}

func TestHandler_Execute_PlainLanguageOptOut(t *testing.T) {
	svc := new(MockService)
	h := newTestHandler(t, svc)

	svc.On("Query", mock.Anything, mock.MatchedBy(func(req models.QueryRequest) bool {
		return !req.IncludePlainLanguage
	})).Return(&models.Response{}, nil)

	_, err := h.Execute(context.Background(), &Input{Question: "q", IncludePlainLanguage: boolPtr(false)})
	require.NoError(t, err)
	svc.AssertExpectations(t)
}

func TestHandler_Execute_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input *Input
	}{
		{
			name:  "unknown document type",
			input: &Input{Question: "q", DocumentTypes: []string{"memo"}},
		},
		{
			name:  "malformed date",
			input: &Input{Question: "q", DateRange: &DateRange{To: "01/02/2020"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			h := newTestHandler(t, svc)

			_, err := h.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrInvalidInput))
			svc.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_Execute_ServiceError(t *testing.T) {
	svc := new(MockService)
	h := newTestHandler(t, svc)

	svc.On("Query", mock.Anything, mock.Anything).
		Return(nil, errors.NewRetrievalUnavailableError(stderrors.New("pg down"), stderrors.New("es down")))

	_, err := h.Execute(context.Background(), &Input{Question: "q"})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrRetrievalUnavailable))
}

// ==========================
// Input parsing
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	h := newTestHandler(t, new(MockService))

	input, err := h.parseInput(createMockJob(`{
		"question": "How do I file in small claims court?",
		"jurisdiction": "CA",
		"documentTypes": ["procedure", "form"],
		"dateRange": {"from": "2019-01-01", "to": "2024-12-31"},
		"maxResults": 5,
		"includePlainLanguage": false
	}`))
	require.NoError(t, err)

	assert.Equal(t, "How do I file in small claims court?", input.Question)
	assert.Equal(t, "CA", input.Jurisdiction)
	assert.Equal(t, []string{"procedure", "form"}, input.DocumentTypes)
	require.NotNil(t, input.DateRange)
	assert.Equal(t, "2024-12-31", input.DateRange.To)
	assert.Equal(t, 5, input.MaxResults)
	require.NotNil(t, input.IncludePlainLanguage)
	assert.False(t, *input.IncludePlainLanguage)
}

func TestHandler_ParseInput_SchemaViolations(t *testing.T) {
	h := newTestHandler(t, new(MockService))

	tests := []struct {
		name      string
		variables string
	}{
		{"missing question", `{"jurisdiction": "CA"}`},
		{"max results too large", `{"question": "q", "maxResults": 50}`},
		{"empty question", `{"question": ""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.parseInput(createMockJob(tt.variables))
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrInvalidInput))
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig(nil)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}
