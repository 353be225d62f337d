package intent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"legal-rag-workers/internal/common/logger"
	"legal-rag-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

type stubGenerator struct {
	answer string
	err    error
	prompt string
}

func (s *stubGenerator) GenerateJSON(_ context.Context, prompt string, v interface{}) error {
	s.prompt = prompt
	if s.err != nil {
		return s.err
	}
	return json.Unmarshal([]byte(s.answer), v)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		answer       string
		err          error
		jurisdiction string
		want         models.Intent
	}{
		{
			name:         "definition",
			answer:       `{"type":"Definition","concepts":["community property"," Community Property ",""],"jurisdictions":["ca","TX","ZZ"],"time_sensitive":false,"confidence":0.92}`,
			jurisdiction: "CA",
			want: models.Intent{
				Type:          models.IntentDefinition,
				Concepts:      []string{"community property"},
				Jurisdictions: []string{"CA", "TX"},
			},
		},
		{
			name:   "low confidence falls back to general",
			answer: `{"type":"statute","concepts":["lease"],"confidence":0.2,"time_sensitive":true}`,
			want: models.Intent{
				Type:          models.IntentGeneralQuery,
				Concepts:      []string{"lease"},
				Jurisdictions: []string{},
				TimeSensitive: true,
			},
		},
		{
			name:         "unknown type",
			answer:       `{"type":"poetry"}`,
			jurisdiction: "NY",
			want: models.Intent{
				Type:          models.IntentGeneralQuery,
				Concepts:      []string{},
				Jurisdictions: []string{"NY"},
			},
		},
		{
			name: "generator error",
			err:  errors.New("quota exceeded"),
			want: models.Intent{Type: models.IntentGeneralQuery, Concepts: []string{}, Jurisdictions: []string{}},
		},
		{
			name:   "malformed",
			answer: `{"type": 42}`,
			want:   models.Intent{Type: models.IntentGeneralQuery, Concepts: []string{}, Jurisdictions: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{answer: tt.answer, err: tt.err}
			c := NewClassifier(gen, logger.NewTestLogger(t))

			got := c.Classify(context.Background(), "What is community property?", tt.jurisdiction)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, gen.prompt, "What is community property?")
		})
	}
}
