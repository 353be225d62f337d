package camunda

import (
	stderrors "errors"
	"testing"

	"legal-rag-workers/internal/common/errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var termSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"term"},
	"properties": map[string]interface{}{
		"term":       map[string]interface{}{"type": "string", "minLength": 1},
		"maxResults": map[string]interface{}{"type": "integer"},
	},
}

type termInput struct {
	Term       string `json:"term"`
	MaxResults int    `json:"maxResults"`
}

func jobWith(variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Variables: variables}}
}

func TestDecodeJob(t *testing.T) {
	var in termInput
	err := DecodeJob(jobWith(`{"term":"tort","maxResults":3,"extra":true}`), termSchema, &in)
	require.NoError(t, err)
	assert.Equal(t, termInput{Term: "tort", MaxResults: 3}, in)
}

func TestDecodeJob_NilSchemaAcceptsAnything(t *testing.T) {
	var in termInput
	require.NoError(t, DecodeJob(jobWith(`{"maxResults":2}`), nil, &in))
	assert.Equal(t, 2, in.MaxResults)
}

func TestDecodeJob_InvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		variables string
	}{
		{"missing required", `{"maxResults":3}`},
		{"wrong type", `{"term":"tort","maxResults":"three"}`},
		{"empty term", `{"term":""}`},
		{"not json", `{term`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in termInput
			err := DecodeJob(jobWith(tt.variables), termSchema, &in)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrInvalidInput))
		})
	}
}
