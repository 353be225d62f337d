package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRegistry = `{
  "version": "1.0.0",
  "lastUpdated": "2026-01-01",
  "activities": [
    {
      "id": "legal-query",
      "taskType": "legal-query",
      "inputSchema": {"type": "object", "required": ["question"]},
      "retries": 3
    },
    {
      "id": "compare-state-laws",
      "taskType": "compare-state-laws",
      "retries": 2
    }
  ]
}`

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "activity-registry.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRegistry(t *testing.T) {
	reg, err := LoadRegistry(writeRegistry(t, sampleRegistry))
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", reg.Version)
	assert.Len(t, reg.Activities, 2)

	a, ok := reg.FindByTaskType("compare-state-laws")
	require.True(t, ok)
	assert.Equal(t, 2, a.Retries)

	_, ok = reg.FindByTaskType("unknown")
	assert.False(t, ok)
}

func TestInputSchema(t *testing.T) {
	reg, err := LoadRegistry(writeRegistry(t, sampleRegistry))
	require.NoError(t, err)

	schema := reg.InputSchema("legal-query")
	require.NotNil(t, schema)
	assert.Equal(t, "object", schema["type"])

	assert.Nil(t, reg.InputSchema("compare-state-laws"))
	assert.Nil(t, reg.InputSchema("unknown"))
}

func TestLoadRegistry_Errors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadRegistry(writeRegistry(t, "{not json"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		reg     ActivityRegistry
		wantErr string
	}{
		{
			name: "valid",
			reg: ActivityRegistry{Activities: []Activity{
				{ID: "legal-query", TaskType: "legal-query", InputSchema: map[string]interface{}{"type": "object"}},
				{ID: "compare-state-laws", TaskType: "compare-state-laws"},
			}},
		},
		{name: "empty", reg: ActivityRegistry{}, wantErr: "no activities"},
		{
			name:    "missing task type",
			reg:     ActivityRegistry{Activities: []Activity{{ID: "legal-query"}}},
			wantErr: "taskType",
		},
		{
			name: "duplicate id",
			reg: ActivityRegistry{Activities: []Activity{
				{ID: "legal-query", TaskType: "a"},
				{ID: "legal-query", TaskType: "b"},
			}},
			wantErr: "duplicate activity id",
		},
		{
			name: "shared task type",
			reg: ActivityRegistry{Activities: []Activity{
				{ID: "a", TaskType: "legal-query"},
				{ID: "b", TaskType: "legal-query"},
			}},
			wantErr: "reuses task type",
		},
		{
			name: "bad schema",
			reg: ActivityRegistry{Activities: []Activity{
				{ID: "a", TaskType: "a", InputSchema: map[string]interface{}{"type": "unknown"}},
			}},
			wantErr: "invalid input schema",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestShippedRegistryCoversLegalWorkers(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	for _, taskType := range []string{
		"legal-query", "get-legal-definition", "get-legal-procedure",
		"compare-state-laws", "get-evidence-requirements", "analyze-citation-network",
	} {
		assert.NotNil(t, reg.InputSchema(taskType), taskType)
	}
}
