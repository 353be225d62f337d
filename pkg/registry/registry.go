// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse activity registry %s: %w", path, err)
	}
	return &reg, nil
}

// FindByTaskType returns the activity bound to a Zeebe job type.
func (r *ActivityRegistry) FindByTaskType(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// InputSchema returns the job input schema for taskType, or nil when the
// activity is unknown. A nil schema accepts any variables.
func (r *ActivityRegistry) InputSchema(taskType string) map[string]interface{} {
	if a, ok := r.FindByTaskType(taskType); ok {
		return a.InputSchema
	}
	return nil
}

// Validate checks that activity ids and task types are present and unique and
// that every input schema compiles.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool, len(r.Activities))
	taskTypes := make(map[string]bool, len(r.Activities))
	for _, a := range r.Activities {
		if a.ID == "" {
			return fmt.Errorf("activity missing required field: id")
		}
		if ids[a.ID] {
			return fmt.Errorf("duplicate activity id: %s", a.ID)
		}
		ids[a.ID] = true

		if a.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: taskType", a.ID)
		}
		if taskTypes[a.TaskType] {
			return fmt.Errorf("activity %s reuses task type %s", a.ID, a.TaskType)
		}
		taskTypes[a.TaskType] = true

		if len(a.InputSchema) > 0 {
			if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(a.InputSchema)); err != nil {
				return fmt.Errorf("activity %s has an invalid input schema: %w", a.ID, err)
			}
		}
	}
	return nil
}
