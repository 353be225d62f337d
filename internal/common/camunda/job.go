// internal/common/camunda/job.go
package camunda

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"legal-rag-workers/internal/common/errors"
	"legal-rag-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// DecodeJob validates the job variables against schema, then decodes them into v.
// Both failures are INVALID_INPUT so the process gets a BPMN error without retries.
func DecodeJob(job entities.Job, schema map[string]interface{}, v interface{}) error {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return errors.NewInvalidInputError("variables", err.Error())
	}

	result, err := validation.ValidateInput(variables, schema)
	if err != nil {
		return errors.NewInternalError(err)
	}
	if !result.Valid {
		return errors.NewInvalidInputError("variables", strings.Join(result.GetErrorMessages(), "; "))
	}

	if err := json.Unmarshal([]byte(job.GetVariables()), v); err != nil {
		return errors.NewInvalidInputError("variables", err.Error())
	}
	return nil
}

// CompleteJob sends output as the job's result variables.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.GetKey()).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("send complete job command: %w", err)
	}
	return nil
}
