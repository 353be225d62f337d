// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"legal-rag-workers/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "add":
		err = runAdd(os.Args[2:])
	case "update":
		err = runUpdate(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	default:
		help()
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runAdd(args []string) error {
	cmd := flag.NewFlagSet("add", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	id := cmd.String("id", "", "Activity ID (e.g., get-legal-definition)")
	displayName := cmd.String("displayName", "", "Display Name (e.g., Get Legal Definition)")
	description := cmd.String("description", "", "Description")
	category := cmd.String("category", "legal", "Category")
	taskType := cmd.String("taskType", "", "Zeebe task type; defaults to the id")
	version := cmd.String("version", "1.0.0", "Version")
	status := cmd.String("status", "planned", "Implementation status (planned, in-progress, completed, verified)")
	schemaFile := cmd.String("inputSchema", "", "Optional JSON file holding the job input schema")
	cmd.Parse(args)

	if *id == "" || *displayName == "" || *description == "" {
		cmd.Usage()
		return fmt.Errorf("id, displayName and description are required")
	}
	if *taskType == "" {
		*taskType = *id
	}

	inputSchema := map[string]interface{}{}
	if *schemaFile != "" {
		data, err := os.ReadFile(*schemaFile)
		if err != nil {
			return fmt.Errorf("read input schema: %w", err)
		}
		if err := json.Unmarshal(data, &inputSchema); err != nil {
			return fmt.Errorf("parse input schema: %w", err)
		}
	}

	reg, err := registry.LoadRegistry(*path)
	if os.IsNotExist(err) {
		reg, err = &registry.ActivityRegistry{Version: "1.0.0"}, nil
	}
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if _, exists := reg.FindByTaskType(*taskType); exists {
		return fmt.Errorf("task type %s is already registered", *taskType)
	}

	reg.Activities = append(reg.Activities, registry.Activity{
		ID:                   *id,
		DisplayName:          *displayName,
		Description:          *description,
		Category:             *category,
		Version:              *version,
		TaskType:             *taskType,
		ImplementationStatus: *status,
		InputSchema:          inputSchema,
		OutputSchema:         map[string]interface{}{},
		ErrorCodes:           []string{},
		Timeout:              "30s",
		Retries:              3,
		Workflows:            []string{},
		Tags:                 []string{"legal"},
	})
	if err := reg.Validate(); err != nil {
		return err
	}
	if err := saveRegistry(reg, *path); err != nil {
		return err
	}
	fmt.Printf("Added activity: %s\n", *id)
	return nil
}

func runUpdate(args []string) error {
	cmd := flag.NewFlagSet("update", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	id := cmd.String("id", "", "Activity ID to update")
	field := cmd.String("field", "", "Field to update (status, version, displayName, description, timeout, retries)")
	value := cmd.String("value", "", "New value for the field")
	cmd.Parse(args)

	if *id == "" || *field == "" || *value == "" {
		cmd.Usage()
		return fmt.Errorf("id, field and value are required")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	var activity *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == *id {
			activity = &reg.Activities[i]
			break
		}
	}
	if activity == nil {
		return fmt.Errorf("activity with ID %s not found", *id)
	}

	switch *field {
	case "status":
		activity.ImplementationStatus = *value
	case "version":
		activity.Version = *value
	case "displayName":
		activity.DisplayName = *value
	case "description":
		activity.Description = *value
	case "timeout":
		if _, err := time.ParseDuration(*value); err != nil {
			return fmt.Errorf("invalid timeout value: %w", err)
		}
		activity.Timeout = *value
	case "retries":
		retries, err := strconv.Atoi(*value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		activity.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", *field)
	}

	if err := saveRegistry(reg, *path); err != nil {
		return err
	}
	fmt.Printf("Updated activity %s, field %s to %s\n", *id, *field, *value)
	return nil
}

func runValidate(args []string) error {
	cmd := flag.NewFlagSet("validate", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	cmd.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func saveRegistry(reg *registry.ActivityRegistry, path string) error {
	reg.LastUpdated = time.Now().Format(time.DateOnly)
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  add       Add a new activity to the registry
  update    Update an existing activity's field
  validate  Validate the registry file and its input schemas
  help      Show this help message

Examples:
  registry-updater add -id get-legal-definition -displayName "Get Legal Definition" -description "Looks up a legal term" -inputSchema schemas/definition.json
  registry-updater update -id get-legal-definition -field status -value completed
  registry-updater validate -path configs/activity-registry.json

Use 'registry-updater <command> -h' for more information about a command.`)
}
