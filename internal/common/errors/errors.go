// Package errors provides the error taxonomy of the legal pipeline and its mapping to BPMN errors.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Surfaced to callers
	ErrCodeRetrievalUnavailable ErrorCode = "RETRIEVAL_UNAVAILABLE"
	ErrCodeCaseNotFound         ErrorCode = "CASE_NOT_FOUND"
	ErrCodeInvalidJurisdiction  ErrorCode = "INVALID_JURISDICTION"
	ErrCodeInvalidInput         ErrorCode = "INVALID_INPUT"
	ErrCodeDefinitionNotFound   ErrorCode = "DEFINITION_NOT_FOUND"
	ErrCodeProcedureNotFound    ErrorCode = "PROCEDURE_NOT_FOUND"
	ErrCodeDocumentNotFound     ErrorCode = "DOCUMENT_NOT_FOUND"

	// Collaborator failures
	ErrCodeDocumentStoreFailed    ErrorCode = "DOCUMENT_STORE_FAILED"
	ErrCodeGraphStoreFailed       ErrorCode = "GRAPH_STORE_FAILED"
	ErrCodeSearchQueryFailed      ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout          ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeEmbeddingFailed        ErrorCode = "EMBEDDING_FAILED"
	ErrCodeGenerationFailed       ErrorCode = "GENERATION_FAILED"
	ErrCodeGenerationTimeout      ErrorCode = "GENERATION_TIMEOUT"
	ErrCodeRelevanceScoringFailed ErrorCode = "RELEVANCE_SCORING_FAILED"
	ErrCodeCacheFailed            ErrorCode = "CACHE_FAILED"

	// Generic
	ErrCodeExternalService  ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout          ErrorCode = "TIMEOUT"
	ErrCodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the collaborator error that caused this one, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a StandardError with the same code.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is checks. Compare by code only.
var (
	ErrRetrievalUnavailable = &StandardError{Code: ErrCodeRetrievalUnavailable}
	ErrCaseNotFound         = &StandardError{Code: ErrCodeCaseNotFound}
	ErrInvalidJurisdiction  = &StandardError{Code: ErrCodeInvalidJurisdiction}
	ErrInvalidInput         = &StandardError{Code: ErrCodeInvalidInput}
	ErrDefinitionNotFound   = &StandardError{Code: ErrCodeDefinitionNotFound}
	ErrProcedureNotFound    = &StandardError{Code: ErrCodeProcedureNotFound}
	ErrDocumentNotFound     = &StandardError{Code: ErrCodeDocumentNotFound}
)

// AsStandardError unwraps err to the first StandardError in its chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewRetrievalUnavailableError reports that both retrieval sources failed.
func NewRetrievalUnavailableError(vectorErr, keywordErr error) *StandardError {
	details := fmt.Sprintf("vector: %v; keyword: %v", vectorErr, keywordErr)
	return newError(ErrCodeRetrievalUnavailable, "All retrieval sources are unavailable", details, true,
		stderrors.Join(vectorErr, keywordErr))
}

// NewCaseNotFoundError creates a non-retryable citation lookup error.
func NewCaseNotFoundError(caseID string) *StandardError {
	e := newError(ErrCodeCaseNotFound, "Case not found in citation graph", fmt.Sprintf("caseId: %s", caseID), false, nil)
	e.Metadata = map[string]interface{}{"caseId": caseID}
	return e
}

// NewInvalidJurisdictionError rejects a malformed or unsupported jurisdiction code.
func NewInvalidJurisdictionError(code string) *StandardError {
	e := newError(ErrCodeInvalidJurisdiction, "Invalid or unsupported jurisdiction", fmt.Sprintf("jurisdiction: %q", code), false, nil)
	e.Metadata = map[string]interface{}{"jurisdiction": code}
	return e
}

// NewInvalidInputError rejects an input field before any external call is made.
func NewInvalidInputError(field, details string) *StandardError {
	e := newError(ErrCodeInvalidInput, "Invalid input", fmt.Sprintf("%s: %s", field, details), false, nil)
	e.Metadata = map[string]interface{}{"field": field}
	return e
}

func NewDefinitionNotFoundError(term, jurisdiction string) *StandardError {
	return newError(ErrCodeDefinitionNotFound, "Definition not found",
		fmt.Sprintf("term: %q, jurisdiction: %q", term, jurisdiction), false, nil)
}

func NewProcedureNotFoundError(procedureType, jurisdiction string) *StandardError {
	return newError(ErrCodeProcedureNotFound, "Procedure not found",
		fmt.Sprintf("procedureType: %q, jurisdiction: %q", procedureType, jurisdiction), false, nil)
}

func NewDocumentNotFoundError(documentID string) *StandardError {
	return newError(ErrCodeDocumentNotFound, "Document not found", fmt.Sprintf("documentId: %s", documentID), false, nil)
}

// NewDocumentStoreError creates a retryable metadata store error.
func NewDocumentStoreError(operation string, err error) *StandardError {
	return newError(ErrCodeDocumentStoreFailed, "Document store operation failed",
		fmt.Sprintf("%s: %v", operation, err), true, err)
}

// NewGraphStoreError creates a retryable citation graph error.
func NewGraphStoreError(operation string, err error) *StandardError {
	return newError(ErrCodeGraphStoreFailed, "Citation graph operation failed",
		fmt.Sprintf("%s: %v", operation, err), true, err)
}

func NewSearchQueryFailedError(source string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Search query failed",
		fmt.Sprintf("source: %s, error: %v", source, err), true, err)
}

func NewSearchTimeoutError(source string, err error) *StandardError {
	return newError(ErrCodeSearchTimeout, "Search query timeout", fmt.Sprintf("source: %s", source), true, err)
}

// NewSearchError classifies a failed search as SEARCH_TIMEOUT when the call ran
// out of time, else SEARCH_QUERY_FAILED. Drivers do not always wrap the deadline,
// so the call context is checked too.
func NewSearchError(ctx context.Context, source string, err error) *StandardError {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return NewSearchTimeoutError(source, err)
	}
	return NewSearchQueryFailedError(source, err)
}

func NewEmbeddingFailedError(err error) *StandardError {
	return newError(ErrCodeEmbeddingFailed, "Embedding request failed", err.Error(), true, err)
}

func NewGenerationFailedError(err error) *StandardError {
	return newError(ErrCodeGenerationFailed, "Generation request failed", err.Error(), true, err)
}

func NewGenerationTimeoutError(err error) *StandardError {
	return newError(ErrCodeGenerationTimeout, "Generation request timeout", "", true, err)
}

func NewRelevanceScoringFailedError(err error) *StandardError {
	return newError(ErrCodeRelevanceScoringFailed, "Relevance scoring failed", err.Error(), true, err)
}

func NewCacheError(operation string, err error) *StandardError {
	return newError(ErrCodeCacheFailed, "Cache operation failed", fmt.Sprintf("%s: %v", operation, err), true, err)
}

// NewExternalServiceError creates a generic retryable external error.
func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service %s failed", service), err.Error(), true, err)
}

// NewTimeoutError creates a generic retryable timeout.
func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Timeout from %s", service), err.Error(), true, err)
}

// NewResourceNotFoundError creates a non-retryable not-found error.
func NewResourceNotFoundError(service, details string) *StandardError {
	return newError(ErrCodeResourceNotFound, fmt.Sprintf("Resource not found in %s", service), details, false, nil)
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes. Unlisted codes pass through.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeRetrievalUnavailable: "RETRIEVAL_UNAVAILABLE",
	ErrCodeCaseNotFound:         "CASE_NOT_FOUND",
	ErrCodeInvalidJurisdiction:  "INVALID_JURISDICTION",
	ErrCodeInvalidInput:         "INVALID_INPUT",
	ErrCodeDefinitionNotFound:   "DEFINITION_NOT_FOUND",
	ErrCodeProcedureNotFound:    "PROCEDURE_NOT_FOUND",
	ErrCodeDocumentNotFound:     "DOCUMENT_NOT_FOUND",
	ErrCodeGraphStoreFailed:     "CITATION_GRAPH_UNAVAILABLE",
	ErrCodeDocumentStoreFailed:  "DOCUMENT_STORE_UNAVAILABLE",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeRetrievalUnavailable,
		ErrCodeDocumentStoreFailed,
		ErrCodeGraphStoreFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeExternalService:
		return 3

	case ErrCodeSearchTimeout,
		ErrCodeGenerationFailed,
		ErrCodeEmbeddingFailed,
		ErrCodeRelevanceScoringFailed,
		ErrCodeTimeout:
		return 2

	case ErrCodeGenerationTimeout, ErrCodeCacheFailed:
		return 1

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "NOT_FOUND"
	case strings.Contains(codeStr, "RETRIEVAL") || strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "STORE") || strings.Contains(codeStr, "CACHE"):
		return "STORAGE"
	case strings.Contains(codeStr, "GENERATION") || strings.Contains(codeStr, "EMBEDDING") || strings.Contains(codeStr, "RELEVANCE"):
		return "AI"
	default:
		return "OTHER"
	}
}
