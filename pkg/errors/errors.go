package errors

import (
	"errors"
	"fmt"
)

// Common application errors
var (
	// Configuration / programming errors. These are raised, not recorded
	// as validation issues, because they indicate a misconfigured
	// pipeline rather than bad input data.
	ErrUnsupportedMigration  = errors.New("no migration path registered between schema versions")
	ErrUnknownQueryPattern   = errors.New("unknown query pattern")
	ErrUnknownEntityType     = errors.New("unknown entity type")
	ErrMalformedPartitionKey = errors.New("malformed partition key")
	ErrInvalidConfiguration  = errors.New("invalid configuration")
	ErrMissingConfiguration  = errors.New("missing configuration")

	// Storage errors
	ErrStorageNotConnected     = errors.New("storage not connected")
	ErrStorageConnectionFailed = errors.New("storage connection failed")
	ErrStorageWriteFailed      = errors.New("storage write failed")
	ErrStorageReadFailed       = errors.New("storage read failed")
	ErrObjectNotFound          = errors.New("object not found")

	// Cleaning errors
	ErrRuleSetLoadFailed = errors.New("failed to load cleaning rule set")

	// Quality errors
	ErrInvalidThreshold     = errors.New("invalid threshold: must be positive")
	ErrInvalidOutlierMethod = errors.New("invalid outlier detection method")
	ErrInsufficientData     = errors.New("insufficient data")

	// Internal errors
	ErrInternal = errors.New("internal error")
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeCleaning      ErrorType = "cleaning"
	ErrorTypeQuality       ErrorType = "quality"
	ErrorTypeSchema        ErrorType = "schema"
	ErrorTypePartition     ErrorType = "partition"
	ErrorTypeQuarantine    ErrorType = "quarantine"
	ErrorTypeStorage       ErrorType = "storage"
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeInternal      ErrorType = "internal"
)

// AppError represents an application-specific error with additional context
type AppError struct {
	Type      ErrorType              `json:"type"`
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Cause     error                  `json:"-"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Retryable bool                   `json:"retryable"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with application context
func WrapError(err error, errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:      errType,
		Code:      code,
		Message:   message,
		Cause:     err,
		Retryable: isRetryable(err),
	}
}

// NewValidationError creates a validation error
func NewValidationError(code, message string) *AppError {
	return NewAppError(ErrorTypeValidation, code, message)
}

// NewSchemaError creates a schema registry error
func NewSchemaError(code, message string) *AppError {
	return NewAppError(ErrorTypeSchema, code, message)
}

// NewCleaningError creates a cleaning engine error
func NewCleaningError(code, message string) *AppError {
	return NewAppError(ErrorTypeCleaning, code, message)
}

// NewQualityError creates a quality scoring error
func NewQualityError(code, message string) *AppError {
	return NewAppError(ErrorTypeQuality, code, message)
}

// NewPartitionError creates a partitioning error
func NewPartitionError(code, message string) *AppError {
	return NewAppError(ErrorTypePartition, code, message)
}

// NewQuarantineError creates a quarantine error
func NewQuarantineError(code, message string) *AppError {
	return &AppError{
		Type:      ErrorTypeQuarantine,
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// NewStorageError creates a storage error
func NewStorageError(code, message string) *AppError {
	return NewAppError(ErrorTypeStorage, code, message)
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(code, message string) *AppError {
	return NewAppError(ErrorTypeConfiguration, code, message)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return NewAppError(ErrorTypeInternal, CodeInternalError, message)
}

// isRetryable determines if an error is retryable
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	switch {
	case errors.Is(err, ErrStorageConnectionFailed):
		return true
	case errors.Is(err, ErrStorageWriteFailed):
		return true
	case errors.Is(err, ErrStorageReadFailed):
		return true
	default:
		return false
	}
}

// Error codes for different error scenarios
const (
	// Validation error codes
	CodeInvalidInput      = "INVALID_INPUT"
	CodeMissingField      = "MISSING_FIELD"
	CodeInvalidFormat     = "INVALID_FORMAT"
	CodeOutOfRange        = "OUT_OF_RANGE"
	CodeInconsistentStats = "INCONSISTENT_STATS"
	CodeDateMismatch      = "DATE_MISMATCH"
	CodeUnknownWireShape  = "UNKNOWN_WIRE_SHAPE"

	// Schema error codes
	CodeUnsupportedMigration = "UNSUPPORTED_MIGRATION"
	CodeUnknownEntity        = "UNKNOWN_ENTITY"

	// Cleaning error codes
	CodeRuleSetLoadFailed = "RULE_SET_LOAD_FAILED"
	CodeInvalidRuleSet    = "INVALID_RULE_SET"

	// Quality error codes
	CodeInvalidMethod    = "INVALID_METHOD"
	CodeInvalidThreshold = "INVALID_THRESHOLD"

	// Partition error codes
	CodeInvalidSeason        = "INVALID_SEASON"
	CodeInvalidDate          = "INVALID_DATE"
	CodeMissingEntityID      = "MISSING_ENTITY_ID"
	CodeUnknownPartitionType = "UNKNOWN_PARTITION_TYPE"
	CodeUnknownQueryPattern  = "UNKNOWN_QUERY_PATTERN"

	// Storage error codes
	CodeStorageError     = "STORAGE_ERROR"
	CodeConnectionFailed = "CONNECTION_FAILED"
	CodeObjectNotFound   = "OBJECT_NOT_FOUND"
	CodeWriteFailed      = "WRITE_FAILED"
	CodeReadFailed       = "READ_FAILED"

	// Quarantine error codes
	CodeQuarantineWriteFailed = "QUARANTINE_WRITE_FAILED"
	CodeQuarantineListFailed  = "QUARANTINE_LIST_FAILED"

	// Configuration error codes
	CodeInvalidConfig = "INVALID_CONFIG"
	CodeMissingConfig = "MISSING_CONFIG"

	// Internal error codes
	CodeInternalError = "INTERNAL_ERROR"
)
