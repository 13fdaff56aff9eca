package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile          ErrorCategory = "file"
	CategoryExtraction    ErrorCategory = "extraction"
	CategoryParse         ErrorCategory = "parse"
	CategoryValidation    ErrorCategory = "validation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryMerge         ErrorCategory = "merge"
	CategoryStorage       ErrorCategory = "storage"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"
	CodeFileCorrupted  ErrorCode = "file_corrupted"
	CodeDirectoryError ErrorCode = "directory_error"

	// Extraction errors
	CodeEmptyDocumentText  ErrorCode = "empty_document_text"
	CodeUnreadableDocument ErrorCode = "unreadable_document"
	CodeUnsupportedFormat  ErrorCode = "unsupported_format"

	// Parse errors
	CodeNoStatementsFound ErrorCode = "no_statements_found"
	CodeInvalidFormat     ErrorCode = "invalid_format"
	CodeInvalidData       ErrorCode = "invalid_data"
	CodeSegmentError      ErrorCode = "segment_error"

	// Validation errors
	CodeInvalidAmount  ErrorCode = "invalid_amount"
	CodeInvalidDate    ErrorCode = "invalid_date"
	CodeMissingField   ErrorCode = "missing_field"
	CodeOutOfRange     ErrorCode = "out_of_range"
	CodeNoTransactions ErrorCode = "no_transactions"

	// Configuration errors
	CodeInvalidConfig  ErrorCode = "invalid_config"
	CodeMissingConfig  ErrorCode = "missing_config"
	CodeConfigConflict ErrorCode = "config_conflict"

	// Merge errors
	CodeDataInconsistent ErrorCode = "data_inconsistent"
	CodeProcessingError  ErrorCode = "processing_error"

	// Storage errors
	CodeStorageUnavailable ErrorCode = "storage_unavailable"
	CodeMigrationFailed    ErrorCode = "migration_failed"
	CodeQueryFailed        ErrorCode = "query_failed"

	// Internal errors
	CodeUnexpectedError   ErrorCode = "unexpected_error"
	CodeResourceExhausted ErrorCode = "resource_exhausted"
)

// ExtractorError is the base error type for all application errors
type ExtractorError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *ExtractorError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *ExtractorError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *ExtractorError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryExtraction, CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryMerge, CategoryInternal:
		return 5
	case CategoryStorage:
		return 6
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *ExtractorError) WithContext(key string, value interface{}) *ExtractorError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *ExtractorError) WithSuggestion(suggestion string) *ExtractorError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ExtractorError
func New(category ErrorCategory, code ErrorCode, message string) *ExtractorError {
	return &ExtractorError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with ExtractorError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *ExtractorError {
	if err == nil {
		return nil
	}

	return &ExtractorError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Specific error constructors

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *ExtractorError {
	var message string
	var suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	case CodeFileCorrupted:
		message = fmt.Sprintf("file appears to be corrupted: %s", path)
		suggestion = "verify the file integrity and try using a backup copy"
	case CodeDirectoryError:
		message = fmt.Sprintf("directory error: %s", path)
		suggestion = "ensure the directory exists and is accessible"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	var result *ExtractorError
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	} else {
		result = New(CategoryFile, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ExtractionError creates a text-extraction-related error
func ExtractionError(code ErrorCode, document string, err error) *ExtractorError {
	var message string
	var suggestion string

	switch code {
	case CodeEmptyDocumentText:
		message = fmt.Sprintf("document produced no text: %s", document)
		suggestion = "the PDF may be password-protected or image-only; run OCR before extraction"
	case CodeUnreadableDocument:
		message = fmt.Sprintf("document could not be read: %s", document)
		suggestion = "verify the document opens in a PDF viewer and is not encrypted"
	case CodeUnsupportedFormat:
		message = fmt.Sprintf("unsupported document format: %s", document)
		suggestion = "provide a PDF or plain-text statement export"
	default:
		message = fmt.Sprintf("extraction error: %s", document)
		suggestion = "check the document and try again"
	}

	var result *ExtractorError
	if err != nil {
		result = Wrap(err, CategoryExtraction, code, message)
	} else {
		result = New(CategoryExtraction, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("document", document)
}

// ParseError creates a statement-parsing-related error
func ParseError(code ErrorCode, document string, page int, value string, err error) *ExtractorError {
	var message string
	var suggestion string

	switch code {
	case CodeNoStatementsFound:
		message = fmt.Sprintf("no statements could be parsed from %s", document)
		suggestion = "verify the document is a bank statement in a supported layout"
	case CodeInvalidFormat:
		message = fmt.Sprintf("invalid format in %s on page %d: '%s'", document, page, value)
		suggestion = "check that the statement layout matches a supported pattern"
	case CodeInvalidData:
		message = fmt.Sprintf("invalid data in %s on page %d: '%s'", document, page, value)
		suggestion = "inspect the extracted text for OCR damage around this value"
	case CodeSegmentError:
		message = fmt.Sprintf("statement segmentation failed for %s", document)
		suggestion = "check the document for unusual statement boundaries"
	default:
		message = fmt.Sprintf("parse error in %s on page %d", document, page)
		suggestion = "check the document format and try again"
	}

	var result *ExtractorError
	if err != nil {
		result = Wrap(err, CategoryParse, code, message)
	} else {
		result = New(CategoryParse, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("document", document).
		WithContext("page", page).
		WithContext("value", value)
}

// ValidationError creates a validation-related error
func ValidationError(code ErrorCode, field string, value interface{}, err error) *ExtractorError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidAmount:
		message = fmt.Sprintf("invalid amount in field '%s': %v", field, value)
		suggestion = "ensure amounts are valid decimal numbers (e.g., '12.34')"
	case CodeInvalidDate:
		message = fmt.Sprintf("invalid date in field '%s': %v", field, value)
		suggestion = "use date format YYYY-MM-DD"
	case CodeMissingField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
		suggestion = "provide a value for this required field"
	case CodeOutOfRange:
		message = fmt.Sprintf("value out of range in field '%s': %v", field, value)
		suggestion = "ensure the value is within the acceptable range"
	case CodeNoTransactions:
		message = fmt.Sprintf("no transactions available for '%s'", field)
		suggestion = "check that the source statements contain transactions before exporting"
	default:
		message = fmt.Sprintf("validation error in field '%s': %v", field, value)
		suggestion = "check the field value and format"
	}

	var result *ExtractorError
	if err != nil {
		result = Wrap(err, CategoryValidation, code, message)
	} else {
		result = New(CategoryValidation, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *ExtractorError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the configuration documentation for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this configuration setting or use a config file"
	case CodeConfigConflict:
		message = fmt.Sprintf("configuration conflict with setting '%s': %v", setting, value)
		suggestion = "resolve the conflicting settings or use default values"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	var result *ExtractorError
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	} else {
		result = New(CategoryConfiguration, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// MergeError creates a merge-related error
func MergeError(code ErrorCode, operation string, err error) *ExtractorError {
	var message string
	var suggestion string

	switch code {
	case CodeDataInconsistent:
		message = fmt.Sprintf("data inconsistency detected during %s", operation)
		suggestion = "verify the parsed statements and resolve inconsistencies"
	case CodeProcessingError:
		message = fmt.Sprintf("processing error during %s", operation)
		suggestion = "check system resources and try again"
	default:
		message = fmt.Sprintf("merge error during %s", operation)
		suggestion = "review the statements being merged"
	}

	var result *ExtractorError
	if err != nil {
		result = Wrap(err, CategoryMerge, code, message)
	} else {
		result = New(CategoryMerge, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// StorageError creates a storage-related error
func StorageError(code ErrorCode, operation string, err error) *ExtractorError {
	var message string
	var suggestion string

	switch code {
	case CodeStorageUnavailable:
		message = fmt.Sprintf("statement store unavailable during %s", operation)
		suggestion = "check the store path is writable and not locked by another process"
	case CodeMigrationFailed:
		message = fmt.Sprintf("store migration failed during %s", operation)
		suggestion = "remove the store file and let the application recreate it"
	case CodeQueryFailed:
		message = fmt.Sprintf("store query failed during %s", operation)
		suggestion = "check the store file integrity"
	default:
		message = fmt.Sprintf("storage error during %s", operation)
		suggestion = "check the statement store and try again"
	}

	var result *ExtractorError
	if err != nil {
		result = Wrap(err, CategoryStorage, code, message)
	} else {
		result = New(CategoryStorage, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// InternalError creates an internal error
func InternalError(code ErrorCode, operation string, err error) *ExtractorError {
	var message string
	var suggestion string

	switch code {
	case CodeUnexpectedError:
		message = fmt.Sprintf("unexpected error during %s", operation)
		suggestion = "this is likely a bug - please report it with the error details"
	case CodeResourceExhausted:
		message = fmt.Sprintf("resource exhausted during %s", operation)
		suggestion = "try processing fewer documents at once"
	default:
		message = fmt.Sprintf("internal error during %s", operation)
		suggestion = "try again or contact support if the problem persists"
	}

	var result *ExtractorError
	if err != nil {
		result = Wrap(err, CategoryInternal, code, message)
	} else {
		result = New(CategoryInternal, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// ErrorSummary provides a summary of multiple errors
type ErrorSummary struct {
	Total        int                   `json:"total"`
	ByCategory   map[ErrorCategory]int `json:"by_category"`
	ByCode       map[ErrorCode]int     `json:"by_code"`
	Errors       []*ExtractorError     `json:"errors"`
	SampleErrors []*ExtractorError     `json:"sample_errors,omitempty"`
}

// NewErrorSummary creates a new error summary
func NewErrorSummary(errors []*ExtractorError) *ErrorSummary {
	if len(errors) == 0 {
		return &ErrorSummary{
			Total:      0,
			ByCategory: make(map[ErrorCategory]int),
			ByCode:     make(map[ErrorCode]int),
			Errors:     []*ExtractorError{},
		}
	}

	summary := &ErrorSummary{
		Total:      len(errors),
		ByCategory: make(map[ErrorCategory]int),
		ByCode:     make(map[ErrorCode]int),
		Errors:     errors,
	}

	// Count by category and code
	for _, err := range errors {
		summary.ByCategory[err.Category]++
		summary.ByCode[err.Code]++
	}

	// Include sample errors (max 5)
	maxSamples := 5
	if len(errors) > maxSamples {
		summary.SampleErrors = errors[:maxSamples]
	} else {
		summary.SampleErrors = errors
	}

	return summary
}

// Error returns a formatted error message for the summary
func (es *ErrorSummary) Error() string {
	if es.Total == 0 {
		return "no errors"
	}

	if es.Total == 1 {
		return es.Errors[0].Error()
	}

	var categories []string
	for category, count := range es.ByCategory {
		categories = append(categories, fmt.Sprintf("%s: %d", category, count))
	}

	return fmt.Sprintf("%d errors occurred (%s)", es.Total, strings.Join(categories, ", "))
}

// HasCategory checks if the summary contains errors of the given category
func (es *ErrorSummary) HasCategory(category ErrorCategory) bool {
	count, exists := es.ByCategory[category]
	return exists && count > 0
}

// HasCode checks if the summary contains errors with the given code
func (es *ErrorSummary) HasCode(code ErrorCode) bool {
	count, exists := es.ByCode[code]
	return exists && count > 0
}

// GetExitCode returns the highest priority exit code from all errors
func (es *ErrorSummary) GetExitCode() int {
	if es.Total == 0 {
		return 0
	}

	maxCode := 1
	for _, err := range es.Errors {
		if code := err.GetExitCode(); code > maxCode {
			maxCode = code
		}
	}

	return maxCode
}

// Utility functions

// IsExtractorError checks if an error is an ExtractorError
func IsExtractorError(err error) bool {
	_, ok := err.(*ExtractorError)
	return ok
}

// AsExtractorError extracts an ExtractorError from an error chain
func AsExtractorError(err error) (*ExtractorError, bool) {
	var extractorErr *ExtractorError
	if errors.As(err, &extractorErr) {
		return extractorErr, true
	}
	return nil, false
}

// WrapIfNeeded wraps an error if it's not already an ExtractorError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *ExtractorError {
	if err == nil {
		return nil
	}

	if extractorErr, ok := AsExtractorError(err); ok {
		return extractorErr
	}

	return Wrap(err, category, code, message)
}
