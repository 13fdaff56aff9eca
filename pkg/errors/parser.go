package errors

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ParseContext provides context information for statement parsing operations
type ParseContext struct {
	File     string `json:"file"`
	Page     int    `json:"page,omitempty"`
	Line     int    `json:"line"`
	Section  string `json:"section,omitempty"`
	Value    string `json:"value"`
	Expected string `json:"expected,omitempty"`
}

// EnhancedParseError extends the base parse error with better context and suggestions
type EnhancedParseError struct {
	*ExtractorError
	Context     *ParseContext `json:"context"`
	Recoverable bool          `json:"recoverable"`
	LineContent string        `json:"line_content,omitempty"`
	Examples    []string      `json:"examples,omitempty"`
}

// Error implements the error interface with enhanced formatting
func (e *EnhancedParseError) Error() string {
	var parts []string

	// Basic error message
	parts = append(parts, e.ExtractorError.Error())

	// Location information
	if e.Context != nil {
		location := fmt.Sprintf("at %s", filepath.Base(e.Context.File))
		if e.Context.Page > 0 {
			location += fmt.Sprintf(" page %d", e.Context.Page)
		}
		if e.Context.Line > 0 {
			location += fmt.Sprintf(" line %d", e.Context.Line)
		}
		parts = append(parts, location)
	}

	return strings.Join(parts, " ")
}

// GetDetailedError returns a detailed multi-line error description
func (e *EnhancedParseError) GetDetailedError() string {
	var lines []string

	// Error header
	lines = append(lines, fmt.Sprintf("ERROR: %s", e.Message))

	// Location information
	if e.Context != nil {
		lines = append(lines, fmt.Sprintf("  → File: %s", e.Context.File))
		if e.Context.Page > 0 {
			lines = append(lines, fmt.Sprintf("  → Page: %d", e.Context.Page))
		}
		if e.Context.Line > 0 {
			lines = append(lines, fmt.Sprintf("  → Line: %d", e.Context.Line))
		}
		if e.Context.Section != "" {
			lines = append(lines, fmt.Sprintf("  → Section: %s", e.Context.Section))
		}
		if e.Context.Value != "" {
			lines = append(lines, fmt.Sprintf("  → Value: '%s'", e.Context.Value))
		}
		if e.Context.Expected != "" {
			lines = append(lines, fmt.Sprintf("  → Expected: %s", e.Context.Expected))
		}
	}

	// Line content if available
	if e.LineContent != "" {
		lines = append(lines, fmt.Sprintf("  → Content: %s", e.LineContent))
	}

	// Suggestion
	if e.Suggestion != "" {
		lines = append(lines, fmt.Sprintf("  → Suggestion: %s", e.Suggestion))
	}

	// Examples if available
	if len(e.Examples) > 0 {
		lines = append(lines, "  → Examples:")
		for _, example := range e.Examples {
			lines = append(lines, fmt.Sprintf("    • %s", example))
		}
	}

	return strings.Join(lines, "\n")
}

// NewEnhancedParseError creates a new enhanced parse error
func NewEnhancedParseError(code ErrorCode, context *ParseContext, message string, cause error) *EnhancedParseError {
	baseError := Wrap(cause, CategoryParse, code, message)
	if baseError == nil {
		baseError = New(CategoryParse, code, message)
	}

	// Add context to base error
	if context != nil {
		baseError.WithContext("file", context.File).
			WithContext("page", context.Page).
			WithContext("line", context.Line).
			WithContext("value", context.Value)
	}

	return &EnhancedParseError{
		ExtractorError: baseError,
		Context:        context,
		Recoverable:    true, // Most parse errors are recoverable by default
	}
}

// WithLineContent adds the actual line content to the error
func (e *EnhancedParseError) WithLineContent(content string) *EnhancedParseError {
	e.LineContent = content
	return e
}

// WithExamples adds example values to help fix the error
func (e *EnhancedParseError) WithExamples(examples ...string) *EnhancedParseError {
	e.Examples = examples
	return e
}

// WithSuggestion adds a suggestion and returns the EnhancedParseError
func (e *EnhancedParseError) WithSuggestion(suggestion string) *EnhancedParseError {
	e.ExtractorError.WithSuggestion(suggestion)
	return e
}

// WithRecoverable sets whether this error is recoverable
func (e *EnhancedParseError) WithRecoverable(recoverable bool) *EnhancedParseError {
	e.Recoverable = recoverable
	return e
}

// Common parse error constructors

// InvalidAmountError creates an error for invalid amount format
func InvalidAmountError(file string, page int, line int, value string) *EnhancedParseError {
	context := &ParseContext{
		File:     file,
		Page:     page,
		Line:     line,
		Value:    value,
		Expected: "decimal number with optional thousands separators",
	}

	message := "invalid amount format"
	err := NewEnhancedParseError(CodeInvalidAmount, context, message, nil).
		WithExamples("12.34", "1,250.50", "-500.00").
		WithSuggestion("Check the extracted text for OCR damage around this value")

	return err
}

// InvalidDateError creates an error for invalid date format
func InvalidDateError(file string, page int, line int, value string) *EnhancedParseError {
	context := &ParseContext{
		File:     file,
		Page:     page,
		Line:     line,
		Value:    value,
		Expected: "date in MM/DD/YY or 'Month D, YYYY' format",
	}

	message := "invalid date format"
	err := NewEnhancedParseError(CodeInvalidDate, context, message, nil).
		WithExamples("01/15/25", "01/15/2025", "January 15, 2025").
		WithSuggestion("Verify the transaction date was extracted intact")

	return err
}

// AmbiguousAmountError creates an error for reference numbers glued to amounts
// that no resolver could separate
func AmbiguousAmountError(file string, page int, line int, value string) *EnhancedParseError {
	context := &ParseContext{
		File:     file,
		Page:     page,
		Line:     line,
		Value:    value,
		Expected: "reference number and amount separated by whitespace",
	}

	message := "could not separate reference number from amount"
	err := NewEnhancedParseError(CodeInvalidData, context, message, nil).
		WithExamples("Confirmation# 7579827889 77.98", "Conf# T0ZGTJ9B9 1,000.00").
		WithSuggestion("The line will be skipped; review the source document for this transaction")

	return err
}

// UnparsedLineError creates an error for lines that matched no known layout
func UnparsedLineError(file string, page int, line int, content string) *EnhancedParseError {
	context := &ParseContext{
		File:     file,
		Page:     page,
		Line:     line,
		Value:    content,
		Expected: "transaction line starting with a date and ending with an amount",
	}

	message := "line matched no known transaction layout"
	err := NewEnhancedParseError(CodeInvalidFormat, context, message, nil).
		WithLineContent(content).
		WithSuggestion("If this is a transaction, its layout is unsupported")

	return err
}

// MissingBalanceError creates an error for statements without a balance summary
func MissingBalanceError(file string) *EnhancedParseError {
	context := &ParseContext{
		File:     file,
		Expected: "'Beginning balance' and 'Ending balance' summary lines",
	}

	message := "no balance summary found"
	err := NewEnhancedParseError(CodeInvalidFormat, context, message, nil).
		WithSuggestion("Balances default to zero; verify the summary page was extracted")

	return err
}

// EmptyDocumentError creates an error for documents that yielded no text
func EmptyDocumentError(file string, pageCount int) *EnhancedParseError {
	baseError := ExtractionError(CodeEmptyDocumentText, file, nil).
		WithContext("page_count", pageCount)

	return &EnhancedParseError{
		ExtractorError: baseError,
		Context:        &ParseContext{File: file},
		Recoverable:    false, // Nothing to parse without text
	}
}

// NoStatementsError creates an error for documents where no statement was found
func NoStatementsError(file string) *EnhancedParseError {
	baseError := ParseError(CodeNoStatementsFound, file, 0, "", nil)

	return &EnhancedParseError{
		ExtractorError: baseError,
		Context:        &ParseContext{File: file},
		Recoverable:    false,
	}
}

// ParseErrorCollector collects multiple parse errors during processing
type ParseErrorCollector struct {
	errors          []*EnhancedParseError
	maxErrors       int
	continueOnError bool
}

// NewParseErrorCollector creates a new error collector
func NewParseErrorCollector(maxErrors int, continueOnError bool) *ParseErrorCollector {
	return &ParseErrorCollector{
		errors:          make([]*EnhancedParseError, 0),
		maxErrors:       maxErrors,
		continueOnError: continueOnError,
	}
}

// Add adds an error to the collector
func (c *ParseErrorCollector) Add(err *EnhancedParseError) bool {
	if err == nil {
		return true
	}

	c.errors = append(c.errors, err)

	// Check if we should continue processing
	if len(c.errors) >= c.maxErrors {
		return false
	}

	return c.continueOnError || err.Recoverable
}

// HasErrors returns true if any errors have been collected
func (c *ParseErrorCollector) HasErrors() bool {
	return len(c.errors) > 0
}

// GetErrors returns all collected errors
func (c *ParseErrorCollector) GetErrors() []*EnhancedParseError {
	return c.errors
}

// GetExtractorErrors converts all errors to base ExtractorError type
func (c *ParseErrorCollector) GetExtractorErrors() []*ExtractorError {
	result := make([]*ExtractorError, len(c.errors))
	for i, err := range c.errors {
		result[i] = err.ExtractorError
	}
	return result
}

// GetSummary returns an error summary for all collected errors
func (c *ParseErrorCollector) GetSummary() *ErrorSummary {
	return NewErrorSummary(c.GetExtractorErrors())
}

// Clear clears all collected errors
func (c *ParseErrorCollector) Clear() {
	c.errors = c.errors[:0]
}

// FormatParseErrorsForUser formats multiple parse errors in a user-friendly way
func FormatParseErrorsForUser(errors []*EnhancedParseError) string {
	if len(errors) == 0 {
		return "No parse errors"
	}

	if len(errors) == 1 {
		return errors[0].GetDetailedError()
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Found %d parse errors:", len(errors)))
	lines = append(lines, "")

	// Group errors by file
	errorsByFile := make(map[string][]*EnhancedParseError)
	for _, err := range errors {
		file := "unknown"
		if err.Context != nil {
			file = filepath.Base(err.Context.File)
		}
		errorsByFile[file] = append(errorsByFile[file], err)
	}

	// Display errors grouped by file
	for file, fileErrors := range errorsByFile {
		lines = append(lines, fmt.Sprintf("File: %s (%d errors)", file, len(fileErrors)))

		// Show first few errors in detail, summarize the rest
		maxDetailedErrors := 3
		for i, err := range fileErrors {
			if i < maxDetailedErrors {
				lines = append(lines, "")
				lines = append(lines, err.GetDetailedError())
			} else if i == maxDetailedErrors {
				remaining := len(fileErrors) - maxDetailedErrors
				lines = append(lines, "")
				lines = append(lines, fmt.Sprintf("... and %d more errors in this file", remaining))
				break
			}
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// SuggestionsForCommonErrors provides suggestions for common parsing issues
func SuggestionsForCommonErrors() string {
	return `Common solutions for parse errors:

• Empty document text: the PDF is likely scanned images; run OCR before extraction
• No statements found: check the document contains a 'Beginning balance on <date>' line
• Invalid amounts: look for OCR artifacts (glued tokens, damaged digits) near the value
• Invalid dates: transaction dates should look like 01/15/25 or January 15, 2025
• Unparsed lines: the statement layout may be unsupported; inspect the extracted text

For more help, check the documentation or use --help flag.`
}
