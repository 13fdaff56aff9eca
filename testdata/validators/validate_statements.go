package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang-statement-extraction-service/internal/models"
	"golang-statement-extraction-service/internal/pipeline"
	"golang-statement-extraction-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// ValidationResult represents the result of validating a document
type ValidationResult struct {
	FilePath         string
	IsValid          bool
	StatementCount   int
	TransactionCount int
	Errors           []ValidationError
	Warnings         []ValidationWarning
	Summary          ValidationSummary
}

// ValidationError represents a validation error
type ValidationError struct {
	Statement int // 1-based statement index within the document, 0 for document-level
	Message   string
	Value     string
}

// ValidationWarning represents a validation warning
type ValidationWarning struct {
	Statement int
	Message   string
	Value     string
}

// ValidationSummary provides aggregate validation statistics
type ValidationSummary struct {
	TotalStatements   int
	TotalTransactions int
	UniquePeriods     int
	DuplicatePeriods  int
	Directions        map[string]int
	AmountRange       AmountRange
	DateRange         DateRange
}

// AmountRange represents the range of transaction magnitudes in a document
type AmountRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
	Avg decimal.Decimal
}

// DateRange represents the range of transaction dates in a document
type DateRange struct {
	Min time.Time
	Max time.Time
}

func main() {
	var (
		input     = flag.String("input", "", "Statement text file or directory to validate")
		output    = flag.String("output", "", "Output file for validation report (optional)")
		recursive = flag.Bool("recursive", false, "Recursively validate files in directory")
		verbose   = flag.Bool("verbose", false, "Verbose output")
		strict    = flag.Bool("strict", false, "Strict validation mode (warnings become errors)")
	)
	flag.Parse()

	if *input == "" {
		fmt.Println("Statement Document Validator")
		fmt.Println("============================")
		fmt.Println()
		fmt.Println("Runs each document through the extraction pipeline and checks the")
		fmt.Println("parsed statements for internal consistency.")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  go run validate_statements.go -input=<file_or_directory> [options]")
		fmt.Println()
		fmt.Println("Options:")
		fmt.Println("  -input=FILE        Statement text file or directory")
		fmt.Println("  -output=FILE       Output report file (optional)")
		fmt.Println("  -recursive         Recursively validate directories")
		fmt.Println("  -verbose           Show detailed validation output")
		fmt.Println("  -strict            Treat warnings as errors")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  go run validate_statements.go -input=../generated/statements -recursive")
		fmt.Println("  go run validate_statements.go -input=generated_statements/eStmt_2025-01.txt -verbose")
		fmt.Println("  go run validate_statements.go -input=../generated -recursive -output=validation_report.txt")
		return
	}

	// Pipeline logs would drown the validation output
	quiet, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: logger.TextFormat})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	logger.SetGlobalLogger(quiet)

	service, err := pipeline.NewExtractionService(nil)
	if err != nil {
		log.Fatalf("Failed to create extraction service: %v", err)
	}

	validator := &StatementValidator{
		Verbose: *verbose,
		Strict:  *strict,
		service: service,
	}

	var results []ValidationResult

	// Check if input is file or directory
	info, err := os.Stat(*input)
	if err != nil {
		log.Fatalf("Cannot access input: %v", err)
	}

	if info.IsDir() {
		results = validator.ValidateDirectory(*input, *recursive)
	} else {
		result := validator.ValidateFile(*input)
		results = []ValidationResult{result}
	}

	// Output results
	validator.PrintResults(results)

	// Write report if requested
	if *output != "" {
		if err := validator.WriteReport(*output, results); err != nil {
			log.Printf("Failed to write report: %v", err)
		} else {
			fmt.Printf("\nValidation report written to: %s\n", *output)
		}
	}

	// Exit with error code if validation failed
	hasErrors := false
	for _, result := range results {
		if !result.IsValid {
			hasErrors = true
			break
		}
	}

	if hasErrors {
		os.Exit(1)
	}
}

// StatementValidator validates statement documents with the real pipeline
type StatementValidator struct {
	Verbose bool
	Strict  bool
	service *pipeline.ExtractionService
}

// ValidateDirectory validates all statement text files in a directory
func (sv *StatementValidator) ValidateDirectory(dirPath string, recursive bool) []ValidationResult {
	var results []ValidationResult

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Skip directories
		if info.IsDir() {
			if !recursive && path != dirPath {
				return filepath.SkipDir
			}
			return nil
		}

		// Only validate statement text files
		if strings.ToLower(filepath.Ext(path)) == ".txt" {
			if sv.Verbose {
				fmt.Printf("Validating: %s\n", path)
			}
			result := sv.ValidateFile(path)
			results = append(results, result)
		}

		return nil
	})

	if err != nil {
		log.Printf("Error walking directory: %v", err)
	}

	return results
}

// ValidateFile extracts a single document and validates every statement in it
func (sv *StatementValidator) ValidateFile(filePath string) ValidationResult {
	result := ValidationResult{
		FilePath: filePath,
		Errors:   []ValidationError{},
		Warnings: []ValidationWarning{},
		Summary: ValidationSummary{
			Directions: make(map[string]int),
		},
	}

	statements, err := sv.service.ExtractDocument(context.Background(), filePath)
	if err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Statement: 0,
			Message:   fmt.Sprintf("Extraction failed: %v", err),
		})
		return result
	}

	periodMap := make(map[string]int)
	var magnitudes []decimal.Decimal
	var dates []time.Time

	for i, sws := range statements {
		index := i + 1

		if err := sws.Validate(); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Statement: index,
				Message:   fmt.Sprintf("Statement validation failed: %v", err),
			})
			continue
		}

		sv.validateStatement(index, sws.Statement, &result, &magnitudes, &dates)

		// Track statement periods; a repeated period within one document
		// usually means a combined export carries a reissue
		period := sws.Statement.Account.StatementPeriodStart
		if period != "" {
			if prev, exists := periodMap[period]; exists {
				result.Warnings = append(result.Warnings, ValidationWarning{
					Statement: index,
					Message:   fmt.Sprintf("Statement period already seen (statement %d)", prev),
					Value:     period,
				})
			} else {
				periodMap[period] = index
			}
		}

		result.TransactionCount += len(sws.Statement.Transactions)
	}

	// Calculate summary
	result.StatementCount = len(statements)
	result.Summary.TotalStatements = result.StatementCount
	result.Summary.TotalTransactions = result.TransactionCount
	result.Summary.UniquePeriods = len(periodMap)
	result.Summary.DuplicatePeriods = result.StatementCount - result.Summary.UniquePeriods

	if len(magnitudes) > 0 {
		result.Summary.AmountRange = calculateAmountRange(magnitudes)
	}

	if len(dates) > 0 {
		result.Summary.DateRange = calculateDateRange(dates)
	}

	// Determine if the document is valid
	result.IsValid = len(result.Errors) == 0
	if sv.Strict && len(result.Warnings) > 0 {
		result.IsValid = false
	}

	return result
}

// validateStatement checks one parsed statement for internal consistency
func (sv *StatementValidator) validateStatement(index int, statement *models.ParsedStatement, result *ValidationResult, magnitudes *[]decimal.Decimal, dates *[]time.Time) {
	// Period window for date checks
	var periodStart, periodEnd time.Time
	if statement.Account.HasValidPeriod() {
		periodStart, _ = models.ParseTimeWithFormats(statement.Account.StatementPeriodStart)
		periodEnd, _ = models.ParseTimeWithFormats(statement.Account.StatementPeriodEnd)
	} else {
		result.Errors = append(result.Errors, ValidationError{
			Statement: index,
			Message:   "Statement period missing or unparseable",
			Value:     statement.Account.StatementPeriodStart,
		})
	}

	if statement.Account.AccountNumberMasked == models.DefaultAccountNumberMask {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Statement: index,
			Message:   "Account number not detected",
		})
	}

	credits := decimal.Zero
	debits := decimal.Zero

	for _, tx := range statement.Transactions {
		if err := tx.Validate(); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Statement: index,
				Message:   fmt.Sprintf("Transaction validation failed: %v", err),
				Value:     tx.OriginalLine,
			})
			continue
		}

		// Direction must agree with the amount sign
		if tx.Direction == models.DirectionDebit && !tx.Amount.IsNegative() {
			result.Errors = append(result.Errors, ValidationError{
				Statement: index,
				Message:   "Debit transaction with non-negative amount",
				Value:     tx.Amount.String(),
			})
		}
		if tx.Direction == models.DirectionCredit && tx.Amount.IsNegative() {
			result.Errors = append(result.Errors, ValidationError{
				Statement: index,
				Message:   "Credit transaction with negative amount",
				Value:     tx.Amount.String(),
			})
		}

		if tx.Direction == models.DirectionCredit {
			credits = credits.Add(tx.Amount)
		} else {
			debits = debits.Add(tx.Amount.Abs())
		}
		result.Summary.Directions[tx.Direction.String()]++

		if !periodStart.IsZero() && (tx.Date.Before(periodStart) || tx.Date.After(periodEnd)) {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Statement: index,
				Message:   "Transaction date outside statement period",
				Value:     tx.Date.Format("2006-01-02"),
			})
		}

		*magnitudes = append(*magnitudes, tx.Amount.Abs())
		*dates = append(*dates, tx.Date)
	}

	// Declared section totals should match the summed transactions when the
	// document carries them
	if !statement.Balance.TotalCredits.IsZero() && !statement.Balance.TotalCredits.Equal(credits) {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Statement: index,
			Message:   fmt.Sprintf("Declared total credits %s do not match summed credits %s", statement.Balance.TotalCredits.String(), credits.String()),
		})
	}
	if !statement.Balance.TotalDebits.IsZero() && !statement.Balance.TotalDebits.Abs().Equal(debits) {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Statement: index,
			Message:   fmt.Sprintf("Declared total debits %s do not match summed debits %s", statement.Balance.TotalDebits.Abs().String(), debits.String()),
		})
	}

	// Balance arithmetic
	if statement.Balance.HasBalancePair() {
		expected := statement.Balance.StartingBalance.Add(credits).Sub(debits)
		if !expected.Equal(statement.Balance.EndingBalance) {
			result.Errors = append(result.Errors, ValidationError{
				Statement: index,
				Message:   fmt.Sprintf("Balance mismatch: %s + credits - debits = %s, statement says %s", statement.Balance.StartingBalance.String(), expected.String(), statement.Balance.EndingBalance.String()),
			})
		}
	} else {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Statement: index,
			Message:   "Beginning/ending balance pair not detected",
		})
	}

	if len(statement.Warnings) > 0 && sv.Verbose {
		for _, w := range statement.Warnings {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Statement: index,
				Message:   fmt.Sprintf("Parser warning: %s", w),
			})
		}
	}
}

// calculateAmountRange calculates min, max, and average magnitudes
func calculateAmountRange(amounts []decimal.Decimal) AmountRange {
	if len(amounts) == 0 {
		return AmountRange{}
	}

	min := amounts[0]
	max := amounts[0]
	sum := decimal.Zero

	for _, amount := range amounts {
		if amount.LessThan(min) {
			min = amount
		}
		if amount.GreaterThan(max) {
			max = amount
		}
		sum = sum.Add(amount)
	}

	avg := sum.Div(decimal.NewFromInt(int64(len(amounts))))

	return AmountRange{
		Min: min,
		Max: max,
		Avg: avg,
	}
}

// calculateDateRange calculates min and max dates
func calculateDateRange(dates []time.Time) DateRange {
	if len(dates) == 0 {
		return DateRange{}
	}

	min := dates[0]
	max := dates[0]

	for _, date := range dates {
		if date.Before(min) {
			min = date
		}
		if date.After(max) {
			max = date
		}
	}

	return DateRange{
		Min: min,
		Max: max,
	}
}

// PrintResults prints validation results to console
func (sv *StatementValidator) PrintResults(results []ValidationResult) {
	fmt.Println("\nValidation Results")
	fmt.Println("==================")

	totalFiles := len(results)
	validFiles := 0
	totalStatements := 0
	totalTransactions := 0
	totalErrors := 0
	totalWarnings := 0

	for _, result := range results {
		fmt.Printf("\nFile: %s\n", result.FilePath)
		fmt.Printf("Statements: %d\n", result.StatementCount)
		fmt.Printf("Transactions: %d\n", result.TransactionCount)

		if result.IsValid {
			fmt.Printf("Status: ✓ VALID\n")
			validFiles++
		} else {
			fmt.Printf("Status: ✗ INVALID\n")
		}

		if len(result.Errors) > 0 {
			fmt.Printf("Errors: %d\n", len(result.Errors))
			if sv.Verbose {
				for _, err := range result.Errors {
					fmt.Printf("  Statement %d: %s\n", err.Statement, err.Message)
				}
			}
		}

		if len(result.Warnings) > 0 {
			fmt.Printf("Warnings: %d\n", len(result.Warnings))
			if sv.Verbose {
				for _, warning := range result.Warnings {
					fmt.Printf("  Statement %d: %s\n", warning.Statement, warning.Message)
				}
			}
		}

		// Print summary if available
		if result.Summary.TotalStatements > 0 {
			fmt.Printf("Summary:\n")
			fmt.Printf("  Unique periods: %d\n", result.Summary.UniquePeriods)
			if result.Summary.DuplicatePeriods > 0 {
				fmt.Printf("  Duplicate periods: %d\n", result.Summary.DuplicatePeriods)
			}
			if !result.Summary.AmountRange.Max.IsZero() {
				fmt.Printf("  Amount Range: %s to %s (avg: %s)\n",
					result.Summary.AmountRange.Min.String(),
					result.Summary.AmountRange.Max.String(),
					result.Summary.AmountRange.Avg.StringFixed(2))
			}
			if !result.Summary.DateRange.Min.IsZero() {
				fmt.Printf("  Date Range: %s to %s\n",
					result.Summary.DateRange.Min.Format("2006-01-02"),
					result.Summary.DateRange.Max.Format("2006-01-02"))
			}
			if len(result.Summary.Directions) > 0 {
				fmt.Printf("  Directions: ")
				for direction, count := range result.Summary.Directions {
					fmt.Printf("%s=%d ", direction, count)
				}
				fmt.Println()
			}
		}

		totalStatements += result.StatementCount
		totalTransactions += result.TransactionCount
		totalErrors += len(result.Errors)
		totalWarnings += len(result.Warnings)
	}

	// Overall summary
	fmt.Printf("\nOverall Summary\n")
	fmt.Printf("===============\n")
	fmt.Printf("Files processed: %d\n", totalFiles)
	fmt.Printf("Valid files: %d\n", validFiles)
	fmt.Printf("Invalid files: %d\n", totalFiles-validFiles)
	fmt.Printf("Total statements: %d\n", totalStatements)
	fmt.Printf("Total transactions: %d\n", totalTransactions)
	fmt.Printf("Total errors: %d\n", totalErrors)
	fmt.Printf("Total warnings: %d\n", totalWarnings)

	if validFiles == totalFiles {
		fmt.Printf("Result: ✓ ALL FILES VALID\n")
	} else {
		fmt.Printf("Result: ✗ VALIDATION FAILED\n")
	}
}

// WriteReport writes a detailed validation report to file
func (sv *StatementValidator) WriteReport(filename string, results []ValidationResult) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	// Write header
	fmt.Fprintf(file, "Statement Document Validation Report\n")
	fmt.Fprintf(file, "====================================\n")
	fmt.Fprintf(file, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	// Write summary
	totalFiles := len(results)
	validFiles := 0
	totalStatements := 0
	totalErrors := 0
	totalWarnings := 0

	for _, result := range results {
		if result.IsValid {
			validFiles++
		}
		totalStatements += result.StatementCount
		totalErrors += len(result.Errors)
		totalWarnings += len(result.Warnings)
	}

	fmt.Fprintf(file, "Summary\n")
	fmt.Fprintf(file, "-------\n")
	fmt.Fprintf(file, "Files processed: %d\n", totalFiles)
	fmt.Fprintf(file, "Valid files: %d\n", validFiles)
	fmt.Fprintf(file, "Invalid files: %d\n", totalFiles-validFiles)
	fmt.Fprintf(file, "Total statements: %d\n", totalStatements)
	fmt.Fprintf(file, "Total errors: %d\n", totalErrors)
	fmt.Fprintf(file, "Total warnings: %d\n\n", totalWarnings)

	// Write detailed results
	for _, result := range results {
		fmt.Fprintf(file, "File: %s\n", result.FilePath)
		fmt.Fprintf(file, "Statements: %d\n", result.StatementCount)
		fmt.Fprintf(file, "Transactions: %d\n", result.TransactionCount)
		fmt.Fprintf(file, "Status: %s\n", map[bool]string{true: "VALID", false: "INVALID"}[result.IsValid])

		if len(result.Errors) > 0 {
			fmt.Fprintf(file, "\nErrors (%d):\n", len(result.Errors))
			for _, err := range result.Errors {
				fmt.Fprintf(file, "  Statement %d: %s", err.Statement, err.Message)
				if err.Value != "" {
					fmt.Fprintf(file, " (Value: %s)", err.Value)
				}
				fmt.Fprintf(file, "\n")
			}
		}

		if len(result.Warnings) > 0 {
			fmt.Fprintf(file, "\nWarnings (%d):\n", len(result.Warnings))
			for _, warning := range result.Warnings {
				fmt.Fprintf(file, "  Statement %d: %s", warning.Statement, warning.Message)
				if warning.Value != "" {
					fmt.Fprintf(file, " (Value: %s)", warning.Value)
				}
				fmt.Fprintf(file, "\n")
			}
		}

		fmt.Fprintf(file, "\n%s\n\n", strings.Repeat("-", 80))
	}

	return nil
}
