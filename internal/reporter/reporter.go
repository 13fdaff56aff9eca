// Package reporter renders merge results and parsed statements for human
// and machine consumers.
//
// Supported output formats:
//   - Console: human-readable summary for terminal display
//   - JSON: structured data for programmatic consumption
//   - CSV: one row per transaction for spreadsheet import
//
// Example usage:
//
//	generator, err := reporter.NewReportGenerator(nil)
//	err = generator.GenerateMergeReport(result, os.Stdout)
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"golang-statement-extraction-service/internal/merger"
	"golang-statement-extraction-service/internal/models"
	"golang-statement-extraction-service/pkg/errors"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	// Output format
	Format OutputFormat `json:"format"`

	// OutputFile is where the CLI writes the report; empty means stdout
	OutputFile string `json:"output_file"`

	// Verbose enables per-transaction detail in console output
	Verbose bool `json:"verbose"`

	// Detail level options
	IncludeTransactions bool `json:"include_transactions"`
	IncludeWarnings     bool `json:"include_warnings"`

	// Console formatting options
	MaxTransactionsShown int `json:"max_transactions_shown"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:               FormatConsole,
		Verbose:              false,
		IncludeTransactions:  true,
		IncludeWarnings:      true,
		MaxTransactionsShown: 10,
		CSVDelimiter:         ',',
		CSVHeaders:           true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if c.CSVDelimiter == 0 {
		return fmt.Errorf("csv delimiter cannot be empty")
	}
	if c.MaxTransactionsShown < 1 {
		return fmt.Errorf("max transactions shown must be at least 1, got %d", c.MaxTransactionsShown)
	}
	return nil
}

// ReportGenerator generates extraction reports in various formats
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{
		config: config,
	}, nil
}

// GenerateMergeReport renders a merge result and writes it to the provided writer
func (rg *ReportGenerator) GenerateMergeReport(result *merger.MergeResult, writer io.Writer) error {
	if result == nil {
		return fmt.Errorf("merge result cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(result, writer)
	case FormatJSON:
		return rg.generateJSONReport(result, writer)
	case FormatCSV:
		return rg.generateCSVReport(result, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// GenerateStatementReport renders a single statement and writes it to the provided writer
func (rg *ReportGenerator) GenerateStatementReport(sws *models.StatementWithSource, writer io.Writer) error {
	if sws == nil || sws.Statement == nil {
		return fmt.Errorf("statement cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		rg.printStatementDetail(sws, writer)
		return nil
	case FormatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rg.statementForOutput(sws))
	case FormatCSV:
		return rg.writeStatementCSV([]*models.StatementWithSource{sws}, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// generateConsoleReport generates a human-readable console report
func (rg *ReportGenerator) generateConsoleReport(result *merger.MergeResult, writer io.Writer) error {
	fmt.Fprintf(writer, "STATEMENT EXTRACTION REPORT\n")
	fmt.Fprintf(writer, "Generated: %s\n\n", time.Now().Format(time.RFC3339))

	fmt.Fprintf(writer, "=== MERGE SUMMARY ===\n")
	fmt.Fprintf(writer, "Statements:                     %d\n", len(result.Statements))
	fmt.Fprintf(writer, "Total Transactions:             %d\n", result.TotalTransactions)
	fmt.Fprintf(writer, "Duplicate Statements Removed:   %d\n", result.DuplicateStatementsRemoved)
	fmt.Fprintf(writer, "Duplicate Transactions Removed: %d\n\n", result.DuplicateTransactionsRemoved)

	if len(result.Statements) == 0 {
		fmt.Fprintf(writer, "No statements extracted.\n")
		return nil
	}

	fmt.Fprintf(writer, "=== STATEMENTS ===\n")
	for i, sws := range result.Statements {
		rg.printStatementSummary(i+1, sws, writer)
	}

	return nil
}

// generateJSONReport generates a structured JSON report
func (rg *ReportGenerator) generateJSONReport(result *merger.MergeResult, writer io.Writer) error {
	statements := make([]map[string]interface{}, 0, len(result.Statements))
	for _, sws := range result.Statements {
		statements = append(statements, rg.statementForOutput(sws))
	}

	output := map[string]interface{}{
		"generated_at": time.Now().UTC(),
		"summary": map[string]interface{}{
			"statement_count":                len(result.Statements),
			"total_transactions":             result.TotalTransactions,
			"duplicate_statements_removed":   result.DuplicateStatementsRemoved,
			"duplicate_transactions_removed": result.DuplicateTransactionsRemoved,
		},
		"statements": statements,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// generateCSVReport generates a CSV export with one row per transaction.
// Exporting a result with zero transactions is a hard error: an empty
// transaction-details file hides extraction failure from downstream tools.
func (rg *ReportGenerator) generateCSVReport(result *merger.MergeResult, writer io.Writer) error {
	if result.TotalTransactions == 0 {
		return errors.ValidationError(errors.CodeNoTransactions, "transactions", 0, nil).
			WithSuggestion("Check the parse warnings; the documents may not contain recognizable transaction sections")
	}
	return rg.writeStatementCSV(result.Statements, writer)
}

func (rg *ReportGenerator) writeStatementCSV(statements []*models.StatementWithSource, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter

	if rg.config.CSVHeaders {
		headers := []string{
			"Account_Type",
			"Account_Number",
			"Period_Start",
			"Period_End",
			"Source_File",
			"Date",
			"Description",
			"Amount",
			"Direction",
			"Category",
			"Subcategory",
			"Confidence",
			"Page",
		}
		if err := csvWriter.Write(headers); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, sws := range statements {
		if sws == nil || sws.Statement == nil {
			continue
		}
		stmt := sws.Statement
		for _, tx := range stmt.Transactions {
			record := []string{
				stmt.Account.AccountType,
				stmt.Account.AccountNumberMasked,
				stmt.Account.StatementPeriodStart,
				stmt.Account.StatementPeriodEnd,
				sws.SourceFile,
				models.FormatISODate(tx.Date),
				tx.Description,
				tx.Amount.StringFixed(2),
				string(tx.Direction),
				tx.Category,
				tx.Subcategory,
				fmt.Sprintf("%.2f", tx.CategoryConfidence),
				fmt.Sprintf("%d", tx.Page),
			}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write transaction record: %w", err)
			}
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// Helper methods for console output formatting

func (rg *ReportGenerator) printStatementSummary(index int, sws *models.StatementWithSource, writer io.Writer) {
	stmt := sws.Statement

	period := "unknown period"
	if stmt.Account.HasValidPeriod() {
		period = fmt.Sprintf("%s to %s", stmt.Account.StatementPeriodStart, stmt.Account.StatementPeriodEnd)
	}

	fmt.Fprintf(writer, "%d. %s %s  %s\n", index, stmt.Account.AccountType, stmt.Account.AccountNumberMasked, period)
	fmt.Fprintf(writer, "   Balance: %s -> %s  Transactions: %d  Source: %s\n",
		stmt.Balance.StartingBalance.StringFixed(2),
		stmt.Balance.EndingBalance.StringFixed(2),
		len(stmt.Transactions),
		sws.SourceFile)

	if rg.config.IncludeWarnings {
		for _, warning := range stmt.Warnings {
			fmt.Fprintf(writer, "   Warning: %s\n", warning)
		}
	}

	if rg.config.Verbose {
		rg.printTransactionList(stmt.Transactions, writer)
	}

	fmt.Fprintf(writer, "\n")
}

func (rg *ReportGenerator) printStatementDetail(sws *models.StatementWithSource, writer io.Writer) {
	stmt := sws.Statement

	fmt.Fprintf(writer, "STATEMENT DETAIL\n")
	fmt.Fprintf(writer, "Account:      %s %s\n", stmt.Account.AccountType, stmt.Account.AccountNumberMasked)
	fmt.Fprintf(writer, "Period:       %s to %s\n", stmt.Account.StatementPeriodStart, stmt.Account.StatementPeriodEnd)
	fmt.Fprintf(writer, "Balances:     %s -> %s\n",
		stmt.Balance.StartingBalance.StringFixed(2), stmt.Balance.EndingBalance.StringFixed(2))
	fmt.Fprintf(writer, "Credits:      %s\n", stmt.Balance.TotalCredits.StringFixed(2))
	fmt.Fprintf(writer, "Debits:       %s\n", stmt.Balance.TotalDebits.StringFixed(2))
	fmt.Fprintf(writer, "Source:       %s\n", sws.SourceFile)
	fmt.Fprintf(writer, "Transactions: %d\n", len(stmt.Transactions))

	if rg.config.IncludeWarnings && len(stmt.Warnings) > 0 {
		fmt.Fprintf(writer, "\nWarnings (%d):\n", len(stmt.Warnings))
		for _, warning := range stmt.Warnings {
			fmt.Fprintf(writer, "  - %s\n", warning)
		}
	}

	if len(stmt.Transactions) > 0 {
		fmt.Fprintf(writer, "\nTransactions:\n")
		rg.printTransactionList(stmt.Transactions, writer)
	}
}

func (rg *ReportGenerator) printTransactionList(transactions []*models.Transaction, writer io.Writer) {
	for i, tx := range transactions {
		fmt.Fprintf(writer, "   %s  %10s  %-6s  %s\n",
			models.FormatISODate(tx.Date),
			tx.Amount.StringFixed(2),
			tx.Direction,
			tx.Description)

		// Limit output for very long lists
		if i >= rg.config.MaxTransactionsShown-1 && len(transactions) > rg.config.MaxTransactionsShown {
			fmt.Fprintf(writer, "   ... and %d more\n", len(transactions)-rg.config.MaxTransactionsShown)
			break
		}
	}
}

// statementForOutput builds the JSON shape for one statement, honoring the
// configured detail level.
func (rg *ReportGenerator) statementForOutput(sws *models.StatementWithSource) map[string]interface{} {
	stmt := sws.Statement

	output := map[string]interface{}{
		"account":           stmt.Account,
		"balance":           stmt.Balance,
		"source_file":       sws.SourceFile,
		"is_combined_pdf":   sws.IsCombinedPDF,
		"transaction_count": len(stmt.Transactions),
	}

	if rg.config.IncludeTransactions {
		output["transactions"] = stmt.Transactions
	}
	if rg.config.IncludeWarnings && len(stmt.Warnings) > 0 {
		output["warnings"] = stmt.Warnings
	}

	return output
}

// UpdateConfiguration updates the report generator configuration
func (rg *ReportGenerator) UpdateConfiguration(config *ReportConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid report configuration: %w", err)
	}

	rg.config = config
	return nil
}

// GetConfiguration returns the current configuration
func (rg *ReportGenerator) GetConfiguration() *ReportConfig {
	return rg.config
}
