package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang-statement-extraction-service/cmd/extractor/config"
	"golang-statement-extraction-service/internal/merger"
	"golang-statement-extraction-service/internal/models"
	"golang-statement-extraction-service/internal/pipeline"
	"golang-statement-extraction-service/internal/reporter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the parse command. Parse reads its own flag variables directly
// so its output settings never collide with the merge command's viper keys.
var (
	parseOutputFormat string
	parseOutputFile   string
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse [documents...]",
	Short: "Extract statements from documents without merging",
	Long: `Parse extracts the statements from the given documents and prints each of
them in full, without merging. Use it to inspect what the extractor finds
in an export before merging a batch.

A combined export yields one entry per statement it contains, in document
order, including any duplicates.

Examples:
  # Inspect a monthly export
  extractor parse eStmt_2025-01.pdf

  # Inspect several exports at once
  extractor parse eStmt_2025-01.pdf eStmt_2025-02.pdf

  # Machine-readable output
  extractor parse eStmt_2025-01.pdf --output-format json`,

	Args:    cobra.MinimumNArgs(1),
	PreRunE: validateParseFlags,
	RunE:    runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	// Output flags
	parseCmd.Flags().StringVarP(&parseOutputFormat, "output-format", "f", "console", "output format: console, json, csv")
	parseCmd.Flags().StringVarP(&parseOutputFile, "output-file", "o", "", "output file path (default: stdout)")
}

func validateParseFlags(cmd *cobra.Command, args []string) error {
	for i, document := range args {
		if err := validateFileExists(document, fmt.Sprintf("document %d", i+1)); err != nil {
			return err
		}
	}

	// Validate output format
	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[parseOutputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", parseOutputFormat)
	}

	// Validate output file directory exists if specified
	if parseOutputFile != "" {
		dir := filepath.Dir(parseOutputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func runParse(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Create extraction service with default stage configurations
	service, err := pipeline.NewExtractionService(nil)
	if err != nil {
		return fmt.Errorf("failed to create extraction service: %w", err)
	}

	var statements []*models.StatementWithSource
	for _, document := range args {
		extracted, err := service.ExtractDocument(ctx, document)
		if err != nil {
			return err
		}
		statements = append(statements, extracted...)
	}

	// Create report generator
	reportConfig := config.CreateReportConfig(parseOutputFormat, viper.GetBool("verbose"), 0)
	reportGenerator, err := reporter.NewReportGenerator(reportConfig)
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	// Determine output destination
	var output *os.File
	if parseOutputFile != "" {
		output, err = os.Create(parseOutputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	} else {
		output = os.Stdout
	}

	switch parseOutputFormat {
	case "console":
		for i, statement := range statements {
			if i > 0 {
				fmt.Fprintln(output)
			}
			if err := reportGenerator.GenerateStatementReport(statement, output); err != nil {
				return fmt.Errorf("failed to generate report: %w", err)
			}
		}
	default:
		// JSON and CSV render the documents as one report, with the
		// statements exactly as found and nothing removed
		result := &merger.MergeResult{
			Statements:        statements,
			TotalTransactions: countTransactions(statements),
		}
		if err := reportGenerator.GenerateMergeReport(result, output); err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nExtracted %d statements from %d documents.\n", len(statements), len(args))
	}

	return nil
}

func countTransactions(statements []*models.StatementWithSource) int {
	total := 0
	for _, statement := range statements {
		total += len(statement.Statement.Transactions)
	}
	return total
}
