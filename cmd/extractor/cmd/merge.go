package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang-statement-extraction-service/cmd/extractor/config"
	"golang-statement-extraction-service/internal/pipeline"
	"golang-statement-extraction-service/internal/reporter"
	"golang-statement-extraction-service/internal/store"
	"golang-statement-extraction-service/pkg/errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the merge command
var (
	outputFormat    string
	outputFile      string
	showProgress    bool
	storeResults    bool
	databasePath    string
	maxTransactions int

	// Parsing threshold flags
	zelleMinLength   int
	zelleMaxLength   int
	traceAmountLimit float64
	minQuality       float64
	backSearchWindow int
)

// mergeCmd represents the merge command
var mergeCmd = &cobra.Command{
	Use:   "merge [documents|directories...]",
	Short: "Extract statements from documents and merge duplicates",
	Long: `Merge extracts every statement from the given documents and merges the
results into one deduplicated statement set.

Documents may be PDF exports or plain text files; a directory argument
stands for every statement document directly inside it. Combined exports
that bundle several monthly statements are split at statement boundaries,
and statements that appear in more than one document are kept once,
preferring the standalone export over the combined one.

Examples:
  # Merge two monthly exports
  extractor merge eStmt_2025-01.pdf eStmt_2025-02.pdf

  # Merge a whole directory of exports into a JSON report
  extractor merge statements/ --output-format json --output-file report.json

  # Export transaction details as CSV
  extractor merge statements/*.pdf --output-format csv --output-file transactions.csv

  # Persist the merged set for later runs
  extractor merge statements/ --store --database statements.db

  # With progress indicators
  extractor merge statements/ --progress`,

	Args:    cobra.MinimumNArgs(1),
	PreRunE: validateMergeFlags,
	RunE:    runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	// Output flags
	mergeCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	mergeCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")
	mergeCmd.Flags().IntVar(&maxTransactions, "max-transactions", 0, "max transactions listed per statement in console output")

	// UI flags
	mergeCmd.Flags().BoolVar(&showProgress, "progress", false, "show progress indicators")

	// Persistence flags
	mergeCmd.Flags().BoolVar(&storeResults, "store", false, "save the merged result to the statement database")
	mergeCmd.Flags().StringVar(&databasePath, "database", "statements.db", "statement database path (used with --store)")

	// Parsing threshold flags
	mergeCmd.Flags().IntVar(&zelleMinLength, "zelle-min-length", 0, "minimum Zelle confirmation code length")
	mergeCmd.Flags().IntVar(&zelleMaxLength, "zelle-max-length", 0, "maximum Zelle confirmation code length")
	mergeCmd.Flags().Float64Var(&traceAmountLimit, "trace-amount-limit", 0, "largest amount a trace-number split may produce")
	mergeCmd.Flags().Float64Var(&minQuality, "min-quality", 0, "minimum readable-text ratio for extracted pages (0.0-1.0)")
	mergeCmd.Flags().IntVar(&backSearchWindow, "back-search-window", 0, "characters searched backwards for a statement header")

	// Bind flags to viper
	viper.BindPFlag("output-format", mergeCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", mergeCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("max-transactions", mergeCmd.Flags().Lookup("max-transactions"))
	viper.BindPFlag("progress", mergeCmd.Flags().Lookup("progress"))
	viper.BindPFlag("store", mergeCmd.Flags().Lookup("store"))
	viper.BindPFlag("database", mergeCmd.Flags().Lookup("database"))
	viper.BindPFlag("zelle-min-length", mergeCmd.Flags().Lookup("zelle-min-length"))
	viper.BindPFlag("zelle-max-length", mergeCmd.Flags().Lookup("zelle-max-length"))
	viper.BindPFlag("trace-amount-limit", mergeCmd.Flags().Lookup("trace-amount-limit"))
	viper.BindPFlag("min-quality", mergeCmd.Flags().Lookup("min-quality"))
	viper.BindPFlag("back-search-window", mergeCmd.Flags().Lookup("back-search-window"))
}

func validateMergeFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	maxTransactions = viper.GetInt("max-transactions")
	showProgress = viper.GetBool("progress")
	storeResults = viper.GetBool("store")
	databasePath = viper.GetString("database")
	zelleMinLength = viper.GetInt("zelle-min-length")
	zelleMaxLength = viper.GetInt("zelle-max-length")
	traceAmountLimit = viper.GetFloat64("trace-amount-limit")
	minQuality = viper.GetFloat64("min-quality")
	backSearchWindow = viper.GetInt("back-search-window")

	// Validate document existence; directories are expanded at run time
	for i, document := range args {
		if err := validateDocumentArg(document, fmt.Sprintf("document %d", i+1)); err != nil {
			return err
		}
	}

	// Validate output format
	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	// Validate thresholds
	if zelleMinLength < 0 || zelleMaxLength < 0 {
		return fmt.Errorf("Zelle code lengths cannot be negative")
	}
	if zelleMinLength > 0 && zelleMaxLength > 0 && zelleMaxLength < zelleMinLength {
		return fmt.Errorf("zelle-max-length cannot be smaller than zelle-min-length")
	}
	if traceAmountLimit < 0 {
		return fmt.Errorf("trace amount limit cannot be negative")
	}
	if minQuality < 0 || minQuality > 1 {
		return fmt.Errorf("min quality must be between 0.0 and 1.0")
	}
	if backSearchWindow < 0 {
		return fmt.Errorf("back search window cannot be negative")
	}
	if maxTransactions < 0 {
		return fmt.Errorf("max transactions cannot be negative")
	}

	// Validate database path when persisting
	if storeResults && databasePath == "" {
		return fmt.Errorf("database path cannot be empty when --store is set")
	}

	// Validate output file directory exists if specified
	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	// Check if file is readable
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

// validateDocumentArg accepts either a statement document or a directory
// of them
func validateDocumentArg(path, description string) error {
	if path == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, path)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return nil
	}

	return validateFileExists(path, description)
}

// documentExtensions are the file types the extraction layer reads
var documentExtensions = map[string]bool{".pdf": true, ".txt": true, ".text": true}

// collectDocuments expands directory arguments into the statement documents
// directly inside them. File arguments pass through unchanged.
func collectDocuments(args []string) ([]string, error) {
	var documents []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("error accessing %s: %w", arg, err)
		}

		if !info.IsDir() {
			documents = append(documents, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("error reading directory %s: %w", arg, err)
		}
		found := 0
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if documentExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
				documents = append(documents, filepath.Join(arg, entry.Name()))
				found++
			}
		}
		if found == 0 {
			fmt.Fprintf(os.Stderr, "Warning: no statement documents in %s\n", arg)
		}
	}

	if len(documents) == 0 {
		return nil, errors.New(errors.CategoryFile, errors.CodeDirectoryError,
			"no statement documents found in the given paths").
			WithSuggestion("Directories are searched for .pdf and .txt files at their top level")
	}

	return documents, nil
}

func runMerge(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	documents, err := collectDocuments(args)
	if err != nil {
		return err
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting extraction...\n")
		fmt.Fprintf(os.Stderr, "Documents: %s\n", strings.Join(documents, ", "))
		fmt.Fprintf(os.Stderr, "Output format: %s\n", outputFormat)
		if outputFile != "" {
			fmt.Fprintf(os.Stderr, "Output file: %s\n", outputFile)
		}
	}

	// Create configurations
	pipelineConfig := config.CreatePipelineConfig(
		zelleMinLength, zelleMaxLength, traceAmountLimit, minQuality, backSearchWindow)

	// Create extraction service
	service, err := pipeline.NewExtractionService(pipelineConfig)
	if err != nil {
		return fmt.Errorf("failed to create extraction service: %w", err)
	}

	// Add progress callback if requested
	if showProgress {
		service.AddProgressCallback(func(progress *pipeline.Progress) {
			fmt.Fprintf(os.Stderr, "\r[%d/%d] %s: %s (%.1f%% complete)",
				progress.CompletedDocuments, progress.TotalDocuments,
				progress.CurrentStage, progress.CurrentDocument,
				progress.PercentComplete)
		})
	}

	// Run extraction
	request := &pipeline.ExtractionRequest{DocumentPaths: documents}
	result, err := service.Run(ctx, request)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	if showProgress {
		fmt.Fprintf(os.Stderr, "\n") // New line after progress
	}

	// Report per-document failures without aborting the run
	for _, failure := range result.Failures {
		fmt.Fprintf(os.Stderr, "Warning: %s failed during %s: %v\n",
			failure.SourceFile, failure.Stage, failure.Err)
	}

	if result.Summary.DocumentsProcessed == 0 {
		summary := result.ErrorSummary()
		return errors.New(errors.CategoryExtraction, errors.CodeProcessingError,
			fmt.Sprintf("no documents could be processed (%d failed)", summary.Total)).
			WithSuggestion("Check the warnings above for per-document errors")
	}

	// Generate report
	reportConfig := config.CreateReportConfig(outputFormat, viper.GetBool("verbose"), maxTransactions)
	reportGenerator, err := reporter.NewReportGenerator(reportConfig)
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	// Determine output destination
	var output *os.File
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	} else {
		output = os.Stdout
	}

	// Generate report
	if err := reportGenerator.GenerateMergeReport(result.Merge, output); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	// Persist the merged result if requested
	if storeResults {
		if err := saveMergeResult(ctx, result); err != nil {
			return err
		}
	}

	// Show completion message
	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nExtraction completed.\n")
		fmt.Fprintf(os.Stderr, "Processed %d of %d documents.\n",
			result.Summary.DocumentsProcessed, result.Summary.DocumentsRequested)
		fmt.Fprintf(os.Stderr, "Extracted %d statements with %d transactions.\n",
			result.Summary.StatementCount, result.Summary.TotalTransactions)
		fmt.Fprintf(os.Stderr, "Removed %d duplicate statements and %d duplicate transactions.\n",
			result.Summary.DuplicateStatementsRemoved, result.Summary.DuplicateTransactionsRemoved)
		fmt.Fprintf(os.Stderr, "Processing time: %v\n", result.Summary.ProcessingDuration)
	}

	return nil
}

func saveMergeResult(ctx context.Context, result *pipeline.RunResult) error {
	statementStore, err := store.Open(config.CreateStoreConfig(databasePath))
	if err != nil {
		return fmt.Errorf("failed to open statement database: %w", err)
	}
	defer statementStore.Close()

	runID, err := statementStore.SaveMergeResult(ctx, result.Merge, result.Summary.DocumentsProcessed)
	if err != nil {
		return fmt.Errorf("failed to save merge result: %w", err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Saved merge run %s to %s\n", runID, databasePath)
	}

	return nil
}
