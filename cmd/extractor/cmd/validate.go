package cmd

import (
	"context"
	"fmt"

	"golang-statement-extraction-service/cmd/extractor/config"
	"golang-statement-extraction-service/internal/extract"
	"golang-statement-extraction-service/pkg/errors"

	"github.com/spf13/cobra"
)

// Flag for the validate command. Read directly, like the parse flags, to
// stay clear of the merge command's viper keys.
var validateMinQuality float64

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [documents...]",
	Short: "Check documents for extraction readiness",
	Long: `Validate runs the extraction stage only and reports whether each document
yields readable statement text. It catches scanned images, encrypted
exports, and font-mangled PDFs before a merge run.

Examples:
  # Check a single export
  extractor validate eStmt_2025-01.pdf

  # Check a batch with a stricter readability threshold
  extractor validate statements/*.pdf --min-quality 0.8`,

	Args:    cobra.MinimumNArgs(1),
	PreRunE: validateReadinessFlags,
	RunE:    runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().Float64Var(&validateMinQuality, "min-quality", 0, "minimum readable-text ratio for extracted pages (0.0-1.0)")
}

func validateReadinessFlags(cmd *cobra.Command, args []string) error {
	for i, document := range args {
		if err := validateFileExists(document, fmt.Sprintf("document %d", i+1)); err != nil {
			return err
		}
	}

	if validateMinQuality < 0 || validateMinQuality > 1 {
		return fmt.Errorf("min quality must be between 0.0 and 1.0")
	}

	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	extractConfig := config.CreateExtractConfig(validateMinQuality)

	failed := 0
	for i, document := range args {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("File: %s\n", document)

		extractor, err := extract.ForFile(document, extractConfig)
		if err != nil {
			fmt.Printf("Status: not ready (%v)\n", err)
			failed++
			continue
		}

		doc, err := extractor.ExtractWithContext(ctx, document)
		if err != nil {
			fmt.Printf("Status: not ready (%v)\n", err)
			failed++
			continue
		}

		fmt.Printf("Pages: %d\n", doc.PageCount())
		fmt.Printf("Lines: %d\n", doc.LineCount())
		fmt.Printf("Characters: %d\n", len(doc.FullText))
		fmt.Printf("Quality: %.1f%%\n", doc.Quality()*100)
		fmt.Printf("Status: ready\n")
	}

	fmt.Printf("\n%d of %d documents ready for extraction.\n", len(args)-failed, len(args))

	if failed > 0 {
		return errors.New(errors.CategoryExtraction, errors.CodeUnreadableDocument,
			fmt.Sprintf("%d of %d documents are not ready for extraction", failed, len(args))).
			WithSuggestion("Re-export the failing documents as text-based PDFs, or lower --min-quality")
	}
	return nil
}
