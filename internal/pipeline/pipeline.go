// Package pipeline orchestrates the extraction workflow from source
// documents to a merged statement set.
//
// A run walks the requested documents sequentially in sorted order:
// each document is extracted to text, parsed into statements, and
// categorized, then the per-document results are merged into one
// deduplicated set. Failures are captured per document so one unreadable
// file does not abort the batch.
//
// Example usage:
//
//	service, err := pipeline.NewExtractionService(nil)
//	result, err := service.Run(ctx, &pipeline.ExtractionRequest{
//		DocumentPaths: []string{"eStmt_2025-01.pdf", "eStmt_2025-02.pdf"},
//	})
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"golang-statement-extraction-service/internal/categorizer"
	"golang-statement-extraction-service/internal/extract"
	"golang-statement-extraction-service/internal/merger"
	"golang-statement-extraction-service/internal/models"
	"golang-statement-extraction-service/internal/parser"
	"golang-statement-extraction-service/internal/segmenter"
	"golang-statement-extraction-service/pkg/errors"
	"golang-statement-extraction-service/pkg/logger"
)

// Stage names used in progress reporting and failure records
const (
	StageExtract = "extract"
	StageParse   = "parse"
	StageMerge   = "merge"
)

// Config holds the per-stage configurations for an extraction run. Nil
// fields use the stage defaults.
type Config struct {
	ExtractConfig     *extract.Config     `json:"extract,omitempty"`
	ParserConfig      *parser.Config      `json:"parser,omitempty"`
	SegmenterConfig   *segmenter.Config   `json:"segmenter,omitempty"`
	CategorizerConfig *categorizer.Config `json:"categorizer,omitempty"`
}

// DefaultConfig returns a configuration with every stage at its defaults
func DefaultConfig() *Config {
	return &Config{
		ExtractConfig:     extract.DefaultConfig(),
		ParserConfig:      parser.DefaultConfig(),
		SegmenterConfig:   segmenter.DefaultConfig(),
		CategorizerConfig: categorizer.DefaultConfig(),
	}
}

// Validate validates every populated stage configuration
func (c *Config) Validate() error {
	if c.ExtractConfig != nil {
		if err := c.ExtractConfig.Validate(); err != nil {
			return fmt.Errorf("extract config: %w", err)
		}
	}
	if c.ParserConfig != nil {
		if err := c.ParserConfig.Validate(); err != nil {
			return fmt.Errorf("parser config: %w", err)
		}
	}
	if c.SegmenterConfig != nil {
		if err := c.SegmenterConfig.Validate(); err != nil {
			return fmt.Errorf("segmenter config: %w", err)
		}
	}
	if c.CategorizerConfig != nil {
		if err := c.CategorizerConfig.Validate(); err != nil {
			return fmt.Errorf("categorizer config: %w", err)
		}
	}
	return nil
}

// ExtractionService runs the full extraction workflow over batches of
// documents. Documents are processed one at a time; the workflow is
// deliberately sequential so results are reproducible run to run.
type ExtractionService struct {
	config      *Config
	parser      *parser.StatementParser
	categorizer *categorizer.Categorizer
	merger      *merger.Merger
	logger      logger.Logger

	progressCallbacks []ProgressCallback
}

// NewExtractionService creates an extraction service with the given
// configuration
func NewExtractionService(config *Config) (*ExtractionService, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"pipeline",
			nil,
			err,
		).WithSuggestion("Check the stage configuration values")
	}

	statementParser, err := parser.NewStatementParser(config.ParserConfig, config.SegmenterConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create statement parser: %w", err)
	}

	cat, err := categorizer.NewCategorizer(config.CategorizerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create categorizer: %w", err)
	}

	return &ExtractionService{
		config:      config,
		parser:      statementParser,
		categorizer: cat,
		merger:      merger.NewMerger(),
		logger:      logger.GetGlobalLogger().WithComponent("pipeline"),
	}, nil
}

// ExtractionRequest names the documents to process in one run
type ExtractionRequest struct {
	DocumentPaths []string `json:"document_paths"`
}

// Validate validates the extraction request
func (r *ExtractionRequest) Validate() error {
	if len(r.DocumentPaths) == 0 {
		return fmt.Errorf("at least one document path is required")
	}
	for _, path := range r.DocumentPaths {
		if path == "" {
			return fmt.Errorf("document paths cannot be empty")
		}
	}
	return nil
}

// DocumentFailure records a document that could not be processed
type DocumentFailure struct {
	SourceFile string                 `json:"source_file"`
	Stage      string                 `json:"stage"`
	Err        *errors.ExtractorError `json:"error"`
}

// RunSummary provides a high-level overview of an extraction run
type RunSummary struct {
	DocumentsRequested           int           `json:"documents_requested"`
	DocumentsProcessed           int           `json:"documents_processed"`
	DocumentsFailed              int           `json:"documents_failed"`
	StatementCount               int           `json:"statement_count"`
	TotalTransactions            int           `json:"total_transactions"`
	DuplicateStatementsRemoved   int           `json:"duplicate_statements_removed"`
	DuplicateTransactionsRemoved int           `json:"duplicate_transactions_removed"`
	ProcessingDuration           time.Duration `json:"processing_duration"`
}

// RunResult contains the complete results of an extraction run
type RunResult struct {
	Summary     *RunSummary         `json:"summary"`
	Merge       *merger.MergeResult `json:"merge"`
	Failures    []*DocumentFailure  `json:"failures,omitempty"`
	ProcessedAt time.Time           `json:"processed_at"`
}

// HasFailures reports whether any document failed during the run
func (r *RunResult) HasFailures() bool {
	return len(r.Failures) > 0
}

// ErrorSummary aggregates the run's document failures for exit-code and
// reporting decisions
func (r *RunResult) ErrorSummary() *errors.ErrorSummary {
	errs := make([]*errors.ExtractorError, 0, len(r.Failures))
	for _, failure := range r.Failures {
		if failure.Err != nil {
			errs = append(errs, failure.Err)
		}
	}
	return errors.NewErrorSummary(errs)
}

// Progress tracks the progress of an extraction run
type Progress struct {
	TotalDocuments     int           `json:"total_documents"`
	CompletedDocuments int           `json:"completed_documents"`
	CurrentDocument    string        `json:"current_document"`
	CurrentStage       string        `json:"current_stage"`
	PercentComplete    float64       `json:"percent_complete"`
	StartTime          time.Time     `json:"start_time"`
	ElapsedTime        time.Duration `json:"elapsed_time"`
}

// ProgressCallback is called to report extraction progress. Callbacks run
// synchronously on the processing goroutine.
type ProgressCallback func(*Progress)

// AddProgressCallback adds a progress callback function
func (s *ExtractionService) AddProgressCallback(callback ProgressCallback) {
	s.progressCallbacks = append(s.progressCallbacks, callback)
}

// Run processes every requested document and merges the results. Document
// failures are recorded in the result rather than returned; Run itself
// fails only for an invalid request or a cancelled context.
func (s *ExtractionService) Run(ctx context.Context, request *ExtractionRequest) (*RunResult, error) {
	if request == nil {
		return nil, errors.ValidationError(
			errors.CodeMissingField,
			"request",
			nil,
			nil,
		).WithSuggestion("Provide an extraction request with document paths")
	}
	if err := request.Validate(); err != nil {
		return nil, errors.ValidationError(
			errors.CodeInvalidData,
			"request",
			request.DocumentPaths,
			err,
		).WithSuggestion("Provide at least one non-empty document path")
	}

	// Sort a copy so results do not depend on shell glob order
	paths := make([]string, len(request.DocumentPaths))
	copy(paths, request.DocumentPaths)
	sort.Strings(paths)

	startTime := time.Now()
	progress := &Progress{
		TotalDocuments: len(paths),
		StartTime:      startTime,
	}

	tracker := logger.NewProgressTracker(logger.ProgressConfig{
		Operation: "extract documents",
		Total:     int64(len(paths)),
		Logger:    s.logger,
	})

	documents := make([][]*models.StatementWithSource, 0, len(paths))
	var failures []*DocumentFailure

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, errors.CodeProcessingError, "extraction run cancelled")
		}

		progress.CurrentDocument = filepath.Base(path)
		progress.CurrentStage = StageExtract
		s.notifyProgress(progress)

		statements, failure := s.processDocument(ctx, path)
		progress.CompletedDocuments++
		tracker.Increment()
		if failure != nil {
			s.logger.WithFields(logger.Fields{
				"file":  failure.SourceFile,
				"stage": failure.Stage,
			}).WithError(failure.Err).Warn("Document failed; continuing with remaining documents")
			failures = append(failures, failure)
			s.notifyProgress(progress)
			continue
		}

		documents = append(documents, statements)
		s.notifyProgress(progress)
	}

	progress.CurrentDocument = ""
	progress.CurrentStage = StageMerge
	s.notifyProgress(progress)

	mergeResult := s.merger.Merge(documents)

	result := &RunResult{
		Summary: &RunSummary{
			DocumentsRequested:           len(paths),
			DocumentsProcessed:           len(documents),
			DocumentsFailed:              len(failures),
			StatementCount:               len(mergeResult.Statements),
			TotalTransactions:            mergeResult.TotalTransactions,
			DuplicateStatementsRemoved:   mergeResult.DuplicateStatementsRemoved,
			DuplicateTransactionsRemoved: mergeResult.DuplicateTransactionsRemoved,
			ProcessingDuration:           time.Since(startTime),
		},
		Merge:       mergeResult,
		Failures:    failures,
		ProcessedAt: startTime,
	}

	tracker.Complete()
	s.logger.WithFields(logger.Fields{
		"processed":  result.Summary.DocumentsProcessed,
		"failed":     result.Summary.DocumentsFailed,
		"statements": result.Summary.StatementCount,
	}).Info("Extraction run completed")

	return result, nil
}

// ExtractDocument runs the per-document stages for a single file and
// returns its statements without merging
func (s *ExtractionService) ExtractDocument(ctx context.Context, path string) ([]*models.StatementWithSource, error) {
	statements, failure := s.processDocument(ctx, path)
	if failure != nil {
		return nil, failure.Err
	}
	return statements, nil
}

// processDocument runs extract, parse, and categorize for one document and
// wraps the statements with their source metadata
func (s *ExtractionService) processDocument(ctx context.Context, path string) ([]*models.StatementWithSource, *DocumentFailure) {
	extractor, err := extract.ForFile(path, s.config.ExtractConfig)
	if err != nil {
		return nil, newDocumentFailure(path, StageExtract, err)
	}

	doc, err := extractor.ExtractWithContext(ctx, path)
	if err != nil {
		return nil, newDocumentFailure(path, StageExtract, err)
	}

	statements, err := s.parser.ParseDocumentWithContext(ctx, doc)
	if err != nil {
		return nil, newDocumentFailure(path, StageParse, err)
	}

	sourceFile := filepath.Base(path)
	isCombined := merger.IsCombinedSource(sourceFile)

	wrapped := make([]*models.StatementWithSource, 0, len(statements))
	for _, stmt := range statements {
		s.categorizer.CategorizeStatement(stmt)
		wrapped = append(wrapped, models.NewStatementWithSource(stmt, sourceFile, isCombined))
	}

	s.logger.WithFields(logger.Fields{
		"file":       sourceFile,
		"statements": len(wrapped),
		"combined":   isCombined,
	}).Debug("Processed document")

	return wrapped, nil
}

func (s *ExtractionService) notifyProgress(p *Progress) {
	p.ElapsedTime = time.Since(p.StartTime)
	if p.TotalDocuments > 0 {
		p.PercentComplete = float64(p.CompletedDocuments) / float64(p.TotalDocuments) * 100
	}
	for _, callback := range s.progressCallbacks {
		callback(p)
	}
}

func newDocumentFailure(path, stage string, err error) *DocumentFailure {
	return &DocumentFailure{
		SourceFile: filepath.Base(path),
		Stage:      stage,
		Err:        toExtractorError(path, err),
	}
}

// toExtractorError normalizes stage errors into ExtractorError for the
// failure record. Parse errors carry extra context in a wrapper type whose
// base error is what the summary needs.
func toExtractorError(path string, err error) *errors.ExtractorError {
	if enhanced, ok := err.(*errors.EnhancedParseError); ok {
		return enhanced.ExtractorError
	}
	if extractorErr, ok := errors.AsExtractorError(err); ok {
		return extractorErr
	}
	return errors.ExtractionError(errors.CodeProcessingError, path, err)
}
