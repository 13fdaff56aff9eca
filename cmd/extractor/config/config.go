package config

import (
	"golang-statement-extraction-service/internal/extract"
	"golang-statement-extraction-service/internal/parser"
	"golang-statement-extraction-service/internal/pipeline"
	"golang-statement-extraction-service/internal/reporter"
	"golang-statement-extraction-service/internal/segmenter"
	"golang-statement-extraction-service/internal/store"
	"golang-statement-extraction-service/pkg/logger"
)

// CreateParserConfig creates a parser configuration with the specified thresholds.
// Zero or negative values keep the defaults.
func CreateParserConfig(zelleMinLength, zelleMaxLength int, traceAmountLimit float64) *parser.Config {
	config := parser.DefaultConfig()

	// Apply CLI overrides
	if zelleMinLength > 0 {
		config.ZelleCodeMinLength = zelleMinLength
	}
	if zelleMaxLength > 0 {
		config.ZelleCodeMaxLength = zelleMaxLength
	}
	if traceAmountLimit > 0 {
		config.TraceAmountLimit = traceAmountLimit
	}

	return config
}

// CreateSegmenterConfig creates a segmenter configuration with the specified
// back-search window. Zero or negative values keep the default.
func CreateSegmenterConfig(backSearchWindow int) *segmenter.Config {
	config := segmenter.DefaultConfig()

	// Apply CLI overrides
	if backSearchWindow > 0 {
		config.BackSearchWindow = backSearchWindow
	}

	return config
}

// CreateExtractConfig creates an extraction configuration with the specified
// minimum text quality. Zero or negative values keep the default.
func CreateExtractConfig(minQuality float64) *extract.Config {
	config := extract.DefaultConfig()

	// Apply CLI overrides
	if minQuality > 0 {
		config.MinQuality = minQuality
	}

	return config
}

// CreatePipelineConfig assembles the per-stage configurations for an
// extraction run with CLI overrides applied
func CreatePipelineConfig(zelleMinLength, zelleMaxLength int, traceAmountLimit, minQuality float64, backSearchWindow int) *pipeline.Config {
	config := pipeline.DefaultConfig()

	config.ExtractConfig = CreateExtractConfig(minQuality)
	config.ParserConfig = CreateParserConfig(zelleMinLength, zelleMaxLength, traceAmountLimit)
	config.SegmenterConfig = CreateSegmenterConfig(backSearchWindow)

	return config
}

// CreateReportConfig creates a report configuration for the specified output format
func CreateReportConfig(format string, verbose bool, maxTransactions int) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()

	if maxTransactions > 0 {
		config.MaxTransactionsShown = maxTransactions
	}

	// Set output format
	switch format {
	case "console":
		config.Format = reporter.FormatConsole
		config.Verbose = verbose
		config.IncludeTransactions = true
		config.IncludeWarnings = true
	case "json":
		config.Format = reporter.FormatJSON
		config.IncludeTransactions = true
		config.IncludeWarnings = true
	case "csv":
		config.Format = reporter.FormatCSV
		config.CSVHeaders = true
		config.CSVDelimiter = ','
		config.IncludeWarnings = false // CSV is for transaction data
	}

	return config
}

// CreateStoreConfig creates a store configuration for the specified database path.
// An empty path keeps the default.
func CreateStoreConfig(databasePath string) *store.Config {
	config := store.DefaultConfig()

	// Apply CLI overrides
	if databasePath != "" {
		config.DatabasePath = databasePath
	}

	return config
}

// CreateLoggerConfig creates a logger configuration from the CLI logging flags.
// Verbose and quiet override the level, quiet winning when both are set.
func CreateLoggerConfig(level, format string, verbose, quiet bool) *logger.Config {
	config := logger.DefaultConfig()

	if level != "" {
		config.Level = logger.Level(level)
	}
	if format != "" {
		config.Format = logger.Format(format)
	}

	switch {
	case quiet:
		config.Level = logger.ErrorLevel
	case verbose:
		config.Level = logger.DebugLevel
	}

	return config
}
