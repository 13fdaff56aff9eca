package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang-statement-extraction-service/pkg/errors"
	"golang-statement-extraction-service/pkg/logger"
)

// TextExtractor reads plain-text statement exports. Form feeds mark page
// boundaries; a file without form feeds is treated as a single page.
type TextExtractor struct {
	config *Config
	logger logger.Logger
}

// NewTextExtractor creates a plain-text extractor with the given configuration
func NewTextExtractor(config *Config) (*TextExtractor, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid extractor configuration: %w", err)
	}

	return &TextExtractor{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("text_extractor"),
	}, nil
}

// Extract reads a text file and returns its content page by page
func (e *TextExtractor) Extract(filePath string) (*Document, error) {
	return e.ExtractWithContext(context.Background(), filePath)
}

// ExtractWithContext reads a text file with context support for cancellation
func (e *TextExtractor) ExtractWithContext(ctx context.Context, filePath string) (*Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, filePath, err)
		}
		if os.IsPermission(err) {
			return nil, errors.FileError(errors.CodeFilePermission, filePath, err)
		}
		return nil, errors.FileError(errors.CodeFileCorrupted, filePath, err)
	}

	pageTexts := strings.Split(string(data), "\f")
	for i := range pageTexts {
		pageTexts[i] = strings.TrimSpace(pageTexts[i])
	}

	if !isReadableText(pageTexts, e.config) {
		return nil, errors.EmptyDocumentError(filePath, len(pageTexts))
	}

	doc := NewDocument(filePath, pageTexts)
	e.logger.WithFields(logger.Fields{
		"file":  filePath,
		"pages": doc.PageCount(),
	}).Debug("Text file read")

	return doc, nil
}
