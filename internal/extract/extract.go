package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang-statement-extraction-service/pkg/errors"
)

// Page holds the text of a single document page
type Page struct {
	Number int      `json:"number"`
	Text   string   `json:"text"`
	Lines  []string `json:"-"`
}

// Document is the text content of one source file, page by page
type Document struct {
	SourceFile string `json:"source_file"`
	FullText   string `json:"full_text"`
	Pages      []Page `json:"pages"`
}

// Extractor converts a source file into a text Document
type Extractor interface {
	Extract(filePath string) (*Document, error)
	ExtractWithContext(ctx context.Context, filePath string) (*Document, error)
}

// Config holds extraction quality thresholds
type Config struct {
	// MinTextLength is the minimum number of non-whitespace characters a
	// document must yield to count as readable
	MinTextLength int `json:"min_text_length"`

	// MinQuality is the minimum ratio of readable ASCII characters (0.0-1.0)
	MinQuality float64 `json:"min_quality"`

	// RequireCommonWords rejects text that contains no recognizable
	// statement vocabulary
	RequireCommonWords bool `json:"require_common_words"`
}

// DefaultConfig returns extraction thresholds that work for typical statements
func DefaultConfig() *Config {
	return &Config{
		MinTextLength:      50,
		MinQuality:         0.6,
		RequireCommonWords: true,
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.MinTextLength < 0 {
		return fmt.Errorf("min text length cannot be negative")
	}
	if c.MinQuality < 0 || c.MinQuality > 1 {
		return fmt.Errorf("min quality must be between 0.0 and 1.0")
	}
	return nil
}

// ForFile returns an extractor appropriate for the file's extension
func ForFile(filePath string, config *Config) (Extractor, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf":
		return NewPDFExtractor(config)
	case ".txt", ".text":
		return NewTextExtractor(config)
	default:
		return nil, errors.ExtractionError(errors.CodeUnsupportedFormat, filePath, nil)
	}
}

// NewDocument assembles a Document from per-page text, splitting each page
// into lines and joining the full text
func NewDocument(sourceFile string, pageTexts []string) *Document {
	doc := &Document{
		SourceFile: sourceFile,
		Pages:      make([]Page, 0, len(pageTexts)),
	}

	var fullParts []string
	for i, text := range pageTexts {
		doc.Pages = append(doc.Pages, Page{
			Number: i + 1,
			Text:   text,
			Lines:  SplitLines(text),
		})
		fullParts = append(fullParts, text)
	}

	doc.FullText = strings.Join(fullParts, "\n")
	return doc
}

// SplitLines splits page text into trimmed, non-empty lines
func SplitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// PageCount returns the number of pages in the document
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// LineCount returns the total number of non-empty lines across all pages
func (d *Document) LineCount() int {
	count := 0
	for _, page := range d.Pages {
		count += len(page.Lines)
	}
	return count
}

// IsEmpty reports whether the document yielded no usable text
func (d *Document) IsEmpty() bool {
	return strings.TrimSpace(d.FullText) == ""
}

// Quality returns the ratio of readable characters across all pages
func (d *Document) Quality() float64 {
	texts := make([]string, 0, len(d.Pages))
	for _, page := range d.Pages {
		texts = append(texts, page.Text)
	}
	return textQuality(texts)
}

// String returns a short description of the document
func (d *Document) String() string {
	return fmt.Sprintf("Document{file: %s, pages: %d, chars: %d}",
		filepath.Base(d.SourceFile), len(d.Pages), len(d.FullText))
}
