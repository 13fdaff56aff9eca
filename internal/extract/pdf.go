package extract

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"golang-statement-extraction-service/pkg/errors"
	"golang-statement-extraction-service/pkg/logger"
)

// PDFExtractor extracts text from PDF statements. Bank PDFs vary wildly in
// how they encode text, so extraction tries several methods and keeps the
// first one that produces readable output.
type PDFExtractor struct {
	config *Config
	logger logger.Logger
}

// NewPDFExtractor creates a PDF extractor with the given configuration
func NewPDFExtractor(config *Config) (*PDFExtractor, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid extractor configuration: %w", err)
	}

	return &PDFExtractor{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("pdf_extractor"),
	}, nil
}

// Extract reads a PDF file and returns its text content page by page
func (e *PDFExtractor) Extract(filePath string) (*Document, error) {
	return e.ExtractWithContext(context.Background(), filePath)
}

// ExtractWithContext reads a PDF file with context support for cancellation
func (e *PDFExtractor) ExtractWithContext(ctx context.Context, filePath string) (*Document, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, errors.FileError(errors.CodeFileNotFound, filePath, err)
	}

	e.logger.WithField("file", filePath).Debug("Extracting PDF text")

	pageTexts, pageCount, err := e.extractPages(ctx, filePath)
	if err != nil {
		return nil, errors.ExtractionError(errors.CodeUnreadableDocument, filePath, err)
	}

	if !isReadableText(pageTexts, e.config) {
		// Pages exist but no decodable text: likely a scan or custom fonts
		return nil, errors.EmptyDocumentError(filePath, pageCount)
	}

	doc := NewDocument(filePath, pageTexts)
	e.logger.WithFields(logger.Fields{
		"file":  filePath,
		"pages": doc.PageCount(),
		"lines": doc.LineCount(),
	}).Debug("PDF text extracted")

	return doc, nil
}

// extractPages runs the extraction methods in order of layout fidelity and
// returns the first readable result. The library panics on some malformed
// PDFs, so the whole pass runs under recover.
func (e *PDFExtractor) extractPages(ctx context.Context, filePath string) (pageTexts []string, pageCount int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, openErr := pdf.Open(filePath)
	if openErr != nil {
		return nil, 0, openErr
	}
	defer f.Close()

	pageCount = r.NumPage()
	if pageCount == 0 {
		return nil, 0, fmt.Errorf("PDF has no pages")
	}

	// Method 1: row-based extraction preserves statement column layout best
	pageTexts, err = e.extractByRow(ctx, r, pageCount)
	if err != nil {
		return nil, pageCount, err
	}
	if isReadableText(pageTexts, e.config) {
		return pageTexts, pageCount, nil
	}

	// Method 2: raw content objects grouped by Y coordinate
	pageTexts, err = e.extractByContent(ctx, r, pageCount)
	if err != nil {
		return nil, pageCount, err
	}
	if isReadableText(pageTexts, e.config) {
		return pageTexts, pageCount, nil
	}

	// Method 3: whole-document plain text as a last resort; page boundaries
	// are lost but the segmenter can still work from anchors
	plain := extractByReaderPlainText(r)
	if isReadableText([]string{plain}, e.config) {
		e.logger.WithField("file", filePath).Warn("Falling back to whole-document extraction; page boundaries lost")
		return []string{plain}, pageCount, nil
	}

	// Return whatever method 1 produced so the caller can report quality
	return pageTexts, pageCount, nil
}

// extractByRow uses GetTextByRow, which reconstructs visual rows
func (e *PDFExtractor) extractByRow(ctx context.Context, r *pdf.Reader, numPages int) ([]string, error) {
	var pageTexts []string
	for i := 1; i <= numPages; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page := r.Page(i)
		if page.V.IsNull() {
			pageTexts = append(pageTexts, "")
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			pageTexts = append(pageTexts, "")
			continue
		}
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			line := strings.TrimSpace(strings.Join(parts, " "))
			if line != "" {
				lines = append(lines, line)
			}
		}
		pageTexts = append(pageTexts, strings.Join(lines, "\n"))
	}
	return pageTexts, nil
}

// extractByContent reads raw text objects and reconstructs rows by grouping
// on the Y coordinate, then sorting each row left to right
func (e *PDFExtractor) extractByContent(ctx context.Context, r *pdf.Reader, numPages int) ([]string, error) {
	var pageTexts []string
	for i := 1; i <= numPages; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page := r.Page(i)
		if page.V.IsNull() {
			pageTexts = append(pageTexts, "")
			continue
		}
		content := page.Content()
		if len(content.Text) == 0 {
			pageTexts = append(pageTexts, "")
			continue
		}

		type textItem struct {
			x float64
			s string
		}
		rowMap := make(map[int][]textItem)
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			yKey := int(math.Round(t.Y))
			rowMap[yKey] = append(rowMap[yKey], textItem{x: t.X, s: t.S})
		}

		// PDF Y runs bottom-to-top, so rows sort descending
		yKeys := make([]int, 0, len(rowMap))
		for y := range rowMap {
			yKeys = append(yKeys, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

		var lines []string
		for _, y := range yKeys {
			items := rowMap[y]
			sort.Slice(items, func(a, b int) bool {
				return items[a].x < items[b].x
			})

			var parts []string
			var prevX float64
			for j, item := range items {
				if j > 0 && item.x-prevX > 15 {
					// Large horizontal gap marks a column boundary
					parts = append(parts, "  ")
				}
				parts = append(parts, item.s)
				prevX = item.x
			}
			line := strings.TrimSpace(strings.Join(parts, ""))
			if line != "" {
				lines = append(lines, line)
			}
		}
		pageTexts = append(pageTexts, strings.Join(lines, "\n"))
	}
	return pageTexts, nil
}

// extractByReaderPlainText extracts the whole document as one string
func extractByReaderPlainText(r *pdf.Reader) string {
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
