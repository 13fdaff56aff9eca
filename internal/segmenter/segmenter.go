package segmenter

import (
	"fmt"
	"regexp"
	"strings"

	"golang-statement-extraction-service/internal/extract"
	"golang-statement-extraction-service/pkg/errors"
	"golang-statement-extraction-service/pkg/logger"
)

// Combined PDF exports concatenate many monthly statements into one document.
// The segmenter finds where each statement begins so the parser can work on
// one statement at a time.
//
// Every statement opens with a "Beginning balance on <date>" line, which is
// the anchor. The statement period header ("<date> to <date>") usually sits a
// short distance above the anchor, so each segment start is moved back to the
// header when one is found within the search window.

const monthNames = `January|February|March|April|May|June|July|August|September|October|November|December`

// dateAlternatives matches either a written-out date ("January 1, 2025") or a
// slash date ("01/01/2025")
const dateAlternatives = `(?:(?:` + monthNames + `)\s+\d{1,2},?\s+\d{4}|\d{1,2}/\d{1,2}/\d{2,4})`

var (
	// "Beginning balance on January 1, 2025" opens a statement
	anchorPattern = regexp.MustCompile(`(?i)beginning\s+balance\s+on\s+` + dateAlternatives)

	// "January 1, 2025 to January 31, 2025" is the statement period header
	periodHeaderPattern = regexp.MustCompile(`(?i)` + dateAlternatives + `\s*(?:to|through|-)\s*` + dateAlternatives)
)

// Config holds tunable boundary detection behavior
type Config struct {
	// BackSearchWindow is how many characters before an anchor are scanned
	// for the period header that belongs to the same statement
	BackSearchWindow int `json:"back_search_window"`
}

// DefaultConfig returns boundary detection settings that work for typical
// combined statement exports
func DefaultConfig() *Config {
	return &Config{
		BackSearchWindow: 500,
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.BackSearchWindow <= 0 {
		return fmt.Errorf("back search window must be positive")
	}
	return nil
}

// StatementSegment is one statement's slice of the extracted document
type StatementSegment struct {
	// Text is the segment's slice of the joined document text
	Text string

	// StartOffset and EndOffset bound the segment in the joined document
	// text as a half-open range
	StartOffset int
	EndOffset   int

	// Pages lists the page numbers whose text overlaps the segment
	Pages []int

	// StartPage and EndPage are the first and last overlapping pages
	StartPage int
	EndPage   int
}

// String returns a short description of the segment for logging
func (ss *StatementSegment) String() string {
	return fmt.Sprintf("StatementSegment{Pages: %d-%d, Chars: %d}", ss.StartPage, ss.EndPage, len(ss.Text))
}

// Segmenter detects statement boundaries in extracted document text
type Segmenter struct {
	config *Config
	logger logger.Logger
}

// NewSegmenter creates a segmenter with the given configuration
func NewSegmenter(config *Config) (*Segmenter, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid segmenter configuration: %w", err)
	}

	return &Segmenter{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("segmenter"),
	}, nil
}

// Segment splits the document into one segment per detected statement. A
// document with no anchors yields a single segment covering everything, so a
// statement with an unusual layout still reaches the parser.
func (s *Segmenter) Segment(doc *extract.Document) ([]*StatementSegment, error) {
	if doc == nil || strings.TrimSpace(doc.FullText) == "" {
		return nil, errors.New(errors.CategoryParse, errors.CodeSegmentError,
			"cannot segment an empty document")
	}

	anchors := anchorPattern.FindAllStringIndex(doc.FullText, -1)
	if len(anchors) == 0 {
		s.logger.WithField("file", doc.SourceFile).
			Info("No statement anchors found, treating the whole document as one statement")
		return []*StatementSegment{s.wholeDocumentSegment(doc)}, nil
	}

	starts := make([]int, len(anchors))
	for i, anchor := range anchors {
		starts[i] = s.adjustedStart(doc.FullText, anchor[0])
	}

	// Starts must stay strictly increasing; when back-searches overlap, the
	// later segment keeps its raw anchor position
	for i := 1; i < len(starts); i++ {
		if starts[i] <= starts[i-1] {
			starts[i] = anchors[i][0]
		}
	}

	segments := make([]*StatementSegment, 0, len(starts))
	for i, start := range starts {
		end := len(doc.FullText)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		segments = append(segments, s.buildSegment(doc, start, end))
	}

	s.logger.WithFields(logger.Fields{
		"file":     doc.SourceFile,
		"anchors":  len(anchors),
		"segments": len(segments),
	}).Debug("Detected statement boundaries")

	return segments, nil
}

// adjustedStart moves an anchor position back to the period header directly
// above it when one sits within the search window, so the segment keeps the
// header that names its statement period
func (s *Segmenter) adjustedStart(text string, anchor int) int {
	windowStart := anchor - s.config.BackSearchWindow
	if windowStart < 0 {
		windowStart = 0
	}

	window := text[windowStart:anchor]
	matches := periodHeaderPattern.FindAllStringIndex(window, -1)
	if len(matches) == 0 {
		return anchor
	}

	// The last match is the header closest to the anchor; earlier ones
	// belong to the previous statement
	closest := matches[len(matches)-1]
	return windowStart + closest[0]
}

// buildSegment slices the document text and assigns the overlapping pages
func (s *Segmenter) buildSegment(doc *extract.Document, start, end int) *StatementSegment {
	segment := &StatementSegment{
		Text:        doc.FullText[start:end],
		StartOffset: start,
		EndOffset:   end,
		Pages:       overlappingPages(doc, start, end),
	}

	if len(segment.Pages) == 0 {
		// Offset bookkeeping failed somewhere; keep every page rather than
		// lose transactions
		s.logger.WithFields(logger.Fields{
			"file":  doc.SourceFile,
			"start": start,
			"end":   end,
		}).Warn("No pages overlap segment, falling back to all pages")
		segment.Pages = allPageNumbers(doc)
	}

	if len(segment.Pages) > 0 {
		segment.StartPage = segment.Pages[0]
		segment.EndPage = segment.Pages[len(segment.Pages)-1]
	}

	return segment
}

// wholeDocumentSegment wraps the entire document as a single segment
func (s *Segmenter) wholeDocumentSegment(doc *extract.Document) *StatementSegment {
	segment := &StatementSegment{
		Text:        doc.FullText,
		StartOffset: 0,
		EndOffset:   len(doc.FullText),
		Pages:       allPageNumbers(doc),
	}
	if len(segment.Pages) > 0 {
		segment.StartPage = segment.Pages[0]
		segment.EndPage = segment.Pages[len(segment.Pages)-1]
	}
	return segment
}

// overlappingPages returns the numbers of pages whose text overlaps the
// half-open range [start, end) of the joined document text
func overlappingPages(doc *extract.Document, start, end int) []int {
	var pages []int
	offset := 0
	for _, page := range doc.Pages {
		pageStart := offset
		pageEnd := offset + len(page.Text)
		if pageStart < end && start < pageEnd {
			pages = append(pages, page.Number)
		}
		// Account for the newline joining consecutive pages
		offset = pageEnd + 1
	}
	return pages
}

// allPageNumbers lists every page number in document order
func allPageNumbers(doc *extract.Document) []int {
	pages := make([]int, 0, len(doc.Pages))
	for _, page := range doc.Pages {
		pages = append(pages, page.Number)
	}
	return pages
}
