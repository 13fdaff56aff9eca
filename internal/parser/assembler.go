package parser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang-statement-extraction-service/internal/extract"
	"golang-statement-extraction-service/internal/models"
	"golang-statement-extraction-service/internal/segmenter"
	"golang-statement-extraction-service/pkg/errors"
	"golang-statement-extraction-service/pkg/logger"
)

// StatementParser drives the full text-to-statement path: boundary
// detection, line classification, transaction parsing, and account and
// balance extraction. One parsed statement comes out per detected segment.
type StatementParser struct {
	config    *Config
	segmenter *segmenter.Segmenter
	logger    logger.Logger
}

// NewStatementParser creates a statement parser. Both configs may be nil to
// use defaults.
func NewStatementParser(config *Config, segmenterConfig *segmenter.Config) (*StatementParser, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parser configuration: %w", err)
	}

	seg, err := segmenter.NewSegmenter(segmenterConfig)
	if err != nil {
		return nil, err
	}

	return &StatementParser{
		config:    config,
		segmenter: seg,
		logger:    logger.GetGlobalLogger().WithComponent("statement_parser"),
	}, nil
}

// ParseDocument extracts every statement in the document. A document that
// yields no statements at all is a hard failure since the caller has nothing
// to work with.
func (p *StatementParser) ParseDocument(doc *extract.Document) ([]*models.ParsedStatement, error) {
	return p.ParseDocumentWithContext(context.Background(), doc)
}

// ParseDocumentWithContext is ParseDocument with cancellation checks between
// segments
func (p *StatementParser) ParseDocumentWithContext(ctx context.Context, doc *extract.Document) ([]*models.ParsedStatement, error) {
	if doc == nil {
		return nil, errors.New(errors.CategoryParse, errors.CodeInvalidData, "document is nil")
	}

	segments, err := p.segmenter.Segment(doc)
	if err != nil {
		return nil, err
	}

	statements := make([]*models.ParsedStatement, 0, len(segments))
	for i, segment := range segments {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		statement, err := p.ParseSegment(doc, segment)
		if err != nil {
			p.logger.WithFields(logger.Fields{
				"file":    doc.SourceFile,
				"segment": i,
			}).WithError(err).Warn("Skipping segment that failed to parse")
			continue
		}
		statements = append(statements, statement)
	}

	if len(statements) == 0 {
		return nil, errors.NoStatementsError(doc.SourceFile)
	}

	p.logger.WithFields(logger.Fields{
		"file":       doc.SourceFile,
		"statements": len(statements),
	}).Info("Parsed document")

	return statements, nil
}

// ParseSegment parses one statement segment. Soft failures such as missing
// account fields or zero transactions become warnings on the statement, not
// errors.
func (p *StatementParser) ParseSegment(doc *extract.Document, segment *segmenter.StatementSegment) (*models.ParsedStatement, error) {
	if doc == nil || segment == nil {
		return nil, errors.New(errors.CategoryParse, errors.CodeSegmentError,
			"cannot parse a nil document or segment")
	}

	statement := models.NewParsedStatement()

	accountInfo, accountWarnings := ExtractAccountInfo(segment.Text)
	statement.Account = accountInfo
	for _, warning := range accountWarnings {
		statement.AddWarning(warning)
	}

	balanceInfo, balanceWarnings := ExtractBalanceInfo(segment.Text)
	statement.Balance = balanceInfo
	for _, warning := range balanceWarnings {
		statement.AddWarning(warning)
	}

	lineParser, err := NewLineParser(p.config)
	if err != nil {
		return nil, err
	}

	// The period must be known before line parsing so MM/DD dates can be
	// assigned a year
	periodStart, periodEnd, hasPeriod := statementPeriod(accountInfo)
	if hasPeriod {
		lineParser.SetReferencePeriod(periodStart, periodEnd)
	}

	for _, raw := range p.parseSegmentLines(doc, segment, lineParser) {
		transaction, err := models.NewTransactionFromRaw(raw)
		if err != nil {
			statement.AddWarning(fmt.Sprintf("dropped transaction %q: %v", raw.OriginalLine, err))
			continue
		}
		if hasPeriod && !withinPeriod(transaction.Date, periodStart, periodEnd) {
			p.logger.WithFields(logger.Fields{
				"date": transaction.Date.Format("2006-01-02"),
				"line": raw.OriginalLine,
			}).Debug("Dropping transaction outside the statement period")
			continue
		}
		statement.Transactions = append(statement.Transactions, transaction)
	}

	if len(statement.Transactions) == 0 {
		statement.AddWarning("no transactions extracted from statement segment")
	}

	statement.Metadata = models.ParserMetadata{
		Parser:    "statement_parser",
		StartPage: segment.StartPage,
		EndPage:   segment.EndPage,
		ParsedAt:  time.Now().UTC(),
	}

	return statement, nil
}

// parseSegmentLines walks the segment text line by line with a single
// parsing state, so sections and pending continuations survive page breaks
func (p *StatementParser) parseSegmentLines(doc *extract.Document, segment *segmenter.StatementSegment, lineParser *LineParser) []*models.RawTransaction {
	locator := newPageLocator(doc)
	state := NewState()

	var raws []*models.RawTransaction
	offset := segment.StartOffset

	for lineIndex, rawLine := range strings.Split(segment.Text, "\n") {
		page := locator.pageAt(offset)
		if tx := lineParser.ProcessLine(rawLine, page, lineIndex, state); tx != nil {
			raws = append(raws, tx)
		}
		offset += len(rawLine) + 1
	}

	return raws
}

// pageBound is one page's half-open range in the joined document text
type pageBound struct {
	number int
	start  int
	end    int
}

// pageLocator maps offsets in the joined document text back to page numbers
type pageLocator struct {
	bounds []pageBound
}

func newPageLocator(doc *extract.Document) *pageLocator {
	locator := &pageLocator{bounds: make([]pageBound, 0, len(doc.Pages))}
	offset := 0
	for _, page := range doc.Pages {
		end := offset + len(page.Text)
		locator.bounds = append(locator.bounds, pageBound{
			number: page.Number,
			start:  offset,
			end:    end,
		})
		// Account for the newline joining consecutive pages
		offset = end + 1
	}
	return locator
}

// pageAt returns the number of the page containing the offset. Offsets past
// the last page map to the last page.
func (l *pageLocator) pageAt(offset int) int {
	for _, bound := range l.bounds {
		if offset < bound.end {
			return bound.number
		}
	}
	if len(l.bounds) > 0 {
		return l.bounds[len(l.bounds)-1].number
	}
	return 1
}

// statementPeriod parses the extracted period dates, reporting whether both
// are usable
func statementPeriod(info models.AccountInfo) (time.Time, time.Time, bool) {
	if info.StatementPeriodStart == "" || info.StatementPeriodEnd == "" {
		return time.Time{}, time.Time{}, false
	}

	start, err := models.ParseTimeWithFormats(info.StatementPeriodStart)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := models.ParseTimeWithFormats(info.StatementPeriodEnd)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}

	return start, end, true
}

// withinPeriod reports whether the date falls inside the inclusive statement
// period
func withinPeriod(date, start, end time.Time) bool {
	return !date.Before(start) && !date.After(end)
}
