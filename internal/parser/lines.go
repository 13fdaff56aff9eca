package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang-statement-extraction-service/internal/models"
	"golang-statement-extraction-service/pkg/logger"
)

// State is the per-segment mutable parsing state threaded through ProcessLine.
// Keeping it explicit (instead of parser-level fields) makes the parser
// reentrant and line-by-line testable.
type State struct {
	// Section is the classifier's current section
	Section models.Section

	// PendingLine buffers a date+description line whose amount wrapped onto
	// the next line
	PendingLine string
}

// NewState returns the initial parsing state for a segment
func NewState() *State {
	return &State{Section: models.SectionUnknown}
}

// lineGrammar is one recognized transaction-line shape. Grammars are an
// ordered table; the first match wins. Every grammar captures (date,
// description, amount) in that group order.
type lineGrammar struct {
	name    string
	pattern *regexp.Regexp
}

var transactionGrammars = []lineGrammar{
	{
		// "01/02/25 Zelle payment from JOHN 125.00"
		name:    "date_description_amount",
		pattern: regexp.MustCompile(`^(\d{1,2}/\d{1,2}(?:/\d{2,4})?)\s+(.+?)\s+(-?\$?\d{1,3}(?:,\d{3})*\.\d{2})$`),
	},
	{
		// "01/02/25Zelle payment from JOHN 125.00" — date still glued to the
		// description when the preprocessor rules did not fire
		name:    "glued_date_description_amount",
		pattern: regexp.MustCompile(`^(\d{1,2}/\d{1,2}(?:/\d{2,4})?)(\S.*?)\s+(-?\$?\d{1,3}(?:,\d{3})*\.\d{2})$`),
	},
}

var (
	// A line that is nothing but a signed amount; the wrapped second half of
	// a two-line transaction
	amountOnlyPattern = regexp.MustCompile(`^-?\$?\d{1,3}(?:,\d{3})*\.\d{2}$`)

	// A trailing amount anywhere at the end of a line
	trailingAmountPattern = regexp.MustCompile(`-?\$?\d{1,3}(?:,\d{3})*\.\d{2}$`)

	// A line that opens with a transaction date
	leadingDatePattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}(?:/\d{2,4})?\b`)
)

// LineParser turns classified statement lines into raw transactions
type LineParser struct {
	config   *Config
	logger   logger.Logger
	refStart time.Time
	refEnd   time.Time
}

// NewLineParser creates a line parser with the given configuration
func NewLineParser(config *Config) (*LineParser, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parser configuration: %w", err)
	}

	return &LineParser{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("line_parser"),
	}, nil
}

// SetReferencePeriod supplies the statement period used to attach a year to
// dates printed as MM/DD
func (p *LineParser) SetReferencePeriod(start, end time.Time) {
	p.refStart = start
	p.refEnd = end
}

// ProcessLine consumes one line and returns a transaction if the line (or the
// line merged with a pending buffer) completes one, nil otherwise. Section
// headers and total lines update the state and never emit.
func (p *LineParser) ProcessLine(rawLine string, page, lineIndex int, state *State) *models.RawTransaction {
	trimmed := strings.TrimSpace(rawLine)
	if trimmed == "" {
		return nil
	}

	// Section headers move the classifier; a pending transaction cannot
	// continue across them
	if section, ok := classifySectionHeader(trimmed); ok {
		state.Section = section
		state.PendingLine = ""
		return nil
	}

	// "Total ..." summary lines keep the section but end any continuation
	if isTotalLine(trimmed) {
		state.PendingLine = ""
		return nil
	}

	// A bare amount completes the buffered date+description line
	if amountOnlyPattern.MatchString(trimmed) && state.PendingLine != "" {
		merged := PreprocessLine(state.PendingLine + " " + trimmed)
		original := state.PendingLine + " " + trimmed
		state.PendingLine = ""
		return p.parseTransactionLine(merged, original, page, lineIndex, state)
	}

	line := PreprocessLine(trimmed)

	// A date with no amount opens (or replaces) the continuation buffer
	if isDateWithoutAmount(line) {
		state.PendingLine = line
		return nil
	}

	// Resolvers repair glued reference/amount tokens; on failure the plain
	// grammar below simply fails closed
	working := line
	if resolution := ResolveAmbiguousAmount(line, p.config); resolution != nil {
		working = resolution.CleanedLine
	}

	return p.parseTransactionLine(working, trimmed, page, lineIndex, state)
}

// isDateWithoutAmount reports whether the line starts with a date but does
// not end with an amount
func isDateWithoutAmount(line string) bool {
	return leadingDatePattern.MatchString(line) && !trailingAmountPattern.MatchString(line)
}

// parseTransactionLine matches the grammar table and builds the transaction.
// The original line is carried for provenance even though the cleaned line
// located the amount.
func (p *LineParser) parseTransactionLine(working, original string, page, lineIndex int, state *State) *models.RawTransaction {
	for _, grammar := range transactionGrammars {
		m := grammar.pattern.FindStringSubmatch(working)
		if m == nil {
			continue
		}

		isoDate, err := p.normalizeDate(m[1])
		if err != nil {
			p.logger.WithFields(logger.Fields{
				"line": working,
				"date": m[1],
			}).Debug("Transaction date did not parse; skipping line")
			return nil
		}

		description := strings.TrimSpace(m[2])
		amount := forceSectionSign(strings.Replace(m[3], "$", "", 1), state.Section)

		return &models.RawTransaction{
			Date:         isoDate,
			Description:  description,
			Amount:       amount,
			Page:         page,
			LineIndex:    lineIndex,
			OriginalLine: original,
			Section:      state.Section,
		}
	}
	return nil
}

// forceSectionSign applies the section's sign convention: withdrawal, check,
// and fee amounts are always negative even when printed unsigned
func forceSectionSign(amount string, section models.Section) string {
	amount = strings.TrimSpace(amount)
	if sectionForcesNegative(section) && !strings.HasPrefix(amount, "-") {
		return "-" + amount
	}
	return amount
}

// normalizeDate converts MM/DD, MM/DD/YY, and MM/DD/YYYY transaction dates to
// ISO-8601, inferring the year from the statement period when absent
func (p *LineParser) normalizeDate(raw string) (string, error) {
	parts := strings.Split(raw, "/")

	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", fmt.Errorf("invalid month in date %q", raw)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", fmt.Errorf("invalid day in date %q", raw)
	}

	var year int
	switch len(parts) {
	case 2:
		year = p.inferYear(month)
	case 3:
		year, err = strconv.Atoi(parts[2])
		if err != nil {
			return "", fmt.Errorf("invalid year in date %q", raw)
		}
		if year < 100 {
			year += 2000
		}
	default:
		return "", fmt.Errorf("unrecognized date %q", raw)
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", fmt.Errorf("date %q out of range", raw)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if int(t.Month()) != month || t.Day() != day {
		// time.Date silently normalizes overflow like Feb 30
		return "", fmt.Errorf("date %q does not exist", raw)
	}

	return models.FormatISODate(t), nil
}

// inferYear picks the year for a MM/DD date. A period crossing a year end
// (e.g. Dec 15 to Jan 14) assigns months at or after the period's first month
// to the start year and earlier months to the end year.
func (p *LineParser) inferYear(month int) int {
	if p.refStart.IsZero() {
		return time.Now().Year()
	}
	if p.refEnd.IsZero() || p.refStart.Year() == p.refEnd.Year() {
		return p.refStart.Year()
	}
	if month >= int(p.refStart.Month()) {
		return p.refStart.Year()
	}
	return p.refEnd.Year()
}
