package parser

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"golang-statement-extraction-service/internal/models"
)

// Some statement lines end in a reference number glued to the amount with no
// separator. Each resolver knows one reference-number shape and how to split
// it back apart. Resolvers run in priority order and the first success wins;
// a resolver that does not recognize the line returns nil so the next one
// (and finally the plain grammar) gets its turn.

// Resolution is a successful split of a glued reference/amount token
type Resolution struct {
	// CleanedLine is the input line with a space restored between the
	// reference number and the amount
	CleanedLine string

	// Amount is the extracted monetary amount as it appeared, e.g. "1,000.00"
	Amount string
}

// amountResolver pairs a name with a resolver function; the slice below is
// the priority order
type amountResolver struct {
	name    string
	resolve func(line string, config *Config) *Resolution
}

var amountResolvers = []amountResolver{
	{name: "confirmation_number", resolve: resolveConfirmationNumber},
	{name: "zelle_confirmation_code", resolve: resolveZelleCode},
	{name: "trace_number", resolve: resolveTraceNumber},
}

// ResolveAmbiguousAmount tries each resolver in priority order and returns
// the first successful resolution, or nil when none apply
func ResolveAmbiguousAmount(line string, config *Config) *Resolution {
	for _, resolver := range amountResolvers {
		if resolution := resolver.resolve(line, config); resolution != nil {
			return resolution
		}
	}
	return nil
}

var (
	// "Confirmation# 757982788977.98" — ten fixed digits, then the amount.
	// The fixed width makes the split point unambiguous.
	confirmationGluedPattern = regexp.MustCompile(`(?i)(confirmation#\s*)(\d{10})(\d{1,3}(?:,\d{3})*\.\d{2})$`)

	// "Confirmation# 7579827889 77.98" — already separated; the resolver
	// still owns this shape so both forms yield the same amount
	confirmationSpacedPattern = regexp.MustCompile(`(?i)confirmation#\s*\d{10}\s+(\d{1,3}(?:,\d{3})*\.\d{2})$`)

	// "Conf#" marks an alphanumeric Zelle confirmation code
	zelleMarkerPattern = regexp.MustCompile(`(?i)conf#\s*`)

	// Monetary amount with optional thousands separators, e.g. "950.00" or
	// "1,000.00" or "91,000.00"
	amountGrammarPattern = regexp.MustCompile(`^\d{1,3}(?:,\d{3})*\.\d{2}$`)

	// "CO 12345678901234567950.00" — two-letter state code, a space, then a
	// long trace number glued to a short amount. The lazy quantifier keeps
	// the trace as short as allowed, so the amount takes the most digits the
	// grammar permits; the sanity bound below rejects over-cut splits.
	traceGluedPattern = regexp.MustCompile(`\b([A-Z]{2}) (\d{17,25}?)(\d{1,6}(?:\.\d{2})?)$`)
)

// resolveConfirmationNumber splits "Confirmation#" lines. Confirmation
// numbers are exactly ten digits, so everything after the tenth digit is the
// amount.
func resolveConfirmationNumber(line string, _ *Config) *Resolution {
	if m := confirmationGluedPattern.FindStringSubmatch(line); m != nil {
		return &Resolution{
			CleanedLine: confirmationGluedPattern.ReplaceAllString(line, "${1}${2} ${3}"),
			Amount:      m[3],
		}
	}

	if m := confirmationSpacedPattern.FindStringSubmatch(line); m != nil {
		return &Resolution{
			CleanedLine: line,
			Amount:      m[1],
		}
	}

	return nil
}

// zelleCandidate is one possible split of a glued Zelle code/amount token
type zelleCandidate struct {
	code     string
	amount   string
	hasComma bool
	value    decimal.Decimal
}

// resolveZelleCode splits "Conf#" lines where an alphanumeric confirmation
// code of variable length is glued to the amount. Candidate splits are
// enumerated and scored separately so the tie-break stays testable on its
// own.
func resolveZelleCode(line string, config *Config) *Resolution {
	loc := zelleMarkerPattern.FindStringIndex(line)
	if loc == nil {
		return nil
	}

	tail := line[loc[1]:]
	candidates := zelleSplitCandidates(tail, config)
	winner := selectZelleCandidate(candidates)
	if winner == nil {
		return nil
	}

	return &Resolution{
		CleanedLine: line[:loc[1]] + winner.code + " " + winner.amount,
		Amount:      winner.amount,
	}
}

// zelleSplitCandidates enumerates every plausible split of the text after the
// Conf# marker. Codes always contain letters and amounts never do, so only
// split points at or after the last letter can be valid.
func zelleSplitCandidates(tail string, config *Config) []zelleCandidate {
	lastLetter := -1
	for i, r := range tail {
		if unicode.IsLetter(r) {
			lastLetter = i
		}
	}
	if lastLetter < 0 {
		return nil
	}

	var candidates []zelleCandidate
	for split := lastLetter + 1; split < len(tail); split++ {
		code, amount := tail[:split], tail[split:]
		if !isPlausibleZelleCode(code, config) {
			continue
		}
		if !amountGrammarPattern.MatchString(amount) {
			continue
		}
		value, err := models.ParseDecimalFromString(amount)
		if err != nil {
			continue
		}
		candidates = append(candidates, zelleCandidate{
			code:     code,
			amount:   amount,
			hasComma: strings.Contains(amount, ","),
			value:    value,
		})
	}
	return candidates
}

// isPlausibleZelleCode checks that a candidate code has a plausible length,
// contains at least one letter, and is purely alphanumeric
func isPlausibleZelleCode(code string, config *Config) bool {
	if len(code) < config.ZelleCodeMinLength || len(code) > config.ZelleCodeMaxLength {
		return false
	}
	if strings.HasSuffix(code, ",") {
		return false
	}
	hasLetter := false
	for _, r := range code {
		if unicode.IsLetter(r) {
			hasLetter = true
		} else if !unicode.IsDigit(r) {
			return false
		}
	}
	return hasLetter
}

// selectZelleCandidate applies the asymmetric tie-break. A thousands
// separator strongly signals the digit run truly is >= 1,000, so among
// comma-bearing amounts the smallest wins (more digits stay with the code);
// amounts without a comma are more likely over-cut, so the largest wins.
func selectZelleCandidate(candidates []zelleCandidate) *zelleCandidate {
	var withComma, withoutComma []zelleCandidate
	for _, c := range candidates {
		if c.hasComma {
			withComma = append(withComma, c)
		} else {
			withoutComma = append(withoutComma, c)
		}
	}

	if len(withComma) > 0 {
		best := withComma[0]
		for _, c := range withComma[1:] {
			if c.value.LessThan(best.value) {
				best = c
			}
		}
		return &best
	}

	if len(withoutComma) > 0 {
		best := withoutComma[0]
		for _, c := range withoutComma[1:] {
			if c.value.GreaterThan(best.value) {
				best = c
			}
		}
		return &best
	}

	return nil
}

// resolveTraceNumber splits lines where a long numeric trace number is glued
// to a short amount. There is only one deterministic split (the amount takes
// as many digits as its grammar allows); it is accepted only when the
// resulting amount stays below the configured sanity bound, since a larger
// value means the digits were almost certainly cut in the wrong place.
func resolveTraceNumber(line string, config *Config) *Resolution {
	m := traceGluedPattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}

	amount := m[3]
	value, err := models.ParseDecimalFromString(amount)
	if err != nil {
		return nil
	}
	if value.GreaterThanOrEqual(decimal.NewFromFloat(config.TraceAmountLimit)) {
		return nil
	}

	return &Resolution{
		CleanedLine: traceGluedPattern.ReplaceAllString(line, "${1} ${2} ${3}"),
		Amount:      amount,
	}
}
