package parser

import "regexp"

// Text extraction glues tokens together when the PDF renders them in separate
// text objects with no intervening space. The preprocessor repairs the two
// known artifacts before any pattern matching runs.

var (
	// Date glued to the merchant name: "01/02Zelle payment" -> "01/02 Zelle payment"
	gluedDateLetterPattern = regexp.MustCompile(`^(\d{1,2}/\d{1,2}(?:/\d{2,4})?)([A-Za-z])`)

	// Two-digit-year date glued to a digit: "01/02/25123 Main St" -> "01/02/25 123 Main St".
	// Only the fixed-width MM/DD/YY form splits safely; longer digit runs after
	// a year are ambiguous with four-digit years.
	gluedDateDigitPattern = regexp.MustCompile(`^(\d{2}/\d{2}/\d{2})(\d)`)

	// Word glued to the trailing amount: "CLEARED450.00" -> "CLEARED 450.00".
	// The boundary character must be a letter; digit-to-digit gluing has no
	// unambiguous split point and is left to the resolvers.
	gluedAmountPattern = regexp.MustCompile(`([A-Za-z])(-?\$?\d{1,3}(?:,\d{3})*\.\d{2})$`)

	// Lines carrying a confirmation-number marker are skipped by the trailing
	// amount rule: the glued code/amount split there is ambiguous and handled
	// by the dedicated resolvers
	confirmationMarkerPattern = regexp.MustCompile(`(?i)conf(?:irmation)?#`)
)

// preprocessRule pairs a pattern with its replacement so rules stay an
// ordered table rather than a chain of conditionals
type preprocessRule struct {
	name        string
	pattern     *regexp.Regexp
	replacement string
	skip        func(line string) bool
}

var preprocessRules = []preprocessRule{
	{
		name:        "glued_date_letter",
		pattern:     gluedDateLetterPattern,
		replacement: "$1 $2",
	},
	{
		name:        "glued_date_digit",
		pattern:     gluedDateDigitPattern,
		replacement: "$1 $2",
	},
	{
		name:        "glued_trailing_amount",
		pattern:     gluedAmountPattern,
		replacement: "$1 $2",
		skip:        hasConfirmationMarker,
	},
}

// hasConfirmationMarker reports whether the line carries a confirmation-number
// marker such as "Confirmation#" or "Conf#"
func hasConfirmationMarker(line string) bool {
	return confirmationMarkerPattern.MatchString(line)
}

// PreprocessLine repairs known extraction artifacts in a single line. Lines
// without artifacts pass through unchanged.
func PreprocessLine(line string) string {
	for _, rule := range preprocessRules {
		if rule.skip != nil && rule.skip(line) {
			continue
		}
		line = rule.pattern.ReplaceAllString(line, rule.replacement)
	}
	return line
}
