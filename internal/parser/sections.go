package parser

import (
	"regexp"

	"golang-statement-extraction-service/internal/models"
)

// Section headers drive a small state machine: once a header line is seen,
// every following transaction belongs to that section until the next header.
// The section decides the forced sign of parsed amounts.

// sectionRule maps a header pattern to the section it opens. Rules are an
// ordered table so individual transitions stay testable and new statement
// layouts extend the table instead of the control flow.
type sectionRule struct {
	name    string
	pattern *regexp.Regexp
	section models.Section
}

var sectionRules = []sectionRule{
	{
		name:    "deposits_header",
		pattern: regexp.MustCompile(`(?i)^deposits\s+and\s+other\s+(additions|credits)`),
		section: models.SectionDeposits,
	},
	{
		name:    "withdrawals_header",
		pattern: regexp.MustCompile(`(?i)^withdrawals\s+and\s+other\s+(subtractions|debits)`),
		section: models.SectionWithdrawals,
	},
	{
		name:    "atm_debit_header",
		pattern: regexp.MustCompile(`(?i)^atm\s+and\s+debit\s+card\s+subtractions`),
		section: models.SectionWithdrawals,
	},
	{
		name:    "checks_header",
		pattern: regexp.MustCompile(`(?i)^checks\b`),
		section: models.SectionChecks,
	},
	{
		name:    "fees_header",
		pattern: regexp.MustCompile(`(?i)^service\s+fees`),
		section: models.SectionFees,
	},
	{
		name:    "daily_balance_header",
		pattern: regexp.MustCompile(`(?i)^daily\s+(ledger\s+)?balances?`),
		section: models.SectionUnknown,
	},
	{
		name:    "ending_balance_header",
		pattern: regexp.MustCompile(`(?i)^ending\s+balance`),
		section: models.SectionUnknown,
	},
}

// totalLinePattern matches section summary lines such as "Total deposits and
// other additions". They keep the current section but end any pending
// multi-line transaction.
var totalLinePattern = regexp.MustCompile(`(?i)^total\b`)

// classifySectionHeader returns the section a header line opens. The second
// return value is false for non-header lines.
func classifySectionHeader(line string) (models.Section, bool) {
	for _, rule := range sectionRules {
		if rule.pattern.MatchString(line) {
			return rule.section, true
		}
	}
	return models.SectionUnknown, false
}

// isTotalLine reports whether the line is a section total summary
func isTotalLine(line string) bool {
	return totalLinePattern.MatchString(line)
}

// sectionForcesNegative reports whether amounts parsed in this section must
// carry a negative sign
func sectionForcesNegative(section models.Section) bool {
	switch section {
	case models.SectionWithdrawals, models.SectionChecks, models.SectionFees:
		return true
	default:
		return false
	}
}
