package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"golang-statement-extraction-service/internal/models"
)

// Account and balance extraction works on whole-segment text with an ordered
// list of pattern fallbacks per field. A field that matches nothing gets a
// warning and a defined default; extraction itself never fails.

const monthNames = `January|February|March|April|May|June|July|August|September|October|November|December`

var (
	accountTypePatterns = []*regexp.Regexp{
		// "Adv Plus Banking checking account"
		regexp.MustCompile(`(?i)\b(checking|savings|money market|credit card)\s+account\b`),
		// Bare product words as a fallback
		regexp.MustCompile(`(?i)\b(checking|savings)\b`),
	}

	accountNumberPatterns = []*regexp.Regexp{
		// "Account # 4460 1234 5678" or "Account number: 446012345678".
		// The character class allows spaces and dashes but not newlines, so
		// the match never runs onto the following line.
		regexp.MustCompile(`(?i)account\s*(?:number|#)\s*:?\s*(\d[\d -]{6,22}\d)`),
		// "Acct 446012345678"
		regexp.MustCompile(`(?i)\bacct\s*(?:no\.?|#)?\s*:?\s*(\d[\d-]{6,18}\d)`),
	}

	periodPatterns = []*regexp.Regexp{
		// "January 1, 2025 to January 31, 2025"
		regexp.MustCompile(`(?i)((?:` + monthNames + `)\s+\d{1,2},?\s+\d{4})\s*(?:to|through|-)\s*((?:` + monthNames + `)\s+\d{1,2},?\s+\d{4})`),
		// "01/01/2025 - 01/31/2025"
		regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{2,4})\s*(?:to|through|-)\s*(\d{1,2}/\d{1,2}/\d{2,4})`),
	}

	startingBalancePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)beginning\s+balance(?:\s+on\s+(?:` + monthNames + `)\s+\d{1,2},?\s+\d{4})?\s*:?\s*(-?\$?-?[\d,]+\.\d{2})`),
		regexp.MustCompile(`(?i)previous\s+balance\s*:?\s*(-?\$?-?[\d,]+\.\d{2})`),
	}

	endingBalancePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)ending\s+balance(?:\s+on\s+(?:` + monthNames + `)\s+\d{1,2},?\s+\d{4})?\s*:?\s*(-?\$?-?[\d,]+\.\d{2})`),
		regexp.MustCompile(`(?i)new\s+balance\s*:?\s*(-?\$?-?[\d,]+\.\d{2})`),
	}

	totalCreditsPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)total\s+deposits\s+and\s+other\s+(?:additions|credits)\s*:?\s*(-?\$?-?[\d,]+\.\d{2})`),
		regexp.MustCompile(`(?i)total\s+credits\s*:?\s*(-?\$?-?[\d,]+\.\d{2})`),
	}

	totalDebitsPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)total\s+withdrawals\s+and\s+other\s+(?:subtractions|debits)\s*:?\s*(-?\$?-?[\d,]+\.\d{2})`),
		regexp.MustCompile(`(?i)total\s+atm\s+and\s+debit\s+card\s+subtractions\s*:?\s*(-?\$?-?[\d,]+\.\d{2})`),
		regexp.MustCompile(`(?i)total\s+debits\s*:?\s*(-?\$?-?[\d,]+\.\d{2})`),
	}
)

// firstSubmatch runs the fallback patterns in order and returns the capture
// groups of the first that matches
func firstSubmatch(text string, patterns []*regexp.Regexp) []string {
	for _, pattern := range patterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return m
		}
	}
	return nil
}

// ExtractAccountInfo pulls the account type, masked account number, and
// statement period from segment text. Missing fields produce warnings and
// defaults, never an error.
func ExtractAccountInfo(text string) (models.AccountInfo, []string) {
	info := models.NewAccountInfo()
	var warnings []string

	if m := firstSubmatch(text, accountTypePatterns); m != nil {
		info.AccountType = strings.ToLower(strings.Join(strings.Fields(m[1]), " "))
	} else {
		warnings = append(warnings, "account type not found; left empty")
	}

	if m := firstSubmatch(text, accountNumberPatterns); m != nil {
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, m[1])
		info.AccountNumberMasked = models.MaskAccountNumber(digits)
	} else {
		warnings = append(warnings, fmt.Sprintf("account number not found; defaulting to %s", models.DefaultAccountNumberMask))
	}

	if m := firstSubmatch(text, periodPatterns); m != nil {
		start, startErr := models.ParseTimeWithFormats(m[1])
		end, endErr := models.ParseTimeWithFormats(m[2])
		if startErr == nil && endErr == nil {
			info.StatementPeriodStart = models.FormatISODate(start)
			info.StatementPeriodEnd = models.FormatISODate(end)
		} else {
			warnings = append(warnings, fmt.Sprintf("statement period %q - %q did not parse; left empty", m[1], m[2]))
		}
	} else {
		warnings = append(warnings, "statement period not found; left empty")
	}

	return info, warnings
}

// ExtractBalanceInfo pulls the four summary totals from segment text.
// Undetected balances default to zero with a warning.
func ExtractBalanceInfo(text string) (models.BalanceInfo, []string) {
	var info models.BalanceInfo
	var warnings []string

	info.StartingBalance = extractAmountField(text, startingBalancePatterns, "beginning balance", &warnings)
	info.EndingBalance = extractAmountField(text, endingBalancePatterns, "ending balance", &warnings)
	info.TotalCredits = extractAmountField(text, totalCreditsPatterns, "total credits", &warnings)
	info.TotalDebits = extractAmountField(text, totalDebitsPatterns, "total debits", &warnings)

	return info, warnings
}

// extractAmountField applies the fallbacks for one balance field and records
// a warning on failure
func extractAmountField(text string, patterns []*regexp.Regexp, fieldName string, warnings *[]string) decimal.Decimal {
	m := firstSubmatch(text, patterns)
	if m == nil {
		*warnings = append(*warnings, fmt.Sprintf("%s not found; defaulting to 0", fieldName))
		return decimal.Zero
	}

	value, err := models.ParseDecimalFromString(m[1])
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("%s value %q did not parse; defaulting to 0", fieldName, m[1]))
		return decimal.Zero
	}
	return value
}
