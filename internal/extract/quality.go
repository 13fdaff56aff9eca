package extract

import (
	"strings"
	"unicode"
)

// commonWords appear in virtually every bank statement. Extracted text that
// contains none of them is almost certainly font-table garbage.
var commonWords = []string{
	"bank", "account", "balance", "date", "payment", "statement",
	"total", "amount", "credit", "debit", "transaction", "deposit",
	"withdrawal", "check", "fee", "beginning", "ending", "transfer",
	"number", "page", "period",
}

// textQuality returns the ratio of readable ASCII characters to total
// characters across all pages. A strict ASCII check is used on purpose:
// unicode.IsLetter matches the accented runes that identity-encoded fonts
// produce as garbage.
func textQuality(pageTexts []string) float64 {
	total := 0
	readable := 0
	for _, page := range pageTexts {
		for _, r := range page {
			total++
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
				strings.ContainsRune(".,-/:;()'\"$%&@#!?+=*", r) {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// containsCommonWords checks whether the text contains at least one word
// expected in a bank statement
func containsCommonWords(pageTexts []string) bool {
	combined := strings.ToLower(strings.Join(pageTexts, " "))
	for _, word := range commonWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

// totalTextLen counts non-whitespace-trimmed text length across pages
func totalTextLen(pageTexts []string) int {
	n := 0
	for _, p := range pageTexts {
		n += len(strings.TrimSpace(p))
	}
	return n
}

// isReadableText checks that pages contain enough text, that the text is
// actually readable rather than binary garbage, and that it contains
// recognizable statement vocabulary
func isReadableText(pageTexts []string, config *Config) bool {
	if totalTextLen(pageTexts) <= config.MinTextLength {
		return false
	}
	if textQuality(pageTexts) <= config.MinQuality {
		return false
	}
	if config.RequireCommonWords && !containsCommonWords(pageTexts) {
		return false
	}
	return true
}
