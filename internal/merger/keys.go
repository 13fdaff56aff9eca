package merger

import (
	"fmt"
	"regexp"

	"golang-statement-extraction-service/internal/models"
)

// combinedSourcePattern matches filenames of multi-statement exports such
// as "BOA_All_Statements_Combined.pdf" or "merged-2024.pdf".
var combinedSourcePattern = regexp.MustCompile(`(?i)combined|merged|all[_-]statements`)

// IsCombinedSource reports whether a filename looks like a combined
// multi-statement export rather than a standalone statement download.
func IsCombinedSource(filename string) bool {
	return combinedSourcePattern.MatchString(filename)
}

// StatementKey derives the identity key used to detect the same statement
// arriving from different source documents. Statements with a known period
// are keyed on account and period; without one, the balance pair still
// identifies re-downloads of the same statement.
func StatementKey(stmt *models.ParsedStatement) string {
	if stmt == nil {
		return ""
	}
	if stmt.Account.HasValidPeriod() {
		return fmt.Sprintf("%s|%s|%s|%s",
			stmt.Account.AccountType,
			stmt.Account.AccountNumberMasked,
			stmt.Account.StatementPeriodStart,
			stmt.Account.StatementPeriodEnd)
	}
	return fmt.Sprintf("%s|%s|%s",
		stmt.Account.AccountNumberMasked,
		stmt.Balance.StartingBalance.String(),
		stmt.Balance.EndingBalance.String())
}

// TransactionKey derives the identity key used to collapse duplicate
// transactions within one statement. Differences in description case or
// whitespace do not produce distinct keys.
func TransactionKey(tx *models.Transaction) string {
	if tx == nil {
		return ""
	}
	return fmt.Sprintf("%s|%s|%s|%s",
		models.FormatISODate(tx.Date),
		tx.Amount.String(),
		tx.Direction,
		models.NormalizeDescription(tx.Description))
}
