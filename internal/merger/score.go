package merger

import (
	"strings"

	"golang-statement-extraction-service/internal/models"
)

// Completeness scoring weights. Transactions dominate so that a statement
// with more extracted activity always beats a sparser copy, while warnings
// accumulated during parsing reduce confidence in the extraction.
const (
	scorePerTransaction = 10
	scoreNonzeroCredits = 5
	scoreNonzeroDebits  = 5
	scoreBalancePair    = 3
	scoreValidPeriod    = 5
	scoreKnownAccount   = 3
	warningPenalty      = 2
)

// CompletenessScore rates how much usable information a parsed statement
// carries. Duplicate resolution keeps the higher-scoring copy.
func CompletenessScore(stmt *models.ParsedStatement) int {
	if stmt == nil {
		return 0
	}

	score := len(stmt.Transactions) * scorePerTransaction
	if !stmt.Balance.TotalCredits.IsZero() {
		score += scoreNonzeroCredits
	}
	if !stmt.Balance.TotalDebits.IsZero() {
		score += scoreNonzeroDebits
	}
	if stmt.Balance.HasBalancePair() {
		score += scoreBalancePair
	}
	if stmt.Account.HasValidPeriod() {
		score += scoreValidPeriod
	}
	if !stmt.Account.IsDefaultAccountNumber() {
		score += scoreKnownAccount
	}
	return score - len(stmt.Warnings)*warningPenalty
}

// statementCriterion compares two duplicate candidates on one dimension.
// Negative ranks a ahead of b, positive ranks b ahead, zero defers to the
// next criterion in the chain.
type statementCriterion func(a, b *models.StatementWithSource) int

// duplicateResolutionCriteria is the ordered tie-break chain applied to
// statements sharing an identity key. The trailing filename comparison
// makes the order total, so resolution does not depend on the order
// documents were processed in.
var duplicateResolutionCriteria = []statementCriterion{
	compareCompleteness,
	compareSourceKind,
	compareSourceFile,
}

// ResolveStatementDuplicate returns the statement that survives when two
// copies share an identity key. On a complete tie (the same file submitted
// twice) the first argument wins.
func ResolveStatementDuplicate(a, b *models.StatementWithSource) *models.StatementWithSource {
	if compareStatements(a, b) <= 0 {
		return a
	}
	return b
}

func compareStatements(a, b *models.StatementWithSource) int {
	for _, criterion := range duplicateResolutionCriteria {
		if c := criterion(a, b); c != 0 {
			return c
		}
	}
	return 0
}

func compareCompleteness(a, b *models.StatementWithSource) int {
	return CompletenessScore(b.Statement) - CompletenessScore(a.Statement)
}

// compareSourceKind prefers statements extracted from standalone documents
// over copies found in combined exports, which tend to carry artifacts
// from page concatenation.
func compareSourceKind(a, b *models.StatementWithSource) int {
	combinedA := isCombinedStatement(a)
	combinedB := isCombinedStatement(b)
	switch {
	case !combinedA && combinedB:
		return -1
	case combinedA && !combinedB:
		return 1
	default:
		return 0
	}
}

func compareSourceFile(a, b *models.StatementWithSource) int {
	return strings.Compare(a.SourceFile, b.SourceFile)
}

// isCombinedStatement trusts the flag set at ingestion and falls back to
// the filename pattern for statements constructed elsewhere.
func isCombinedStatement(sws *models.StatementWithSource) bool {
	return sws.IsCombinedPDF || IsCombinedSource(sws.SourceFile)
}
