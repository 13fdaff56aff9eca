// Package merger collapses statements parsed from multiple source
// documents into one canonical, deduplicated set.
//
// Statements are keyed by account and period (StatementKey); when two
// documents yield the same key, the more complete copy survives according
// to ResolveStatementDuplicate. Transactions inside each surviving
// statement are then collapsed by TransactionKey, keeping the copy with
// the higher categorization confidence.
package merger

import (
	"sort"

	"golang-statement-extraction-service/internal/models"
	"golang-statement-extraction-service/pkg/logger"
)

// Merger deduplicates statements gathered from a batch of source
// documents. It is stateless between calls; all bookkeeping maps are
// built fresh inside Merge.
type Merger struct {
	logger logger.Logger
}

// MergeResult is the complete outcome of a merge run.
type MergeResult struct {
	Statements                   []*models.StatementWithSource `json:"statements"`
	TotalTransactions            int                           `json:"total_transactions"`
	DuplicateStatementsRemoved   int                           `json:"duplicate_statements_removed"`
	DuplicateTransactionsRemoved int                           `json:"duplicate_transactions_removed"`
}

// NewMerger creates a merger.
func NewMerger() *Merger {
	return &Merger{
		logger: logger.GetGlobalLogger().WithComponent("merger"),
	}
}

// Merge deduplicates the statements gathered from a batch of source
// documents, one inner slice per document. Merge never fails: nil or
// empty input produces an empty result. Input slices are left intact, but
// surviving ParsedStatement values are mutated when their transaction
// lists are deduplicated.
func (m *Merger) Merge(documents [][]*models.StatementWithSource) *MergeResult {
	result := &MergeResult{
		Statements: []*models.StatementWithSource{},
	}

	survivors := make(map[string]*models.StatementWithSource)
	var order []string

	for _, statements := range documents {
		for _, sws := range statements {
			if sws == nil || sws.Statement == nil {
				continue
			}
			key := StatementKey(sws.Statement)
			incumbent, seen := survivors[key]
			if !seen {
				survivors[key] = sws
				order = append(order, key)
				continue
			}

			result.DuplicateStatementsRemoved++
			winner := ResolveStatementDuplicate(incumbent, sws)
			loser := sws
			if winner != incumbent {
				survivors[key] = winner
				loser = incumbent
			}
			m.logger.WithFields(logger.Fields{
				"key":     key,
				"kept":    winner.SourceFile,
				"dropped": loser.SourceFile,
			}).Debug("Resolved duplicate statement")
		}
	}

	for _, key := range order {
		sws := survivors[key]
		result.DuplicateTransactionsRemoved += dedupeTransactions(sws.Statement)
		result.TotalTransactions += len(sws.Statement.Transactions)
		result.Statements = append(result.Statements, sws)
	}

	sortStatements(result.Statements)

	m.logger.WithFields(logger.Fields{
		"statements":             len(result.Statements),
		"transactions":           result.TotalTransactions,
		"duplicate_statements":   result.DuplicateStatementsRemoved,
		"duplicate_transactions": result.DuplicateTransactionsRemoved,
	}).Info("Merged statement batch")

	return result
}

// dedupeTransactions collapses transactions sharing an identity key,
// keeping the copy with the higher categorization confidence, and leaves
// the survivors sorted by date. Returns the number of duplicates removed.
func dedupeTransactions(stmt *models.ParsedStatement) int {
	if stmt == nil || len(stmt.Transactions) == 0 {
		return 0
	}

	kept := make([]*models.Transaction, 0, len(stmt.Transactions))
	position := make(map[string]int)
	removed := 0

	for _, tx := range stmt.Transactions {
		if tx == nil {
			continue
		}
		key := TransactionKey(tx)
		at, seen := position[key]
		if !seen {
			position[key] = len(kept)
			kept = append(kept, tx)
			continue
		}
		removed++
		if tx.CategoryConfidence > kept[at].CategoryConfidence {
			kept[at] = tx
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Date.Before(kept[j].Date)
	})

	stmt.Transactions = kept
	return removed
}

// sortStatements orders the merged set by statement period start, falling
// back to the source file name so statements without period dates still
// sort deterministically. Period starts are ISO date strings, so plain
// string comparison is chronological.
func sortStatements(statements []*models.StatementWithSource) {
	sort.SliceStable(statements, func(i, j int) bool {
		si := statements[i].Statement.Account.StatementPeriodStart
		sj := statements[j].Statement.Account.StatementPeriodStart
		if si != sj {
			return si < sj
		}
		return statements[i].SourceFile < statements[j].SourceFile
	})
}
