// Package store persists merge runs to an embedded SQLite database.
//
// Statements are upserted by their merger identity key, so re-running a
// merge over overlapping documents updates rows in place instead of
// accumulating duplicates. Schema changes ship as embedded migrations and
// are applied on Open.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"golang-statement-extraction-service/internal/merger"
	"golang-statement-extraction-service/internal/models"
	"golang-statement-extraction-service/pkg/errors"
	"golang-statement-extraction-service/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Config holds database settings.
type Config struct {
	// DatabasePath is the SQLite file location
	DatabasePath string `json:"database_path"`

	// BusyTimeoutMS is how long a locked database is retried before failing
	BusyTimeoutMS int `json:"busy_timeout_ms"`
}

// DefaultConfig returns database settings suitable for CLI use
func DefaultConfig() *Config {
	return &Config{
		DatabasePath:  "statements.db",
		BusyTimeoutMS: 5000,
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.BusyTimeoutMS <= 0 {
		return fmt.Errorf("busy timeout must be positive")
	}
	return nil
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Store wraps the SQLite connection and the queries the extraction
// pipeline needs.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

// Open connects to the database, applies pending migrations, and returns a
// ready Store. A nil config uses defaults.
func Open(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "store", config.DatabasePath, err)
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=foreign_keys(on)",
		config.DatabasePath, config.BusyTimeoutMS)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.StorageError(errors.CodeStorageUnavailable, "open", err)
	}

	// A single connection avoids SQLite lock contention entirely.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.StorageError(errors.CodeStorageUnavailable, "ping", err)
	}

	store := &Store{
		db:     db,
		logger: logger.GetGlobalLogger().WithComponent("store"),
	}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	store.logger.WithField("path", config.DatabasePath).Debug("Database opened")
	return store, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies embedded schema migrations.
func (s *Store) migrate() error {
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return errors.StorageError(errors.CodeMigrationFailed, "driver", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return errors.StorageError(errors.CodeMigrationFailed, "source", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return errors.StorageError(errors.CodeMigrationFailed, "instance", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.StorageError(errors.CodeMigrationFailed, "up", err)
	}
	return nil
}

// SaveMergeResult records a merge run and upserts every statement in the
// result, replacing each statement's stored transactions. Returns the
// generated run ID.
func (s *Store) SaveMergeResult(ctx context.Context, result *merger.MergeResult, sourceDocuments int) (string, error) {
	if result == nil {
		return "", errors.StorageError(errors.CodeQueryFailed, "save_merge_result", fmt.Errorf("merge result is nil"))
	}

	runID := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.StorageError(errors.CodeQueryFailed, "begin", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO merge_runs (id, created_at, source_documents, statement_count, total_transactions,
	                        duplicate_statements_removed, duplicate_transactions_removed)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, now, sourceDocuments, len(result.Statements), result.TotalTransactions,
		result.DuplicateStatementsRemoved, result.DuplicateTransactionsRemoved)
	if err != nil {
		return "", errors.StorageError(errors.CodeQueryFailed, "insert_run", err)
	}

	for _, sws := range result.Statements {
		if sws == nil || sws.Statement == nil {
			continue
		}
		if err := upsertStatement(ctx, tx, runID, now, sws); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", errors.StorageError(errors.CodeQueryFailed, "commit", err)
	}

	s.logger.WithFields(logger.Fields{
		"run_id":     runID,
		"statements": len(result.Statements),
	}).Info("Saved merge result")

	return runID, nil
}

// upsertStatement writes one statement and its transactions. An existing
// row with the same identity key is updated and its transactions replaced.
func upsertStatement(ctx context.Context, tx *sql.Tx, runID, now string, sws *models.StatementWithSource) error {
	stmt := sws.Statement
	key := merger.StatementKey(stmt)

	warnings := []byte("[]")
	if len(stmt.Warnings) > 0 {
		encoded, err := json.Marshal(stmt.Warnings)
		if err != nil {
			return errors.StorageError(errors.CodeQueryFailed, "encode_warnings", err)
		}
		warnings = encoded
	}

	var statementID string
	err := tx.QueryRowContext(ctx, `SELECT id FROM statements WHERE statement_key = ?`, key).Scan(&statementID)
	switch {
	case err == sql.ErrNoRows:
		statementID = uuid.NewString()
		_, err = tx.ExecContext(ctx, `
		INSERT INTO statements (id, statement_key, run_id, account_type, account_number_masked,
		                        period_start, period_end, starting_balance, ending_balance,
		                        total_credits, total_debits, source_file, is_combined_pdf,
		                        warnings, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			statementID, key, runID, stmt.Account.AccountType, stmt.Account.AccountNumberMasked,
			stmt.Account.StatementPeriodStart, stmt.Account.StatementPeriodEnd,
			stmt.Balance.StartingBalance.String(), stmt.Balance.EndingBalance.String(),
			stmt.Balance.TotalCredits.String(), stmt.Balance.TotalDebits.String(),
			sws.SourceFile, boolToInt(sws.IsCombinedPDF), string(warnings), now)
		if err != nil {
			return errors.StorageError(errors.CodeQueryFailed, "insert_statement", err)
		}
	case err != nil:
		return errors.StorageError(errors.CodeQueryFailed, "lookup_statement", err)
	default:
		_, err = tx.ExecContext(ctx, `
		UPDATE statements
		SET run_id = ?, account_type = ?, account_number_masked = ?, period_start = ?, period_end = ?,
		    starting_balance = ?, ending_balance = ?, total_credits = ?, total_debits = ?,
		    source_file = ?, is_combined_pdf = ?, warnings = ?, updated_at = ?
		WHERE id = ?`,
			runID, stmt.Account.AccountType, stmt.Account.AccountNumberMasked,
			stmt.Account.StatementPeriodStart, stmt.Account.StatementPeriodEnd,
			stmt.Balance.StartingBalance.String(), stmt.Balance.EndingBalance.String(),
			stmt.Balance.TotalCredits.String(), stmt.Balance.TotalDebits.String(),
			sws.SourceFile, boolToInt(sws.IsCombinedPDF), string(warnings), now, statementID)
		if err != nil {
			return errors.StorageError(errors.CodeQueryFailed, "update_statement", err)
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM transactions WHERE statement_id = ?`, statementID)
		if err != nil {
			return errors.StorageError(errors.CodeQueryFailed, "clear_transactions", err)
		}
	}

	for _, transaction := range stmt.Transactions {
		if transaction == nil {
			continue
		}
		_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (statement_id, transaction_key, date, description, amount, direction,
		                          category, subcategory, category_confidence, page, original_line)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			statementID, merger.TransactionKey(transaction),
			models.FormatISODate(transaction.Date), transaction.Description,
			transaction.Amount.String(), string(transaction.Direction),
			transaction.Category, transaction.Subcategory, transaction.CategoryConfidence,
			transaction.Page, transaction.OriginalLine)
		if err != nil {
			return errors.StorageError(errors.CodeQueryFailed, "insert_transaction", err)
		}
	}

	return nil
}

// LoadStatementKeys returns every stored statement identity key mapped to
// its statement ID.
func (s *Store) LoadStatementKeys(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT statement_key, id FROM statements ORDER BY statement_key`)
	if err != nil {
		return nil, errors.StorageError(errors.CodeQueryFailed, "load_statement_keys", err)
	}
	defer rows.Close()

	keys := make(map[string]string)
	for rows.Next() {
		var key, id string
		if err := rows.Scan(&key, &id); err != nil {
			return nil, errors.StorageError(errors.CodeQueryFailed, "scan_statement_key", err)
		}
		keys[key] = id
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StorageError(errors.CodeQueryFailed, "iterate_statement_keys", err)
	}
	return keys, nil
}

// GetStatement reconstructs a stored statement, including its
// transactions, by statement ID.
func (s *Store) GetStatement(ctx context.Context, statementID string) (*models.StatementWithSource, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT account_type, account_number_masked, period_start, period_end,
	       starting_balance, ending_balance, total_credits, total_debits,
	       source_file, is_combined_pdf, warnings
	FROM statements
	WHERE id = ?`, statementID)

	stmt := models.NewParsedStatement()
	var startingBalance, endingBalance, totalCredits, totalDebits string
	var sourceFile, warningsJSON string
	var isCombined int

	err := row.Scan(&stmt.Account.AccountType, &stmt.Account.AccountNumberMasked,
		&stmt.Account.StatementPeriodStart, &stmt.Account.StatementPeriodEnd,
		&startingBalance, &endingBalance, &totalCredits, &totalDebits,
		&sourceFile, &isCombined, &warningsJSON)
	if err == sql.ErrNoRows {
		return nil, errors.StorageError(errors.CodeQueryFailed, "get_statement",
			fmt.Errorf("statement %s not found", statementID))
	}
	if err != nil {
		return nil, errors.StorageError(errors.CodeQueryFailed, "get_statement", err)
	}

	if stmt.Balance.StartingBalance, err = models.ParseDecimalFromString(startingBalance); err != nil {
		return nil, errors.StorageError(errors.CodeQueryFailed, "parse_starting_balance", err)
	}
	if stmt.Balance.EndingBalance, err = models.ParseDecimalFromString(endingBalance); err != nil {
		return nil, errors.StorageError(errors.CodeQueryFailed, "parse_ending_balance", err)
	}
	if stmt.Balance.TotalCredits, err = models.ParseDecimalFromString(totalCredits); err != nil {
		return nil, errors.StorageError(errors.CodeQueryFailed, "parse_total_credits", err)
	}
	if stmt.Balance.TotalDebits, err = models.ParseDecimalFromString(totalDebits); err != nil {
		return nil, errors.StorageError(errors.CodeQueryFailed, "parse_total_debits", err)
	}

	if err := json.Unmarshal([]byte(warningsJSON), &stmt.Warnings); err != nil {
		return nil, errors.StorageError(errors.CodeQueryFailed, "decode_warnings", err)
	}

	if stmt.Transactions, err = s.loadTransactions(ctx, statementID); err != nil {
		return nil, err
	}

	return models.NewStatementWithSource(stmt, sourceFile, isCombined != 0), nil
}

func (s *Store) loadTransactions(ctx context.Context, statementID string) ([]*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT date, description, amount, direction, category, subcategory,
	       category_confidence, page, original_line
	FROM transactions
	WHERE statement_id = ?
	ORDER BY date, transaction_key`, statementID)
	if err != nil {
		return nil, errors.StorageError(errors.CodeQueryFailed, "load_transactions", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var date, amount, direction string
		transaction := &models.Transaction{}
		err := rows.Scan(&date, &transaction.Description, &amount, &direction,
			&transaction.Category, &transaction.Subcategory, &transaction.CategoryConfidence,
			&transaction.Page, &transaction.OriginalLine)
		if err != nil {
			return nil, errors.StorageError(errors.CodeQueryFailed, "scan_transaction", err)
		}
		if date != "" {
			if transaction.Date, err = time.Parse("2006-01-02", date); err != nil {
				return nil, errors.StorageError(errors.CodeQueryFailed, "parse_transaction_date", err)
			}
		}
		if transaction.Amount, err = models.ParseDecimalFromString(amount); err != nil {
			return nil, errors.StorageError(errors.CodeQueryFailed, "parse_transaction_amount", err)
		}
		transaction.Direction = models.TransactionDirection(direction)
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StorageError(errors.CodeQueryFailed, "iterate_transactions", err)
	}
	return transactions, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
