package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionDirection indicates whether money moved into or out of the account
type TransactionDirection string

const (
	// DirectionCredit represents money flowing into the account
	DirectionCredit TransactionDirection = "credit"
	// DirectionDebit represents money flowing out of the account
	DirectionDebit TransactionDirection = "debit"
)

// String returns the string representation of TransactionDirection
func (d TransactionDirection) String() string {
	return string(d)
}

// IsValid checks if the transaction direction is valid
func (d TransactionDirection) IsValid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

// Section is the semantic statement section a transaction line was parsed in
type Section string

const (
	SectionUnknown     Section = "unknown"
	SectionDeposits    Section = "deposits"
	SectionWithdrawals Section = "withdrawals"
	SectionChecks      Section = "checks"
	SectionFees        Section = "fees"
)

// String returns the string representation of the Section
func (s Section) String() string {
	return string(s)
}

// DefaultAccountNumberMask is used when no account number can be located
const DefaultAccountNumberMask = "****0000"

// RawTransaction is a single transaction as parsed from one statement line
// (or one merged line group). Instances are immutable once emitted: Amount
// stays a decimal string and Date an ISO-8601 string exactly as the line
// parser produced them, and OriginalLine preserves the unmodified source
// text for provenance even when a cleaned line was used to locate the amount.
type RawTransaction struct {
	Date         string `json:"date"`
	Description  string `json:"description"`
	Amount       string `json:"amount"`
	Page         int    `json:"page"`
	LineIndex    int    `json:"line_index"`
	OriginalLine string `json:"original_line"`
	Section      Section `json:"section,omitempty"`
}

// Validate performs basic validation on the RawTransaction
func (rt *RawTransaction) Validate() error {
	if strings.TrimSpace(rt.Date) == "" {
		return fmt.Errorf("raw transaction date cannot be empty")
	}

	if strings.TrimSpace(rt.Amount) == "" {
		return fmt.Errorf("raw transaction amount cannot be empty")
	}

	if _, err := ParseDecimalFromString(rt.Amount); err != nil {
		return fmt.Errorf("raw transaction amount is not numeric: %w", err)
	}

	return nil
}

// String returns a string representation of the RawTransaction
func (rt *RawTransaction) String() string {
	return fmt.Sprintf("RawTransaction{Date: %s, Amount: %s, Section: %s, Page: %d}",
		rt.Date, rt.Amount, rt.Section, rt.Page)
}

// Transaction is a normalized statement transaction with a signed decimal
// amount and a derived direction. Category fields are filled in by the
// categorization collaborator and default to empty/zero.
type Transaction struct {
	Date               time.Time            `json:"date"`
	Description        string               `json:"description"`
	Amount             decimal.Decimal      `json:"amount"`
	Direction          TransactionDirection `json:"direction"`
	Category           string               `json:"category,omitempty"`
	Subcategory        string               `json:"subcategory,omitempty"`
	CategoryConfidence float64              `json:"category_confidence,omitempty"`
	Page               int                  `json:"page"`
	OriginalLine       string               `json:"original_line,omitempty"`
}

// NewTransactionFromRaw converts a RawTransaction into a normalized
// Transaction. The direction is derived from the amount sign: negative
// amounts are debits, everything else credits.
func NewTransactionFromRaw(raw *RawTransaction) (*Transaction, error) {
	if raw == nil {
		return nil, fmt.Errorf("raw transaction cannot be nil")
	}

	amount, err := ParseDecimalFromString(raw.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid raw transaction amount: %w", err)
	}

	date, err := ParseTimeWithFormats(raw.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid raw transaction date: %w", err)
	}

	direction := DirectionCredit
	if amount.IsNegative() {
		direction = DirectionDebit
	}

	return &Transaction{
		Date:         date,
		Description:  strings.TrimSpace(raw.Description),
		Amount:       amount,
		Direction:    direction,
		Page:         raw.Page,
		OriginalLine: raw.OriginalLine,
	}, nil
}

// Validate performs basic validation on the Transaction
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("transaction description cannot be empty")
	}

	if !t.Direction.IsValid() {
		return fmt.Errorf("invalid transaction direction: %s", t.Direction)
	}

	if t.Date.IsZero() {
		return fmt.Errorf("transaction date cannot be zero")
	}

	return nil
}

// String returns a string representation of the Transaction
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{Date: %s, Amount: %s, Direction: %s, Description: %s}",
		t.Date.Format("2006-01-02"), t.Amount.String(), t.Direction, t.Description)
}

// MarshalJSON implements custom JSON marshaling for Transaction
func (t *Transaction) MarshalJSON() ([]byte, error) {
	type Alias Transaction
	return json.Marshal(&struct {
		Date   string `json:"date"`
		Amount string `json:"amount"`
		*Alias
	}{
		Date:   t.Date.Format("2006-01-02"),
		Amount: t.Amount.String(),
		Alias:  (*Alias)(t),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for Transaction
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type Alias Transaction
	aux := &struct {
		Date   string `json:"date"`
		Amount string `json:"amount"`
		*Alias
	}{
		Alias: (*Alias)(t),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	t.Amount, err = decimal.NewFromString(aux.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount format: %w", err)
	}

	t.Date, err = ParseTimeWithFormats(aux.Date)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}

	return nil
}

// Equals compares two Transaction instances for equality
func (t *Transaction) Equals(other *Transaction) bool {
	if other == nil {
		return false
	}

	return t.Date.Equal(other.Date) &&
		t.Description == other.Description &&
		t.Amount.Equal(other.Amount) &&
		t.Direction == other.Direction
}

// GetAbsoluteAmount returns the absolute value of the transaction amount
func (t *Transaction) GetAbsoluteAmount() decimal.Decimal {
	return t.Amount.Abs()
}

// IsDebit returns true if the transaction moves money out of the account
func (t *Transaction) IsDebit() bool {
	return t.Direction == DirectionDebit
}

// IsCredit returns true if the transaction moves money into the account
func (t *Transaction) IsCredit() bool {
	return t.Direction == DirectionCredit
}

// AccountInfo holds the account identity and statement period extracted
// from one statement segment. Period dates are ISO-8601 strings and stay
// empty when undetected; the account number keeps only its last four
// digits behind a mask.
type AccountInfo struct {
	AccountType          string `json:"account_type"`
	AccountNumberMasked  string `json:"account_number_masked"`
	StatementPeriodStart string `json:"statement_period_start"`
	StatementPeriodEnd   string `json:"statement_period_end"`
}

// NewAccountInfo creates an AccountInfo populated with defaults
func NewAccountInfo() AccountInfo {
	return AccountInfo{
		AccountNumberMasked: DefaultAccountNumberMask,
	}
}

// HasValidPeriod reports whether both period dates were detected and parse
// as dates
func (ai *AccountInfo) HasValidPeriod() bool {
	if ai.StatementPeriodStart == "" || ai.StatementPeriodEnd == "" {
		return false
	}

	if _, err := ParseTimeWithFormats(ai.StatementPeriodStart); err != nil {
		return false
	}
	if _, err := ParseTimeWithFormats(ai.StatementPeriodEnd); err != nil {
		return false
	}

	return true
}

// IsDefaultAccountNumber reports whether the account number fell back to
// the placeholder mask
func (ai *AccountInfo) IsDefaultAccountNumber() bool {
	return ai.AccountNumberMasked == "" || ai.AccountNumberMasked == DefaultAccountNumberMask
}

// BalanceInfo holds the four summary totals extracted from one statement
// segment. Amounts default to zero when undetected.
type BalanceInfo struct {
	StartingBalance decimal.Decimal `json:"starting_balance"`
	EndingBalance   decimal.Decimal `json:"ending_balance"`
	TotalCredits    decimal.Decimal `json:"total_credits"`
	TotalDebits     decimal.Decimal `json:"total_debits"`
}

// HasBalancePair reports whether both the starting and ending balance were
// detected with nonzero values
func (bi *BalanceInfo) HasBalancePair() bool {
	return !bi.StartingBalance.IsZero() && !bi.EndingBalance.IsZero()
}

// MarshalJSON implements custom JSON marshaling for BalanceInfo
func (bi *BalanceInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		StartingBalance string `json:"starting_balance"`
		EndingBalance   string `json:"ending_balance"`
		TotalCredits    string `json:"total_credits"`
		TotalDebits     string `json:"total_debits"`
	}{
		StartingBalance: bi.StartingBalance.String(),
		EndingBalance:   bi.EndingBalance.String(),
		TotalCredits:    bi.TotalCredits.String(),
		TotalDebits:     bi.TotalDebits.String(),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for BalanceInfo
func (bi *BalanceInfo) UnmarshalJSON(data []byte) error {
	aux := &struct {
		StartingBalance string `json:"starting_balance"`
		EndingBalance   string `json:"ending_balance"`
		TotalCredits    string `json:"total_credits"`
		TotalDebits     string `json:"total_debits"`
	}{}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	fields := []struct {
		value string
		dst   *decimal.Decimal
	}{
		{aux.StartingBalance, &bi.StartingBalance},
		{aux.EndingBalance, &bi.EndingBalance},
		{aux.TotalCredits, &bi.TotalCredits},
		{aux.TotalDebits, &bi.TotalDebits},
	}

	for _, f := range fields {
		if f.value == "" {
			*f.dst = decimal.Zero
			continue
		}
		d, err := decimal.NewFromString(f.value)
		if err != nil {
			return fmt.Errorf("invalid balance amount '%s': %w", f.value, err)
		}
		*f.dst = d
	}

	return nil
}

// ParserMetadata records which parser produced a statement and from where
type ParserMetadata struct {
	Parser    string    `json:"parser"`
	StartPage int       `json:"start_page"`
	EndPage   int       `json:"end_page"`
	ParsedAt  time.Time `json:"parsed_at"`
}

// ParsedStatement is one fully assembled statement: account identity,
// balance summary, normalized transactions, and the warnings accumulated
// while extracting them. When both period dates are known the transactions
// are restricted to that period.
type ParsedStatement struct {
	Account      AccountInfo    `json:"account"`
	Balance      BalanceInfo    `json:"balance"`
	Transactions []*Transaction `json:"transactions"`
	Warnings     []string       `json:"warnings,omitempty"`
	Metadata     ParserMetadata `json:"metadata"`
}

// NewParsedStatement creates an empty ParsedStatement with default account
// info
func NewParsedStatement() *ParsedStatement {
	return &ParsedStatement{
		Account: NewAccountInfo(),
	}
}

// AddWarning appends a human-readable warning to the statement
func (ps *ParsedStatement) AddWarning(warning string) {
	ps.Warnings = append(ps.Warnings, warning)
}

// TransactionCount returns the number of transactions in the statement
func (ps *ParsedStatement) TransactionCount() int {
	return len(ps.Transactions)
}

// String returns a string representation of the ParsedStatement
func (ps *ParsedStatement) String() string {
	return fmt.Sprintf("ParsedStatement{Account: %s %s, Period: %s..%s, Transactions: %d, Warnings: %d}",
		ps.Account.AccountType, ps.Account.AccountNumberMasked,
		ps.Account.StatementPeriodStart, ps.Account.StatementPeriodEnd,
		len(ps.Transactions), len(ps.Warnings))
}

// StatementWithSource wraps a ParsedStatement with the document it came
// from. The same logical statement may arrive from several source
// documents with different completeness, so the merger needs to know each
// copy's provenance and whether that document was a combined PDF.
type StatementWithSource struct {
	Statement     *ParsedStatement `json:"statement"`
	SourceFile    string           `json:"source_file"`
	IsCombinedPDF bool             `json:"is_combined_pdf"`
}

// NewStatementWithSource wraps a parsed statement with source metadata
func NewStatementWithSource(statement *ParsedStatement, sourceFile string, isCombinedPDF bool) *StatementWithSource {
	return &StatementWithSource{
		Statement:     statement,
		SourceFile:    sourceFile,
		IsCombinedPDF: isCombinedPDF,
	}
}

// Validate performs basic validation on the StatementWithSource
func (sws *StatementWithSource) Validate() error {
	if sws.Statement == nil {
		return fmt.Errorf("statement cannot be nil")
	}

	if strings.TrimSpace(sws.SourceFile) == "" {
		return fmt.Errorf("source file cannot be empty")
	}

	return nil
}

// Utility functions for parsing and normalization

// ParseDecimalFromString parses a decimal value from string with validation
func ParseDecimalFromString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount string cannot be empty")
	}

	// Remove common currency symbols and thousand separators
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal format '%s': %w", s, err)
	}

	return d, nil
}

// ParseTimeWithFormats attempts to parse time from string using multiple
// formats seen in statement text
func ParseTimeWithFormats(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("time string cannot be empty")
	}

	formats := []string{
		"2006-01-02",               // "2025-01-31"
		"01/02/2006",               // "01/31/2025"
		"1/2/2006",                 // "1/31/2025"
		"01/02/06",                 // "01/31/25"
		"January 2, 2006",          // "January 31, 2025"
		"Jan 2, 2006",              // "Jan 31, 2025"
		"January 2 2006",           // "January 31 2025"
		time.RFC3339,               // "2025-01-31T00:00:00Z"
		"2006-01-02 15:04:05",      // "2025-01-31 00:00:00"
	}

	var lastErr error
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse time '%s': %w", s, lastErr)
}

// FormatISODate renders a time as the ISO-8601 date string used throughout
// the data model
func FormatISODate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeDescription lowercases, trims, and collapses internal whitespace
// so logically identical descriptions compare equal regardless of layout
// differences between source documents
func NormalizeDescription(description string) string {
	normalized := strings.ToLower(strings.TrimSpace(description))
	return whitespaceRun.ReplaceAllString(normalized, " ")
}

// MaskAccountNumber keeps the last four digits of an account number behind
// the standard mask. Input shorter than four digits falls back to the
// default mask.
func MaskAccountNumber(digits string) string {
	digits = strings.TrimSpace(digits)
	if len(digits) < 4 {
		return DefaultAccountNumberMask
	}
	return "****" + digits[len(digits)-4:]
}

// CompareAmountsWithTolerance compares two decimal amounts with a tolerance
func CompareAmountsWithTolerance(a, b, tolerance decimal.Decimal) bool {
	diff := a.Sub(b).Abs()
	return diff.LessThanOrEqual(tolerance)
}
