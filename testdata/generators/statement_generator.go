package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StatementGenerator generates monthly bank statement text files in the
// layout the extractor parses: a period header, account block, sectioned
// transaction lines, and balance summary lines.
type StatementGenerator struct {
	Year          int
	StartMonth    int
	Months        int
	AccountNumber string
	Holder        string
	AccountType   string
	Opening       decimal.Decimal
	Deposits      int
	Withdrawals   int
	MonthlyFee    bool
	GlueRatio     float64 // Ratio of Zelle withdrawals with the code glued to the amount
	Seed          int64
	OutputDir     string
	Prefix        string

	rand *rand.Rand
}

type generatedLine struct {
	day  int
	text string
}

func main() {
	var (
		outputDir   = flag.String("output-dir", "generated_statements", "Output directory for statement files")
		prefix      = flag.String("prefix", "eStmt", "File name prefix")
		year        = flag.Int("year", 2025, "Statement year")
		startMonth  = flag.Int("start-month", 1, "First statement month (1-12)")
		months      = flag.Int("months", 3, "Number of consecutive monthly statements")
		account     = flag.String("account", "4460 1234 5678", "Account number as printed on the statement")
		holder      = flag.String("holder", "PRIYA SHAH", "Account holder name")
		accountType = flag.String("type", "checking", "Account type: checking or savings")
		opening     = flag.Float64("opening", 3126.56, "Opening balance for the first month")
		deposits    = flag.Int("deposits", 3, "Deposit lines per statement")
		withdrawals = flag.Int("withdrawals", 3, "Withdrawal lines per statement")
		monthlyFee  = flag.Bool("fee", true, "Include a monthly service fee section")
		glueRatio   = flag.Float64("glue-ratio", 0.3, "Ratio of Zelle lines with the confirmation code glued to the amount")
		seed        = flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible generation")
	)
	flag.Parse()

	if *startMonth < 1 || *startMonth > 12 {
		log.Fatalf("Invalid start month: %d", *startMonth)
	}
	if *months < 1 || *startMonth+*months-1 > 12 {
		log.Fatalf("Months %d starting at %d run past December", *months, *startMonth)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	generator := &StatementGenerator{
		Year:          *year,
		StartMonth:    *startMonth,
		Months:        *months,
		AccountNumber: *account,
		Holder:        *holder,
		AccountType:   *accountType,
		Opening:       decimal.NewFromFloat(*opening),
		Deposits:      *deposits,
		Withdrawals:   *withdrawals,
		MonthlyFee:    *monthlyFee,
		GlueRatio:     *glueRatio,
		Seed:          *seed,
		OutputDir:     *outputDir,
		Prefix:        *prefix,
		rand:          rand.New(rand.NewSource(*seed)),
	}

	balance := generator.Opening
	for i := 0; i < generator.Months; i++ {
		month := time.Month(generator.StartMonth + i)
		text, closing := generator.GenerateMonth(month, balance)

		name := fmt.Sprintf("%s_%04d-%02d.txt", generator.Prefix, generator.Year, int(month))
		path := filepath.Join(generator.OutputDir, name)
		if err := os.WriteFile(path, []byte(text), 0644); err != nil {
			log.Fatalf("Failed to write %s: %v", path, err)
		}

		fmt.Printf("Generated %s (closing balance $%s)\n", path, formatAmount(closing))
		balance = closing
	}

	fmt.Printf("Seed used: %d\n", *seed)
}

// GenerateMonth builds one monthly statement and returns its text and
// closing balance
func (sg *StatementGenerator) GenerateMonth(month time.Month, opening decimal.Decimal) (string, decimal.Decimal) {
	lastDay := daysIn(month, sg.Year)

	depositLines, totalDeposits := sg.generateDeposits(month, lastDay)
	withdrawalLines, totalWithdrawals := sg.generateWithdrawals(month, lastDay)

	closing := opening.Add(totalDeposits).Sub(totalWithdrawals)

	var b strings.Builder
	fmt.Fprintf(&b, "%s 1, %d to %s %d, %d\n", month, sg.Year, month, lastDay, sg.Year)
	fmt.Fprintf(&b, "%s\n", sg.Holder)
	fmt.Fprintf(&b, "Account # %s\n", sg.AccountNumber)
	fmt.Fprintf(&b, "Your %s account statement\n", sg.AccountType)
	fmt.Fprintf(&b, "Beginning balance on %s 1, %d $%s\n", month, sg.Year, formatAmount(opening))
	b.WriteString("\n")

	b.WriteString("Deposits and other additions\n")
	for _, line := range depositLines {
		b.WriteString(line.text)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Total deposits and other additions $%s\n", formatAmount(totalDeposits))
	b.WriteString("\n")

	b.WriteString("Withdrawals and other subtractions\n")
	for _, line := range withdrawalLines {
		b.WriteString(line.text)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Total withdrawals and other subtractions -$%s\n", formatAmount(totalWithdrawals))
	b.WriteString("\n")

	if sg.MonthlyFee {
		fee := decimal.RequireFromString("12.00")
		closing = closing.Sub(fee)
		b.WriteString("Service fees\n")
		fmt.Fprintf(&b, "%02d/%02d Monthly maintenance fee 12.00\n", int(month), lastDay)
		b.WriteString("Total service fees -$12.00\n")
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Ending balance on %s %d, %d $%s\n", month, lastDay, sg.Year, formatAmount(closing))

	return b.String(), closing
}

var depositDescriptions = []string{
	"Zelle payment from ALICE GREEN",
	"Zelle payment from MARCUS WEBB",
	"Direct deposit EMPLOYER PAYROLL",
	"Mobile check deposit",
	"Online transfer from SAV-8842",
	"Interest earned",
}

var withdrawalPayees = []string{
	"JOHN SMITH",
	"RENTAL PROPERTIES LLC",
	"DANIELA CRUZ",
}

var withdrawalDescriptions = []string{
	"Online payment to CITY UTILITIES",
	"Debit card purchase WHOLEFDS #0421",
	"ATM withdrawal BRANCH #1189",
	"Check 1042",
	"Online payment to NORTHSTAR INSURANCE",
}

func (sg *StatementGenerator) generateDeposits(month time.Month, lastDay int) ([]generatedLine, decimal.Decimal) {
	lines := make([]generatedLine, 0, sg.Deposits)
	total := decimal.Zero

	for i := 0; i < sg.Deposits; i++ {
		day := sg.rand.Intn(lastDay) + 1
		desc := depositDescriptions[sg.rand.Intn(len(depositDescriptions))]
		amount := sg.randomAmount(50, 2500)
		total = total.Add(amount)

		lines = append(lines, generatedLine{
			day:  day,
			text: fmt.Sprintf("%02d/%02d %s %s", int(month), day, desc, formatAmount(amount)),
		})
	}

	sortByDay(lines)
	return lines, total
}

func (sg *StatementGenerator) generateWithdrawals(month time.Month, lastDay int) ([]generatedLine, decimal.Decimal) {
	lines := make([]generatedLine, 0, sg.Withdrawals)
	total := decimal.Zero

	for i := 0; i < sg.Withdrawals; i++ {
		day := sg.rand.Intn(lastDay) + 1
		amount := sg.randomAmount(10, 900)
		total = total.Add(amount)

		var text string
		if sg.rand.Intn(2) == 0 {
			// Zelle withdrawals carry a confirmation code, sometimes glued
			// directly to the amount the way PDF extraction renders it
			payee := withdrawalPayees[sg.rand.Intn(len(withdrawalPayees))]
			code := sg.confirmationCode()
			if sg.rand.Float64() < sg.GlueRatio {
				text = fmt.Sprintf("%02d/%02d Zelle payment to %s Conf# %s%s",
					int(month), day, payee, code, formatAmount(amount))
			} else {
				text = fmt.Sprintf("%02d/%02d Zelle payment to %s Conf# %s %s",
					int(month), day, payee, code, formatAmount(amount))
			}
		} else {
			desc := withdrawalDescriptions[sg.rand.Intn(len(withdrawalDescriptions))]
			text = fmt.Sprintf("%02d/%02d %s %s", int(month), day, desc, formatAmount(amount))
		}

		lines = append(lines, generatedLine{day: day, text: text})
	}

	sortByDay(lines)
	return lines, total
}

// confirmationCode builds a 9-character Zelle confirmation code ending in a
// letter so a glued amount still splits unambiguously
func (sg *StatementGenerator) confirmationCode() string {
	const letters = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	const alnum = letters + "0123456789"

	code := make([]byte, 9)
	for i := range code {
		code[i] = alnum[sg.rand.Intn(len(alnum))]
	}
	code[len(code)-1] = letters[sg.rand.Intn(len(letters))]
	return string(code)
}

func (sg *StatementGenerator) randomAmount(min, max int) decimal.Decimal {
	cents := int64(min*100 + sg.rand.Intn((max-min)*100))
	return decimal.New(cents, -2)
}

func sortByDay(lines []generatedLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].day < lines[j].day
	})
}

// formatAmount renders a decimal with comma-grouped thousands, matching how
// statements print amounts
func formatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	dot := strings.Index(s, ".")
	intPart, fracPart := s[:dot], s[dot:]

	var grouped strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}

	result := grouped.String() + fracPart
	if negative {
		result = "-" + result
	}
	return result
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
