package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CombinedGenerator generates a single combined export file holding several
// consecutive monthly statements for one account, the way year-to-date
// downloads bundle them. Statements are separated by form feeds so each one
// starts on its own page.
type CombinedGenerator struct {
	Year          int
	StartMonth    int
	Months        int
	AccountNumber string
	Holder        string
	AccountType   string
	Opening       decimal.Decimal
	Sparse        bool // Sparse statements carry a single deposit line each
	Seed          int64

	rand *rand.Rand
}

func main() {
	var (
		output      = flag.String("output", "All_Statements_Combined.txt", "Output file path")
		year        = flag.Int("year", 2025, "Statement year")
		startMonth  = flag.Int("start-month", 1, "First statement month (1-12)")
		months      = flag.Int("months", 3, "Number of consecutive monthly statements")
		account     = flag.String("account", "4460 1234 5678", "Account number as printed on the statement")
		holder      = flag.String("holder", "PRIYA SHAH", "Account holder name")
		accountType = flag.String("type", "checking", "Account type: checking or savings")
		opening     = flag.Float64("opening", 3126.56, "Opening balance for the first month")
		sparse      = flag.Bool("sparse", false, "Write sparse statements with one deposit line each")
		seed        = flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible generation")
	)
	flag.Parse()

	if *startMonth < 1 || *startMonth > 12 {
		log.Fatalf("Invalid start month: %d", *startMonth)
	}
	if *months < 1 || *startMonth+*months-1 > 12 {
		log.Fatalf("Months %d starting at %d run past December", *months, *startMonth)
	}

	generator := &CombinedGenerator{
		Year:          *year,
		StartMonth:    *startMonth,
		Months:        *months,
		AccountNumber: *account,
		Holder:        *holder,
		AccountType:   *accountType,
		Opening:       decimal.NewFromFloat(*opening),
		Sparse:        *sparse,
		Seed:          *seed,
		rand:          rand.New(rand.NewSource(*seed)),
	}

	text := generator.Generate()
	if err := os.WriteFile(*output, []byte(text), 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", *output, err)
	}

	fmt.Printf("Generated %s with %d statements\n", *output, *months)
	fmt.Printf("Seed used: %d\n", *seed)
}

// Generate builds the combined export text
func (cg *CombinedGenerator) Generate() string {
	var statements []string

	balance := cg.Opening
	for i := 0; i < cg.Months; i++ {
		month := time.Month(cg.StartMonth + i)
		text, closing := cg.generateMonth(month, balance)
		statements = append(statements, text)
		balance = closing
	}

	return strings.Join(statements, "\f")
}

func (cg *CombinedGenerator) generateMonth(month time.Month, opening decimal.Decimal) (string, decimal.Decimal) {
	lastDay := lastDayOf(month, cg.Year)

	deposits := 3
	withdrawals := 2
	if cg.Sparse {
		deposits = 1
		withdrawals = 0
	}

	totalDeposits := decimal.Zero
	var depositLines []string
	for i := 0; i < deposits; i++ {
		day := cg.rand.Intn(lastDay) + 1
		amount := cg.amount(50, 2500)
		totalDeposits = totalDeposits.Add(amount)
		depositLines = append(depositLines, fmt.Sprintf("%02d/%02d %s %s",
			int(month), day, cg.depositDescription(), groupedAmount(amount)))
	}

	totalWithdrawals := decimal.Zero
	var withdrawalLines []string
	for i := 0; i < withdrawals; i++ {
		day := cg.rand.Intn(lastDay) + 1
		amount := cg.amount(10, 900)
		totalWithdrawals = totalWithdrawals.Add(amount)
		withdrawalLines = append(withdrawalLines, fmt.Sprintf("%02d/%02d %s %s",
			int(month), day, cg.withdrawalDescription(), groupedAmount(amount)))
	}

	closing := opening.Add(totalDeposits).Sub(totalWithdrawals)

	var b strings.Builder
	fmt.Fprintf(&b, "%s 1, %d to %s %d, %d\n", month, cg.Year, month, lastDay, cg.Year)
	fmt.Fprintf(&b, "%s\n", cg.Holder)
	fmt.Fprintf(&b, "Account # %s\n", cg.AccountNumber)
	fmt.Fprintf(&b, "Your %s account statement\n", cg.AccountType)
	fmt.Fprintf(&b, "Beginning balance on %s 1, %d $%s\n", month, cg.Year, groupedAmount(opening))
	b.WriteString("\n")

	b.WriteString("Deposits and other additions\n")
	for _, line := range depositLines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Total deposits and other additions $%s\n", groupedAmount(totalDeposits))
	b.WriteString("\n")

	if len(withdrawalLines) > 0 {
		b.WriteString("Withdrawals and other subtractions\n")
		for _, line := range withdrawalLines {
			b.WriteString(line)
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Total withdrawals and other subtractions -$%s\n", groupedAmount(totalWithdrawals))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Ending balance on %s %d, %d $%s\n", month, lastDay, cg.Year, groupedAmount(closing))

	return b.String(), closing
}

func (cg *CombinedGenerator) depositDescription() string {
	options := []string{
		"Zelle payment from ALICE GREEN",
		"Direct deposit EMPLOYER PAYROLL",
		"Mobile check deposit",
		"Interest earned",
	}
	return options[cg.rand.Intn(len(options))]
}

func (cg *CombinedGenerator) withdrawalDescription() string {
	options := []string{
		"Online payment to CITY UTILITIES",
		"Debit card purchase WHOLEFDS #0421",
		"ATM withdrawal BRANCH #1189",
	}
	return options[cg.rand.Intn(len(options))]
}

func (cg *CombinedGenerator) amount(min, max int) decimal.Decimal {
	cents := int64(min*100 + cg.rand.Intn((max-min)*100))
	return decimal.New(cents, -2)
}

// groupedAmount renders a decimal with comma-grouped thousands
func groupedAmount(d decimal.Decimal) string {
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

func lastDayOf(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
