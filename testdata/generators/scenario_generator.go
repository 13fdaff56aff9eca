package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

// ScenarioGenerator creates fixed document sets with documented merge
// outcomes. Unlike the statement generator, scenario content is fully
// deterministic so the expected results in the README stay true.
type ScenarioGenerator struct {
	OutputDir string
}

// scenarioStatement describes one statement to render
type scenarioStatement struct {
	Month       string
	LastDay     int
	Year        int
	Holder      string
	Account     string
	AccountType string
	Opening     string
	Deposits    []string
	Withdrawals []string
}

func main() {
	var (
		outputDir = flag.String("output-dir", "generated_scenarios", "Output directory for scenario files")
		scenario  = flag.String("scenario", "all", "Scenario to generate: all, duplicates, reissued, unreadable")
	)
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	generator := &ScenarioGenerator{OutputDir: *outputDir}

	switch *scenario {
	case "duplicates":
		generator.GenerateDuplicateScenario()
	case "reissued":
		generator.GenerateReissueScenario()
	case "unreadable":
		generator.GenerateUnreadableScenario()
	case "all":
		generator.GenerateAllScenarios()
	default:
		log.Fatalf("Unknown scenario: %s", *scenario)
	}

	fmt.Printf("Generated scenarios in %s\n", *outputDir)
}

// GenerateAllScenarios generates every scenario plus the README
func (sg *ScenarioGenerator) GenerateAllScenarios() {
	fmt.Println("Generating all scenarios...")
	sg.GenerateDuplicateScenario()
	sg.GenerateReissueScenario()
	sg.GenerateUnreadableScenario()
	sg.writeReadme()
}

// GenerateDuplicateScenario writes two standalone monthly exports plus a
// combined export that bundles the same two months and a third one. Merging
// all three documents should keep three statements, take January and
// February from the standalone exports, and remove the two duplicates found
// in the combined file.
func (sg *ScenarioGenerator) GenerateDuplicateScenario() {
	fmt.Println("Generating duplicate statement scenario...")

	january := scenarioStatement{
		Month: "January", LastDay: 31, Year: 2025,
		Holder: "PRIYA SHAH", Account: "4460 1234 5678", AccountType: "checking",
		Opening: "3126.56",
		Deposits: []string{
			"01/05 Zelle payment from ALICE GREEN 250.00",
			"01/08 Direct deposit EMPLOYER PAYROLL 1000.00",
			"01/21 Mobile check deposit 180.50",
		},
		Withdrawals: []string{
			"01/09 Zelle payment to JOHN SMITH Conf# T0ZDL3WND 950.00",
			"01/17 Online payment to CITY UTILITIES 84.12",
		},
	}

	february := scenarioStatement{
		Month: "February", LastDay: 28, Year: 2025,
		Holder: "PRIYA SHAH", Account: "4460 1234 5678", AccountType: "checking",
		Opening: "3522.94",
		Deposits: []string{
			"02/03 Direct deposit EMPLOYER PAYROLL 1000.00",
			"02/14 Interest earned 0.42",
		},
		Withdrawals: []string{
			"02/19 Debit card purchase WHOLEFDS #0421 96.33",
		},
	}

	march := scenarioStatement{
		Month: "March", LastDay: 31, Year: 2025,
		Holder: "PRIYA SHAH", Account: "4460 1234 5678", AccountType: "checking",
		Opening: "4427.03",
		Deposits: []string{
			"03/03 Direct deposit EMPLOYER PAYROLL 1000.00",
		},
		Withdrawals: []string{
			"03/24 ATM withdrawal BRANCH #1189 200.00",
		},
	}

	// Sparse copies of January and February appear in the combined file;
	// the merger should prefer the richer standalone versions
	januarySparse := january
	januarySparse.Deposits = january.Deposits[:1]
	januarySparse.Withdrawals = nil

	februarySparse := february
	februarySparse.Deposits = february.Deposits[:1]
	februarySparse.Withdrawals = nil

	sg.writeFile("duplicates/eStmt_2025-01.txt", renderStatement(january))
	sg.writeFile("duplicates/eStmt_2025-02.txt", renderStatement(february))
	sg.writeFile("duplicates/All_Statements_Combined_2025.txt", strings.Join([]string{
		renderStatement(januarySparse),
		renderStatement(februarySparse),
		renderStatement(march),
	}, "\f"))
}

// GenerateReissueScenario writes the same April statement exported twice.
// Merging both documents should keep one statement with every transaction
// appearing exactly once.
func (sg *ScenarioGenerator) GenerateReissueScenario() {
	fmt.Println("Generating reissued statement scenario...")

	april := scenarioStatement{
		Month: "April", LastDay: 30, Year: 2025,
		Holder: "PRIYA SHAH", Account: "4460 1234 5678", AccountType: "checking",
		Opening: "5227.03",
		Deposits: []string{
			"04/01 Direct deposit EMPLOYER PAYROLL 1000.00",
			"04/15 Zelle payment from MARCUS WEBB 75.00",
		},
		Withdrawals: []string{
			"04/22 Online payment to NORTHSTAR INSURANCE 148.00",
		},
	}

	text := renderStatement(april)
	sg.writeFile("reissued/eStmt_2025-04.txt", text)
	sg.writeFile("reissued/eStmt_2025-04_reissue.txt", text)
}

// GenerateUnreadableScenario writes a document with no recognizable text,
// the way a scanned-image export comes out. Extraction should fail for this
// document and the run should continue past it.
func (sg *ScenarioGenerator) GenerateUnreadableScenario() {
	fmt.Println("Generating unreadable document scenario...")

	junk := strings.Repeat("\x01\x02\x7f\x03 ", 64)
	sg.writeFile("unreadable/scan_2025-05.txt", junk)
}

func (sg *ScenarioGenerator) writeFile(relative, content string) {
	path := filepath.Join(sg.OutputDir, relative)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", path, err)
	}
	fmt.Printf("  wrote %s\n", path)
}

func (sg *ScenarioGenerator) writeReadme() {
	readme := `# Merge scenarios

Deterministic document sets with known merge outcomes.

## duplicates/

Two standalone monthly exports plus a combined export bundling sparse
copies of the same months and a March statement that only exists in the
combined file.

    extractor merge duplicates/*.txt

Expected: 3 statements (January and February from the standalone exports,
March from the combined file), 2 duplicate statements removed.

## reissued/

The same April statement exported twice under different file names.

    extractor merge reissued/*.txt

Expected: 1 statement, 1 duplicate statement removed, every transaction
kept exactly once.

## unreadable/

A document with no recognizable text, standing in for a scanned image.

    extractor merge unreadable/scan_2025-05.txt duplicates/eStmt_2025-01.txt

Expected: a warning for scan_2025-05.txt and a successful run over the
remaining document.
`
	sg.writeFile("README.md", readme)
}

// renderStatement builds statement text in the layout the extractor parses
func renderStatement(s scenarioStatement) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s 1, %d to %s %d, %d\n", s.Month, s.Year, s.Month, s.LastDay, s.Year)
	fmt.Fprintf(&b, "%s\n", s.Holder)
	fmt.Fprintf(&b, "Account # %s\n", s.Account)
	fmt.Fprintf(&b, "Your %s account statement\n", s.AccountType)
	fmt.Fprintf(&b, "Beginning balance on %s 1, %d $%s\n", s.Month, s.Year, s.Opening)
	b.WriteString("\n")

	b.WriteString("Deposits and other additions\n")
	for _, line := range s.Deposits {
		b.WriteString(line)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Total deposits and other additions $%s\n", sumTrailingAmounts(s.Deposits))
	b.WriteString("\n")

	if len(s.Withdrawals) > 0 {
		b.WriteString("Withdrawals and other subtractions\n")
		for _, line := range s.Withdrawals {
			b.WriteString(line)
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Total withdrawals and other subtractions -$%s\n", sumTrailingAmounts(s.Withdrawals))
		b.WriteString("\n")
	}

	opening := decimal.RequireFromString(s.Opening)
	closing := opening.Add(decimal.RequireFromString(sumTrailingAmounts(s.Deposits)))
	if len(s.Withdrawals) > 0 {
		closing = closing.Sub(decimal.RequireFromString(sumTrailingAmounts(s.Withdrawals)))
	}
	fmt.Fprintf(&b, "Ending balance on %s %d, %d $%s\n", s.Month, s.LastDay, s.Year, closing.StringFixed(2))

	return b.String()
}

// sumTrailingAmounts totals the amount at the end of each transaction line
func sumTrailingAmounts(lines []string) string {
	total := decimal.Zero
	for _, line := range lines {
		fields := strings.Fields(line)
		amount := decimal.RequireFromString(strings.ReplaceAll(fields[len(fields)-1], ",", ""))
		total = total.Add(amount)
	}
	return total.StringFixed(2)
}
