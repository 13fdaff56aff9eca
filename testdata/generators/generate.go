package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Generator represents a data generator command
type Generator struct {
	Name        string
	Command     string
	Description string
}

var generators = []Generator{
	{
		Name:        "statements",
		Command:     "statement_generator",
		Description: "Generate monthly bank statement text files",
	},
	{
		Name:        "combined",
		Command:     "combined_generator",
		Description: "Generate a combined multi-statement export file",
	},
	{
		Name:        "scenarios",
		Command:     "scenario_generator",
		Description: "Generate merge scenario document sets",
	},
}

func main() {
	var (
		generator = flag.String("generator", "", "Generator to run: statements, combined, scenarios, or 'all'")
		list      = flag.Bool("list", false, "List available generators")
		outputDir = flag.String("output-dir", "../generated", "Output directory for generated files")
		help      = flag.Bool("help", false, "Show help for specific generator")
	)
	flag.Parse()

	if *list {
		listGenerators()
		return
	}

	if *generator == "" {
		fmt.Println("Test Data Generator CLI")
		fmt.Println("======================")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  go run generate.go -generator=<name> [options]")
		fmt.Println()
		fmt.Println("Available generators:")
		for _, gen := range generators {
			fmt.Printf("  %-12s %s\n", gen.Name, gen.Description)
		}
		fmt.Println()
		fmt.Println("Use -list to see all generators")
		fmt.Println("Use -help -generator=<name> to see generator-specific options")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  go run generate.go -generator=statements -months=6 -glue-ratio=0.5")
		fmt.Println("  go run generate.go -generator=combined -months=12 -output=All_2025.txt")
		fmt.Println("  go run generate.go -generator=scenarios -scenario=duplicates")
		fmt.Println("  go run generate.go -generator=all")
		return
	}

	// Create output directory
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	if *help {
		showGeneratorHelp(*generator)
		return
	}

	if *generator == "all" {
		generateAll(*outputDir)
		return
	}

	// Find and run specific generator
	for _, gen := range generators {
		if gen.Name == *generator {
			runGenerator(gen, *outputDir, flag.Args())
			return
		}
	}

	log.Fatalf("Unknown generator: %s", *generator)
}

func listGenerators() {
	fmt.Println("Available Test Data Generators:")
	fmt.Println("===============================")
	fmt.Println()

	for _, gen := range generators {
		fmt.Printf("Name: %s\n", gen.Name)
		fmt.Printf("Description: %s\n", gen.Description)
		fmt.Printf("Command: %s\n", gen.Command)
		fmt.Println()
	}
}

func showGeneratorHelp(generatorName string) {
	for _, gen := range generators {
		if gen.Name == generatorName {
			fmt.Printf("Help for %s generator:\n", generatorName)
			fmt.Printf("======================\n\n")

			// Run the generator with -help flag
			cmd := exec.Command("go", "run", gen.Command+".go", "-help")
			output, err := cmd.CombinedOutput()
			if err != nil {
				log.Printf("Failed to get help for %s: %v", generatorName, err)
				return
			}

			fmt.Println(string(output))
			return
		}
	}

	log.Fatalf("Unknown generator: %s", generatorName)
}

func runGenerator(gen Generator, outputDir string, args []string) {
	fmt.Printf("Running %s generator...\n", gen.Name)

	// Prepare command arguments
	cmdArgs := []string{"run", gen.Command + ".go"}

	// Statements and scenarios write whole directories; the combined
	// generator writes a single file and takes -output instead
	switch gen.Name {
	case "statements", "scenarios":
		cmdArgs = append(cmdArgs, "-output-dir="+outputDir)
	case "combined":
		cmdArgs = append(cmdArgs, "-output="+filepath.Join(outputDir, "All_Statements_Combined.txt"))
	}

	// Add additional arguments passed from command line
	cmdArgs = append(cmdArgs, args...)

	// Execute the generator
	cmd := exec.Command("go", cmdArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		log.Fatalf("Failed to run %s generator: %v", gen.Name, err)
	}

	fmt.Printf("✓ %s generator completed successfully\n", gen.Name)
}

func generateAll(outputDir string) {
	fmt.Println("Generating comprehensive test dataset...")
	fmt.Println("======================================")
	fmt.Println()

	seed := time.Now().UnixNano()
	fmt.Printf("Using seed: %d\n\n", seed)

	// Create subdirectories
	dirs := []string{
		filepath.Join(outputDir, "statements"),
		filepath.Join(outputDir, "combined"),
		filepath.Join(outputDir, "scenarios"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	// Generate monthly statements
	fmt.Println("1. Generating monthly statement sets...")
	generateStatementSets(outputDir, seed)

	// Generate combined exports
	fmt.Println("\n2. Generating combined exports...")
	generateCombinedSets(outputDir, seed)

	// Generate scenarios
	fmt.Println("\n3. Generating scenario datasets...")
	generateScenarioSets(outputDir)

	// Generate documentation
	fmt.Println("\n4. Generating documentation...")
	generateDocumentation(outputDir)

	fmt.Println("\n✓ All generators completed successfully!")
	fmt.Printf("Generated files are in: %s\n", outputDir)
}

func generateStatementSets(outputDir string, seed int64) {
	stmtDir := filepath.Join(outputDir, "statements")

	sets := []struct {
		subdir    string
		months    int
		glueRatio float64
		desc      string
	}{
		{"quarter", 3, 0.3, "Three months with occasional glued amounts"},
		{"half_year", 6, 0.5, "Six months with frequent glued amounts"},
		{"full_year", 12, 0.0, "Twelve clean months"},
	}

	for _, set := range sets {
		fmt.Printf("  Generating %s (%s)...\n", set.subdir, set.desc)

		cmd := exec.Command("go", "run", "statement_generator.go",
			"-output-dir="+filepath.Join(stmtDir, set.subdir),
			"-months="+fmt.Sprintf("%d", set.months),
			"-glue-ratio="+fmt.Sprintf("%.2f", set.glueRatio),
			"-seed="+fmt.Sprintf("%d", seed),
		)

		if err := cmd.Run(); err != nil {
			log.Printf("Failed to generate %s: %v", set.subdir, err)
		}
	}
}

func generateCombinedSets(outputDir string, seed int64) {
	combinedDir := filepath.Join(outputDir, "combined")

	sets := []struct {
		name   string
		months int
		sparse bool
		desc   string
	}{
		{"All_Statements_2025.txt", 12, false, "Full-year combined export"},
		{"All_Statements_2025_sparse.txt", 12, true, "Sparse copy of the same year"},
	}

	for _, set := range sets {
		fmt.Printf("  Generating %s (%s)...\n", set.name, set.desc)

		cmd := exec.Command("go", "run", "combined_generator.go",
			"-output="+filepath.Join(combinedDir, set.name),
			"-months="+fmt.Sprintf("%d", set.months),
			"-sparse="+fmt.Sprintf("%t", set.sparse),
			"-seed="+fmt.Sprintf("%d", seed),
		)

		if err := cmd.Run(); err != nil {
			log.Printf("Failed to generate %s: %v", set.name, err)
		}
	}
}

func generateScenarioSets(outputDir string) {
	scenarioDir := filepath.Join(outputDir, "scenarios")

	fmt.Printf("  Generating all scenario datasets...\n")

	cmd := exec.Command("go", "run", "scenario_generator.go",
		"-output-dir="+scenarioDir,
		"-scenario=all",
	)

	if err := cmd.Run(); err != nil {
		log.Printf("Failed to generate scenarios: %v", err)
	}
}

func generateDocumentation(outputDir string) {
	docContent := `# Generated Test Data

This directory contains automatically generated test documents for the statement extraction service.

## Directory Structure

- **statements/**: Monthly statement text files, one statement per file
- **combined/**: Multi-statement export files, statements separated by page breaks
- **scenarios/**: Merge scenario sets with documented expected outcomes

## File Descriptions

### Statements
- quarter/: Three balance-chained months, 30% of Zelle amounts glued to confirmation codes
- half_year/: Six months with a higher glue ratio for resolver testing
- full_year/: Twelve clean months with no glued amounts

### Combined
- All_Statements_2025.txt: Twelve months in a single export
- All_Statements_2025_sparse.txt: The same months with most transactions dropped, for merge preference testing

### Scenarios
- duplicates/: Standalone monthly exports overlapping a combined export
- reissued/: The same statement exported twice
- unreadable/: A document with no recognizable text

Each scenario directory is documented in scenarios/README.md with the
merge command to run and the expected outcome.

## Usage

1. **Parser testing**: run ` + "`extractor parse`" + ` against files under statements/
2. **Merge testing**: run ` + "`extractor merge`" + ` across statements/ and combined/ together
3. **Deduplication testing**: use the scenario sets with known expected outcomes
4. **Resolver testing**: use half_year/ for glued Zelle confirmation codes

## Regeneration

To regenerate all test data:
` + "```bash\ngo run generate.go -generator=all\n```" + `

To generate specific datasets:
` + "```bash\ngo run generate.go -generator=statements -months=6\ngo run generate.go -generator=combined -sparse=true\ngo run generate.go -generator=scenarios -scenario=duplicates\n```" + `

Generated on: ` + time.Now().Format("2006-01-02 15:04:05") + `
`

	docPath := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(docPath, []byte(docContent), 0644); err != nil {
		log.Printf("Failed to write documentation: %v", err)
	} else {
		fmt.Printf("  Generated README.md\n")
	}
}
