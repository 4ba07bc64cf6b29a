// =============================================================================
// Invoice Email Generator - Generate Command
// =============================================================================
//
// This file defines the 'generate' command, the main command of the tool.
//
// COMMAND USAGE:
//   emailcreator generate <input-file> [flags]
//
// FLAGS:
//   --skip-validation : Bypass the pre-flight checks entirely
//   --yes             : Proceed despite validation errors without prompting
//   --dry-run         : Run the full pipeline but keep artifacts in memory
//   --format          : Output format override (auto, eml, msg)
//   --output          : Output directory override
//
// PIPELINE:
//   1. Load configuration and parse the input file into records
//   2. Validate (unless skipped); errors gate behind a confirmation prompt
//   3. Group records into email units
//   4. Per unit: render body, assemble the message, write the artifact
//   5. Print a summary; failures never abort the remaining units
//
// =============================================================================

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hamzanabiel/emailcreator/internal/pipeline"
	"github.com/hamzanabiel/emailcreator/internal/render"
	"github.com/hamzanabiel/emailcreator/internal/sink"
	"github.com/hamzanabiel/emailcreator/internal/types"
)

// skipValidation bypasses the validation stage entirely.
var skipValidation bool

// assumeYes answers the "continue despite errors?" prompt with yes.
var assumeYes bool

// genDryRun keeps artifacts in memory instead of writing files.
var genDryRun bool

// formatOverride overrides email.format from the configuration.
var formatOverride string

// outputOverride overrides paths.output from the configuration.
var outputOverride string

// generateCmd represents the 'generate' command.
var generateCmd = &cobra.Command{
	Use:   "generate <input-file>",
	Short: "Generate email files from an invoice CSV/XLSX export",
	Long: `The generate command parses the input file, validates it, groups rows into
emails and writes one message file per email into the output directory.

Rows sharing a non-empty group value are merged into a single multi-invoice
email addressed to the first row's recipients. Validation problems are shown
up front; you decide whether to continue, or pass --skip-validation to skip
the checks altogether. A failure in one email never stops the others.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(args[0])
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().BoolVar(&skipValidation, "skip-validation", false,
		"Skip validation checks")
	generateCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false,
		"Proceed despite validation errors without prompting")
	generateCmd.Flags().BoolVar(&genDryRun, "dry-run", false,
		"Run the pipeline without writing output files")
	generateCmd.Flags().StringVar(&formatOverride, "format", "",
		"Output format: auto, eml or msg (overrides the configuration)")
	generateCmd.Flags().StringVarP(&outputOverride, "output", "o", "",
		"Output directory (overrides the configuration)")
}

// runGenerate executes the full generation pipeline for one input file.
func runGenerate(inputPath string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if formatOverride != "" {
		cfg.Email.Format = formatOverride
	}
	if outputOverride != "" {
		cfg.Paths.Output = outputOverride
	}

	log := setupLogging(cfg)

	fmt.Printf("Reading input file: %s\n", inputPath)
	records, err := pipeline.LoadRecords(inputPath, cfg)
	if err != nil {
		return fmt.Errorf("failed to load input: %w", err)
	}
	fmt.Printf("Loaded %d row(s)\n", len(records))

	renderer, err := render.NewFromFile(cfg.Paths.Template)
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	var out sink.Sink
	if genDryRun {
		fmt.Println("Dry run: no files will be written")
		out = sink.NewBufferSink()
	} else {
		out = sink.Select(cfg.Email.Format, cfg.Paths.Output, log)
	}

	driver := pipeline.New(cfg, renderer, out, confirmProceed, log)

	result, err := driver.Run(records, skipValidation)
	if err != nil {
		if errors.Is(err, pipeline.ErrAborted) {
			fmt.Println("Aborted.")
			os.Exit(1)
		}
		return err
	}

	printSummary(result, cfg.Paths.Output, genDryRun)

	if len(result.Failed) > 0 {
		os.Exit(1)
	}
	return nil
}

// confirmProceed is the interactive validation gate. --yes short-circuits
// it for unattended runs.
func confirmProceed(report *types.ValidationReport) bool {
	printReport(report)

	if assumeYes {
		fmt.Println("Continuing (--yes).")
		return true
	}

	fmt.Print("\nContinue anyway? (y/N): ")
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}

// printReport lists the findings, capped the way the operator expects from
// a terminal tool: the first ten of each severity plus a count.
func printReport(report *types.ValidationReport) {
	const limit = 10

	if len(report.Errors) > 0 {
		fmt.Printf("\nValidation errors (%d):\n", len(report.Errors))
		for i, f := range report.Errors {
			if i == limit {
				fmt.Printf("  ... and %d more\n", len(report.Errors)-limit)
				break
			}
			fmt.Printf("  ✗ Row %d: %s\n", f.RowNumber, f.Message)
		}
	}
	if len(report.Warnings) > 0 {
		fmt.Printf("\nValidation warnings (%d):\n", len(report.Warnings))
		for i, f := range report.Warnings {
			if i == limit {
				fmt.Printf("  ... and %d more\n", len(report.Warnings)-limit)
				break
			}
			fmt.Printf("  ! Row %d: %s\n", f.RowNumber, f.Message)
		}
	}
}

// printSummary reports the run outcome.
func printSummary(result *types.GenerationResult, outputDir string, dryRun bool) {
	fmt.Println("\n=== Generation Complete ===")
	fmt.Printf("Succeeded: %d\n", len(result.Succeeded))
	fmt.Printf("Failed:    %d\n", len(result.Failed))

	if !dryRun {
		if abs, err := filepath.Abs(outputDir); err == nil {
			fmt.Printf("Output:    %s\n", abs)
		}
	}

	const limit = 10
	if n := len(result.Succeeded); n > 0 {
		fmt.Println("\nGenerated files:")
		for i, id := range result.Succeeded {
			if i == limit {
				fmt.Printf("  ... and %d more\n", n-limit)
				break
			}
			fmt.Printf("  ✓ %s\n", filepath.Base(id))
		}
	}

	for _, f := range result.Failed {
		fmt.Printf("  ✗ %s: %v\n", f.Descriptor, f.Err)
	}
}
