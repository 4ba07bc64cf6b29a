// =============================================================================
// Invoice Email Generator - Validate Command
// =============================================================================
//
// This file defines the 'validate' command: a validation-only pass over the
// input file. Useful before a big batch: it runs the exact checks the
// generate command runs, prints every finding, and exits non-zero when
// errors exist, without producing any output files.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hamzanabiel/emailcreator/internal/pipeline"
	"github.com/hamzanabiel/emailcreator/internal/validation"
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate <input-file>",
	Short: "Validate an invoice export without generating emails",
	Long: `The validate command parses the input file and runs the pre-flight checks:
required fields, address syntax, and attachment existence. Every finding is
printed with its source row number. Nothing is generated or modified.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(inputPath string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	fmt.Printf("Reading input file: %s\n", inputPath)
	records, err := pipeline.LoadRecords(inputPath, cfg)
	if err != nil {
		return fmt.Errorf("failed to load input: %w", err)
	}
	fmt.Printf("Loaded %d row(s)\n", len(records))

	report := validation.New(cfg).Validate(records)

	for _, f := range report.Errors {
		fmt.Printf("  ✗ Row %d: %s\n", f.RowNumber, f.Message)
	}
	for _, f := range report.Warnings {
		fmt.Printf("  ! Row %d: %s\n", f.RowNumber, f.Message)
	}

	if report.HasErrors() {
		fmt.Printf("\nValidation failed: %d error(s), %d warning(s)\n",
			len(report.Errors), len(report.Warnings))
		os.Exit(1)
	}

	fmt.Printf("\nValidation passed with %d warning(s)\n", len(report.Warnings))
	return nil
}
