// =============================================================================
// Invoice Email Generator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command the subcommands are attached to.
//
// COBRA CLI STRUCTURE:
//   emailcreator
//   ├── generate  (emailcreator generate invoices.csv)
//   ├── validate  (emailcreator validate invoices.csv)
//   ├── view      (emailcreator view output/Acme_0001.eml)
//   └── version
//
// The root command owns the global flags (--config, --verbose) and the
// logging setup shared by all subcommands.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hamzanabiel/emailcreator/internal/config"
)

// cfgFile holds the path to the configuration file, overridable with --config.
var cfgFile string

// verbose forces debug-level logging regardless of the configured level.
var verbose bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "emailcreator",
	Short: "Generate invoice emails with attachments from CSV/XLSX data",
	Long: `emailcreator turns a tabular invoice export (CSV or XLSX) into ready-to-send
email files. Rows that share a group value are merged into one multi-invoice
email; all other rows become individual emails.

Each generated email carries the rendered HTML body and the invoice documents
listed in the attachment column. Output is written as .eml files that open in
any mail client.

Example Usage:
  emailcreator generate invoices.csv
  emailcreator generate invoices.xlsx --config billing.yaml
  emailcreator validate invoices.csv
  emailcreator view output/Acme_0001_20250114_093015.eml`,

	Run: func(cmd *cobra.Command, args []string) {
		// No subcommand: print help.
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once from main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&cfgFile,
		"config", "c",
		"config/config.yaml",
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose", "v",
		false,
		"Enable verbose output for debugging",
	)
}

// loadConfig loads the configuration file, falling back to built-in
// defaults when the default config path does not exist and the operator did
// not ask for a specific file.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		if !rootCmd.PersistentFlags().Changed("config") {
			return config.Default(), nil
		}
		return nil, fmt.Errorf("configuration file not found: %s", cfgFile)
	}
	return config.Load(cfgFile)
}

// setupLogging builds the logger from the logging section: optional log
// file (appended), optional console mirror, configured level. --verbose
// wins over the configured level.
func setupLogging(cfg *config.Config) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Logging.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	if verbose {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	var outputs []io.Writer
	if *cfg.Logging.Console {
		outputs = append(outputs, os.Stderr)
	}
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v\n", cfg.Logging.File, err)
		} else {
			outputs = append(outputs, f)
		}
	}

	switch len(outputs) {
	case 0:
		log.SetOutput(io.Discard)
	case 1:
		log.SetOutput(outputs[0])
	default:
		log.SetOutput(io.MultiWriter(outputs...))
	}

	return log
}
