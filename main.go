// =============================================================================
// Invoice Email Generator - Main Entry Point
// =============================================================================
//
// This is the entry point for the invoice email generator CLI. It
// initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   emailcreator generate <file>  - Generate email files from an invoice export
//   emailcreator validate <file>  - Run the pre-flight checks only
//   emailcreator view <file.eml>  - Inspect a generated email
//   emailcreator version          - Display the application version
//
// ARCHITECTURE:
//   cmd/        : CLI command definitions (Cobra)
//   internal/   : core pipeline (parsing, validation, grouping, assembly)
//   pkg/        : shared utilities
//
// =============================================================================

package main

import (
	"github.com/hamzanabiel/emailcreator/cmd"
)

func main() {
	cmd.Execute()
}
