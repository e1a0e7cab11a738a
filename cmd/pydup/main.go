package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pydup/pydup/internal/version"
)

// Process exit codes. Finding clones is a successful scan; only
// --fail-on-clones turns findings into a failure.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var rootCmd = &cobra.Command{
	Use:   "pydup",
	Short: "Duplicate code detector for Python",
	Long: `pydup finds duplicated Python code by structural fingerprinting.

It reports four clone classes:
  • type1: identical code apart from whitespace and comments
  • type2: same structure with renamed identifiers or changed literals
  • type3: near-miss duplicates above a similarity threshold
  • type4: semantically similar code with different syntax

Results are ranked by severity, with refactoring priorities and a
per-file duplication breakdown.`,
	Version:       version.Short(),
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.AddCommand(NewScanCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return newUsageError(err)
	})
}

func main() {
	os.Exit(run())
}

// run executes the root command and maps failures to exit codes: bad usage
// exits 2, everything else that fails exits 1.
func run() int {
	err := rootCmd.Execute()
	if err == nil {
		return exitOK
	}

	var gate *cloneGateError
	if errors.As(err, &gate) {
		fmt.Fprintln(os.Stderr, gate.Error())
		return exitError
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var usage *usageError
	if errors.As(err, &usage) {
		return exitUsage
	}
	return exitError
}
