package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/riskledger/internal/cli"
	"github.com/example/riskledger/internal/version"
	"github.com/example/riskledger/internal/wire"
)

func main() {
	os.Exit(run())
}

// run executes the root command. Cleanup is deferred here rather than in a
// cobra post-run hook, which is skipped when a command fails.
func run() int {
	rootCmd := &cobra.Command{
		Use:     "riskledger",
		Short:   "Riskledger - country threat assessments",
		Version: version.String(),
		Long: `Riskledger rates countries on 22 indicators in five categories,
computes a weighted 1-10 threat score and level, and keeps the
assessments in a local SQLite ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cli.AddGlobalFlags(rootCmd)

	// Assessment commands
	rootCmd.AddCommand(cli.SaveCmd())
	rootCmd.AddCommand(cli.ShowCmd())
	rootCmd.AddCommand(cli.ReportCmd())
	rootCmd.AddCommand(cli.ListCmd())
	rootCmd.AddCommand(cli.DeleteCmd())

	// Transfer
	rootCmd.AddCommand(cli.ExportCmd())
	rootCmd.AddCommand(cli.ImportCmd())

	rootCmd.AddCommand(cli.DoctorCmd())

	defer func() {
		if err := wire.Close(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
