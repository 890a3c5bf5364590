package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/example/riskledger/internal/core/scoring"
	"github.com/example/riskledger/internal/db"
	"github.com/example/riskledger/internal/version"
	"github.com/example/riskledger/internal/wire"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Value   string
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for environment validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate riskledger configuration and database",
		Long: `Health check for riskledger.

Reports:
- Config file in use and the effective weights
- Database path and schema version
- Number of stored assessments

Examples:
  riskledger doctor              # Run full health check
  riskledger doctor --quiet      # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := runChecks(context.Background())

			hasErrors := false
			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
					break
				}
			}

			if !quiet {
				printResults(cmd.OutOrStdout(), results, hasErrors)
			}

			if hasErrors {
				return fmt.Errorf("environment validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode - exit code only")

	return cmd
}

func runChecks(ctx context.Context) []CheckResult {
	results := []CheckResult{{Name: "Version", Status: "✓", Value: version.String()}}

	cfg, err := wire.Config()
	if err != nil {
		return append(results, CheckResult{Name: "Config", Status: "✗", Details: "  " + err.Error()})
	}
	source := cfg.Source
	if source == "" {
		source = "(defaults)"
	}
	results = append(results, CheckResult{Name: "Config", Status: "✓", Value: source})
	results = append(results, checkWeights(cfg.Weights, cfg.ScoringConfig))

	database, err := wire.Database()
	if err != nil {
		return append(results, CheckResult{Name: "Database", Status: "✗", Value: cfg.DBPath, Details: "  " + err.Error()})
	}
	results = append(results, CheckResult{Name: "Database", Status: "✓", Value: cfg.DBPath})
	results = append(results, checkSchema(database))

	service, err := wire.AssessmentService()
	if err != nil {
		return append(results, CheckResult{Name: "Records", Status: "✗", Details: "  " + err.Error()})
	}
	n, err := service.CountAssessments(ctx)
	if err != nil {
		return append(results, CheckResult{Name: "Records", Status: "✗", Details: "  " + err.Error()})
	}
	return append(results, CheckResult{Name: "Records", Status: "✓", Value: fmt.Sprintf("%d assessments", n)})
}

func checkWeights(weights map[string]float64, build func() (scoring.Config, error)) CheckResult {
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	var value string
	for i, name := range names {
		if i > 0 {
			value += " "
		}
		value += fmt.Sprintf("%s=%g", name, weights[name])
	}

	sc, err := build()
	if err == nil {
		_, err = scoring.NewEngine(sc)
	}
	if err != nil {
		return CheckResult{Name: "Weights", Status: "✗", Value: value, Details: "  " + err.Error()}
	}
	return CheckResult{Name: "Weights", Status: "✓", Value: value}
}

func checkSchema(database *sql.DB) CheckResult {
	v, dirty, err := db.SchemaVersion(database)
	if err != nil {
		return CheckResult{Name: "Schema", Status: "✗", Details: "  " + err.Error()}
	}
	if dirty {
		return CheckResult{
			Name:    "Schema",
			Status:  "✗",
			Value:   fmt.Sprintf("version %d (dirty)", v),
			Details: "  A migration failed part way; restore the database from an export",
		}
	}
	return CheckResult{Name: "Schema", Status: "✓", Value: fmt.Sprintf("version %d", v)}
}

func printResults(out io.Writer, results []CheckResult, hasErrors bool) {
	// Print compact table
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Check              Status  Value")
	fmt.Fprintln(out, "──────────────────────────────────────────────")
	for _, r := range results {
		fmt.Fprintf(out, "%-18s %-7s %s\n", r.Name, r.Status, r.Value)
	}
	fmt.Fprintln(out)

	// Print details for non-passing checks
	hasDetails := false
	for _, r := range results {
		if r.Status != "✓" && r.Details != "" {
			if !hasDetails {
				fmt.Fprintln(out, "Details:")
				hasDetails = true
			}
			fmt.Fprintf(out, "\n%s:\n%s\n", r.Name, r.Details)
		}
	}

	if hasErrors {
		fmt.Fprintln(out, "\n⚠ Issues found.")
	} else {
		fmt.Fprintln(out, "All checks passed.")
	}
}
