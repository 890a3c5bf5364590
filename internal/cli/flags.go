package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/riskledger/internal/core/assessment"
	"github.com/example/riskledger/internal/wire"
)

// Global flag values, bound by AddGlobalFlags.
var (
	configPath string
	dbPath     string
	logLevel   string
	noColor    bool
)

// AddGlobalFlags registers the persistent flags on root and applies them
// before any subcommand runs.
func AddGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.riskledger/config.yaml, env RISKLEDGER_CONFIG)")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "Database file (overrides db_path)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides log_level)")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
		wire.Configure(wire.Settings{
			ConfigPath: configPath,
			DBPath:     dbPath,
			LogLevel:   logLevel,
		})
	}
}

// indicatorFlag turns a storage column such as "ps_government_legitimacy"
// into the flag name "ps-government-legitimacy".
func indicatorFlag(ind assessment.Indicator) string {
	return strings.ReplaceAll(ind.Column, "_", "-")
}

var noteFlags = []struct {
	name  string
	usage string
	field func(*assessment.Notes) *string
}{
	{"key-risk-factors", "Key risk factors (free text)", func(n *assessment.Notes) *string { return &n.KeyRiskFactors }},
	{"trend-analysis", "Trend analysis (free text)", func(n *assessment.Notes) *string { return &n.TrendAnalysis }},
	{"recommendations", "Recommendations (free text)", func(n *assessment.Notes) *string { return &n.Recommendations }},
}

// addIndicatorFlags registers one int flag per catalog indicator plus the
// note flags.
func addIndicatorFlags(cmd *cobra.Command) {
	for _, c := range assessment.Categories() {
		for _, ind := range c.Indicators {
			cmd.Flags().Int(indicatorFlag(ind), 0,
				fmt.Sprintf("%s / %s (%d-%d)", c.Label, ind.Label, assessment.MinRating, assessment.MaxRating))
		}
	}
	for _, nf := range noteFlags {
		cmd.Flags().String(nf.name, "", nf.usage)
	}
}

// applyIndicatorFlags copies every explicitly set indicator and note flag
// into ratings and notes. Unset flags leave existing values alone, so a
// missing indicator surfaces as a validation error rather than a zero.
func applyIndicatorFlags(cmd *cobra.Command, ratings assessment.Ratings, notes *assessment.Notes) error {
	for _, ind := range assessment.Indicators() {
		name := indicatorFlag(ind)
		if !cmd.Flags().Changed(name) {
			continue
		}
		v, err := cmd.Flags().GetInt(name)
		if err != nil {
			return err
		}
		ratings[ind.ID] = v
	}
	for _, nf := range noteFlags {
		if !cmd.Flags().Changed(nf.name) {
			continue
		}
		v, err := cmd.Flags().GetString(nf.name)
		if err != nil {
			return err
		}
		*nf.field(notes) = v
	}
	return nil
}
