package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/riskledger/internal/adapters/filesystem"
	"github.com/example/riskledger/internal/core/assessment"
	"github.com/example/riskledger/internal/ports/primary"
	"github.com/example/riskledger/internal/wire"
)

var saveCmd = &cobra.Command{
	Use:   "save [name]",
	Short: "Create or replace a country assessment",
	Long: `Save a country assessment. All 22 indicators must be rated 1-10.

Ratings come from one flag per indicator, or from a YAML document with
--file. Flags given alongside --file override the document's values, and
a name argument overrides the document's name.

Examples:
  riskledger save Colombia --ps-government-legitimacy 6 ... --im-drug-trade 8
  riskledger save --file colombia.yaml
  riskledger save "Costa Rica" --file template.yaml --se-law-enforcement 4`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		file, _ := cmd.Flags().GetString("file")

		req := primary.SaveAssessmentRequest{Ratings: assessment.Ratings{}}
		if file != "" {
			reqs, err := filesystem.ReadAssessments(file)
			if err != nil {
				return err
			}
			if len(reqs) != 1 {
				return fmt.Errorf("%s holds %d assessments; use 'riskledger import' for more than one", file, len(reqs))
			}
			req = reqs[0]
		}

		if len(args) == 1 {
			req.Name = args[0]
		}
		if req.Name == "" {
			return errors.New("a country name is required (argument or 'name' in --file)")
		}
		if err := applyIndicatorFlags(cmd, req.Ratings, &req.Notes); err != nil {
			return err
		}

		adapter, err := wire.AssessmentAdapter()
		if err != nil {
			return err
		}
		if err := adapter.Save(ctx, req); err != nil {
			if errors.Is(err, assessment.ErrValidation) && file == "" {
				return fmt.Errorf("%w\nrate every indicator with its flag; see 'riskledger save --help'", err)
			}
			return err
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show the threat report for a country",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		adapter, err := wire.AssessmentAdapter()
		if err != nil {
			return err
		}
		return adapter.Show(context.Background(), args[0])
	},
}

var reportCmd = &cobra.Command{
	Use:   "report [name]",
	Short: "Render the threat report for a country",
	Long: `Render the threat report for a stored country.

Examples:
  riskledger report Colombia
  riskledger report Colombia --format yaml > colombia-report.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		adapter, err := wire.AssessmentAdapter()
		if err != nil {
			return err
		}
		return adapter.Report(context.Background(), args[0], format)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List assessed countries with their threat level",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		adapter, err := wire.AssessmentAdapter()
		if err != nil {
			return err
		}
		return adapter.List(context.Background())
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a country assessment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		adapter, err := wire.AssessmentAdapter()
		if err != nil {
			return err
		}
		return adapter.Delete(context.Background(), args[0])
	},
}

func init() {
	addIndicatorFlags(saveCmd)
	saveCmd.Flags().StringP("file", "f", "", "Read the assessment from a YAML document")

	reportCmd.Flags().String("format", "text", "Output format: text or yaml")
}

// SaveCmd returns the save command
func SaveCmd() *cobra.Command {
	return saveCmd
}

// ShowCmd returns the show command
func ShowCmd() *cobra.Command {
	return showCmd
}

// ReportCmd returns the report command
func ReportCmd() *cobra.Command {
	return reportCmd
}

// ListCmd returns the list command
func ListCmd() *cobra.Command {
	return listCmd
}

// DeleteCmd returns the delete command
func DeleteCmd() *cobra.Command {
	return deleteCmd
}
