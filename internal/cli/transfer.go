package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/riskledger/internal/adapters/filesystem"
	"github.com/example/riskledger/internal/wire"
)

var exportCmd = &cobra.Command{
	Use:   "export [name...]",
	Short: "Export assessments as YAML",
	Long: `Export stored assessments as a YAML list, all of them when no names
are given. The output can be fed back to 'riskledger import'.

Examples:
  riskledger export > backup.yaml
  riskledger export Colombia Peru --out andes.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		adapter, err := wire.AssessmentAdapter()
		if err != nil {
			return err
		}
		return adapter.Export(context.Background(), args, out)
	},
}

var importCmd = &cobra.Command{
	Use:   "import [path]",
	Short: "Import assessments from a YAML file",
	Long: `Import one or more assessments from a YAML file (a single document,
a list, or several '---' separated documents). Existing names are replaced.
Every entry is validated first; if any is invalid nothing is saved.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reqs, err := filesystem.ReadAssessments(args[0])
		if err != nil {
			return err
		}
		adapter, err := wire.AssessmentAdapter()
		if err != nil {
			return err
		}
		return adapter.Import(context.Background(), reqs)
	},
}

func init() {
	exportCmd.Flags().StringP("out", "o", "", "Write to this file instead of stdout")
}

// ExportCmd returns the export command
func ExportCmd() *cobra.Command {
	return exportCmd
}

// ImportCmd returns the import command
func ImportCmd() *cobra.Command {
	return importCmd
}
