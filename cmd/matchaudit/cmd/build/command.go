// Package build implements the build command, which recomputes every run
// and writes the emitted summary.
package build

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/matchaudit/cmd/application"
	"github.com/agentstation/matchaudit/internal/cmd/alerts"
	"github.com/agentstation/matchaudit/internal/cmd/output"
	"github.com/agentstation/matchaudit/internal/cmd/table"
	"github.com/agentstation/matchaudit/pkg/audit"
)

// NewCommand creates the build command.
func NewCommand(app application.Application) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:     "build",
		GroupID: "core",
		Short:   "Recompute all runs and write the dashboard summary",
		Long: `Build walks the output root, recomputes the KPIs of every run directory
from its artifacts and writes the per-run records with the cross-run
summary. The output format follows the file extension: .js files get a
window assignment, .json and .yaml are written as plain documents.`,
		Example: `  matchaudit build
  matchaudit build --output-root output --out dashboard/data.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := output.ParseFormat(app.OutputFormat())
			if err != nil {
				return err
			}
			engine, err := app.Engine()
			if err != nil {
				return err
			}

			doc, err := engine.Build(cmd.Context())
			if err != nil {
				return err
			}
			if out == "" {
				out = engine.SummaryPath()
			}
			if err := engine.WriteSummary(doc, out); err != nil {
				return err
			}
			app.Logger().Info().
				Str("path", out).
				Int("runs", len(doc.Runs)).
				Msg("Wrote summary")

			if err := output.NewFormatter(format).Format(cmd.OutOrStdout(), view{doc}); err != nil {
				return err
			}
			return alerts.NewWriter(cmd.ErrOrStderr(), format).
				Write(alerts.NewSuccess(fmt.Sprintf("Wrote summary of %d runs to %s", len(doc.Runs), out)))
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "summary file to write (default is the configured --summary)")
	return cmd
}

type view struct {
	doc audit.Document
}

func (v view) Payload() any { return v.doc }

func (v view) Tables() []table.Data {
	return []table.Data{table.RecordsToTableData(v.doc.Runs), table.SummaryToTableData(v.doc.Summary)}
}
