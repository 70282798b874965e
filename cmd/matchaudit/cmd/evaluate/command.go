// Package evaluate implements the evaluate command: the quality report of
// one run directory.
package evaluate

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/matchaudit"
	"github.com/agentstation/matchaudit/cmd/application"
	"github.com/agentstation/matchaudit/internal/cmd/alerts"
	"github.com/agentstation/matchaudit/internal/cmd/output"
	"github.com/agentstation/matchaudit/internal/cmd/table"
	"github.com/agentstation/matchaudit/internal/report"
	"github.com/agentstation/matchaudit/pkg/kpi"
	"github.com/agentstation/matchaudit/pkg/quality"
)

// NewCommand creates the evaluate command.
func NewCommand(app application.Application) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:     "evaluate <run-dir>",
		GroupID: "core",
		Short:   "Score one run against its ground-truth labels",
		Long: `Evaluate compares the resolved entities of a run with the ground-truth
groups of its labelled records and reports pairwise precision, recall and
the entity size distributions.

With --write the report is stored next to the run's artifacts as
ground_truth_match_quality.json and .md, and discovery metrics computed
from input_source.json are merged into management_summary.json.`,
		Example: `  matchaudit evaluate output/20250101_120000
  matchaudit evaluate output/20250101_120000 -o markdown
  matchaudit evaluate output/20250101_120000 --write`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.ParseFormat(app.OutputFormat())
			if err != nil {
				return err
			}
			engine, err := app.Engine()
			if err != nil {
				return err
			}

			ev, err := engine.Evaluate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if write {
				if err := engine.WriteEvaluation(cmd.Context(), ev); err != nil {
					return err
				}
			}
			if err := output.NewFormatter(format).Format(cmd.OutOrStdout(), view{ev}); err != nil {
				return err
			}
			if write {
				return alerts.NewWriter(cmd.ErrOrStderr(), format).
					Write(alerts.NewSuccess("Wrote quality report to " + ev.Dir()))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "write the report next to the run's artifacts")
	return cmd
}

type payload struct {
	quality.Document `yaml:",inline"`

	KPIs kpi.Set `json:"kpis" yaml:"kpis"`
}

type view struct {
	ev *matchaudit.Evaluation
}

func (v view) Payload() any {
	return payload{Document: v.ev.Document, KPIs: v.ev.KPIs}
}

func (v view) Tables() []table.Data {
	return append(table.QualityToTableData(v.ev.Document), table.KPIsToTableData(v.ev.KPIs))
}

func (v view) Markdown(w io.Writer) error {
	return report.Quality(w, v.ev.Document)
}
