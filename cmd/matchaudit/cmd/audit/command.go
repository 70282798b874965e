// Package audit implements the audit command, which reconciles an emitted
// summary against a fresh recomputation of every run.
package audit

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/matchaudit"
	"github.com/agentstation/matchaudit/cmd/application"
	"github.com/agentstation/matchaudit/internal/cmd/alerts"
	"github.com/agentstation/matchaudit/internal/cmd/output"
	"github.com/agentstation/matchaudit/internal/cmd/table"
	"github.com/agentstation/matchaudit/internal/report"
	"github.com/agentstation/matchaudit/pkg/audit"
	"github.com/agentstation/matchaudit/pkg/constants"
)

// Flags holds the audit command flags.
type Flags struct {
	Tolerance  float64
	ReportJSON string
	ReportMD   string
}

// NewCommand creates the audit command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "audit",
		GroupID: "core",
		Short:   "Reconcile the dashboard summary against the run artifacts",
		Long: `Audit recomputes every run under the output root and compares each KPI,
distribution and total in the emitted summary against the recomputed
value. Numbers match within --tolerance; missing artifacts skip the checks
that need them.

The audit report is written as JSON and Markdown. The command exits
non-zero when any run fails.`,
		Example: `  matchaudit audit
  matchaudit audit --summary dashboard/data.js --tolerance 0.05
  matchaudit audit --report-json "" -o markdown`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := output.ParseFormat(app.OutputFormat())
			if err != nil {
				return err
			}

			var opts []matchaudit.Option
			if cmd.Flags().Changed("tolerance") {
				opts = append(opts, matchaudit.WithTolerance(flags.Tolerance))
			}
			engine, err := app.Engine(opts...)
			if err != nil {
				return err
			}

			r, err := engine.Audit(cmd.Context())
			if err != nil {
				return err
			}
			rerun := Rerun(engine.OutputRoot(), engine.SummaryPath(), engine.Tolerance())
			if err := engine.WriteAuditReport(r, flags.ReportJSON, flags.ReportMD, rerun); err != nil {
				return err
			}
			app.Logger().Info().
				Str("audit_id", r.AuditID).
				Int("runs_pass", r.Totals.RunsPass).
				Int("runs_fail", r.Totals.RunsFail).
				Int("runs_skip", r.Totals.RunsSkip).
				Msg("Audit complete")

			if err := output.NewFormatter(format).Format(cmd.OutOrStdout(), view{r, rerun}); err != nil {
				return err
			}
			if err := alerts.NewWriter(cmd.ErrOrStderr(), format).Write(outcome(r)); err != nil {
				return err
			}
			return r.Err()
		},
	}

	cmd.Flags().Float64Var(&flags.Tolerance, "tolerance", constants.DefaultTolerance, "absolute tolerance for numeric comparisons")
	cmd.Flags().StringVar(&flags.ReportJSON, "report-json", constants.DefaultAuditReportJSON, "audit report file, JSON or YAML by extension (empty to skip)")
	cmd.Flags().StringVar(&flags.ReportMD, "report-md", constants.DefaultAuditReportMarkdown, "audit report Markdown file (empty to skip)")
	return cmd
}

// outcome summarises r as one alert.
func outcome(r *audit.Report) *alerts.Alert {
	t := r.Totals
	if t.RunsFail > 0 {
		a := alerts.NewError(fmt.Sprintf("%d of %d runs failed", t.RunsFail, t.RunsTotal))
		for _, run := range r.Runs {
			if run.Status == audit.StatusFail {
				a.WithDetails(fmt.Sprintf("%s: %d failed checks", run.RunID, len(run.Failed())))
			}
		}
		return a
	}
	if t.RunsTotal > 0 && t.RunsSkip == t.RunsTotal {
		return alerts.NewWarning(fmt.Sprintf("All %d runs skipped", t.RunsTotal))
	}
	return alerts.NewSuccess(fmt.Sprintf("%d runs passed, %d skipped", t.RunsPass, t.RunsSkip))
}

// Rerun returns the command line that repeats an audit.
func Rerun(outputRoot, summaryPath string, tolerance float64) string {
	return fmt.Sprintf("matchaudit audit --output-root %s --summary %s --tolerance %s",
		strconv.Quote(outputRoot), strconv.Quote(summaryPath), strconv.FormatFloat(tolerance, 'g', -1, 64))
}

type view struct {
	r     *audit.Report
	rerun string
}

func (v view) Payload() any { return v.r }

func (v view) Tables() []table.Data { return table.AuditToTableData(v.r) }

func (v view) Markdown(w io.Writer) error { return report.Audit(w, v.r, v.rerun) }
