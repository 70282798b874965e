package report

import (
	"fmt"
	"io"

	"github.com/agentstation/matchaudit/pkg/audit"
	"github.com/agentstation/matchaudit/pkg/constants"
	"github.com/agentstation/matchaudit/pkg/histogram"
)

// Audit renders a batch audit report. rerun, when set, is shown as the
// command that reproduces the audit.
func Audit(w io.Writer, r *audit.Report, rerun string) error {
	b := NewBuilder(w)
	b.H1("Summary Audit Report")
	b.Bullets(
		"Audit ID: "+Code(r.AuditID),
		"Generated at: "+r.GeneratedAt.Time.Format(constants.TimeFormatHuman),
		"Output root: "+Code(r.OutputRoot),
		"Summary: "+Code(orDash(r.SummaryPath)),
		fmt.Sprintf("Tolerance: %g", r.Tolerance),
		fmt.Sprintf("Runs audited: %d", r.Totals.RunsTotal),
		fmt.Sprintf("Runs PASS: %d", r.Totals.RunsPass),
		fmt.Sprintf("Runs FAIL: %d", r.Totals.RunsFail),
		fmt.Sprintf("Runs SKIP: %d", r.Totals.RunsSkip),
	)

	b.H2("Run Summary")
	rows := make([][]string, 0, len(r.Runs))
	for _, run := range r.Runs {
		rows = append(rows, []string{Code(run.RunID), orDash(run.SourceInputName), run.RunStatus, Bold(string(run.Status))})
	}
	if len(rows) == 0 {
		b.Text("No runs audited.")
	} else {
		b.Table([]string{"Run ID", "Source Input", "Run Status", "Audit"}, rows)
	}

	b.H2("Failed Checks")
	failed := r.Failed()
	if len(failed) == 0 {
		b.Text("No failed checks.")
	} else {
		rows = make([][]string, 0, len(failed))
		for _, f := range failed {
			rows = append(rows, []string{
				Code(f.RunID),
				f.Check.Name(),
				Value(f.Check.Expected()),
				Value(f.Check.Actual()),
				Code(f.Check.Source()),
			})
		}
		b.Table([]string{"Run ID", "Check", "Expected", "Recomputed", "Source"}, rows)
	}

	if rerun != "" {
		b.H2("Re-run")
		b.CodeBlock("bash", rerun)
	}
	return b.Build()
}

// Value formats a check value for display.
func Value(v any) string {
	switch x := v.(type) {
	case nil:
		return "n/a"
	case float64:
		return fmt.Sprintf("%.2f", x)
	case histogram.Histogram[int]:
		return fmt.Sprint(x.Map())
	}
	return fmt.Sprint(v)
}
