package audit

import (
	"github.com/agentstation/utc"

	"github.com/agentstation/matchaudit/pkg/artifacts"
	"github.com/agentstation/matchaudit/pkg/errors"
	"github.com/agentstation/matchaudit/pkg/kpi"
	"github.com/agentstation/matchaudit/pkg/quality"
)

// RunReport is the audit of one run. It is built once and never mutated.
type RunReport struct {
	RunID           string            `json:"run_id" yaml:"run_id"`
	RunLabel        string            `json:"run_label,omitempty" yaml:"run_label,omitempty"`
	SourceInputName string            `json:"source_input_name,omitempty" yaml:"source_input_name,omitempty"`
	RunStatus       string            `json:"run_status" yaml:"run_status"`
	Status          Status            `json:"overall_status" yaml:"overall_status"`
	Confusion       quality.Confusion `json:"confusion" yaml:"confusion"`
	KPIs            kpi.Set           `json:"kpis" yaml:"kpis"`
	Checks          []Check           `json:"checks" yaml:"checks"`
}

// Failed returns the failing checks.
func (r RunReport) Failed() []Check {
	var out []Check
	for _, c := range r.Checks {
		if c.Status() == StatusFail {
			out = append(out, c)
		}
	}
	return out
}

// AuditRun reconciles emitted values for one run against its artifacts.
// emitted may be nil, in which case every check skips.
func AuditRun(run *artifacts.Run, emitted map[string]any, tolerance float64) RunReport {
	return auditRecomputed(Recompute(run), emitted, tolerance)
}

// A run whose evaluation universe is empty cannot be evaluated and is SKIP
// whatever its input counts say.
func auditRecomputed(rc *Recomputation, emitted map[string]any, tolerance float64) RunReport {
	checks := rc.Checks(emitted, tolerance)
	status := RunStatus(checks)
	if rc.Quality.Empty() {
		status = StatusSkip
	}
	return RunReport{
		RunID:           rc.Run.Name.ID,
		RunLabel:        rc.Run.Label(),
		SourceInputName: rc.Run.SourceInputName(),
		RunStatus:       RunStatusOf(rc.Run),
		Status:          status,
		Confusion:       rc.Quality.PairMetrics.Confusion,
		KPIs:            rc.KPIs,
		Checks:          checks,
	}
}

// Totals counts audited runs by status.
type Totals struct {
	RunsTotal int `json:"runs_total" yaml:"runs_total"`
	RunsPass  int `json:"runs_pass" yaml:"runs_pass"`
	RunsFail  int `json:"runs_fail" yaml:"runs_fail"`
	RunsSkip  int `json:"runs_skip" yaml:"runs_skip"`
}

// Tally counts run reports by status.
func Tally(runs []RunReport) Totals {
	t := Totals{RunsTotal: len(runs)}
	for _, r := range runs {
		switch r.Status {
		case StatusPass:
			t.RunsPass++
		case StatusFail:
			t.RunsFail++
		case StatusSkip:
			t.RunsSkip++
		}
	}
	return t
}

// Report is the result of auditing a batch of runs.
type Report struct {
	AuditID     string      `json:"audit_id" yaml:"audit_id"`
	GeneratedAt utc.Time    `json:"generated_at" yaml:"generated_at"`
	OutputRoot  string      `json:"output_root" yaml:"output_root"`
	SummaryPath string      `json:"summary_path,omitempty" yaml:"summary_path,omitempty"`
	Tolerance   float64     `json:"tolerance" yaml:"tolerance"`
	Totals      Totals      `json:"summary" yaml:"summary"`
	Runs        []RunReport `json:"runs" yaml:"runs"`
}

// FailedCheck is a failing check with the run it belongs to.
type FailedCheck struct {
	RunID string
	Check Check
}

// Failed lists every failing check in run order.
func (r *Report) Failed() []FailedCheck {
	var out []FailedCheck
	for _, run := range r.Runs {
		for _, c := range run.Failed() {
			out = append(out, FailedCheck{RunID: run.RunID, Check: c})
		}
	}
	return out
}

// Err returns an AuditFailedError when any run failed.
func (r *Report) Err() error {
	if r.Totals.RunsFail == 0 {
		return nil
	}
	var ids []string
	for _, run := range r.Runs {
		if run.Status == StatusFail {
			ids = append(ids, run.RunID)
		}
	}
	return errors.NewAuditFailedError(r.Totals.RunsFail, r.Totals.RunsTotal, ids)
}
