package audit

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/agentstation/utc"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/matchaudit/internal/matcher"
	"github.com/agentstation/matchaudit/pkg/artifacts"
	"github.com/agentstation/matchaudit/pkg/constants"
	"github.com/agentstation/matchaudit/pkg/errors"
	"github.com/agentstation/matchaudit/pkg/logging"
	"github.com/agentstation/matchaudit/pkg/quality"
)

// Auditor builds and audits every run under an output root, one task per
// run, with bounded parallelism.
type Auditor struct {
	workers   int
	tolerance float64
	fields    artifacts.Fields
	runs      *matcher.Selector
	logger    *zerolog.Logger
	now       func() utc.Time
}

// Option configures an Auditor.
type Option func(*Auditor) error

// WithWorkers bounds the number of runs evaluated at once. Zero means one
// per CPU.
func WithWorkers(n int) Option {
	return func(a *Auditor) error {
		if n < 0 {
			return errors.NewValidationError("workers", n, "must not be negative")
		}
		if n == 0 {
			n = runtime.NumCPU()
		}
		a.workers = n
		return nil
	}
}

// WithTolerance sets the absolute tolerance for numeric checks.
func WithTolerance(tolerance float64) Option {
	return func(a *Auditor) error {
		if tolerance < 0 || math.IsNaN(tolerance) || math.IsInf(tolerance, 0) {
			return errors.NewValidationError("tolerance", tolerance, "must be a non-negative number")
		}
		a.tolerance = tolerance
		return nil
	}
}

// WithFields sets the label source field names.
func WithFields(fields artifacts.Fields) Option {
	return func(a *Auditor) error {
		a.fields = fields.WithDefaults()
		return nil
	}
}

// WithRuns restricts Build and Audit to run ids matching any of the glob
// or regex patterns. No patterns selects every run.
func WithRuns(patterns ...string) Option {
	return func(a *Auditor) error {
		sel, err := matcher.New(patterns...)
		if err != nil {
			return errors.NewValidationError("runs", patterns, err.Error())
		}
		a.runs = sel
		return nil
	}
}

// WithLogger sets the logger. The context logger is used otherwise.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *Auditor) error {
		a.logger = logger
		return nil
	}
}

// WithClock overrides the generated_at clock.
func WithClock(now func() utc.Time) Option {
	return func(a *Auditor) error {
		a.now = now
		return nil
	}
}

// New returns an Auditor with the default tolerance and worker count.
func New(opts ...Option) (*Auditor, error) {
	a := &Auditor{
		workers:   constants.DefaultWorkers,
		tolerance: constants.DefaultTolerance,
		fields:    artifacts.DefaultFields(),
		now:       utc.Now,
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Tolerance returns the configured tolerance.
func (a *Auditor) Tolerance() float64 {
	return a.tolerance
}

// Fields returns the label source field names.
func (a *Auditor) Fields() artifacts.Fields {
	return a.fields
}

// Evaluate recomputes the single run at dir. Unlike Build and Audit, a
// missing run directory is an error.
func (a *Auditor) Evaluate(ctx context.Context, dir string) (*Recomputation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrCanceled, err)
	}
	ctx = a.context(ctx, "evaluate")
	run, err := artifacts.Load(dir, a.fields)
	if err != nil {
		return nil, err
	}
	a.warnings(ctx, run)
	rc := Recompute(run)
	logging.Ctx(logging.WithRun(ctx, run.Name.ID)).Debug().
		Bool("quality_available", rc.QualityAvailable()).
		Bool("discovery_available", rc.DiscoveryAvailable()).
		Msg("Evaluated run")
	return rc, nil
}

// QualityDocument wraps the quality report of rc for writing.
func (a *Auditor) QualityDocument(rc *Recomputation) quality.Document {
	return quality.Document{
		GeneratedAt: a.now(),
		RunID:       rc.Run.Name.ID,
		LabelField:  a.fields.Label,
		LabelSource: artifacts.Labels.Source(),
		Report:      rc.Quality,
	}
}

// Build recomputes every run under root and returns the emitted document.
func (a *Auditor) Build(ctx context.Context, root string) (Document, error) {
	ctx = a.context(ctx, "build")
	names, err := artifacts.Discover(root)
	if err != nil {
		return Document{}, err
	}
	names = a.runs.Filter(names)

	records := make([]Record, len(names))
	err = a.each(ctx, len(names), func(i int) {
		run := a.load(ctx, filepath.Join(root, names[i]))
		records[i] = BuildRunRecord(Recompute(run))
		logging.Ctx(ctx).Debug().Str("run_id", run.Name.ID).Str("run_status", records[i].RunStatus).Msg("Built run record")
	})
	if err != nil {
		return Document{}, err
	}
	return BuildSummary(root, records, a.now()), nil
}

// Audit reconciles every run of summary against the run directories under
// root. A flat single-run summary without a run id audits root itself.
// Failing runs do not make Audit return an error; see Report.Err.
func (a *Auditor) Audit(ctx context.Context, root string, summary *artifacts.Summary) (*Report, error) {
	if summary == nil {
		return nil, errors.NewValidationError("summary", nil, "emitted summary is required")
	}
	id := uuid.NewString()
	ctx = logging.WithAuditID(a.context(ctx, "audit"), id)

	ids := a.selected(summary.RunIDs())
	runs := make([]RunReport, len(ids))
	err := a.each(ctx, len(ids), func(i int) {
		dir := root
		if ids[i] != "" {
			dir = filepath.Join(root, ids[i])
		}
		emitted, _ := summary.Run(ids[i])
		runs[i] = a.auditOne(ctx, a.load(ctx, dir), emitted)
	})
	if err != nil {
		return nil, err
	}

	report := &Report{
		AuditID:     id,
		GeneratedAt: a.now(),
		OutputRoot:  root,
		Tolerance:   a.tolerance,
		Totals:      Tally(runs),
		Runs:        runs,
	}
	logging.Ctx(ctx).Info().
		Int("runs_total", report.Totals.RunsTotal).
		Int("runs_fail", report.Totals.RunsFail).
		Int("runs_skip", report.Totals.RunsSkip).
		Msg("Audit complete")
	return report, nil
}

// selected filters emitted run ids. The id-less entry of a flat summary is
// always kept.
func (a *Auditor) selected(ids []string) []string {
	if a.runs.All() {
		return ids
	}
	return slices.DeleteFunc(slices.Clone(ids), func(id string) bool { return id != "" && !a.runs.Match(id) })
}

func (a *Auditor) auditOne(ctx context.Context, run *artifacts.Run, emitted map[string]any) RunReport {
	ctx = logging.WithRun(ctx, run.Name.ID)
	logging.Ctx(ctx).Debug().Msg("Auditing run")

	report := AuditRun(run, emitted, a.tolerance)
	for _, c := range report.Failed() {
		logging.Ctx(logging.WithCheck(ctx, c.Name())).Warn().
			Interface("expected", c.Expected()).
			Interface("actual", c.Actual()).
			Str("source", c.Source()).
			Msg("Check failed")
	}
	logging.Ctx(ctx).Debug().Str("status", string(report.Status)).Msg("Audited run")
	return report
}

// load reads a run directory, standing in an absent run when it cannot.
func (a *Auditor) load(ctx context.Context, dir string) *artifacts.Run {
	run, err := artifacts.Load(dir, a.fields)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("dir", dir).Msg("Run directory unavailable")
		return artifacts.Absent(dir)
	}
	a.warnings(ctx, run)
	return run
}

func (a *Auditor) warnings(ctx context.Context, run *artifacts.Run) {
	for _, w := range run.Warnings {
		if errors.IsMalformedRow(w) {
			logging.Ctx(ctx).Debug().Err(w).Str("run_id", run.Name.ID).Msg("Skipped malformed row")
		}
	}
}

func (a *Auditor) context(ctx context.Context, operation string) context.Context {
	if a.logger != nil {
		ctx = logging.WithLogger(ctx, a.logger)
	}
	return logging.WithOperation(ctx, operation)
}

// each runs fn for every index with at most a.workers in flight. A
// cancelled context stops new tasks from starting; started tasks finish.
func (a *Auditor) each(ctx context.Context, n int, fn func(i int)) error {
	var g errgroup.Group
	g.SetLimit(a.workers)
	for i := range n {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrCanceled, err)
	}
	return nil
}
