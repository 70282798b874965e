package matchaudit

import (
	"bytes"
	"context"
	"fmt"

	"github.com/agentstation/matchaudit/internal/report"
	"github.com/agentstation/matchaudit/pkg/artifacts"
	"github.com/agentstation/matchaudit/pkg/audit"
	"github.com/agentstation/matchaudit/pkg/errors"
	"github.com/agentstation/matchaudit/pkg/kpi"
	"github.com/agentstation/matchaudit/pkg/logging"
	"github.com/agentstation/matchaudit/pkg/quality"
)

// Engine evaluates, builds and audits the runs under one output root.
// It holds no per-call state and is safe for concurrent use.
type Engine struct {
	cfg     *config
	auditor *audit.Auditor
}

// New creates an Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	auditor, err := audit.New(
		audit.WithWorkers(cfg.workers),
		audit.WithTolerance(cfg.tolerance),
		audit.WithFields(cfg.fields),
		audit.WithRuns(cfg.runs...),
		audit.WithLogger(cfg.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}
	return &Engine{cfg: cfg, auditor: auditor}, nil
}

// OutputRoot returns the configured output root.
func (e *Engine) OutputRoot() string {
	return e.cfg.outputRoot
}

// SummaryPath returns the configured emitted summary path.
func (e *Engine) SummaryPath() string {
	return e.cfg.summaryPath
}

// Tolerance returns the configured numeric tolerance.
func (e *Engine) Tolerance() float64 {
	return e.auditor.Tolerance()
}

// Evaluation is the quality evaluation of one run.
type Evaluation struct {
	Document quality.Document
	KPIs     kpi.Set

	rc *audit.Recomputation
}

// Dir returns the evaluated run directory.
func (ev *Evaluation) Dir() string {
	return ev.rc.Run.Dir
}

// Discovery returns the freshly computed discovery metrics. Available is
// false when the run's source records could not supply them.
func (ev *Evaluation) Discovery() kpi.Discovery {
	return ev.rc.Discovery
}

// Evaluate scores the run at dir against its ground-truth labels.
func (e *Engine) Evaluate(ctx context.Context, dir string) (*Evaluation, error) {
	rc, err := e.auditor.Evaluate(ctx, dir)
	if err != nil {
		return nil, errors.WrapResource("evaluate", "run", dir, err)
	}
	return &Evaluation{Document: e.auditor.QualityDocument(rc), KPIs: rc.KPIs, rc: rc}, nil
}

// WriteEvaluation writes the quality report next to the run's artifacts as
// JSON and Markdown, and records fresh discovery metrics in the run's
// management summary.
func (e *Engine) WriteEvaluation(ctx context.Context, ev *Evaluation) error {
	var md bytes.Buffer
	if err := report.Quality(&md, ev.Document); err != nil {
		return errors.WrapResource("render", "quality report", ev.Document.RunID, err)
	}
	if err := artifacts.WriteQuality(ev.Dir(), ev.Document, md.Bytes()); err != nil {
		return err
	}
	logger := logging.Ctx(logging.WithRun(ctx, ev.Document.RunID))
	logger.Info().Str("dir", ev.Dir()).Msg("Wrote quality report")

	if d := ev.Discovery(); d.Available {
		if err := artifacts.MergeDiscovery(ev.Dir(), d); err != nil {
			return err
		}
		logger.Info().Int("known_pairs", d.KnownPairs).Msg("Updated discovery metrics")
	}
	return nil
}

// Build recomputes every run under the output root.
func (e *Engine) Build(ctx context.Context) (audit.Document, error) {
	return e.auditor.Build(ctx, e.cfg.outputRoot)
}

// Summary recomputes every run and returns only the cross-run summary.
func (e *Engine) Summary(ctx context.Context) (audit.Summary, error) {
	doc, err := e.Build(ctx)
	if err != nil {
		return audit.Summary{}, err
	}
	return doc.Summary, nil
}

// WriteSummary writes doc to path, or to the configured summary path when
// path is empty.
func (e *Engine) WriteSummary(doc audit.Document, path string) error {
	if path == "" {
		path = e.cfg.summaryPath
	}
	return artifacts.WriteSummary(path, doc, e.cfg.variable)
}

// Audit reconciles the configured emitted summary against the artifacts.
// Failing runs are reported, not returned; see audit.Report.Err.
func (e *Engine) Audit(ctx context.Context) (*audit.Report, error) {
	summary, err := artifacts.LoadSummary(e.cfg.summaryPath)
	if err != nil {
		return nil, err
	}
	r, err := e.auditor.Audit(ctx, e.cfg.outputRoot, summary)
	if err != nil {
		return nil, err
	}
	r.SummaryPath = e.cfg.summaryPath
	return r, nil
}

// WriteAuditReport writes r as JSON (or YAML, by extension) to jsonPath and
// as Markdown to mdPath. Empty paths are skipped. rerun is shown in the
// Markdown report as the command that reproduces the audit.
func (e *Engine) WriteAuditReport(r *audit.Report, jsonPath, mdPath, rerun string) error {
	if jsonPath != "" {
		data, err := artifacts.Encode(r, artifacts.FormatOf(jsonPath), "")
		if err != nil {
			return errors.WrapParse(artifacts.FormatOf(jsonPath), jsonPath, err)
		}
		if err := artifacts.WriteFile(jsonPath, data); err != nil {
			return err
		}
	}
	if mdPath != "" {
		var md bytes.Buffer
		if err := report.Audit(&md, r, rerun); err != nil {
			return errors.WrapResource("render", "audit report", r.AuditID, err)
		}
		if err := artifacts.WriteFile(mdPath, md.Bytes()); err != nil {
			return err
		}
	}
	return nil
}
