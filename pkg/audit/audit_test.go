package audit

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/matchaudit/pkg/artifacts"
	"github.com/agentstation/matchaudit/pkg/errors"
	"github.com/agentstation/matchaudit/pkg/kpi"
	"github.com/agentstation/matchaudit/pkg/logging"
)

// Ground truth {G1: a b c, G2: d e}; resolved {R1: a b c d, R2: e}.
const (
	scenarioLabels = `{"DATA_SOURCE":"S","RECORD_ID":"a","SOURCE_IPG_ID":"G1"}
{"DATA_SOURCE":"S","RECORD_ID":"b","SOURCE_IPG_ID":"G1"}
{"DATA_SOURCE":"S","RECORD_ID":"c","SOURCE_IPG_ID":"G1"}
{"DATA_SOURCE":"S","RECORD_ID":"d","SOURCE_IPG_ID":"G2"}
{"DATA_SOURCE":"S","RECORD_ID":"e","SOURCE_IPG_ID":"G2"}
`
	scenarioEntities = `resolved_entity_id,data_source,record_id,match_level,match_key
R1,S,a,0,
R1,S,b,1,+NAME+ADDRESS
R1,S,c,1,+NAME+ADDRESS
R1,S,d,2,+NAME
R2,S,e,0,
`

	// True groups {T1: r1 r2 r3, T2: r4}; the baseline already pairs r1 and r2.
	discoverySources = `[
	{"RECORD_ID": "r1", "TRUE_GROUP_ID": "T1", "IPG ID": "B1"},
	{"RECORD_ID": "r2", "TRUE_GROUP_ID": "T1", "IPG ID": "B1"},
	{"RECORD_ID": "r3", "TRUE_GROUP_ID": "T1"},
	{"RECORD_ID": "r4", "TRUE_GROUP_ID": "T2"}
]`
	discoveryPairs = `resolved_entity_id,anchor_data_source,anchor_record_id,matched_data_source,matched_record_id,match_level,match_key
E1,S,r1,S,r2,1,+NAME
E1,S,r1,S,r3,1,+NAME
E2,S,r3,S,r4,2,+ADDRESS
`
)

func writeRun(t *testing.T, root, name string, files map[artifacts.Artifact]string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for a, content := range files {
		path := filepath.Join(dir, a.Path())
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func loadRun(t *testing.T, dir string) *artifacts.Run {
	t.Helper()
	run, err := artifacts.Load(dir, artifacts.DefaultFields())
	require.NoError(t, err)
	return run
}

// emittedFor builds the record for a run and decodes it the way an
// emitted summary would be read back.
func emittedFor(t *testing.T, rc *Recomputation) map[string]any {
	t.Helper()
	data, err := artifacts.Encode(BuildRunRecord(rc), artifacts.FormatJSON, "")
	require.NoError(t, err)
	s, err := artifacts.ParseSummary(data, artifacts.FormatJSON)
	require.NoError(t, err)
	run, ok := s.Run(rc.Run.Name.ID)
	require.True(t, ok)
	return run
}

func TestRecomputeScenario(t *testing.T) {
	dir := writeRun(t, t.TempDir(), "20250101_120000", map[artifacts.Artifact]string{
		artifacts.Labels:        scenarioLabels,
		artifacts.EntityRecords: scenarioEntities,
	})
	rc := Recompute(loadRun(t, dir))

	want := map[string]kpi.Value{
		kpi.TruePositive:            kpi.Int(3),
		kpi.FalsePositive:           kpi.Int(3),
		kpi.FalseNegative:           kpi.Int(1),
		kpi.PredictedPairs:          kpi.Int(6),
		kpi.GroundTruthPairs:        kpi.Int(4),
		kpi.PairPrecisionPct:        kpi.Of(50),
		kpi.PairRecallPct:           kpi.Of(75),
		kpi.PairMissedPct:           kpi.Of(25),
		kpi.OverallFalsePositivePct: kpi.Of(50),
		// no discovery inputs: the baseline count falls back to ground truth pairs
		kpi.BaselineTruePositive:     kpi.Int(4),
		kpi.BaselineTruePairsTotal:   kpi.Int(4),
		kpi.BaselineFalseNegative:    kpi.Int(0),
		kpi.BaselineMatchCoveragePct: kpi.Of(100),
		kpi.ExtraGainVsKnownPct:      kpi.Undefined,
	}
	for name, v := range want {
		assert.Equal(t, v, rc.KPIs.Get(name), name)
	}

	assert.True(t, rc.QualityAvailable())
	assert.False(t, rc.DiscoveryAvailable())
	assert.Equal(t, kpi.Int(2), rc.EntityTotal())
	assert.Equal(t, 3, rc.Stats.MatchedRecords)
}

func TestRecomputeDiscovery(t *testing.T) {
	dir := writeRun(t, t.TempDir(), "20250101_120000", map[artifacts.Artifact]string{
		artifacts.InputSource:       discoverySources,
		artifacts.MatchedPairs:      discoveryPairs,
		artifacts.ManagementSummary: `{"discovery_metrics": {"known_pairs_ipg": 99}}`,
	})
	rc := Recompute(loadRun(t, dir))

	require.True(t, rc.DiscoveryAvailable())
	assert.Equal(t, kpi.Int(1), rc.KPIs.Get(kpi.BaselineTruePositive), "fresh metrics win over the upstream summary")
	assert.Equal(t, kpi.Int(3), rc.KPIs.Get(kpi.BaselineTruePairsTotal))
	assert.Equal(t, kpi.Int(2), rc.KPIs.Get(kpi.BaselineFalseNegative))
	assert.Equal(t, kpi.Of(33.33), rc.KPIs.Get(kpi.BaselineMatchCoveragePct))
	assert.Equal(t, kpi.Int(1), rc.KPIs.Get(kpi.ExtraTrueMatches))
	assert.Equal(t, kpi.Int(1), rc.KPIs.Get(kpi.ExtraFalseMatches))
	assert.Equal(t, kpi.Of(100), rc.KPIs.Get(kpi.ExtraGainVsKnownPct))
	assert.Equal(t, kpi.Of(66.67), rc.KPIs.Get(kpi.EngineTrueCoveragePct))
	assert.Equal(t, kpi.Of(50), rc.KPIs.Get(ExtraMatchPrecisionPct))
	assert.Equal(t, kpi.Int(0), rc.KPIs.Get(NetExtraMatches))

	// no resolution output: pair metrics stay undefined
	assert.False(t, rc.KPIs.Get(kpi.PairPrecisionPct).Defined())
	assert.False(t, rc.QualityAvailable())

	checks := rc.Checks(map[string]any{kpi.BaselineTruePositive: 1.0}, 0.01)
	var found bool
	for _, c := range checks {
		if c.Name() == "Baseline True Positive" {
			found = true
			assert.Equal(t, StatusPass, c.Status())
			assert.Equal(t, "input_source.json (true and baseline groups)", c.Source())
		}
	}
	assert.True(t, found)
}

func TestRecomputeUpstreamBaseline(t *testing.T) {
	dir := writeRun(t, t.TempDir(), "20250101_120000", map[artifacts.Artifact]string{
		artifacts.Labels:            scenarioLabels,
		artifacts.EntityRecords:     scenarioEntities,
		artifacts.ManagementSummary: `{"discovery_metrics": {"available": true, "known_pairs_ipg": 2, "true_pairs_total": 4, "senzing_true_coverage": 0.75}}`,
	})
	rc := Recompute(loadRun(t, dir))

	assert.True(t, rc.DiscoveryAvailable())
	assert.Equal(t, kpi.Int(2), rc.KPIs.Get(kpi.BaselineTruePositive))
	assert.Equal(t, kpi.Of(50), rc.KPIs.Get(kpi.BaselineMatchCoveragePct))
	assert.Equal(t, kpi.Of(75), rc.KPIs.Get(kpi.EngineTrueCoveragePct))
}

func TestAuditRun(t *testing.T) {
	dir := writeRun(t, t.TempDir(), "20250101_120000__pilot", map[artifacts.Artifact]string{
		artifacts.Labels:        scenarioLabels,
		artifacts.EntityRecords: scenarioEntities,
	})
	run := loadRun(t, dir)
	emitted := emittedFor(t, Recompute(run))

	t.Run("freshly built summary passes", func(t *testing.T) {
		report := AuditRun(run, emitted, 0.01)
		assert.Equal(t, StatusPass, report.Status)
		assert.Empty(t, report.Failed())
		assert.Equal(t, "pilot", report.RunLabel)
		assert.Equal(t, 3, report.Confusion.TruePositive)

		require.Len(t, report.Checks, 23)
		assert.Equal(t, "Input Records", report.Checks[0].Name())
		assert.Equal(t, StatusSkip, report.Checks[1].Status(), "matched_pairs.csv is absent")
		assert.Equal(t, "Entity Size Distribution", report.Checks[3].Name())
		assert.Equal(t, StatusPass, report.Checks[3].Status())
		assert.Equal(t, StatusPass, report.Checks[4].Status())
	})

	t.Run("tolerance", func(t *testing.T) {
		for _, tc := range []struct {
			value float64
			want  Status
		}{
			{50.01, StatusPass},
			{49.99, StatusPass},
			{50.02, StatusFail},
		} {
			drifted := copyMap(emitted)
			drifted[kpi.PairPrecisionPct] = tc.value
			assert.Equal(t, tc.want, AuditRun(run, drifted, 0.01).Status, "%v", tc.value)
		}
	})

	t.Run("drifted distribution", func(t *testing.T) {
		drifted := copyMap(emitted)
		drifted["entity_size_distribution"] = map[string]any{"1": 1.0, "3": 1.0}
		report := AuditRun(run, drifted, 0.01)
		assert.Equal(t, StatusFail, report.Status)
		require.Len(t, report.Failed(), 1)
		assert.Equal(t, "Entity Size Distribution", report.Failed()[0].Name())
	})

	t.Run("missed derived from recall", func(t *testing.T) {
		drifted := copyMap(emitted)
		delete(drifted, kpi.PairMissedPct)
		drifted[kpi.PairRecallPct] = 70.0
		report := AuditRun(run, drifted, 0.01)
		var names []string
		for _, c := range report.Failed() {
			names = append(names, c.Name())
		}
		assert.Equal(t, []string{"Pair Recall (%)", "Pair Missed (%)"}, names)
	})

	t.Run("pure", func(t *testing.T) {
		before := copyMap(emitted)
		first := AuditRun(run, emitted, 0.01)
		second := AuditRun(run, emitted, 0.01)
		assert.Equal(t, first, second)
		assert.Equal(t, before, emitted)
	})
}

// assertSkipped asserts that no check fails and the run is SKIP.
func assertSkipped(t *testing.T, report RunReport) {
	t.Helper()
	assert.Equal(t, StatusSkip, report.Status)
	for _, c := range report.Checks {
		assert.NotEqual(t, StatusFail, c.Status(), "%s: expected=%v actual=%v", c.Name(), c.Expected(), c.Actual())
	}
}

func TestAuditRunMissingResolution(t *testing.T) {
	dir := writeRun(t, t.TempDir(), "20250101_120000", map[artifacts.Artifact]string{
		artifacts.Labels:            scenarioLabels,
		artifacts.EntityRecords:     scenarioEntities,
		artifacts.ManagementSummary: `{"records_input": 5}`,
	})
	emitted := emittedFor(t, Recompute(loadRun(t, dir)))
	require.Equal(t, 4.0, kpi.FromAny(emitted[kpi.BaselineTruePositive]).Float())

	require.NoError(t, os.Remove(filepath.Join(dir, artifacts.EntityRecords.Path())))
	report := AuditRun(loadRun(t, dir), emitted, 0.01)

	assertSkipped(t, report)
	assert.False(t, report.KPIs.Get(kpi.PairPrecisionPct).Defined())
	assert.False(t, report.KPIs.Get(kpi.BaselineTruePositive).Defined())
	assert.False(t, report.KPIs.Get(kpi.BaselineTruePairsTotal).Defined())
}

func TestAuditRunMissingMatchedPairs(t *testing.T) {
	dir := writeRun(t, t.TempDir(), "20250101_120000", map[artifacts.Artifact]string{
		artifacts.InputSource:  discoverySources,
		artifacts.MatchedPairs: discoveryPairs,
	})
	rc := Recompute(loadRun(t, dir))
	require.True(t, rc.Discovery.Available)
	emitted := emittedFor(t, rc)

	require.NoError(t, os.Remove(filepath.Join(dir, artifacts.MatchedPairs.Path())))
	after := Recompute(loadRun(t, dir))
	assert.False(t, after.Discovery.Available)
	assert.False(t, after.KPIs.Get(kpi.ExtraTrueMatches).Defined())

	assertSkipped(t, auditRecomputed(after, emitted, 0.01))
}

func TestRunStatusOf(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		name  string
		files map[artifacts.Artifact]string
		want  string
	}{
		{"failed", map[artifacts.Artifact]string{
			artifacts.RunSummary:        `{"overall_ok": false}`,
			artifacts.ManagementSummary: `{}`,
			artifacts.QualityReport:     `{}`,
		}, RunFailed},
		{"success from upstream quality", map[artifacts.Artifact]string{
			artifacts.RunSummary:        `{"overall_ok": true}`,
			artifacts.ManagementSummary: `{}`,
			artifacts.QualityReport:     `{}`,
		}, RunSuccess},
		{"success from raw inputs", map[artifacts.Artifact]string{
			artifacts.ManagementSummary: `{}`,
			artifacts.Labels:            scenarioLabels,
			artifacts.EntityRecords:     scenarioEntities,
		}, RunSuccess},
		{"incomplete", map[artifacts.Artifact]string{
			artifacts.Labels:        scenarioLabels,
			artifacts.EntityRecords: scenarioEntities,
		}, RunIncomplete},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeRun(t, root, "2025010"+string(rune('1'+i))+"_120000", tt.files)
			assert.Equal(t, tt.want, RunStatusOf(loadRun(t, dir)))
		})
	}
}

func TestSummarize(t *testing.T) {
	records := []Record{
		{RunID: "20250101_000000", RunStatus: RunSuccess, QualityAvailable: true,
			PairPrecisionPct: kpi.Of(50), PairRecallPct: kpi.Of(75),
			RecordsInput: kpi.Int(5), MatchedPairs: kpi.Int(3)},
		{RunID: "20250103_000000", RunStatus: RunSuccess, QualityAvailable: true,
			PairPrecisionPct: kpi.Of(60.005), PairRecallPct: kpi.Undefined,
			RecordsInput: kpi.Int(10), MatchedPairs: kpi.Undefined},
		{RunID: "20250102_000000", RunStatus: RunFailed,
			PairPrecisionPct: kpi.Of(0), RecordsInput: kpi.Int(100)},
		{RunID: "20250100_000000", RunStatus: RunIncomplete},
	}

	s := Summarize(records)
	assert.Equal(t, 4, s.RunsTotal)
	assert.Equal(t, 2, s.QualityRunsTotal)
	assert.Equal(t, 2, s.SuccessfulRuns)
	assert.Equal(t, 1, s.FailedRuns)
	assert.Equal(t, 1, s.IncompleteRuns)
	require.NotNil(t, s.LatestRunID)
	assert.Equal(t, "20250103_000000", *s.LatestRunID)
	assert.Equal(t, kpi.Of(55), s.AvgPrecisionPct)
	assert.Equal(t, kpi.Of(75), s.AvgRecallPct)
	assert.Equal(t, 15, s.RecordsInputTotal)
	assert.Equal(t, 3, s.MatchedPairsTotal)

	empty := Summarize(nil)
	assert.Nil(t, empty.LatestRunID)
	assert.False(t, empty.AvgPrecisionPct.Defined())
}

func TestBuildSummaryOrder(t *testing.T) {
	now := utc.New(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))
	doc := BuildSummary("out", []Record{{RunID: "a"}, {RunID: "c"}, {RunID: "b"}}, now)
	var ids []string
	for _, r := range doc.Runs {
		ids = append(ids, r.RunID)
	}
	assert.Equal(t, []string{"c", "b", "a"}, ids)
	assert.Equal(t, now, doc.GeneratedAt)
	assert.Equal(t, "c", *doc.Summary.LatestRunID)
}

func TestAuditorBuildAndAudit(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"20250101_120000", "20250102_120000__b", "20250103_120000"} {
		writeRun(t, root, name, map[artifacts.Artifact]string{
			artifacts.Labels:            scenarioLabels,
			artifacts.EntityRecords:     scenarioEntities,
			artifacts.ManagementSummary: `{"records_input": 5}`,
		})
	}

	logger := logging.NewTestLogger(t)
	auditor, err := New(WithWorkers(2), WithLogger(logger.Logger))
	require.NoError(t, err)
	ctx := context.Background()

	doc, err := auditor.Build(ctx, root)
	require.NoError(t, err)
	require.Len(t, doc.Runs, 3)
	assert.Equal(t, "20250103_120000", doc.Runs[0].RunID)
	assert.Equal(t, 3, doc.Summary.SuccessfulRuns)
	assert.Equal(t, kpi.Of(50), doc.Summary.AvgPrecisionPct)

	path := filepath.Join(root, "dashboard_data.js")
	require.NoError(t, artifacts.WriteSummary(path, doc, ""))

	t.Run("clean", func(t *testing.T) {
		summary, err := artifacts.LoadSummary(path)
		require.NoError(t, err)
		report, err := auditor.Audit(ctx, root, summary)
		require.NoError(t, err)
		assert.Equal(t, Totals{RunsTotal: 3, RunsPass: 3}, report.Totals)
		assert.NoError(t, report.Err())
		assert.NotEmpty(t, report.AuditID)
		assert.Equal(t, "20250102_120000__b", report.Runs[1].RunID)
	})

	t.Run("drift", func(t *testing.T) {
		summary, err := artifacts.LoadSummary(path)
		require.NoError(t, err)
		run, ok := summary.Run("20250102_120000__b")
		require.True(t, ok)
		run[kpi.TruePositive] = 4.0

		report, err := auditor.Audit(ctx, root, summary)
		require.NoError(t, err)
		assert.Equal(t, Totals{RunsTotal: 3, RunsPass: 2, RunsFail: 1}, report.Totals)
		require.Len(t, report.Failed(), 1)
		assert.Equal(t, "True Positive", report.Failed()[0].Check.Name())

		err = report.Err()
		assert.True(t, errors.IsAuditFailed(err))
		assert.Contains(t, err.Error(), "20250102_120000__b")
		logger.AssertContains(t, "Check failed")
	})

	t.Run("run directory gone", func(t *testing.T) {
		summary, err := artifacts.ParseSummary([]byte(`{"runs": [{"run_id": "20240101_000000", "pair_precision_pct": 50, "true_positive": 3}]}`), "")
		require.NoError(t, err)
		report, err := auditor.Audit(ctx, root, summary)
		require.NoError(t, err)
		assert.Equal(t, StatusSkip, report.Runs[0].Status)
		assert.NoError(t, report.Err())
	})
}

func TestAuditorRuns(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"20250101_120000", "20250102_120000__b", "20250103_120000"} {
		writeRun(t, root, name, map[artifacts.Artifact]string{
			artifacts.Labels:        scenarioLabels,
			artifacts.EntityRecords: scenarioEntities,
		})
	}
	ctx := context.Background()

	all, err := New()
	require.NoError(t, err)
	doc, err := all.Build(ctx, root)
	require.NoError(t, err)
	path := filepath.Join(root, "dashboard_data.json")
	require.NoError(t, artifacts.WriteSummary(path, doc, ""))

	auditor, err := New(WithRuns("20250101_*", "__b$"))
	require.NoError(t, err)

	doc, err = auditor.Build(ctx, root)
	require.NoError(t, err)
	require.Len(t, doc.Runs, 2)
	assert.Equal(t, "20250102_120000__b", doc.Runs[0].RunID)
	assert.Equal(t, "20250101_120000", doc.Runs[1].RunID)

	summary, err := artifacts.LoadSummary(path)
	require.NoError(t, err)
	report, err := auditor.Audit(ctx, root, summary)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Totals.RunsTotal)
	assert.Len(t, summary.RunIDs(), 3, "selection must not modify the summary")

	_, err = New(WithRuns("^(bad"))
	assert.True(t, errors.IsValidationError(err))
}

func TestAuditorEvaluate(t *testing.T) {
	root := t.TempDir()
	dir := writeRun(t, root, "20250101_120000", map[artifacts.Artifact]string{
		artifacts.Labels:        scenarioLabels,
		artifacts.EntityRecords: scenarioEntities,
	})
	now := utc.New(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))
	auditor, err := New(WithFields(artifacts.Fields{Label: "SOURCE_IPG_ID"}), WithClock(func() utc.Time { return now }))
	require.NoError(t, err)

	rc, err := auditor.Evaluate(context.Background(), dir)
	require.NoError(t, err)
	assert.True(t, rc.QualityAvailable())
	assert.Equal(t, "DATA_SOURCE", auditor.Fields().Source)

	doc := auditor.QualityDocument(rc)
	assert.Equal(t, "20250101_120000", doc.RunID)
	assert.Equal(t, "SOURCE_IPG_ID", doc.LabelField)
	assert.Equal(t, now, doc.GeneratedAt)
	assert.Equal(t, 3, doc.PairMetrics.TruePositive)

	_, err = auditor.Evaluate(context.Background(), filepath.Join(root, "missing"))
	assert.True(t, errors.IsNotFound(err))
}

func TestAuditorCanceled(t *testing.T) {
	root := t.TempDir()
	writeRun(t, root, "20250101_120000", map[artifacts.Artifact]string{artifacts.Labels: scenarioLabels})

	auditor, err := New()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = auditor.Build(ctx, root)
	assert.True(t, errors.IsCanceled(err))
}

func TestNewValidation(t *testing.T) {
	_, err := New(WithTolerance(-1))
	assert.True(t, errors.IsValidationError(err))

	_, err = New(WithWorkers(-2))
	assert.True(t, errors.IsValidationError(err))

	a, err := New(WithTolerance(0.5), WithWorkers(0))
	require.NoError(t, err)
	assert.Equal(t, 0.5, a.Tolerance())
	assert.Positive(t, a.workers)
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
