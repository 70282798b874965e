package audit

import (
	"cmp"
	"slices"

	"github.com/agentstation/utc"

	"github.com/agentstation/matchaudit/pkg/artifacts"
	"github.com/agentstation/matchaudit/pkg/constants"
	"github.com/agentstation/matchaudit/pkg/histogram"
	"github.com/agentstation/matchaudit/pkg/kpi"
	"github.com/agentstation/matchaudit/pkg/partition"
	"github.com/agentstation/matchaudit/pkg/quality"
)

// Run outcomes derived from the run's own summaries.
const (
	RunSuccess    = "success"
	RunFailed     = "failed"
	RunIncomplete = "incomplete"
)

// Record is the flat set of values emitted for one run.
type Record struct {
	RunID           string    `json:"run_id" yaml:"run_id"`
	RunTimestamp    string    `json:"run_timestamp" yaml:"run_timestamp"`
	RunDatetime     *utc.Time `json:"run_datetime" yaml:"run_datetime"`
	RunLabel        string    `json:"run_label,omitempty" yaml:"run_label,omitempty"`
	SourceInputName string    `json:"source_input_name,omitempty" yaml:"source_input_name,omitempty"`
	RunStatus       string    `json:"run_status" yaml:"run_status"`
	OverallOK       *bool     `json:"overall_ok" yaml:"overall_ok"`

	HasManagementSummary bool `json:"has_management_summary" yaml:"has_management_summary"`
	HasQualityInputs     bool `json:"has_quality_inputs" yaml:"has_quality_inputs"`
	HasRunSummary        bool `json:"has_run_summary" yaml:"has_run_summary"`
	QualityAvailable     bool `json:"quality_available" yaml:"quality_available"`
	DiscoveryAvailable   bool `json:"discovery_available" yaml:"discovery_available"`

	RecordsInput     kpi.Value `json:"records_input" yaml:"records_input"`
	ResolvedEntities kpi.Value `json:"resolved_entities" yaml:"resolved_entities"`
	MatchedRecords   kpi.Value `json:"matched_records" yaml:"matched_records"`
	MatchedPairs     kpi.Value `json:"matched_pairs" yaml:"matched_pairs"`

	PairPrecisionPct        kpi.Value `json:"pair_precision_pct" yaml:"pair_precision_pct"`
	PairRecallPct           kpi.Value `json:"pair_recall_pct" yaml:"pair_recall_pct"`
	PairMissedPct           kpi.Value `json:"pair_missed_pct" yaml:"pair_missed_pct"`
	OverallFalsePositivePct kpi.Value `json:"overall_false_positive_pct" yaml:"overall_false_positive_pct"`
	TruePositive            kpi.Value `json:"true_positive" yaml:"true_positive"`
	FalsePositive           kpi.Value `json:"false_positive" yaml:"false_positive"`
	FalseNegative           kpi.Value `json:"false_negative" yaml:"false_negative"`
	PredictedPairs          kpi.Value `json:"predicted_pairs_labeled" yaml:"predicted_pairs_labeled"`
	GroundTruthPairs        kpi.Value `json:"ground_truth_pairs_labeled" yaml:"ground_truth_pairs_labeled"`

	BaselineMatchCoveragePct kpi.Value `json:"baseline_match_coverage_pct" yaml:"baseline_match_coverage_pct"`
	BaselineTruePositive     kpi.Value `json:"baseline_true_positive" yaml:"baseline_true_positive"`
	BaselineTruePairsTotal   kpi.Value `json:"baseline_true_pairs_total" yaml:"baseline_true_pairs_total"`
	BaselineFalsePositive    kpi.Value `json:"baseline_false_positive" yaml:"baseline_false_positive"`
	BaselineFalseNegative    kpi.Value `json:"baseline_false_negative" yaml:"baseline_false_negative"`
	ExtraTrueMatches         kpi.Value `json:"extra_true_matches_found" yaml:"extra_true_matches_found"`
	ExtraFalseMatches        kpi.Value `json:"extra_false_matches_found" yaml:"extra_false_matches_found"`
	ExtraGainVsKnownPct      kpi.Value `json:"extra_gain_vs_known_pct" yaml:"extra_gain_vs_known_pct"`
	EngineTrueCoveragePct    kpi.Value `json:"engine_true_coverage_pct" yaml:"engine_true_coverage_pct"`

	ExtraMatchPrecisionPct     kpi.Value `json:"extra_match_precision_pct" yaml:"extra_match_precision_pct"`
	ExtraMatchRecallPct        kpi.Value `json:"extra_match_recall_pct" yaml:"extra_match_recall_pct"`
	OverallMatchCorrectnessPct kpi.Value `json:"overall_match_correctness_pct" yaml:"overall_match_correctness_pct"`
	DiscoverableTruePairs      kpi.Value `json:"discoverable_true_pairs" yaml:"discoverable_true_pairs"`
	PredictedPairsBeyondKnown  kpi.Value `json:"predicted_pairs_beyond_known" yaml:"predicted_pairs_beyond_known"`
	NetExtraMatches            kpi.Value `json:"net_extra_matches" yaml:"net_extra_matches"`

	MatchLevelDistribution          histogram.Histogram[int] `json:"match_level_distribution" yaml:"match_level_distribution"`
	TopMatchKeys                    []partition.KeyCount     `json:"top_match_keys" yaml:"top_match_keys"`
	EntitySizeDistribution          histogram.Histogram[int] `json:"entity_size_distribution" yaml:"entity_size_distribution"`
	EntityPairingsDistribution      histogram.Histogram[int] `json:"entity_pairings_distribution" yaml:"entity_pairings_distribution"`
	RecordPairingDegreeDistribution histogram.Histogram[int] `json:"record_pairing_degree_distribution" yaml:"record_pairing_degree_distribution"`

	DataQuality      quality.DataQuality  `json:"data_quality" yaml:"data_quality"`
	RuntimeWarnings  []string             `json:"runtime_warnings" yaml:"runtime_warnings"`
	MissingArtifacts []artifacts.Artifact `json:"missing_artifacts,omitempty" yaml:"missing_artifacts,omitempty"`
}

// RunStatusOf classifies a run: failed when its run summary reports
// overall_ok false, success when the management summary and the quality
// inputs are present, incomplete otherwise.
func RunStatusOf(run *artifacts.Run) string {
	if ok, present := run.Summary.Bool("overall_ok"); present && !ok {
		return RunFailed
	}
	if run.Management.Present() && hasQualityInputs(run) {
		return RunSuccess
	}
	return RunIncomplete
}

func hasQualityInputs(run *artifacts.Run) bool {
	return run.Quality.Present() || (run.Has(artifacts.Labels) && run.Has(artifacts.EntityRecords))
}

// BuildRunRecord flattens a recomputation into the emitted record.
func BuildRunRecord(rc *Recomputation) Record {
	run, k := rc.Run, rc.KPIs
	rec := Record{
		RunID:           run.Name.ID,
		RunTimestamp:    run.Name.Timestamp,
		RunDatetime:     run.Name.Time,
		RunLabel:        run.Label(),
		SourceInputName: run.SourceInputName(),
		RunStatus:       RunStatusOf(run),

		HasManagementSummary: run.Management.Present(),
		HasQualityInputs:     hasQualityInputs(run),
		HasRunSummary:        run.Summary.Present(),
		QualityAvailable:     rc.QualityAvailable(),
		DiscoveryAvailable:   rc.DiscoveryAvailable(),

		RecordsInput:     run.RecordsInput(),
		ResolvedEntities: run.ResolvedEntities(),
		MatchedPairs:     run.MatchedPairCount(),

		PairPrecisionPct:        k.Get(kpi.PairPrecisionPct),
		PairRecallPct:           k.Get(kpi.PairRecallPct),
		PairMissedPct:           k.Get(kpi.PairMissedPct),
		OverallFalsePositivePct: k.Get(kpi.OverallFalsePositivePct),
		TruePositive:            k.Get(kpi.TruePositive),
		FalsePositive:           k.Get(kpi.FalsePositive),
		FalseNegative:           k.Get(kpi.FalseNegative),
		PredictedPairs:          k.Get(kpi.PredictedPairs),
		GroundTruthPairs:        k.Get(kpi.GroundTruthPairs),

		BaselineMatchCoveragePct: k.Get(kpi.BaselineMatchCoveragePct),
		BaselineTruePositive:     k.Get(kpi.BaselineTruePositive),
		BaselineTruePairsTotal:   k.Get(kpi.BaselineTruePairsTotal),
		BaselineFalsePositive:    k.Get(kpi.BaselineFalsePositive),
		BaselineFalseNegative:    k.Get(kpi.BaselineFalseNegative),
		ExtraTrueMatches:         k.Get(kpi.ExtraTrueMatches),
		ExtraFalseMatches:        k.Get(kpi.ExtraFalseMatches),
		ExtraGainVsKnownPct:      k.Get(kpi.ExtraGainVsKnownPct),
		EngineTrueCoveragePct:    k.Get(kpi.EngineTrueCoveragePct),

		ExtraMatchPrecisionPct:     k.Get(ExtraMatchPrecisionPct),
		ExtraMatchRecallPct:        k.Get(ExtraMatchRecallPct),
		OverallMatchCorrectnessPct: k.Get(OverallMatchCorrectnessPct),
		DiscoverableTruePairs:      k.Get(DiscoverableTruePairs),
		PredictedPairsBeyondKnown:  k.Get(PredictedPairsBeyondKnown),
		NetExtraMatches:            k.Get(NetExtraMatches),

		MatchLevelDistribution:          rc.Stats.Levels,
		TopMatchKeys:                    rc.Stats.Top(constants.TopMatchKeys),
		EntitySizeDistribution:          rc.Quality.DistributionMetrics.EntitySize,
		EntityPairingsDistribution:      rc.Quality.DistributionMetrics.EntityPairings,
		RecordPairingDegreeDistribution: rc.Quality.DistributionMetrics.RecordPairingDegree,

		DataQuality:      rc.Quality.DataQuality,
		RuntimeWarnings:  run.Summary.Strings("runtime_warnings"),
		MissingArtifacts: run.Missing(),
	}
	if ok, present := run.Summary.Bool("overall_ok"); present {
		rec.OverallOK = &ok
	}
	if rc.Resolved() {
		rec.MatchedRecords = kpi.Int(rc.Stats.MatchedRecords)
	}
	if rec.TopMatchKeys == nil {
		rec.TopMatchKeys = []partition.KeyCount{}
	}
	if rec.RuntimeWarnings == nil {
		rec.RuntimeWarnings = []string{}
	}
	return rec
}

// Summary aggregates run records.
type Summary struct {
	RunsTotal         int       `json:"runs_total" yaml:"runs_total"`
	QualityRunsTotal  int       `json:"quality_runs_total" yaml:"quality_runs_total"`
	SuccessfulRuns    int       `json:"successful_runs" yaml:"successful_runs"`
	FailedRuns        int       `json:"failed_runs" yaml:"failed_runs"`
	IncompleteRuns    int       `json:"incomplete_runs" yaml:"incomplete_runs"`
	LatestRunID       *string   `json:"latest_run_id" yaml:"latest_run_id"`
	AvgPrecisionPct   kpi.Value `json:"avg_precision_pct" yaml:"avg_precision_pct"`
	AvgRecallPct      kpi.Value `json:"avg_recall_pct" yaml:"avg_recall_pct"`
	RecordsInputTotal int       `json:"records_input_total" yaml:"records_input_total"`
	MatchedPairsTotal int       `json:"matched_pairs_total" yaml:"matched_pairs_total"`
}

// Summarize reduces run records. Means and totals cover runs with quality
// data only; means are undefined when there are none.
func Summarize(records []Record) Summary {
	s := Summary{RunsTotal: len(records)}
	var precision, recall []float64
	for _, r := range records {
		switch r.RunStatus {
		case RunSuccess:
			s.SuccessfulRuns++
		case RunFailed:
			s.FailedRuns++
		case RunIncomplete:
			s.IncompleteRuns++
		}
		if s.LatestRunID == nil || r.RunID > *s.LatestRunID {
			id := r.RunID
			s.LatestRunID = &id
		}
		if !r.QualityAvailable {
			continue
		}
		s.QualityRunsTotal++
		if v, ok := r.PairPrecisionPct.Get(); ok {
			precision = append(precision, v)
		}
		if v, ok := r.PairRecallPct.Get(); ok {
			recall = append(recall, v)
		}
		s.RecordsInputTotal += int(r.RecordsInput.Float())
		s.MatchedPairsTotal += int(r.MatchedPairs.Float())
	}
	s.AvgPrecisionPct = mean(precision)
	s.AvgRecallPct = mean(recall)
	return s
}

func mean(values []float64) kpi.Value {
	if len(values) == 0 {
		return kpi.Undefined
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return kpi.Of(kpi.Round2(sum / float64(len(values))))
}

// Document is the emitted summary of every run under an output root.
type Document struct {
	GeneratedAt utc.Time `json:"generated_at" yaml:"generated_at"`
	OutputRoot  string   `json:"output_root" yaml:"output_root"`
	Runs        []Record `json:"runs" yaml:"runs"`
	Summary     Summary  `json:"summary" yaml:"summary"`
}

// BuildSummary assembles the emitted document with runs newest first.
func BuildSummary(outputRoot string, records []Record, generatedAt utc.Time) Document {
	runs := slices.Clone(records)
	slices.SortStableFunc(runs, func(a, b Record) int {
		return cmp.Compare(b.RunID, a.RunID)
	})
	if runs == nil {
		runs = []Record{}
	}
	return Document{
		GeneratedAt: generatedAt,
		OutputRoot:  outputRoot,
		Runs:        runs,
		Summary:     Summarize(runs),
	}
}
