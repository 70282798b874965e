// Package audit recomputes every KPI of a run from its raw artifacts and
// reconciles the result against previously emitted values.
//
// The same recomputation feeds the run record builder, so a freshly built
// summary always audits clean; drift appears only when artifacts or the
// emitted summary change independently.
package audit

import (
	"github.com/agentstation/matchaudit/pkg/artifacts"
	"github.com/agentstation/matchaudit/pkg/histogram"
	"github.com/agentstation/matchaudit/pkg/kpi"
	"github.com/agentstation/matchaudit/pkg/partition"
	"github.com/agentstation/matchaudit/pkg/quality"
	"github.com/agentstation/matchaudit/pkg/records"
)

// Discovery-derived names emitted alongside the baseline track.
const (
	ExtraMatchPrecisionPct     = "extra_match_precision_pct"
	ExtraMatchRecallPct        = "extra_match_recall_pct"
	OverallMatchCorrectnessPct = "overall_match_correctness_pct"
	DiscoverableTruePairs      = "discoverable_true_pairs"
	PredictedPairsBeyondKnown  = "predicted_pairs_beyond_known"
	NetExtraMatches            = "net_extra_matches"
)

// Recomputation is everything derived from one run's artifacts.
type Recomputation struct {
	Run     *artifacts.Run
	Quality quality.Report
	Stats   partition.MatchStats
	KPIs    kpi.Set

	// Discovery holds freshly computed discovery metrics; Available is
	// false when the run's source records could not supply them.
	Discovery kpi.Discovery

	upstream map[string]any
}

// Recompute evaluates a loaded run.
func Recompute(run *artifacts.Run) *Recomputation {
	res := partition.Extract(run.LabelSeq(), run.AssignmentSeq())
	rc := &Recomputation{
		Run:      run,
		Quality:  quality.Evaluate(res),
		Stats:    res.Stats(),
		upstream: run.Management.Object("discovery_metrics"),
	}

	set := rc.Quality.KPIs()
	in := kpi.BaselineFromMap(rc.upstream, set.Get(kpi.GroundTruthPairs))
	if pairs, ok := rc.matchedPairs(); ok && run.Has(artifacts.InputSource) {
		if d, ok := kpi.ComputeDiscovery(run.Sources, pairs); ok {
			rc.Discovery = d
			in = d.BaselineInputs(set.Get(kpi.GroundTruthPairs))
		}
	}
	rc.KPIs = set.Merge(kpi.Baseline(in))
	rc.KPIs.Merge(rc.discoveryKPIs())
	return rc
}

// Resolved reports whether the resolution output was available.
func (rc *Recomputation) Resolved() bool {
	return rc.Run.Has(artifacts.EntityRecords)
}

// QualityAvailable reports whether precision, recall and the confusion
// counts are all defined.
func (rc *Recomputation) QualityAvailable() bool {
	for _, name := range []string{kpi.PairPrecisionPct, kpi.PairRecallPct, kpi.TruePositive, kpi.FalsePositive, kpi.FalseNegative} {
		if !rc.KPIs.Get(name).Defined() {
			return false
		}
	}
	return true
}

// DiscoveryAvailable reports whether baseline inputs came from either the
// source records or an upstream summary.
func (rc *Recomputation) DiscoveryAvailable() bool {
	if rc.Discovery.Available {
		return true
	}
	available, _ := rc.upstream["available"].(bool)
	return available
}

// EntitySize returns the entity size histogram, or nil without resolution output.
func (rc *Recomputation) EntitySize() any {
	if !rc.Resolved() {
		return nil
	}
	return rc.Quality.DistributionMetrics.EntitySize
}

// EntityTotal returns the number of entities in the size histogram.
func (rc *Recomputation) EntityTotal() kpi.Value {
	if !rc.Resolved() {
		return kpi.Undefined
	}
	return kpi.Int(rc.Quality.DistributionMetrics.EntitiesWithLabeledRecords)
}

// matchedPairs prefers the exported pair rows and derives pairs from the
// resolution rows otherwise. It reports false when the run has neither.
func (rc *Recomputation) matchedPairs() ([]records.MatchedPair, bool) {
	if rc.Run.Has(artifacts.MatchedPairs) {
		return rc.Run.PairRows, true
	}
	if rc.Run.Has(artifacts.EntityRecords) {
		return partition.MatchedPairs(rc.Run.AssignmentSeq()), true
	}
	return nil, false
}

// discoveryKPIs reads the discovery-only figures, from fresh metrics when
// available and from the upstream summary otherwise.
func (rc *Recomputation) discoveryKPIs() kpi.Set {
	if d := rc.Discovery; d.Available {
		return kpi.Set{
			ExtraMatchPrecisionPct:     kpi.Percent(d.ExtraMatchPrecision, kpi.Undefined, kpi.Undefined),
			ExtraMatchRecallPct:        kpi.Percent(d.ExtraMatchRecall, kpi.Undefined, kpi.Undefined),
			OverallMatchCorrectnessPct: kpi.Percent(d.OverallMatchCorrectness, kpi.Undefined, kpi.Undefined),
			DiscoverableTruePairs:      kpi.Int(d.DiscoverableTruePairs),
			PredictedPairsBeyondKnown:  kpi.Int(d.PredictedPairsBeyondKnown),
			NetExtraMatches:            kpi.Int(d.NetExtraMatches),
		}
	}
	get := func(name string) kpi.Value { return kpi.FromAny(rc.upstream[name]) }
	return kpi.Set{
		ExtraMatchPrecisionPct:     kpi.Percent(get("extra_match_precision"), kpi.Undefined, kpi.Undefined),
		ExtraMatchRecallPct:        kpi.Percent(get("extra_match_recall"), kpi.Undefined, kpi.Undefined),
		OverallMatchCorrectnessPct: kpi.Percent(get("overall_match_correctness"), kpi.Undefined, kpi.Undefined),
		DiscoverableTruePairs:      get("discoverable_true_pairs"),
		PredictedPairsBeyondKnown:  get("predicted_pairs_beyond_known"),
		NetExtraMatches:            get("net_extra_matches"),
	}
}

type namedKPI struct {
	label string
	name  string
}

var pairChecks = []namedKPI{
	{"Pair Precision (%)", kpi.PairPrecisionPct},
	{"Pair Recall (%)", kpi.PairRecallPct},
	{"Pair Missed (%)", kpi.PairMissedPct},
	{"Overall False Positive (%)", kpi.OverallFalsePositivePct},
	{"True Positive", kpi.TruePositive},
	{"False Positive", kpi.FalsePositive},
	{"False Negative", kpi.FalseNegative},
	{"Predicted Pairs", kpi.PredictedPairs},
	{"Ground Truth Pairs", kpi.GroundTruthPairs},
}

var baselineChecks = []namedKPI{
	{"Baseline Match Coverage (%)", kpi.BaselineMatchCoveragePct},
	{"Baseline True Positive", kpi.BaselineTruePositive},
	{"Baseline True Pairs Total", kpi.BaselineTruePairsTotal},
	{"Baseline False Positive", kpi.BaselineFalsePositive},
	{"Baseline False Negative", kpi.BaselineFalseNegative},
	{"Extra True Matches", kpi.ExtraTrueMatches},
	{"Extra False Matches", kpi.ExtraFalseMatches},
	{"Extra Gain vs Known (%)", kpi.ExtraGainVsKnownPct},
	{"Engine True Coverage (%)", kpi.EngineTrueCoveragePct},
}

// Checks reconciles emitted values, keyed by canonical KPI name, against
// the recomputation. Checks come in a fixed order.
func (rc *Recomputation) Checks(emitted map[string]any, tolerance float64) []Check {
	var checks []Check
	add := func(name string, expected, actual any, source string) {
		checks = append(checks, Evaluate(name, expected, actual, source, tolerance))
	}

	entities := artifacts.EntityRecords.Source()
	add("Input Records", emitted["records_input"], rc.Run.RecordsInput(), rc.recordsSource())
	add("Matched Pairs", emitted["matched_pairs"], rc.Run.MatchedPairCount(), artifacts.MatchedPairs.Source())
	add("Resolved Entities", emitted["resolved_entities"], rc.Run.ResolvedEntities(), entities)
	add("Entity Size Distribution", emitted["entity_size_distribution"], rc.EntitySize(), entities)
	add("Entity Size Distribution Total", histogramTotal(emitted["entity_size_distribution"]), rc.EntityTotal(), entities)

	pairSource := entities + " (pair_metrics)"
	for _, c := range pairChecks {
		expected := emitted[c.name]
		if c.name == kpi.PairMissedPct && expected == nil {
			expected = kpi.Complement(kpi.FromAny(emitted[kpi.PairRecallPct]))
		}
		add(c.label, expected, rc.KPIs.Get(c.name), pairSource)
	}

	baselineSource := artifacts.ManagementSummary.Source() + " (discovery_metrics)"
	if rc.Discovery.Available {
		baselineSource = artifacts.InputSource.Source() + " (true and baseline groups)"
	}
	for _, c := range baselineChecks {
		add(c.label, emitted[c.name], rc.KPIs.Get(c.name), baselineSource)
	}
	return checks
}

func (rc *Recomputation) recordsSource() string {
	if !rc.Run.Has(artifacts.Labels) && rc.Run.Has(artifacts.InputSource) {
		return artifacts.InputSource.Source()
	}
	return artifacts.Labels.Source()
}

// histogramTotal sums an emitted distribution, undefined when it is not one.
func histogramTotal(v any) kpi.Value {
	h, ok := histogram.FromAny(v)
	if !ok {
		return kpi.Undefined
	}
	return kpi.Int(h.Sum())
}
