// Package kpi derives percentage and count KPIs from pair counts and
// coverage inputs.
//
// Every percentage follows one fallback order: an upstream or freshly
// computed ratio scaled by 100, else the ratio of raw counts, else
// undefined. Rounding to two decimals happens once, in Percent.
package kpi

import (
	"maps"
	"slices"
)

// KPI names emitted per run.
const (
	PairPrecisionPct        = "pair_precision_pct"
	PairRecallPct           = "pair_recall_pct"
	PairMissedPct           = "pair_missed_pct"
	OverallFalsePositivePct = "overall_false_positive_pct"
	TruePositive            = "true_positive"
	FalsePositive           = "false_positive"
	FalseNegative           = "false_negative"
	PredictedPairs          = "predicted_pairs_labeled"
	GroundTruthPairs        = "ground_truth_pairs_labeled"

	BaselineTruePositive     = "baseline_true_positive"
	BaselineTruePairsTotal   = "baseline_true_pairs_total"
	BaselineFalsePositive    = "baseline_false_positive"
	BaselineFalseNegative    = "baseline_false_negative"
	BaselineMatchCoveragePct = "baseline_match_coverage_pct"
	ExtraGainVsKnownPct      = "extra_gain_vs_known_pct"
	EngineTrueCoveragePct    = "engine_true_coverage_pct"
	ExtraTrueMatches         = "extra_true_matches_found"
	ExtraFalseMatches        = "extra_false_matches_found"
)

// aliases maps legacy dashboard names onto current names.
var aliases = map[string]string{
	"our_match_coverage_pct":    BaselineMatchCoveragePct,
	"our_true_positive":         BaselineTruePositive,
	"our_true_pairs_total":      BaselineTruePairsTotal,
	"senzing_true_coverage_pct": EngineTrueCoveragePct,
	"predicted_pairs":           PredictedPairs,
	"ground_truth_pairs":        GroundTruthPairs,
	"avg_pair_precision_pct":    "avg_precision_pct",
	"avg_pair_recall_pct":       "avg_recall_pct",
}

// Canonical returns the current name for a legacy KPI name.
func Canonical(name string) string {
	if c, ok := aliases[name]; ok {
		return c
	}
	return name
}

// Set is a flat mapping of KPI name to value.
type Set map[string]Value

// Get returns the named value, undefined when absent.
func (s Set) Get(name string) Value {
	return s[name]
}

// Merge copies every entry of other into s.
func (s Set) Merge(other Set) Set {
	maps.Copy(s, other)
	return s
}

// Names returns the KPI names in sorted order.
func (s Set) Names() []string {
	return slices.Sorted(maps.Keys(s))
}

// Percent scales ratio by 100 when defined, else num/den when both are
// defined and den is positive, else returns undefined. The result is
// rounded to two decimals.
func Percent(ratio, num, den Value) Value {
	if r, ok := ratio.Get(); ok {
		return Of(Round2(r * 100))
	}
	n, nok := num.Get()
	d, dok := den.Get()
	if !nok || !dok || d <= 0 {
		return Undefined
	}
	return Of(Round2(n / d * 100))
}

// Complement returns 100 - pct, rounded; undefined when pct is.
func Complement(pct Value) Value {
	p, ok := pct.Get()
	if !ok {
		return Undefined
	}
	return Of(Round2(100 - p))
}

// PairInputs are the pairwise confusion figures of one run. Precision and
// Recall are ratios in [0,1] and may be undefined.
type PairInputs struct {
	Precision        Value
	Recall           Value
	TruePositive     Value
	FalsePositive    Value
	FalseNegative    Value
	PredictedPairs   Value
	GroundTruthPairs Value
}

// Pairs derives the pair quality KPIs.
func Pairs(in PairInputs) Set {
	recall := Percent(in.Recall, in.TruePositive, Add(in.TruePositive, in.FalseNegative))
	predicted := in.PredictedPairs.Or(Add(in.TruePositive, in.FalsePositive))
	return Set{
		PairPrecisionPct:        Percent(in.Precision, in.TruePositive, Add(in.TruePositive, in.FalsePositive)),
		PairRecallPct:           recall,
		PairMissedPct:           Complement(recall),
		OverallFalsePositivePct: Percent(Undefined, in.FalsePositive, predicted),
		TruePositive:            in.TruePositive,
		FalsePositive:           in.FalsePositive,
		FalseNegative:           in.FalseNegative,
		PredictedPairs:          predicted,
		GroundTruthPairs:        in.GroundTruthPairs.Or(Add(in.TruePositive, in.FalseNegative)),
	}
}
