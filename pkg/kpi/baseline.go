package kpi

// BaselineInputs feed the baseline coverage track. Counts and ratios come
// either from freshly computed discovery metrics or from an upstream
// summary; any of them may be undefined.
type BaselineInputs struct {
	BaselineTruePositive  Value
	KnownPairs            Value
	GroundTruthPairs      Value
	TruePairsTotal        Value
	BaselineFalsePositive Value
	BaselineFalseNegative Value
	BaselineMatchCoverage Value // ratio
	ExtraGainVsKnown      Value // ratio
	EngineTrueCoverage    Value // ratio
	ExtraTrueMatches      Value
	ExtraFalseMatches     Value
	OverallTruePairsFound Value
}

// Baseline derives the baseline coverage KPIs.
//
// The baseline true-positive count resolves through exactly one chain:
// baseline_true_positive, then known_pairs, then ground_truth_pairs_labeled,
// then zero. A run that supplied no input at all, typically because its
// artifacts are missing, gets an undefined track instead of zeros.
func Baseline(in BaselineInputs) Set {
	if in.empty() {
		return Set{
			BaselineTruePositive:     Undefined,
			BaselineTruePairsTotal:   Undefined,
			BaselineFalsePositive:    Undefined,
			BaselineFalseNegative:    Undefined,
			BaselineMatchCoveragePct: Undefined,
			ExtraGainVsKnownPct:      Undefined,
			EngineTrueCoveragePct:    Undefined,
			ExtraTrueMatches:         Undefined,
			ExtraFalseMatches:        Undefined,
		}
	}

	tp := in.BaselineTruePositive.Or(in.KnownPairs).Or(in.GroundTruthPairs).Or(Int(0))
	total := in.TruePairsTotal.Or(tp)

	fn := in.BaselineFalseNegative
	if !fn.Defined() {
		fn = Of(max(0, total.Float()-tp.Float()))
	}

	return Set{
		BaselineTruePositive:     tp,
		BaselineTruePairsTotal:   total,
		BaselineFalsePositive:    in.BaselineFalsePositive.Or(Int(0)),
		BaselineFalseNegative:    fn,
		BaselineMatchCoveragePct: Percent(in.BaselineMatchCoverage, tp, total),
		ExtraGainVsKnownPct:      Percent(in.ExtraGainVsKnown, in.ExtraTrueMatches, in.KnownPairs.Or(tp)),
		EngineTrueCoveragePct:    Percent(in.EngineTrueCoverage, in.OverallTruePairsFound, in.TruePairsTotal),
		ExtraTrueMatches:         in.ExtraTrueMatches,
		ExtraFalseMatches:        in.ExtraFalseMatches,
	}
}

func (in BaselineInputs) empty() bool {
	for _, v := range []Value{
		in.BaselineTruePositive, in.KnownPairs, in.GroundTruthPairs, in.TruePairsTotal,
		in.BaselineFalsePositive, in.BaselineFalseNegative, in.BaselineMatchCoverage,
		in.ExtraGainVsKnown, in.EngineTrueCoverage, in.ExtraTrueMatches,
		in.ExtraFalseMatches, in.OverallTruePairsFound,
	} {
		if v.Defined() {
			return false
		}
	}
	return true
}

// BaselineFromMap reads baseline inputs from an upstream discovery_metrics
// object. Legacy field names are accepted.
func BaselineFromMap(m map[string]any, groundTruthPairs Value) BaselineInputs {
	get := func(names ...string) Value {
		for _, name := range names {
			if v := FromAny(m[name]); v.Defined() {
				return v
			}
		}
		return Undefined
	}
	return BaselineInputs{
		BaselineTruePositive:  get("baseline_true_positive"),
		KnownPairs:            get("known_pairs", "known_pairs_ipg"),
		GroundTruthPairs:      groundTruthPairs,
		TruePairsTotal:        get("true_pairs_total"),
		BaselineFalsePositive: get("baseline_false_positive"),
		BaselineFalseNegative: get("baseline_false_negative"),
		BaselineMatchCoverage: get("baseline_match_coverage"),
		ExtraGainVsKnown:      get("extra_gain_vs_known"),
		EngineTrueCoverage:    get("engine_true_coverage", "senzing_true_coverage"),
		ExtraTrueMatches:      get("extra_true_matches_found"),
		ExtraFalseMatches:     get("extra_false_matches_found"),
		OverallTruePairsFound: get("overall_true_pairs_found"),
	}
}
