package kpi

import (
	"strings"

	"github.com/agentstation/matchaudit/pkg/records"
)

// Discovery measures what the engine found beyond the pairs the baseline
// grouping already knew. Ratios are undefined on a zero denominator.
type Discovery struct {
	Available                 bool  `json:"available" yaml:"available"`
	RecordsWithTrueGroup      int   `json:"records_with_true_group" yaml:"records_with_true_group"`
	RecordsWithBaseline       int   `json:"records_with_baseline" yaml:"records_with_baseline"`
	TruePairsTotal            int   `json:"true_pairs_total" yaml:"true_pairs_total"`
	BaselinePredictedPairs    int   `json:"baseline_predicted_pairs" yaml:"baseline_predicted_pairs"`
	BaselineTruePositive      int   `json:"baseline_true_positive" yaml:"baseline_true_positive"`
	BaselineFalsePositive     int   `json:"baseline_false_positive" yaml:"baseline_false_positive"`
	BaselineFalseNegative     int   `json:"baseline_false_negative" yaml:"baseline_false_negative"`
	BaselineMatchPrecision    Value `json:"baseline_match_precision" yaml:"baseline_match_precision"`
	KnownPairs                int   `json:"known_pairs" yaml:"known_pairs"`
	BaselineMatchCoverage     Value `json:"baseline_match_coverage" yaml:"baseline_match_coverage"`
	DiscoverableTruePairs     int   `json:"discoverable_true_pairs" yaml:"discoverable_true_pairs"`
	PredictedPairsBeyondKnown int   `json:"predicted_pairs_beyond_known" yaml:"predicted_pairs_beyond_known"`
	ExtraTrueMatchesFound     int   `json:"extra_true_matches_found" yaml:"extra_true_matches_found"`
	ExtraFalseMatchesFound    int   `json:"extra_false_matches_found" yaml:"extra_false_matches_found"`
	ExtraMatchPrecision       Value `json:"extra_match_precision" yaml:"extra_match_precision"`
	ExtraMatchRecall          Value `json:"extra_match_recall" yaml:"extra_match_recall"`
	ExtraGainVsKnown          Value `json:"extra_gain_vs_known" yaml:"extra_gain_vs_known"`
	NetExtraMatches           int   `json:"net_extra_matches" yaml:"net_extra_matches"`
	OverallPredictedPairs     int   `json:"overall_predicted_pairs" yaml:"overall_predicted_pairs"`
	OverallTruePairsFound     int   `json:"overall_true_pairs_found" yaml:"overall_true_pairs_found"`
	OverallFalsePairsFound    int   `json:"overall_false_pairs_found" yaml:"overall_false_pairs_found"`
	OverallFalsePositiveRate  Value `json:"overall_false_positive_rate" yaml:"overall_false_positive_rate"`
	OverallMatchCorrectness   Value `json:"overall_match_correctness" yaml:"overall_match_correctness"`
	EngineTrueCoverage        Value `json:"engine_true_coverage" yaml:"engine_true_coverage"`
}

// ComputeDiscovery scores matched pairs against the true groups of the
// source records and the pairs their baseline groups already implied.
// Pairs reference source records by record id alone: the source file of a
// run holds a single data source, so the data source of a pair key is not
// consulted. It reports false when fewer than two records carry a true group.
func ComputeDiscovery(sources []records.SourceRecord, pairs []records.MatchedPair) (Discovery, bool) {
	type truth struct{ group, baseline string }
	byID := make(map[string]truth, len(sources))
	groupSizes := make(map[string]int)
	baselineGroups := make(map[string]map[string]int)

	var d Discovery
	for _, rec := range sources {
		t := truth{group: strings.TrimSpace(rec.TrueGroup), baseline: strings.TrimSpace(rec.Baseline)}
		byID[strings.TrimSpace(rec.ID)] = t
		if t.baseline != "" {
			d.RecordsWithBaseline++
		}
		if t.group == "" {
			continue
		}
		d.RecordsWithTrueGroup++
		groupSizes[t.group]++
		if t.baseline != "" {
			if baselineGroups[t.baseline] == nil {
				baselineGroups[t.baseline] = make(map[string]int)
			}
			baselineGroups[t.baseline][t.group]++
		}
	}
	if d.RecordsWithTrueGroup <= 1 {
		return Discovery{}, false
	}

	for _, n := range groupSizes {
		d.TruePairsTotal += Comb2(n)
	}
	for _, byGroup := range baselineGroups {
		size := 0
		for _, n := range byGroup {
			size += n
			d.BaselineTruePositive += Comb2(n)
		}
		d.BaselinePredictedPairs += Comb2(size)
	}
	d.Available = true
	d.BaselineFalsePositive = max(0, d.BaselinePredictedPairs-d.BaselineTruePositive)
	d.BaselineFalseNegative = max(0, d.TruePairsTotal-d.BaselineTruePositive)
	d.KnownPairs = d.BaselineTruePositive
	d.DiscoverableTruePairs = d.BaselineFalseNegative

	for _, p := range pairs {
		anchor, ok := byID[strings.TrimSpace(p.Anchor.ID)]
		if !ok {
			continue
		}
		matched, ok := byID[strings.TrimSpace(p.Matched.ID)]
		if !ok {
			continue
		}
		isTrue := anchor.group != "" && anchor.group == matched.group
		isKnown := anchor.baseline != "" && anchor.baseline == matched.baseline

		d.OverallPredictedPairs++
		if isTrue {
			d.OverallTruePairsFound++
		} else {
			d.OverallFalsePairsFound++
		}
		if isKnown {
			continue
		}
		d.PredictedPairsBeyondKnown++
		if isTrue {
			d.ExtraTrueMatchesFound++
		} else {
			d.ExtraFalseMatchesFound++
		}
	}

	d.BaselineMatchPrecision = Ratio(d.BaselineTruePositive, d.BaselinePredictedPairs)
	d.BaselineMatchCoverage = Ratio(d.BaselineTruePositive, d.TruePairsTotal)
	d.ExtraMatchPrecision = Ratio(d.ExtraTrueMatchesFound, d.PredictedPairsBeyondKnown)
	d.ExtraMatchRecall = Ratio(d.ExtraTrueMatchesFound, d.DiscoverableTruePairs)
	d.ExtraGainVsKnown = Ratio(d.ExtraTrueMatchesFound, d.KnownPairs)
	d.NetExtraMatches = d.ExtraTrueMatchesFound - d.ExtraFalseMatchesFound
	d.OverallFalsePositiveRate = Ratio(d.OverallFalsePairsFound, d.OverallPredictedPairs)
	d.OverallMatchCorrectness = Ratio(d.OverallTruePairsFound, d.OverallPredictedPairs)
	d.EngineTrueCoverage = Ratio(d.OverallTruePairsFound, d.TruePairsTotal)
	return d, true
}

// BaselineInputs converts discovery metrics into baseline track inputs.
func (d Discovery) BaselineInputs(groundTruthPairs Value) BaselineInputs {
	if !d.Available {
		return BaselineInputs{GroundTruthPairs: groundTruthPairs}
	}
	return BaselineInputs{
		BaselineTruePositive:  Int(d.BaselineTruePositive),
		KnownPairs:            Int(d.KnownPairs),
		GroundTruthPairs:      groundTruthPairs,
		TruePairsTotal:        Int(d.TruePairsTotal),
		BaselineFalsePositive: Int(d.BaselineFalsePositive),
		BaselineFalseNegative: Int(d.BaselineFalseNegative),
		BaselineMatchCoverage: d.BaselineMatchCoverage,
		ExtraGainVsKnown:      d.ExtraGainVsKnown,
		EngineTrueCoverage:    d.EngineTrueCoverage,
		ExtraTrueMatches:      Int(d.ExtraTrueMatchesFound),
		ExtraFalseMatches:     Int(d.ExtraFalseMatchesFound),
		OverallTruePairsFound: Int(d.OverallTruePairsFound),
	}
}
