package kpi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/matchaudit/pkg/kpi"
	"github.com/agentstation/matchaudit/pkg/records"
)

func pair(anchor, matched string) records.MatchedPair {
	return records.MatchedPair{
		Anchor:  records.Key{Source: "S", ID: anchor},
		Matched: records.Key{Source: "S", ID: matched},
	}
}

func TestComputeDiscovery(t *testing.T) {
	// true groups: T1={1,2,3}, T2={4,5}; baseline groups: B1={1,2}, B2={4}, B3={5}
	sources := []records.SourceRecord{
		{ID: "1", TrueGroup: "T1", Baseline: "B1"},
		{ID: "2", TrueGroup: "T1", Baseline: "B1"},
		{ID: "3", TrueGroup: "T1"},
		{ID: "4", TrueGroup: "T2", Baseline: "B2"},
		{ID: "5", TrueGroup: "T2", Baseline: "B3"},
		{ID: "6"},
	}
	pairs := []records.MatchedPair{
		pair("1", "2"), // known, true
		pair("1", "3"), // extra, true
		pair("4", "5"), // extra, true
		pair("4", "6"), // extra, false
		pair("4", "99"),
	}

	d, ok := kpi.ComputeDiscovery(sources, pairs)
	require.True(t, ok)

	assert.Equal(t, 5, d.RecordsWithTrueGroup)
	assert.Equal(t, 4, d.RecordsWithBaseline)
	assert.Equal(t, 4, d.TruePairsTotal)
	assert.Equal(t, 1, d.BaselinePredictedPairs)
	assert.Equal(t, 1, d.BaselineTruePositive)
	assert.Equal(t, 0, d.BaselineFalsePositive)
	assert.Equal(t, 3, d.BaselineFalseNegative)
	assert.Equal(t, 1, d.KnownPairs)
	assert.Equal(t, 3, d.DiscoverableTruePairs)
	assert.Equal(t, 4, d.OverallPredictedPairs)
	assert.Equal(t, 3, d.OverallTruePairsFound)
	assert.Equal(t, 1, d.OverallFalsePairsFound)
	assert.Equal(t, 3, d.PredictedPairsBeyondKnown)
	assert.Equal(t, 2, d.ExtraTrueMatchesFound)
	assert.Equal(t, 1, d.ExtraFalseMatchesFound)
	assert.Equal(t, 1, d.NetExtraMatches)
	assert.Equal(t, kpi.Of(0.25), d.BaselineMatchCoverage)
	assert.Equal(t, kpi.Of(0.75), d.EngineTrueCoverage)
	assert.Equal(t, kpi.Of(2), d.ExtraGainVsKnown)
	assert.Equal(t, kpi.Of(0.25), d.OverallFalsePositiveRate)

	set := kpi.Baseline(d.BaselineInputs(kpi.Int(100)))
	assert.Equal(t, kpi.Int(1), set.Get(kpi.BaselineTruePositive))
	assert.Equal(t, kpi.Of(25), set.Get(kpi.BaselineMatchCoveragePct))
	assert.Equal(t, kpi.Of(200), set.Get(kpi.ExtraGainVsKnownPct))
	assert.Equal(t, kpi.Of(75), set.Get(kpi.EngineTrueCoveragePct))
}

func TestComputeDiscoveryUndefinedRatios(t *testing.T) {
	sources := []records.SourceRecord{
		{ID: "1", TrueGroup: "T1"},
		{ID: "2", TrueGroup: "T2"},
	}
	d, ok := kpi.ComputeDiscovery(sources, nil)
	require.True(t, ok)
	assert.False(t, d.BaselineMatchCoverage.Defined())
	assert.False(t, d.ExtraMatchPrecision.Defined())
	assert.False(t, d.OverallMatchCorrectness.Defined())
}

func TestComputeDiscoveryNeedsTwoLabelledRecords(t *testing.T) {
	_, ok := kpi.ComputeDiscovery([]records.SourceRecord{{ID: "1", TrueGroup: "T1"}, {ID: "2"}}, nil)
	assert.False(t, ok)

	in := kpi.Discovery{}.BaselineInputs(kpi.Int(5))
	assert.Equal(t, kpi.Int(5), kpi.Baseline(in).Get(kpi.BaselineTruePositive))
}

func TestComputeDiscoveryMatchesByRecordID(t *testing.T) {
	sources := []records.SourceRecord{
		{ID: "1", TrueGroup: "T1"},
		{ID: "2", TrueGroup: "T1"},
	}
	pairs := []records.MatchedPair{{
		Anchor:  records.Key{Source: "CRM", ID: "1"},
		Matched: records.Key{Source: "ERP", ID: "2"},
	}}

	d, ok := kpi.ComputeDiscovery(sources, pairs)
	require.True(t, ok)
	assert.Equal(t, 1, d.OverallTruePairsFound)
	assert.Equal(t, 1, d.ExtraTrueMatchesFound)
}
