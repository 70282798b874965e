package quality_test

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/matchaudit/pkg/kpi"
	"github.com/agentstation/matchaudit/pkg/partition"
	"github.com/agentstation/matchaudit/pkg/quality"
	"github.com/agentstation/matchaudit/pkg/records"
)

// build extracts a partition from id -> label and id -> group maps.
func build(labels, groups map[string]string) *partition.Result {
	var ls []records.LabelRecord
	for id, l := range labels {
		ls = append(ls, records.LabelRecord{Source: "S", ID: id, Label: l})
	}
	var as []records.Assignment
	for id, g := range groups {
		as = append(as, records.Assignment{Source: "S", ID: id, GroupID: g})
	}
	return partition.Extract(slices.Values(ls), slices.Values(as))
}

func scenarioA() *partition.Result {
	return build(
		map[string]string{"a": "G1", "b": "G1", "c": "G1", "d": "G2", "e": "G2"},
		map[string]string{"a": "R1", "b": "R1", "c": "R1", "d": "R1", "e": "R2"},
	)
}

func TestScenarioA(t *testing.T) {
	c := quality.Confuse(scenarioA())
	assert.Equal(t, quality.Confusion{
		TruePositive:     3,
		FalsePositive:    3,
		FalseNegative:    1,
		PredictedPairs:   6,
		GroundTruthPairs: 4,
	}, c)
	assert.Equal(t, kpi.Of(0.5), c.Precision())
	assert.Equal(t, kpi.Of(0.75), c.Recall())

	set := quality.Evaluate(scenarioA()).KPIs()
	assert.Equal(t, kpi.Of(50), set.Get(kpi.PairPrecisionPct))
	assert.Equal(t, kpi.Of(75), set.Get(kpi.PairRecallPct))
	assert.Equal(t, kpi.Of(25), set.Get(kpi.PairMissedPct))
}

func TestRecordsOutsideUniverseAreIgnored(t *testing.T) {
	r := build(
		map[string]string{"a": "G1", "b": "G1", "x": "G1"},
		map[string]string{"a": "R1", "b": "R1", "y": "R1"},
	)
	c := quality.Confuse(r)
	assert.Equal(t, 1, c.TruePositive)
	assert.Equal(t, 1, c.PredictedPairs)
	assert.Equal(t, 1, c.GroundTruthPairs)
}

func TestUndefinedOnZeroDenominators(t *testing.T) {
	r := build(
		map[string]string{"a": "G1", "b": "G2"},
		map[string]string{"a": "R1", "b": "R2"},
	)
	c := quality.Confuse(r)
	assert.Equal(t, quality.Confusion{}, c)
	assert.False(t, c.Precision().Defined())
	assert.False(t, c.Recall().Defined())
}

func TestDistributions(t *testing.T) {
	d := quality.Distribute(scenarioA())

	assert.Equal(t, map[string]int{"1": 1, "4": 1}, d.EntitySize.Map())
	assert.Equal(t, map[string]int{"0": 1, "6": 1}, d.EntityPairings.Map())
	assert.Equal(t, map[string]int{"0": 1, "3": 4}, d.RecordPairingDegree.Map())
	assert.Equal(t, 2, d.EntitiesWithLabeledRecords)
	assert.Equal(t, 4, d.LargestLabeledEntitySize)
}

// randomPartition builds n records with labels and groups drawn from small pools.
func randomPartition(seed uint64, n int) (*partition.Result, map[string]string, map[string]string) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b9))
	labels := make(map[string]string, n)
	groups := make(map[string]string, n)
	for i := range n {
		id := fmt.Sprintf("r%03d", i)
		labels[id] = fmt.Sprintf("G%d", rng.IntN(7))
		groups[id] = fmt.Sprintf("R%d", rng.IntN(9))
	}
	return build(labels, groups), labels, groups
}

func TestInvariants(t *testing.T) {
	for seed := range uint64(20) {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			r, labels, groups := randomPartition(seed, 60)
			c := quality.Confuse(r)
			d := quality.Distribute(r)

			// each label contributes comb2 of its size
			sizes := map[string]int{}
			for _, l := range labels {
				sizes[l]++
			}
			wantGT := 0
			for _, n := range sizes {
				wantGT += kpi.Comb2(n)
			}
			assert.Equal(t, wantGT, c.GroundTruthPairs)

			// each group contributes comb2 of its size to predicted
			gsizes := map[string]int{}
			for _, g := range groups {
				gsizes[g]++
			}
			wantPred := 0
			for _, n := range gsizes {
				wantPred += kpi.Comb2(n)
			}
			assert.Equal(t, wantPred, c.PredictedPairs)

			assert.Equal(t, c.PredictedPairs, c.TruePositive+c.FalsePositive)
			assert.Equal(t, c.GroundTruthPairs, c.TruePositive+c.FalseNegative)

			for _, v := range []kpi.Value{c.Precision(), c.Recall()} {
				if f, ok := v.Get(); ok {
					assert.GreaterOrEqual(t, f, 0.0)
					assert.LessOrEqual(t, f, 1.0)
				}
			}

			assert.Equal(t, len(gsizes), d.EntitySize.Sum())
			assert.Equal(t, len(gsizes), d.EntityPairings.Sum())
			assert.Equal(t, len(r.Universe), d.RecordPairingDegree.Sum())
		})
	}
}

func TestReportIsIdempotent(t *testing.T) {
	r, _, _ := randomPartition(7, 80)
	first, err := json.Marshal(quality.Evaluate(r))
	require.NoError(t, err)
	second, err := json.Marshal(quality.Evaluate(r))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestReportJSONShape(t *testing.T) {
	data, err := json.Marshal(quality.Evaluate(scenarioA()))
	require.NoError(t, err)

	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 0.5, doc["pair_metrics"]["precision"])
	assert.Equal(t, float64(6), doc["pair_metrics"]["predicted_pairs"])
	assert.Equal(t, float64(5), doc["data_quality"]["labeled_records_in_universe"])
	assert.Equal(t, float64(0), doc["data_quality"]["duplicate_conflicts"])
	assert.Equal(t, map[string]any{"1": float64(1), "4": float64(1)}, doc["distribution_metrics"]["entity_size_distribution"])
}

func TestEmptyUniverse(t *testing.T) {
	report := quality.Evaluate(build(map[string]string{"a": "G1"}, nil))
	assert.True(t, report.Empty())
	for _, name := range report.KPIs().Names() {
		assert.False(t, report.KPIs().Get(name).Defined(), name)
	}
}
