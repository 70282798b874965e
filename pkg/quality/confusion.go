// Package quality scores a resolved partition against a ground-truth
// partition by pairwise confusion and builds the size distributions of the
// resolved groups. All figures cover the evaluation universe only.
package quality

import (
	"github.com/agentstation/matchaudit/pkg/kpi"
	"github.com/agentstation/matchaudit/pkg/partition"
)

// Confusion holds pairwise confusion counts.
// PredictedPairs = TruePositive + FalsePositive and
// GroundTruthPairs = TruePositive + FalseNegative when the inputs agree.
type Confusion struct {
	TruePositive     int `json:"true_positive" yaml:"true_positive"`
	FalsePositive    int `json:"false_positive" yaml:"false_positive"`
	FalseNegative    int `json:"false_negative" yaml:"false_negative"`
	PredictedPairs   int `json:"predicted_pairs" yaml:"predicted_pairs"`
	GroundTruthPairs int `json:"ground_truth_pairs" yaml:"ground_truth_pairs"`
}

// Confuse computes the confusion counts of a partition result.
func Confuse(r *partition.Result) Confusion {
	var c Confusion
	for _, n := range r.LabelSizes() {
		c.GroundTruthPairs += kpi.Comb2(n)
	}
	for _, byLabel := range r.Members() {
		size := 0
		for _, n := range byLabel {
			size += n
			c.TruePositive += kpi.Comb2(n)
		}
		c.PredictedPairs += kpi.Comb2(size)
	}
	c.FalsePositive = max(0, c.PredictedPairs-c.TruePositive)
	c.FalseNegative = max(0, c.GroundTruthPairs-c.TruePositive)
	return c
}

// Precision is TruePositive / PredictedPairs, undefined without predicted pairs.
func (c Confusion) Precision() kpi.Value {
	return kpi.Ratio(c.TruePositive, c.PredictedPairs)
}

// Recall is TruePositive / GroundTruthPairs, undefined without ground-truth pairs.
func (c Confusion) Recall() kpi.Value {
	return kpi.Ratio(c.TruePositive, c.GroundTruthPairs)
}

// Inputs returns the confusion figures as KPI inputs.
func (c Confusion) Inputs() kpi.PairInputs {
	return kpi.PairInputs{
		Precision:        c.Precision(),
		Recall:           c.Recall(),
		TruePositive:     kpi.Int(c.TruePositive),
		FalsePositive:    kpi.Int(c.FalsePositive),
		FalseNegative:    kpi.Int(c.FalseNegative),
		PredictedPairs:   kpi.Int(c.PredictedPairs),
		GroundTruthPairs: kpi.Int(c.GroundTruthPairs),
	}
}
