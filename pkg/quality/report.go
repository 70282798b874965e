package quality

import (
	"github.com/agentstation/matchaudit/pkg/kpi"
	"github.com/agentstation/matchaudit/pkg/partition"
)

// PairMetrics is the pair quality block of a report.
type PairMetrics struct {
	Confusion `yaml:",inline"`

	Precision kpi.Value `json:"precision" yaml:"precision"`
	Recall    kpi.Value `json:"recall" yaml:"recall"`
}

// DataQuality counts the rows that fed the evaluation.
type DataQuality struct {
	partition.Counters `yaml:",inline"`

	LabeledRecordsInUniverse int `json:"labeled_records_in_universe" yaml:"labeled_records_in_universe"`
}

// Report is the quality report of one run.
type Report struct {
	PairMetrics         PairMetrics   `json:"pair_metrics" yaml:"pair_metrics"`
	DistributionMetrics Distributions `json:"distribution_metrics" yaml:"distribution_metrics"`
	DataQuality         DataQuality   `json:"data_quality" yaml:"data_quality"`
}

// Evaluate scores a partition result.
func Evaluate(r *partition.Result) Report {
	c := Confuse(r)
	return Report{
		PairMetrics: PairMetrics{
			Confusion: c,
			Precision: c.Precision(),
			Recall:    c.Recall(),
		},
		DistributionMetrics: Distribute(r),
		DataQuality: DataQuality{
			Counters:                 r.Counters,
			LabeledRecordsInUniverse: len(r.Universe),
		},
	}
}

// Empty reports whether the universe held no records.
func (r Report) Empty() bool {
	return r.DataQuality.LabeledRecordsInUniverse == 0
}

// KPIs derives the pair KPIs of the report. An empty universe yields
// undefined values throughout.
func (r Report) KPIs() kpi.Set {
	if r.Empty() {
		return kpi.Pairs(kpi.PairInputs{})
	}
	return kpi.Pairs(r.PairMetrics.Inputs())
}
