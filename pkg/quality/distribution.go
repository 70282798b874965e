package quality

import (
	"github.com/agentstation/matchaudit/pkg/histogram"
	"github.com/agentstation/matchaudit/pkg/kpi"
	"github.com/agentstation/matchaudit/pkg/partition"
)

// Distributions describe resolved group sizes over the universe.
type Distributions struct {
	// EntitySize maps group size to the number of groups; sums to the group count.
	EntitySize histogram.Histogram[int] `json:"entity_size_distribution" yaml:"entity_size_distribution"`

	// EntityPairings maps internal pair count to the number of groups; sums to the group count.
	EntityPairings histogram.Histogram[int] `json:"entity_pairings_distribution" yaml:"entity_pairings_distribution"`

	// RecordPairingDegree maps size-1 to the number of members; sums to the universe size.
	RecordPairingDegree histogram.Histogram[int] `json:"record_pairing_degree_distribution" yaml:"record_pairing_degree_distribution"`

	EntitiesWithLabeledRecords int `json:"entities_with_labeled_records" yaml:"entities_with_labeled_records"`
	LargestLabeledEntitySize   int `json:"largest_labeled_entity_size" yaml:"largest_labeled_entity_size"`
}

// Distribute builds the size distributions of a partition result.
func Distribute(r *partition.Result) Distributions {
	d := Distributions{
		EntitySize:          histogram.New[int](),
		EntityPairings:      histogram.New[int](),
		RecordPairingDegree: histogram.New[int](),
	}
	for _, size := range r.GroupSizes() {
		d.EntitySize.Inc(size)
	}
	for _, size := range d.EntitySize.Keys() {
		groups := d.EntitySize.Get(size)
		d.EntityPairings.Add(kpi.Comb2(size), groups)
		d.RecordPairingDegree.Add(max(0, size-1), size*groups)
	}
	d.EntitiesWithLabeledRecords = d.EntitySize.Sum()
	d.LargestLabeledEntitySize = d.EntitySize.Max()
	return d
}
