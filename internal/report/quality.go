package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/agentstation/matchaudit/pkg/constants"
	"github.com/agentstation/matchaudit/pkg/histogram"
	"github.com/agentstation/matchaudit/pkg/kpi"
	"github.com/agentstation/matchaudit/pkg/quality"
)

// Quality renders a quality document.
func Quality(w io.Writer, doc quality.Document) error {
	pm := doc.PairMetrics
	dm := doc.DistributionMetrics
	dq := doc.DataQuality

	b := NewBuilder(w)
	b.H1("Match Quality vs " + doc.LabelField)
	b.Bullets(
		"Generated at: "+doc.GeneratedAt.Time.Format(constants.TimeFormatHuman),
		"Run: "+Code(orDash(doc.RunID)),
		"Label source: "+Code(doc.LabelSource),
	)

	b.H2("Pair Quality")
	b.Bullets(
		fmt.Sprintf("Pair precision: %s (Out of all predicted matches, how many are correct.)", Percent(ratioPct(pm.Precision))),
		fmt.Sprintf("Pair recall: %s (Out of all real matches, how many were found.)", Percent(ratioPct(pm.Recall))),
		fmt.Sprintf("True positive: %d (Predicted match and truly a match.)", pm.TruePositive),
		fmt.Sprintf("False positive: %d (Predicted match but actually wrong.)", pm.FalsePositive),
		fmt.Sprintf("False negative: %d (Real match that was missed.)", pm.FalseNegative),
	)

	b.H2("Supporting Counts")
	b.Bullets(
		fmt.Sprintf("Predicted pairs (labeled): %d", pm.PredictedPairs),
		fmt.Sprintf("Ground-truth pairs (labeled): %d", pm.GroundTruthPairs),
		fmt.Sprintf("Labeled records evaluated: %d", dq.LabeledRecordsInUniverse),
		fmt.Sprintf("Rows with %s in input: %d of %d", doc.LabelField, dq.RowsWithLabel, dq.TotalRows),
		fmt.Sprintf("Conflicting labels: %d", dq.DuplicateConflicts),
	)

	b.H2("Cluster Size Distribution (Labeled Records)")
	b.Text("How many resolved entities were built with 1, 2, 3, 4... labeled records.")
	b.Bullets(
		fmt.Sprintf("Entities with labeled records: %d", dm.EntitiesWithLabeledRecords),
		fmt.Sprintf("Largest labeled entity size: %d", dm.LargestLabeledEntitySize),
	)
	histogramTable(b, "Entity Size (records)", "Entities Count", dm.EntitySize)

	b.H2("Pairings Distribution by Entity")
	b.Text("How many entities generated 1 pairing (size 2), 3 pairings (size 3), 6 pairings (size 4), and so on.")
	histogramTable(b, "Pairings Inside Entity", "Entities Count", dm.EntityPairings)

	b.H2("Per-Record Pairing Degree Distribution")
	b.Text("A record's degree is the number of other records grouped with it in the same resolved entity.")
	histogramTable(b, "Pairings Per Record", "Records Count", dm.RecordPairingDegree)

	return b.Build()
}

func histogramTable(b *Builder, keyHeader, countHeader string, h histogram.Histogram[int]) {
	rows := [][]string{}
	for _, k := range h.Keys() {
		rows = append(rows, []string{strconv.Itoa(k), strconv.Itoa(h.Get(k))})
	}
	if len(rows) == 0 {
		rows = append(rows, []string{"0", "0"})
	}
	b.Table([]string{keyHeader, countHeader}, rows)
}

func ratioPct(v kpi.Value) kpi.Value {
	return kpi.Percent(v, kpi.Undefined, kpi.Undefined)
}

// Percent formats a percentage value, or n/a.
func Percent(v kpi.Value) string {
	p, ok := v.Get()
	if !ok {
		return "n/a"
	}
	return strconv.FormatFloat(p, 'f', 2, 64) + "%"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
