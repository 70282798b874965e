// Package table converts evaluation, build and audit results into rows for
// table output.
package table

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/matchaudit/internal/cmd/emoji"
	"github.com/agentstation/matchaudit/pkg/audit"
	"github.com/agentstation/matchaudit/pkg/histogram"
	"github.com/agentstation/matchaudit/pkg/kpi"
	"github.com/agentstation/matchaudit/pkg/quality"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Title           string
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

var title = cases.Title(language.English)

// Label turns a snake_case key into a title-cased column label.
func Label(key string) string {
	return title.String(strings.ReplaceAll(key, "_", " "))
}

// Status prefixes an audit status with its symbol.
func Status(s audit.Status) string {
	switch s {
	case audit.StatusPass:
		return emoji.Success + " " + string(s)
	case audit.StatusFail:
		return emoji.Error + " " + string(s)
	case audit.StatusSkip:
		return emoji.Optional + " " + string(s)
	}
	return emoji.Unknown + " " + string(s)
}

// FormatNumber formats large numbers with comma separators.
func FormatNumber(n int64) string {
	str := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, str = "-", str[1:]
	}
	if len(str) <= 3 {
		return sign + str
	}

	var b strings.Builder
	for i, r := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String()
}

// Value formats a KPI value, "-" when undefined.
func Value(v kpi.Value) string {
	f, ok := v.Get()
	if !ok {
		return "-"
	}
	if f == float64(int64(f)) {
		return FormatNumber(int64(f))
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// KPIsToTableData lists a KPI set by name.
func KPIsToTableData(set kpi.Set) Data {
	rows := make([][]string, 0, len(set))
	for _, name := range set.Names() {
		rows = append(rows, []string{Label(name), Value(set.Get(name))})
	}
	return Data{
		Title:           "KPIs",
		Headers:         []string{"KPI", "Value"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

// HistogramToTableData lists histogram buckets in key order.
func HistogramToTableData(name, keyHeader string, h histogram.Histogram[int]) Data {
	rows := make([][]string, 0, h.Len())
	for _, k := range h.Keys() {
		rows = append(rows, []string{strconv.Itoa(k), FormatNumber(int64(h.Get(k)))})
	}
	return Data{
		Title:           name,
		Headers:         []string{keyHeader, "Count"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignRight},
	}
}

// QualityToTableData renders a quality report as its pair metrics followed
// by the three distributions.
func QualityToTableData(doc quality.Document) []Data {
	pm := doc.PairMetrics
	pct := func(v kpi.Value) string {
		return Value(kpi.Percent(v, kpi.Undefined, kpi.Undefined))
	}
	pairs := Data{
		Title:   "Pair quality vs " + doc.LabelField,
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Precision %", pct(pm.Precision)},
			{"Recall %", pct(pm.Recall)},
			{"True Positive", FormatNumber(int64(pm.TruePositive))},
			{"False Positive", FormatNumber(int64(pm.FalsePositive))},
			{"False Negative", FormatNumber(int64(pm.FalseNegative))},
			{"Predicted Pairs", FormatNumber(int64(pm.PredictedPairs))},
			{"Ground Truth Pairs", FormatNumber(int64(pm.GroundTruthPairs))},
			{"Labeled Records", FormatNumber(int64(doc.DataQuality.LabeledRecordsInUniverse))},
		},
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
	dm := doc.DistributionMetrics
	return []Data{
		pairs,
		HistogramToTableData("Entity size", "Records", dm.EntitySize),
		HistogramToTableData("Pairings per entity", "Pairings", dm.EntityPairings),
		HistogramToTableData("Pairing degree per record", "Degree", dm.RecordPairingDegree),
	}
}

// RecordsToTableData lists built run records, one row per run.
func RecordsToTableData(records []audit.Record) Data {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.RunID,
			r.RunStatus,
			Value(r.RecordsInput),
			Value(r.ResolvedEntities),
			Value(r.MatchedPairs),
			Value(r.PairPrecisionPct),
			Value(r.PairRecallPct),
			Value(r.BaselineMatchCoveragePct),
		})
	}
	return Data{
		Title:           "Runs",
		Headers:         []string{"Run ID", "Status", "Records", "Entities", "Pairs", "Precision %", "Recall %", "Baseline %"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight},
	}
}

// SummaryToTableData renders the cross-run summary as key/value rows.
func SummaryToTableData(s audit.Summary) Data {
	latest := "-"
	if s.LatestRunID != nil {
		latest = *s.LatestRunID
	}
	return Data{
		Title:   "Summary",
		Headers: []string{"Property", "Value"},
		Rows: [][]string{
			{"Runs", FormatNumber(int64(s.RunsTotal))},
			{"Runs With Quality", FormatNumber(int64(s.QualityRunsTotal))},
			{"Successful", FormatNumber(int64(s.SuccessfulRuns))},
			{"Failed", FormatNumber(int64(s.FailedRuns))},
			{"Incomplete", FormatNumber(int64(s.IncompleteRuns))},
			{"Latest Run", latest},
			{"Avg Precision %", Value(s.AvgPrecisionPct)},
			{"Avg Recall %", Value(s.AvgRecallPct)},
			{"Records Input", FormatNumber(int64(s.RecordsInputTotal))},
			{"Matched Pairs", FormatNumber(int64(s.MatchedPairsTotal))},
		},
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

// AuditToTableData renders an audit report as a run table and, when any
// check failed, a failed-check table.
func AuditToTableData(r *audit.Report) []Data {
	runs := Data{
		Title:   "Audit " + r.AuditID,
		Headers: []string{"Run ID", "Run Status", "Audit", "Failed Checks"},
	}
	for _, run := range r.Runs {
		runs.Rows = append(runs.Rows, []string{run.RunID, run.RunStatus, Status(run.Status), strconv.Itoa(len(run.Failed()))})
	}
	out := []Data{runs}

	failed := r.Failed()
	if len(failed) == 0 {
		return out
	}
	checks := Data{
		Title:   "Failed checks",
		Headers: []string{"Run ID", "Check", "Expected", "Recomputed", "Source"},
	}
	for _, f := range failed {
		checks.Rows = append(checks.Rows, []string{
			f.RunID,
			f.Check.Name(),
			checkValue(f.Check.Expected()),
			checkValue(f.Check.Actual()),
			f.Check.Source(),
		})
	}
	return append(out, checks)
}

func checkValue(v any) string {
	if v == nil {
		return "-"
	}
	if f, ok := v.(float64); ok {
		return Value(kpi.Of(f))
	}
	if h, ok := v.(histogram.Histogram[int]); ok {
		parts := make([]string, 0, h.Len())
		for _, k := range h.Keys() {
			parts = append(parts, strconv.Itoa(k)+":"+strconv.Itoa(h.Get(k)))
		}
		return strings.Join(parts, " ")
	}
	return fmt.Sprint(v)
}
