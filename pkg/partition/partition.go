// Package partition builds the ground-truth and resolved partitions of a run
// and the evaluation universe they share.
//
// Rows that cannot yield a usable key, label or group are excluded and
// counted. Extraction never fails.
package partition

import (
	"iter"
	"slices"
	"strings"

	"github.com/agentstation/matchaudit/pkg/records"
)

// Assignment is the resolved placement of one record.
type Assignment struct {
	GroupID    string `json:"resolved_entity_id" yaml:"resolved_entity_id"`
	MatchLevel int    `json:"match_level" yaml:"match_level"`
	MatchKey   string `json:"match_key,omitempty" yaml:"match_key,omitempty"`
}

// Counters are the data-quality counters gathered while scanning.
type Counters struct {
	TotalRows           int `json:"total_rows" yaml:"total_rows"`
	RowsWithRecordKey   int `json:"rows_with_record_key" yaml:"rows_with_record_key"`
	RowsWithLabel       int `json:"rows_with_label" yaml:"rows_with_label"`
	DuplicateConflicts  int `json:"duplicate_conflicts" yaml:"duplicate_conflicts"`
	ResolvedRows        int `json:"resolved_rows" yaml:"resolved_rows"`
	ResolvedRowsWithKey int `json:"resolved_rows_with_key" yaml:"resolved_rows_with_key"`
}

// Result holds both partitions and their intersection.
type Result struct {
	GroundTruth map[records.Key]string
	Resolved    map[records.Key]Assignment
	// Universe is sorted by source, then id.
	Universe []records.Key
	Counters Counters
}

// Extract scans the label records and the resolved rows once each.
//
// The first non-empty label seen for a key wins; a later different label
// counts as a duplicate conflict. For resolved rows the last write wins.
// Either sequence may be nil.
func Extract(labels iter.Seq[records.LabelRecord], resolved iter.Seq[records.Assignment]) *Result {
	r := &Result{
		GroundTruth: make(map[records.Key]string),
		Resolved:    make(map[records.Key]Assignment),
	}

	if labels != nil {
		for rec := range labels {
			r.Counters.TotalRows++
			key, ok := rec.Key()
			if !ok {
				continue
			}
			r.Counters.RowsWithRecordKey++
			label := strings.TrimSpace(rec.Label)
			if label == "" {
				continue
			}
			r.Counters.RowsWithLabel++
			existing, seen := r.GroundTruth[key]
			switch {
			case !seen:
				r.GroundTruth[key] = label
			case existing != label:
				r.Counters.DuplicateConflicts++
			}
		}
	}

	if resolved != nil {
		for row := range resolved {
			r.Counters.ResolvedRows++
			key, ok := row.Key()
			if !ok {
				continue
			}
			r.Counters.ResolvedRowsWithKey++
			group := strings.TrimSpace(row.GroupID)
			if group == "" {
				continue
			}
			r.Resolved[key] = Assignment{
				GroupID:    group,
				MatchLevel: row.MatchLevel,
				MatchKey:   strings.TrimSpace(row.MatchKey),
			}
		}
	}

	r.Universe = make([]records.Key, 0, min(len(r.GroundTruth), len(r.Resolved)))
	for key := range r.GroundTruth {
		if _, ok := r.Resolved[key]; ok {
			r.Universe = append(r.Universe, key)
		}
	}
	slices.SortFunc(r.Universe, records.Compare)
	return r
}

// Members groups the universe by resolved group id, then by label.
// The inner map holds the number of members per label.
func (r *Result) Members() map[string]map[string]int {
	out := make(map[string]map[string]int)
	for _, key := range r.Universe {
		group := r.Resolved[key].GroupID
		byLabel, ok := out[group]
		if !ok {
			byLabel = make(map[string]int)
			out[group] = byLabel
		}
		byLabel[r.GroundTruth[key]]++
	}
	return out
}

// LabelSizes returns the number of universe members per ground-truth label.
func (r *Result) LabelSizes() map[string]int {
	out := make(map[string]int)
	for _, key := range r.Universe {
		out[r.GroundTruth[key]]++
	}
	return out
}

// GroupSizes returns the number of universe members per resolved group.
func (r *Result) GroupSizes() map[string]int {
	out := make(map[string]int)
	for _, key := range r.Universe {
		out[r.Resolved[key].GroupID]++
	}
	return out
}
