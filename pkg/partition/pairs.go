package partition

import (
	"cmp"
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/agentstation/matchaudit/pkg/histogram"
	"github.com/agentstation/matchaudit/pkg/records"
)

// MatchedPairs derives anchor/matched pairs from resolution rows in row order.
//
// The anchor of an entity is its first level-0 row, else its first row. Each
// row with a positive match level that is not the anchor yields one pair;
// repeated pairs are kept once.
func MatchedPairs(rows iter.Seq[records.Assignment]) []records.MatchedPair {
	first := make(map[string]records.Key)
	anchors := make(map[string]records.Key)
	seen := make(map[[2]records.Key]struct{})
	var pairs []records.MatchedPair

	for row := range rows {
		key, ok := row.Key()
		group := strings.TrimSpace(row.GroupID)
		if !ok || group == "" {
			continue
		}
		if _, ok := first[group]; !ok {
			first[group] = key
		}
		if row.MatchLevel == 0 {
			if _, ok := anchors[group]; !ok {
				anchors[group] = key
			}
		}
		if row.MatchLevel <= 0 {
			continue
		}

		anchor, ok := anchors[group]
		if !ok {
			anchor = first[group]
		}
		if anchor == key {
			continue
		}
		id := [2]records.Key{anchor, key}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		pairs = append(pairs, records.MatchedPair{
			GroupID:    group,
			Anchor:     anchor,
			Matched:    key,
			MatchLevel: row.MatchLevel,
			MatchKey:   strings.TrimSpace(row.MatchKey),
		})
	}
	return pairs
}

// KeyCount is a match key and how many records it matched.
type KeyCount struct {
	Key   string `json:"key" yaml:"key"`
	Count int    `json:"count" yaml:"count"`
}

// MatchStats summarizes match levels and match keys of matched records.
type MatchStats struct {
	MatchedRecords int                      `json:"matched_records" yaml:"matched_records"`
	Levels         histogram.Histogram[int] `json:"match_level_distribution" yaml:"match_level_distribution"`
	Keys           []KeyCount               `json:"match_keys" yaml:"match_keys"`
}

// Stats counts match levels over every keyed row and match keys over rows
// with a positive level. Keys are sorted by count descending, then key.
func (r *Result) Stats() MatchStats {
	stats := MatchStats{Levels: histogram.New[int]()}
	keyCounts := make(map[string]int)
	for _, a := range r.Resolved {
		stats.Levels.Inc(a.MatchLevel)
		if a.MatchLevel <= 0 {
			continue
		}
		stats.MatchedRecords++
		if a.MatchKey != "" {
			keyCounts[a.MatchKey]++
		}
	}
	for _, k := range slices.Sorted(maps.Keys(keyCounts)) {
		stats.Keys = append(stats.Keys, KeyCount{Key: k, Count: keyCounts[k]})
	}
	slices.SortStableFunc(stats.Keys, func(a, b KeyCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return stats
}

// Top returns at most n match keys.
func (s MatchStats) Top(n int) []KeyCount {
	if n < 0 || len(s.Keys) <= n {
		return s.Keys
	}
	return s.Keys[:n]
}
