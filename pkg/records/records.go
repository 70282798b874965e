// Package records defines the row-level types shared by the partition
// extractor, the artifact readers and the discovery calculator.
package records

import (
	"cmp"
	"strings"
)

// Key identifies one input record: a data source and a record id.
// Identity is exact string equality on the trimmed pair.
type Key struct {
	Source string `json:"data_source" yaml:"data_source"`
	ID     string `json:"record_id" yaml:"record_id"`
}

// ParseKey trims both parts and reports whether the key is usable.
func ParseKey(source, id string) (Key, bool) {
	k := Key{Source: strings.TrimSpace(source), ID: strings.TrimSpace(id)}
	return k, k.Valid()
}

// Valid reports whether both parts are non-empty.
func (k Key) Valid() bool {
	return k.Source != "" && k.ID != ""
}

// String renders the key as source/id.
func (k Key) String() string {
	return k.Source + "/" + k.ID
}

// Compare orders keys by source, then id.
func Compare(a, b Key) int {
	if c := cmp.Compare(a.Source, b.Source); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// LabelRecord is one row of the label source. Label is the trusted group
// id; an empty label means the record is unlabelled.
type LabelRecord struct {
	Source string
	ID     string
	Label  string
}

// Key returns the parsed record key.
func (r LabelRecord) Key() (Key, bool) {
	return ParseKey(r.Source, r.ID)
}

// Assignment is one row of the resolution output: the engine placed the
// record in GroupID. MatchLevel 0 marks the anchor (or an unmatched record).
type Assignment struct {
	Source     string
	ID         string
	GroupID    string
	MatchLevel int
	MatchKey   string
}

// Key returns the parsed record key.
func (a Assignment) Key() (Key, bool) {
	return ParseKey(a.Source, a.ID)
}

// MatchedPair links a matched record to the anchor of its resolved entity.
type MatchedPair struct {
	GroupID    string `json:"resolved_entity_id" yaml:"resolved_entity_id"`
	Anchor     Key    `json:"anchor" yaml:"anchor"`
	Matched    Key    `json:"matched" yaml:"matched"`
	MatchLevel int    `json:"match_level" yaml:"match_level"`
	MatchKey   string `json:"match_key,omitempty" yaml:"match_key,omitempty"`
}

// SourceRecord is one raw input record carrying an optional true-group
// label and an optional baseline-group label.
type SourceRecord struct {
	ID        string
	TrueGroup string
	Baseline  string
}
