package artifacts

import (
	"bytes"
	"iter"
	"os"
	"path/filepath"
	"slices"

	"github.com/agentstation/matchaudit/pkg/errors"
	"github.com/agentstation/matchaudit/pkg/kpi"
	"github.com/agentstation/matchaudit/pkg/records"
)

// Run holds every artifact of one run directory, read once.
// A missing or unreadable artifact leaves its field empty and is listed
// by Missing; it never fails the load.
type Run struct {
	Name RunName
	Dir  string

	Labels      []records.LabelRecord
	LabelRows   int
	Assignments []records.Assignment
	PairRows    []records.MatchedPair
	Sources     []records.SourceRecord

	Management Document
	Quality    Document
	Summary    Document
	Mapping    Document

	// Warnings collects malformed rows and unreadable artifacts.
	Warnings []error

	missing map[Artifact]bool
}

// Load reads the run directory at dir.
func Load(dir string, fields Fields) (*Run, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("run", dir)
		}
		return nil, errors.WrapIO("stat", dir, err)
	}
	if !info.IsDir() {
		return nil, errors.NewValidationError("run", dir, "not a directory")
	}

	fields = fields.WithDefaults()
	name, _ := ParseRunName(filepath.Base(filepath.Clean(dir)))
	run := &Run{Name: name, Dir: dir, missing: make(map[Artifact]bool)}

	if data, ok := run.read(Labels); ok {
		labels, warnings, err := readLabels(bytes.NewReader(data), Labels.Source(), fields)
		run.Labels = labels
		run.LabelRows = len(labels)
		run.Warnings = append(run.Warnings, warnings...)
		if err != nil {
			run.Warnings = append(run.Warnings, err)
		}
	}

	if data, ok := run.read(EntityRecords); ok {
		rows, err := readCSV(data, EntityRecords.Source())
		run.absorb(EntityRecords, err)
		if err == nil {
			run.Assignments = assignmentsFromRows(rows)
		}
	}

	if data, ok := run.read(MatchedPairs); ok {
		rows, err := readCSV(data, MatchedPairs.Source())
		run.absorb(MatchedPairs, err)
		if err == nil {
			run.PairRows = pairsFromRows(rows)
		}
	}

	if data, ok := run.read(InputSource); ok {
		sources, err := readSources(data, InputSource.Source())
		run.absorb(InputSource, err)
		run.Sources = sources
	}

	run.Management = run.document(ManagementSummary)
	run.Quality = run.document(QualityReport)
	run.Summary = run.document(RunSummary)
	run.Mapping = run.document(MappingSummary)
	return run, nil
}

// Absent returns a run for dir with every artifact missing. It stands in
// for a run directory that no longer exists.
func Absent(dir string) *Run {
	name, _ := ParseRunName(filepath.Base(filepath.Clean(dir)))
	run := &Run{Name: name, Dir: dir, missing: make(map[Artifact]bool)}
	for _, a := range All() {
		run.missing[a] = true
	}
	return run
}

// read returns the artifact bytes, recording it as missing on failure.
func (r *Run) read(a Artifact) ([]byte, bool) {
	path := filepath.Join(r.Dir, a.Path())
	data, err := os.ReadFile(path)
	if err != nil {
		r.missing[a] = true
		if os.IsNotExist(err) {
			r.Warnings = append(r.Warnings, errors.NewMissingArtifactError(r.Name.ID, string(a), path))
		} else {
			r.Warnings = append(r.Warnings, errors.WrapIO("read", path, err))
		}
		return nil, false
	}
	return data, true
}

// absorb marks an artifact that failed to parse as missing.
func (r *Run) absorb(a Artifact, err error) {
	if err == nil {
		return
	}
	r.missing[a] = true
	r.Warnings = append(r.Warnings, err)
}

func (r *Run) document(a Artifact) Document {
	data, ok := r.read(a)
	if !ok {
		return Document{}
	}
	doc := NewDocument(data)
	if !doc.Present() {
		r.absorb(a, errors.NewParseError("json", a.Source(), "not a JSON object", nil))
	}
	return doc
}

// Has reports whether the artifact was read.
func (r *Run) Has(a Artifact) bool {
	return !r.missing[a]
}

// Missing lists artifacts that were absent or unreadable.
func (r *Run) Missing() []Artifact {
	var out []Artifact
	for a := range r.missing {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}

// LabelSeq yields the label records.
func (r *Run) LabelSeq() iter.Seq[records.LabelRecord] {
	return slices.Values(r.Labels)
}

// AssignmentSeq yields the resolution rows. It is nil when the resolution
// output is missing.
func (r *Run) AssignmentSeq() iter.Seq[records.Assignment] {
	if !r.Has(EntityRecords) {
		return nil
	}
	return slices.Values(r.Assignments)
}

// RecordsInput counts non-empty label lines, falling back to the number of
// source records.
func (r *Run) RecordsInput() kpi.Value {
	if r.Has(Labels) {
		return kpi.Int(r.LabelRows)
	}
	if r.Has(InputSource) {
		return kpi.Int(len(r.Sources))
	}
	return kpi.Undefined
}

// MatchedPairCount counts data rows in matched_pairs.csv.
func (r *Run) MatchedPairCount() kpi.Value {
	if !r.Has(MatchedPairs) {
		return kpi.Undefined
	}
	return kpi.Int(len(r.PairRows))
}

// ResolvedEntities counts distinct non-empty entity ids in the resolution output.
func (r *Run) ResolvedEntities() kpi.Value {
	if !r.Has(EntityRecords) {
		return kpi.Undefined
	}
	seen := make(map[string]struct{})
	for _, a := range r.Assignments {
		if a.GroupID != "" {
			seen[a.GroupID] = struct{}{}
		}
	}
	return kpi.Int(len(seen))
}

// SourceInputName is the base name of the input file recorded in the mapping summary.
func (r *Run) SourceInputName() string {
	if in := r.Mapping.String("input_json"); in != "" {
		return filepath.Base(in)
	}
	return ""
}

// Label is the run label from the mapping summary, else from the directory name.
func (r *Run) Label() string {
	if l := r.Mapping.String("output_label"); l != "" {
		return l
	}
	return r.Name.Label
}
