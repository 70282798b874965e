// Package artifacts locates and reads the files a run leaves behind: the
// label source, the resolution output, matched pairs and the upstream
// summaries. A Run is loaded once and shared by every metric function.
package artifacts

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/agentstation/utc"

	"github.com/agentstation/matchaudit/pkg/constants"
	"github.com/agentstation/matchaudit/pkg/errors"
)

// runDirPattern matches YYYYMMDD_HHMMSS with an optional __label suffix.
var runDirPattern = regexp.MustCompile(`^(\d{8}_\d{6})(?:__([A-Za-z0-9._-]+))?$`)

// Artifact names a file inside a run directory.
type Artifact string

// Known artifacts.
const (
	InputSource       Artifact = constants.InputSourceFile
	Labels            Artifact = constants.LabelsFile
	EntityRecords     Artifact = constants.EntityRecordsFile
	MatchedPairs      Artifact = constants.MatchedPairsFile
	ManagementSummary Artifact = constants.ManagementSummaryFile
	QualityReport     Artifact = constants.QualityFile
	RunSummary        Artifact = constants.RunSummaryFile
	MappingSummary    Artifact = constants.MappingSummaryFile
)

// All lists every known artifact.
func All() []Artifact {
	return []Artifact{InputSource, Labels, EntityRecords, MatchedPairs, ManagementSummary, QualityReport, RunSummary, MappingSummary}
}

// Path returns the artifact path relative to the run directory.
func (a Artifact) Path() string {
	if a == InputSource {
		return string(a)
	}
	return filepath.Join(constants.TechnicalDir, string(a))
}

// Source describes where an artifact lives, for audit check sources.
func (a Artifact) Source() string {
	return filepath.ToSlash(a.Path())
}

// RunName is a parsed run directory name.
type RunName struct {
	ID        string    `json:"run_id" yaml:"run_id"`
	Timestamp string    `json:"run_timestamp" yaml:"run_timestamp"`
	Label     string    `json:"run_label,omitempty" yaml:"run_label,omitempty"`
	Time      *utc.Time `json:"run_datetime,omitempty" yaml:"run_datetime,omitempty"`
}

// ParseRunName splits a run directory name into timestamp and label.
// Names that do not follow the pattern keep the whole name as timestamp.
func ParseRunName(name string) (RunName, bool) {
	rn := RunName{ID: name, Timestamp: name}
	m := runDirPattern.FindStringSubmatch(name)
	if m == nil {
		return rn, false
	}
	rn.Timestamp, rn.Label = m[1], m[2]
	if t, err := utc.Parse(constants.RunIDLayout, rn.Timestamp); err == nil {
		rn.Time = &t
	}
	return rn, true
}

// IsRunDir reports whether name looks like a run directory.
func IsRunDir(name string) bool {
	return runDirPattern.MatchString(name)
}

// Discover lists run directories under root, newest first.
func Discover(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("output root", root)
		}
		return nil, errors.WrapIO("read", root, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && IsRunDir(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.SortFunc(names, func(a, b string) int {
		return strings.Compare(b, a)
	})
	return names, nil
}
