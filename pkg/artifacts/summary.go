package artifacts

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/matchaudit/pkg/constants"
	"github.com/agentstation/matchaudit/pkg/errors"
	"github.com/agentstation/matchaudit/pkg/kpi"
)

// Summary formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatJS   = "js"
)

// jsAssignment matches the `window.NAME = ` prefix of a JS data file.
var jsAssignment = regexp.MustCompile(`^\s*window\.([A-Za-z_$][A-Za-z0-9_$]*)\s*=\s*`)

// Summary is a previously emitted summary: either a document with a runs
// array, or a flat mapping for a single run. KPI names are canonical.
type Summary struct {
	Format   string
	Variable string
	Doc      map[string]any

	order []string
	runs  map[string]map[string]any
}

// FormatOf infers a summary format from a file extension.
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js":
		return FormatJS
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	}
	return ""
}

// LoadSummary reads an emitted summary file.
func LoadSummary(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewMissingArtifactError("", "summary", path)
		}
		return nil, errors.WrapIO("read", path, err)
	}
	s, err := ParseSummary(data, FormatOf(path))
	if err != nil {
		return nil, errors.WrapParse(s.formatOr(path), path, err)
	}
	return s, nil
}

func (s *Summary) formatOr(path string) string {
	if s != nil && s.Format != "" {
		return s.Format
	}
	if f := FormatOf(path); f != "" {
		return f
	}
	return "summary"
}

// ParseSummary decodes summary bytes. An empty format is sniffed from
// the content.
func ParseSummary(data []byte, format string) (*Summary, error) {
	trimmed := bytes.TrimSpace(data)
	if format == "" {
		switch {
		case jsAssignment.Match(trimmed):
			format = FormatJS
		case bytes.HasPrefix(trimmed, []byte("{")):
			format = FormatJSON
		default:
			format = FormatYAML
		}
	}

	s := &Summary{Format: format, runs: make(map[string]map[string]any)}
	switch format {
	case FormatJS:
		m := jsAssignment.FindSubmatch(trimmed)
		if m == nil {
			return s, errors.New("missing window.<NAME> = prefix")
		}
		s.Variable = string(m[1])
		payload := bytes.TrimSuffix(bytes.TrimSpace(trimmed[len(m[0]):]), []byte(";"))
		if err := json.Unmarshal(payload, &s.Doc); err != nil {
			return s, err
		}
	case FormatJSON:
		if err := json.Unmarshal(trimmed, &s.Doc); err != nil {
			return s, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(trimmed, &s.Doc); err != nil {
			return s, err
		}
	default:
		return s, errors.NewValidationError("format", format, "unknown summary format")
	}
	if s.Doc == nil {
		return s, errors.New("summary is not an object")
	}

	runs, isDoc := s.Doc["runs"].([]any)
	if !isDoc {
		s.add(s.Doc)
		return s, nil
	}
	for _, item := range runs {
		if run, ok := item.(map[string]any); ok {
			s.add(run)
		}
	}
	return s, nil
}

func (s *Summary) add(run map[string]any) {
	id, _ := run["run_id"].(string)
	if _, dup := s.runs[id]; dup {
		return
	}
	s.order = append(s.order, id)
	s.runs[id] = canonical(run)
}

// canonical renames legacy KPI keys. A current name already present wins.
func canonical(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if c := kpi.Canonical(k); c == k {
			out[k] = v
		}
	}
	for k, v := range m {
		if c := kpi.Canonical(k); c != k {
			if _, ok := out[c]; !ok {
				out[c] = v
			}
		}
	}
	return out
}

// RunIDs returns run ids in document order. A flat summary without a
// run_id yields a single empty id.
func (s *Summary) RunIDs() []string {
	return s.order
}

// Run returns the emitted values of one run.
func (s *Summary) Run(id string) (map[string]any, bool) {
	run, ok := s.runs[id]
	return run, ok
}

// Encode renders doc in the given format. JS output assigns the JSON
// payload to window.<variable>.
func Encode(doc any, format, variable string) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.MarshalWithOptions(doc, yaml.Indent(2), yaml.IndentSequence(false))
	case FormatJSON, FormatJS, "":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		if format != FormatJS {
			return append(data, '\n'), nil
		}
		if variable == "" {
			variable = constants.DefaultSummaryVariable
		}
		var buf bytes.Buffer
		buf.WriteString("window." + variable + " = ")
		buf.Write(data)
		buf.WriteString(";\n")
		return buf.Bytes(), nil
	}
	return nil, errors.NewValidationError("format", format, "unknown summary format")
}

// WriteSummary encodes doc by the extension of path and writes it,
// creating parent directories.
func WriteSummary(path string, doc any, variable string) error {
	data, err := Encode(doc, FormatOf(path), variable)
	if err != nil {
		return err
	}
	return WriteFile(path, data)
}
