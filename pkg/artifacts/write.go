package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/agentstation/matchaudit/pkg/constants"
	"github.com/agentstation/matchaudit/pkg/errors"
	"github.com/agentstation/matchaudit/pkg/kpi"
)

// WriteQuality writes the quality report of the run at dir as JSON and,
// when markdown is non-empty, its Markdown rendering next to it.
func WriteQuality(dir string, doc any, markdown []byte) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.WrapParse("json", QualityReport.Source(), err)
	}
	path := filepath.Join(dir, QualityReport.Path())
	if err := WriteFile(path, append(data, '\n')); err != nil {
		return err
	}
	if len(markdown) == 0 {
		return nil
	}
	return WriteFile(filepath.Join(filepath.Dir(path), constants.QualityMarkdownFile), markdown)
}

// MergeDiscovery sets discovery_metrics in the run's management summary,
// leaving every other key untouched. A missing summary is created.
func MergeDiscovery(dir string, d kpi.Discovery) error {
	path := filepath.Join(dir, ManagementSummary.Path())
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		data = []byte("{}")
	case err != nil:
		return errors.WrapIO("read", path, err)
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return &errors.ParseError{Format: "json", File: ManagementSummary.Source(), Message: "not a JSON object"}
	}

	raw, err := json.Marshal(d)
	if err != nil {
		return errors.WrapParse("json", ManagementSummary.Source(), err)
	}
	out, err := sjson.SetRawBytes(data, "discovery_metrics", raw)
	if err != nil {
		return errors.WrapParse("json", ManagementSummary.Source(), err)
	}
	return WriteFile(path, pretty.Pretty(out))
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	return errors.WrapIO("write", path, os.WriteFile(path, data, constants.FilePermissions))
}
