// Package fixtures writes small run directories for tests.
package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agentstation/matchaudit/pkg/artifacts"
)

// Ground-truth labels: r1 and r2 belong together, r3 stands alone.
const Labels = `{"DATA_SOURCE":"S","RECORD_ID":"r1","SOURCE_IPG_ID":"G1"}
{"DATA_SOURCE":"S","RECORD_ID":"r2","SOURCE_IPG_ID":"G1"}
{"DATA_SOURCE":"S","RECORD_ID":"r3","SOURCE_IPG_ID":"G2"}
`

// Entities resolves all three records into one entity, so one of the
// three predicted pairs is a true positive.
const Entities = `resolved_entity_id,data_source,record_id,match_level,match_key
E1,S,r1,0,
E1,S,r2,1,+NAME
E1,S,r3,1,+NAME
`

// Sources carries the true groups and baseline ids used for discovery.
const Sources = `[
	{"RECORD_ID": "r1", "TRUE_GROUP_ID": "T1", "IPG ID": "B1"},
	{"RECORD_ID": "r2", "TRUE_GROUP_ID": "T1", "IPG ID": "B1"},
	{"RECORD_ID": "r3", "TRUE_GROUP_ID": "T2"}
]`

// WriteRun writes a complete successful run named name under root and
// returns its directory.
func WriteRun(t testing.TB, root, name string) string {
	t.Helper()
	return Write(t, filepath.Join(root, name), map[artifacts.Artifact]string{
		artifacts.InputSource:       Sources,
		artifacts.Labels:            Labels,
		artifacts.EntityRecords:     Entities,
		artifacts.ManagementSummary: `{"records_input": 3}`,
		artifacts.RunSummary:        `{"overall_ok": true}`,
	})
}

// Write writes the given artifacts into dir.
func Write(t testing.TB, dir string, files map[artifacts.Artifact]string) string {
	t.Helper()
	for a, content := range files {
		path := filepath.Join(dir, a.Path())
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("creating %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", path, err)
		}
	}
	return dir
}
