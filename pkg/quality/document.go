package quality

import "github.com/agentstation/utc"

// Document is a quality report as written next to a run's artifacts.
type Document struct {
	GeneratedAt utc.Time `json:"generated_at" yaml:"generated_at"`
	RunID       string   `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	LabelField  string   `json:"label_field" yaml:"label_field"`
	LabelSource string   `json:"label_source" yaml:"label_source"`

	Report `yaml:",inline"`
}
