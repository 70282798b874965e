package audit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/matchaudit/pkg/histogram"
	"github.com/agentstation/matchaudit/pkg/kpi"
)

func TestEvaluate(t *testing.T) {
	sizes := histogram.New[int]()
	sizes.Add(1, 3)
	sizes.Add(4, 1)

	tests := []struct {
		name     string
		expected any
		actual   any
		want     Status
	}{
		{"within tolerance", 50.01, kpi.Of(50.00), StatusPass},
		{"outside tolerance", 50.02, kpi.Of(50.00), StatusFail},
		{"exact integers", 3, kpi.Int(3), StatusPass},
		{"json number", json.Number("6"), kpi.Int(6), StatusPass},
		{"expected missing", nil, kpi.Int(3), StatusSkip},
		{"actual undefined", 3.0, kpi.Undefined, StatusSkip},
		{"both undefined", kpi.Undefined, nil, StatusSkip},
		{"histogram equal", map[string]any{"1": 3.0, "4": 1.0}, sizes, StatusPass},
		{"histogram differs", map[string]any{"1": 2.0, "4": 1.0}, sizes, StatusFail},
		{"histogram zero counts ignored", map[string]any{"1": 3.0, "2": 0.0, "4": 1.0}, sizes, StatusPass},
		{"strings equal", "success", "success", StatusPass},
		{"strings differ", "success", "failed", StatusFail},
		{"number against string", 3.0, "3", StatusFail},
		{"number against histogram", 2.0, sizes, StatusFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Evaluate("check", tt.expected, tt.actual, "src", 0.01)
			assert.Equal(t, tt.want, c.Status())
			assert.Equal(t, "check", c.Name())
			assert.Equal(t, "src", c.Source())
		})
	}
}

func TestEvaluateNormalizesValues(t *testing.T) {
	c := Evaluate("Pair Recall (%)", kpi.Undefined, kpi.Of(75), "src", 0.01)
	assert.Nil(t, c.Expected())
	assert.Equal(t, int64(75), c.Actual())
	assert.False(t, c.Delta().Defined())

	c = Evaluate("Pair Precision (%)", 50.02, kpi.Of(50), "src", 0.01)
	d, ok := c.Delta().Get()
	require.True(t, ok)
	assert.InDelta(t, 0.02, d, 1e-9)
}

func TestRunStatus(t *testing.T) {
	pass := Check{status: StatusPass}
	fail := Check{status: StatusFail}
	skip := Check{status: StatusSkip}

	assert.Equal(t, StatusSkip, RunStatus(nil))
	assert.Equal(t, StatusSkip, RunStatus([]Check{skip, skip}))
	assert.Equal(t, StatusPass, RunStatus([]Check{skip, pass}))
	assert.Equal(t, StatusFail, RunStatus([]Check{pass, fail, skip}))
	assert.Equal(t, StatusFail, RunStatus([]Check{skip, fail}))
}

func TestCheckJSON(t *testing.T) {
	c := Evaluate("True Positive", 3.0, kpi.Int(4), "technical output/entity_records.csv", 0.01)
	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "True Positive",
		"expected": 3,
		"actual": 4,
		"status": "FAIL",
		"source": "technical output/entity_records.csv"
	}`, string(data))

	var back Check
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, StatusFail, back.Status())
	assert.Equal(t, "True Positive", back.Name())
}
