package audit

import (
	"encoding/json"
	"math"
	"reflect"

	"github.com/agentstation/matchaudit/pkg/constants"
	"github.com/agentstation/matchaudit/pkg/histogram"
	"github.com/agentstation/matchaudit/pkg/kpi"
)

// Status is the outcome of a check or a run.
type Status string

// Statuses. A run is NOT_EVALUATED until its report is built.
const (
	StatusPass         Status = "PASS"
	StatusFail         Status = "FAIL"
	StatusSkip         Status = "SKIP"
	StatusNotEvaluated Status = "NOT_EVALUATED"
)

// Check compares one emitted value with its recomputation. It is
// immutable once created.
type Check struct {
	name     string
	expected any
	actual   any
	status   Status
	source   string
}

// Name returns the check name.
func (c Check) Name() string { return c.name }

// Expected returns the emitted value, or nil.
func (c Check) Expected() any { return c.expected }

// Actual returns the recomputed value, or nil.
func (c Check) Actual() any { return c.actual }

// Status returns the outcome.
func (c Check) Status() Status { return c.status }

// Source describes the artifact the value was recomputed from.
func (c Check) Source() string { return c.source }

// Delta returns |expected - actual| for numeric checks.
func (c Check) Delta() kpi.Value {
	e, eok := numeric(c.expected)
	a, aok := numeric(c.actual)
	if !eok || !aok {
		return kpi.Undefined
	}
	return kpi.Of(math.Abs(e - a))
}

type checkJSON struct {
	Name     string `json:"name" yaml:"name"`
	Expected any    `json:"expected" yaml:"expected"`
	Actual   any    `json:"actual" yaml:"actual"`
	Status   Status `json:"status" yaml:"status"`
	Source   string `json:"source" yaml:"source"`
}

func (c Check) wire() checkJSON {
	return checkJSON{Name: c.name, Expected: c.expected, Actual: c.actual, Status: c.status, Source: c.source}
}

// MarshalJSON implements json.Marshaler.
func (c Check) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.wire())
}

// MarshalYAML implements yaml.InterfaceMarshaler.
func (c Check) MarshalYAML() (any, error) {
	return c.wire(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Check) UnmarshalJSON(data []byte) error {
	var w checkJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = Check{name: w.Name, expected: w.Expected, actual: w.Actual, status: w.Status, source: w.Source}
	return nil
}

// Evaluate compares expected with actual. Either side undefined is SKIP.
// Two numbers pass when they differ by at most tolerance. Two non-numbers
// pass when structurally equal; histograms compare by their counts.
// A number against a non-number fails.
func Evaluate(name string, expected, actual any, source string, tolerance float64) Check {
	expected, actual = normalize(expected), normalize(actual)
	c := Check{name: name, expected: expected, actual: actual, source: source}

	e, eNum := numeric(expected)
	a, aNum := numeric(actual)
	switch {
	case expected == nil || actual == nil:
		c.status = StatusSkip
	case eNum && aNum:
		c.status = pass(math.Abs(e-a) <= tolerance+constants.ToleranceEpsilon)
	case eNum || aNum:
		c.status = StatusFail
	default:
		c.status = pass(equal(expected, actual))
	}
	return c
}

func pass(ok bool) Status {
	if ok {
		return StatusPass
	}
	return StatusFail
}

// normalize maps undefined values to nil and numbers to kpi-compatible
// scalars so that reports render them uniformly.
func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case kpi.Value:
		return x.Any()
	case histogram.Histogram[int]:
		return x
	case bool, string:
		return x
	}
	if n := kpi.FromAny(v); n.Defined() {
		return n.Any()
	}
	return v
}

func numeric(v any) (float64, bool) {
	switch v.(type) {
	case bool, string, nil:
		return 0, false
	}
	return kpi.FromAny(v).Get()
}

func equal(a, b any) bool {
	ha, aok := histogram.FromAny(a)
	hb, bok := histogram.FromAny(b)
	if aok && bok {
		return ha.Equal(hb)
	}
	return reflect.DeepEqual(a, b)
}

// RunStatus folds check outcomes: SKIP when every check skipped, else
// FAIL when any failed, else PASS.
func RunStatus(checks []Check) Status {
	allSkip, anyFail := true, false
	for _, c := range checks {
		switch c.status {
		case StatusFail:
			anyFail = true
			allSkip = false
		case StatusPass:
			allSkip = false
		}
	}
	switch {
	case allSkip:
		return StatusSkip
	case anyFail:
		return StatusFail
	}
	return StatusPass
}
