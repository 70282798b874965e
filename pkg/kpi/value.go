package kpi

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Value is a number that may be undefined. Undefined is never zero: it
// marshals as null and makes dependent audit checks SKIP.
type Value struct {
	v  float64
	ok bool
}

// Undefined is the undefined value.
var Undefined = Value{}

// Of returns a defined value. NaN and infinities are undefined.
func Of(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Undefined
	}
	return Value{v: f, ok: true}
}

// Int returns a defined value holding n.
func Int(n int) Value {
	return Value{v: float64(n), ok: true}
}

// Ratio returns num/den, or undefined when den is not positive.
func Ratio(num, den int) Value {
	if den <= 0 {
		return Undefined
	}
	return Of(float64(num) / float64(den))
}

// Defined reports whether the value holds a number.
func (v Value) Defined() bool {
	return v.ok
}

// Get returns the number and whether it is defined.
func (v Value) Get() (float64, bool) {
	return v.v, v.ok
}

// Float returns the number, or zero when undefined.
func (v Value) Float() float64 {
	return v.v
}

// Or returns v when defined, else fallback.
func (v Value) Or(fallback Value) Value {
	if v.ok {
		return v
	}
	return fallback
}

// Add returns a+b, defined only when both are.
func Add(a, b Value) Value {
	if !a.ok || !b.ok {
		return Undefined
	}
	return Of(a.v + b.v)
}

// Any returns the number as an int when integral, a float64 otherwise, or
// nil when undefined.
func (v Value) Any() any {
	if !v.ok {
		return nil
	}
	if v.v == math.Trunc(v.v) && math.Abs(v.v) < 1<<53 {
		return int64(v.v)
	}
	return v.v
}

// String renders the value, or "n/a" when undefined.
func (v Value) String() string {
	if !v.ok {
		return "n/a"
	}
	return strconv.FormatFloat(v.v, 'f', -1, 64)
}

// MarshalJSON writes null for an undefined value.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

// UnmarshalJSON reads null as undefined.
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Undefined
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Of(f)
	return nil
}

// MarshalYAML writes null for an undefined value.
func (v Value) MarshalYAML() (any, error) {
	return v.Any(), nil
}

// UnmarshalYAML reads null as undefined.
func (v *Value) UnmarshalYAML(unmarshal func(any) error) error {
	var f *float64
	if err := unmarshal(&f); err != nil {
		return err
	}
	if f == nil {
		*v = Undefined
		return nil
	}
	*v = Of(*f)
	return nil
}

// FromAny converts a decoded JSON or YAML scalar into a value. Booleans,
// strings and containers are undefined.
func FromAny(raw any) Value {
	switch n := raw.(type) {
	case Value:
		return n
	case float64:
		return Of(n)
	case float32:
		return Of(float64(n))
	case int:
		return Int(n)
	case int64:
		return Of(float64(n))
	case uint64:
		return Of(float64(n))
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return Undefined
		}
		return Of(f)
	}
	return Undefined
}

// Round2 rounds half away from zero to two decimals.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Comb2 returns the number of unordered pairs in a set of n items.
func Comb2(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}
