package artifacts

import (
	"github.com/tidwall/gjson"

	"github.com/agentstation/matchaudit/pkg/kpi"
)

// Document is an upstream JSON object such as management_summary.json.
// The zero value is an absent document: every lookup is undefined.
type Document struct {
	raw []byte
}

// NewDocument wraps raw JSON. Anything but a valid object is absent.
func NewDocument(raw []byte) Document {
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return Document{}
	}
	return Document{raw: raw}
}

// Present reports whether the document was found and parsed.
func (d Document) Present() bool {
	return len(d.raw) > 0
}

// Raw returns the document bytes.
func (d Document) Raw() []byte {
	return d.raw
}

func (d Document) get(path string) gjson.Result {
	if !d.Present() {
		return gjson.Result{}
	}
	return gjson.GetBytes(d.raw, path)
}

// Value returns the first numeric value found at paths.
func (d Document) Value(paths ...string) kpi.Value {
	for _, p := range paths {
		if r := d.get(p); r.Type == gjson.Number {
			return kpi.Of(r.Num)
		}
	}
	return kpi.Undefined
}

// Int returns the first whole number found at paths.
func (d Document) Int(paths ...string) kpi.Value {
	for _, p := range paths {
		r := d.get(p)
		if r.Type == gjson.Number && r.Num == float64(int64(r.Num)) {
			return kpi.Of(r.Num)
		}
	}
	return kpi.Undefined
}

// String returns the string at path, or "".
func (d Document) String(path string) string {
	if r := d.get(path); r.Type == gjson.String {
		return r.Str
	}
	return ""
}

// Bool returns the boolean at path and whether one was present.
func (d Document) Bool(path string) (value, ok bool) {
	switch d.get(path).Type {
	case gjson.True:
		return true, true
	case gjson.False:
		return false, true
	}
	return false, false
}

// Object returns the object at path decoded into a map, or nil.
func (d Document) Object(path string) map[string]any {
	r := d.get(path)
	if !r.IsObject() {
		return nil
	}
	m, _ := r.Value().(map[string]any)
	return m
}

// Strings returns the string elements of the array at path.
func (d Document) Strings(path string) []string {
	r := d.get(path)
	if !r.IsArray() {
		return nil
	}
	var out []string
	for _, item := range r.Array() {
		out = append(out, item.String())
	}
	return out
}

// Any returns the decoded value at path, or nil.
func (d Document) Any(path string) any {
	r := d.get(path)
	if !r.Exists() {
		return nil
	}
	return r.Value()
}
