// Package histogram provides an ordered integer-keyed counter that
// serializes with string keys in ascending numeric order.
package histogram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/goccy/go-yaml"
)

// Integer is the set of key types a Histogram accepts.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Histogram maps a small integer key to a count.
// The zero value is empty and ready to use.
type Histogram[K Integer] struct {
	counts map[K]int
}

// New returns an empty histogram.
func New[K Integer]() Histogram[K] {
	return Histogram[K]{counts: make(map[K]int)}
}

// Add increments the count for key by n.
func (h *Histogram[K]) Add(key K, n int) {
	if n == 0 {
		return
	}
	if h.counts == nil {
		h.counts = make(map[K]int)
	}
	h.counts[key] += n
}

// Inc increments the count for key by one.
func (h *Histogram[K]) Inc(key K) {
	h.Add(key, 1)
}

// Get returns the count for key.
func (h Histogram[K]) Get(key K) int {
	return h.counts[key]
}

// Len returns the number of distinct keys.
func (h Histogram[K]) Len() int {
	return len(h.counts)
}

// Sum returns the total of all counts.
func (h Histogram[K]) Sum() int {
	total := 0
	for _, n := range h.counts {
		total += n
	}
	return total
}

// Keys returns the keys in ascending order.
func (h Histogram[K]) Keys() []K {
	return slices.Sorted(maps.Keys(h.counts))
}

// Max returns the largest key, or zero when empty.
func (h Histogram[K]) Max() K {
	var largest K
	for k := range h.counts {
		if k > largest {
			largest = k
		}
	}
	return largest
}

// Map returns a copy keyed by the decimal form of each key.
func (h Histogram[K]) Map() map[string]int {
	out := make(map[string]int, len(h.counts))
	for k, n := range h.counts {
		out[formatKey(k)] = n
	}
	return out
}

// Equal reports whether both histograms hold the same non-zero counts.
func (h Histogram[K]) Equal(other Histogram[K]) bool {
	return maps.Equal(h.nonZero(), other.nonZero())
}

func (h Histogram[K]) nonZero() map[K]int {
	out := make(map[K]int, len(h.counts))
	for k, n := range h.counts {
		if n != 0 {
			out[k] = n
		}
	}
	return out
}

// MarshalJSON writes an object with string keys in ascending numeric order.
func (h Histogram[K]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range h.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:%d", formatKey(k), h.counts[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of numeric-string keys to integer counts.
func (h *Histogram[K]) UnmarshalJSON(data []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return h.fill(raw)
}

// MarshalYAML writes a mapping with keys in ascending numeric order.
func (h Histogram[K]) MarshalYAML() (any, error) {
	out := make(yaml.MapSlice, 0, len(h.counts))
	for _, k := range h.Keys() {
		out = append(out, yaml.MapItem{Key: formatKey(k), Value: h.counts[k]})
	}
	return out, nil
}

// UnmarshalYAML reads a mapping of numeric-string keys to integer counts.
func (h *Histogram[K]) UnmarshalYAML(unmarshal func(any) error) error {
	var raw map[string]int
	if err := unmarshal(&raw); err != nil {
		return err
	}
	return h.fill(raw)
}

func (h *Histogram[K]) fill(raw map[string]int) error {
	h.counts = make(map[K]int, len(raw))
	for key, n := range raw {
		k, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return fmt.Errorf("histogram key %q: %w", key, err)
		}
		h.counts[K(k)] += n
	}
	return nil
}

// FromAny converts a decoded JSON or YAML mapping into a histogram.
// It reports false when value is not a mapping of integer-like keys to
// whole-number counts.
func FromAny(value any) (Histogram[int], bool) {
	h := New[int]()
	var ok bool
	switch m := value.(type) {
	case Histogram[int]:
		return m, true
	case map[string]any:
		ok = true
		for key, raw := range m {
			if !h.addRaw(key, raw) {
				return Histogram[int]{}, false
			}
		}
	case map[string]int:
		ok = true
		for key, n := range m {
			if !h.addRaw(key, n) {
				return Histogram[int]{}, false
			}
		}
	case yaml.MapSlice:
		ok = true
		for _, item := range m {
			if !h.addRaw(fmt.Sprint(item.Key), item.Value) {
				return Histogram[int]{}, false
			}
		}
	}
	return h, ok
}

func (h *Histogram[K]) addRaw(key string, raw any) bool {
	k, err := strconv.Atoi(key)
	if err != nil {
		return false
	}
	var n float64
	switch v := raw.(type) {
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case uint64:
		n = float64(v)
	case float64:
		n = v
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return false
		}
		n = f
	default:
		return false
	}
	if n != math.Trunc(n) {
		return false
	}
	h.Add(K(k), int(n))
	return true
}

func formatKey[K Integer](k K) string {
	return strconv.FormatInt(int64(k), 10)
}
