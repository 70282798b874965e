// Package matcher selects run ids with glob or regular-expression patterns.
//
// A pattern is treated as a regular expression when it contains regex-only
// syntax (anchors, groups, alternation, escapes such as \d) and as a shell
// glob otherwise:
//
//	20250101_*        every run of one day
//	*__rerun          every run labelled rerun
//	^2025010[1-3]_    a regular expression
package matcher

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// PatternType represents the type of pattern matching to use.
type PatternType int

const (
	// Glob uses shell-style glob patterns (*, ?, []).
	Glob PatternType = iota
	// Regex uses regular expressions.
	Regex
)

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	default:
		return "unknown"
	}
}

// Pattern is one compiled run id pattern.
type Pattern struct {
	raw      string
	kind     PatternType
	compiled *regexp.Regexp
}

// Compile detects the type of raw and compiles it.
func Compile(raw string) (Pattern, error) {
	p := Pattern{raw: raw, kind: detectPatternType(raw)}
	switch p.kind {
	case Regex:
		re, err := regexp.Compile(raw)
		if err != nil {
			return Pattern{}, fmt.Errorf("invalid regex pattern %q: %w", raw, err)
		}
		p.compiled = re
	default:
		if _, err := filepath.Match(raw, ""); err != nil {
			return Pattern{}, fmt.Errorf("invalid glob pattern %q: %w", raw, err)
		}
	}
	return p, nil
}

// Match reports whether id matches the pattern. Globs match the whole id,
// regular expressions any part of it.
func (p Pattern) Match(id string) bool {
	if p.kind == Regex {
		return p.compiled.MatchString(id)
	}
	ok, _ := filepath.Match(p.raw, id)
	return ok
}

// String returns the original pattern.
func (p Pattern) String() string { return p.raw }

// Type returns the detected pattern type.
func (p Pattern) Type() PatternType { return p.kind }

// Selector matches a run id against any of several patterns. The zero
// Selector and a Selector without patterns select every run.
type Selector struct {
	patterns []Pattern
}

// New compiles patterns into a Selector. Blank patterns are ignored.
func New(patterns ...string) (*Selector, error) {
	s := &Selector{}
	for _, raw := range patterns {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		p, err := Compile(raw)
		if err != nil {
			return nil, err
		}
		s.patterns = append(s.patterns, p)
	}
	return s, nil
}

// All reports whether the selector selects every run.
func (s *Selector) All() bool {
	return s == nil || len(s.patterns) == 0
}

// Match reports whether id is selected.
func (s *Selector) Match(id string) bool {
	if s.All() {
		return true
	}
	return slices.ContainsFunc(s.patterns, func(p Pattern) bool { return p.Match(id) })
}

// Filter returns the selected ids in their original order.
func (s *Selector) Filter(ids []string) []string {
	if s.All() {
		return ids
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if s.Match(id) {
			out = append(out, id)
		}
	}
	return out
}

// Patterns returns the original pattern strings.
func (s *Selector) Patterns() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.patterns))
	for i, p := range s.patterns {
		out[i] = p.raw
	}
	return out
}

// detectPatternType attempts to detect if a pattern is glob or regex.
func detectPatternType(pattern string) PatternType {
	regexIndicators := []string{
		"^", "$", "\\d", "\\w", "\\s", "\\D", "\\W", "\\S",
		"(?:", "(?i)", "{", "}", "+", "|", "(", ")", ".*",
	}
	for _, indicator := range regexIndicators {
		if strings.Contains(pattern, indicator) {
			return Regex
		}
	}
	return Glob
}
