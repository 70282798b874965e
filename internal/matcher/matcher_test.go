package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectPatternType(t *testing.T) {
	tests := []struct {
		pattern string
		want    PatternType
	}{
		{"20250101_*", Glob},
		{"*__rerun", Glob},
		{"2025010[12]_*", Glob},
		{"20250101_120000", Glob},
		{"^20250101_", Regex},
		{"rerun$", Regex},
		{`\d{8}_\d{6}`, Regex},
		{"(a|b)", Regex},
		{"2025.*", Regex},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, detectPatternType(tt.pattern))
		})
	}
}

func TestPatternMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		id      string
		want    bool
	}{
		{"glob prefix", "20250101_*", "20250101_120000", true},
		{"glob other day", "20250101_*", "20250102_120000", false},
		{"glob is anchored", "0101_*", "20250101_120000", false},
		{"glob label", "*__rerun", "20250101_120000__rerun", true},
		{"glob exact", "20250101_120000", "20250101_120000", true},
		{"regex unanchored", "0101_12.*", "20250101_120000", true},
		{"regex anchored", "^20250101_", "20250101_120000", true},
		{"regex class", `^2025010[1-3]_\d+$`, "20250103_000000", true},
		{"regex suffix", "rerun$", "20250101_120000__rerun", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Match(tt.id))
			assert.Equal(t, tt.pattern, p.String())
		})
	}
}

func TestCompileInvalid(t *testing.T) {
	_, err := Compile("^(unclosed")
	assert.Error(t, err)

	_, err = Compile("[unclosed")
	assert.Error(t, err)

	_, err = New("20250101_*", "^(bad")
	assert.Error(t, err)
}

func TestSelector(t *testing.T) {
	ids := []string{"20250103_000000", "20250102_000000__rerun", "20250101_000000"}

	all, err := New()
	require.NoError(t, err)
	assert.True(t, all.All())
	assert.Equal(t, ids, all.Filter(ids))

	blank, err := New("", "  ")
	require.NoError(t, err)
	assert.True(t, blank.All())

	var nilSel *Selector
	assert.True(t, nilSel.Match("anything"))
	assert.Nil(t, nilSel.Patterns())

	s, err := New("20250101_*", "rerun$")
	require.NoError(t, err)
	assert.False(t, s.All())
	assert.Equal(t, []string{"20250102_000000__rerun", "20250101_000000"}, s.Filter(ids))
	assert.Equal(t, []string{"20250101_*", "rerun$"}, s.Patterns())
	assert.False(t, s.Match("20250103_000000"))
}
