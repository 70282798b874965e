package records_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/matchaudit/pkg/records"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		name   string
		source string
		id     string
		want   records.Key
		valid  bool
	}{
		{name: "plain", source: "PARTNER", id: "1", want: records.Key{Source: "PARTNER", ID: "1"}, valid: true},
		{name: "trimmed", source: "  PARTNER ", id: "\t7 ", want: records.Key{Source: "PARTNER", ID: "7"}, valid: true},
		{name: "missing source", source: " ", id: "7", want: records.Key{ID: "7"}, valid: false},
		{name: "missing id", source: "PARTNER", id: "", want: records.Key{Source: "PARTNER"}, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := records.ParseKey(tt.source, tt.id)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, ok)
		})
	}
}

func TestKeysAreCaseSensitive(t *testing.T) {
	a, _ := records.ParseKey("partner", "1")
	b, _ := records.ParseKey("PARTNER", "1")
	assert.NotEqual(t, a, b)
}

func TestCompare(t *testing.T) {
	keys := []records.Key{
		{Source: "B", ID: "1"},
		{Source: "A", ID: "2"},
		{Source: "A", ID: "10"},
	}
	slices.SortFunc(keys, records.Compare)
	assert.Equal(t, []records.Key{
		{Source: "A", ID: "10"},
		{Source: "A", ID: "2"},
		{Source: "B", ID: "1"},
	}, keys)
	assert.Equal(t, "A/10", keys[0].String())
}
