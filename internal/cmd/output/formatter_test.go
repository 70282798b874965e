package output

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/matchaudit/internal/cmd/table"
)

type view struct{ payload map[string]int }

func (v view) Payload() any { return v.payload }

func (v view) Table() table.Data {
	return table.Data{Headers: []string{"Key", "Value"}, Rows: [][]string{{"runs", "2"}}}
}

func (v view) Markdown(w io.Writer) error {
	_, err := io.WriteString(w, "# Runs\n")
	return err
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"md", FormatMarkdown, false},
		{"", "", false},
		{"wide", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestFormatters(t *testing.T) {
	v := view{payload: map[string]int{"runs": 2}}

	t.Run("json uses the payload", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewFormatter(FormatJSON).Format(&buf, v))
		assert.JSONEq(t, `{"runs": 2}`, buf.String())
	})

	t.Run("yaml uses the payload", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewFormatter(FormatYAML).Format(&buf, v))
		assert.Equal(t, "runs: 2\n", buf.String())
	})

	t.Run("markdown", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewFormatter(FormatMarkdown).Format(&buf, v))
		assert.Equal(t, "# Runs\n", buf.String())
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewFormatter(FormatTable).Format(&buf, v))
		assert.Contains(t, buf.String(), "runs")
		assert.Contains(t, buf.String(), "2")
	})

	t.Run("table falls back to json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewFormatter(FormatTable).Format(&buf, []int{1, 2}))
		assert.JSONEq(t, `[1, 2]`, buf.String())
	})
}
