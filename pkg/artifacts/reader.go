package artifacts

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/agentstation/matchaudit/pkg/constants"
	"github.com/agentstation/matchaudit/pkg/errors"
	"github.com/agentstation/matchaudit/pkg/records"
)

// Fields names the label source fields.
type Fields struct {
	Source   string
	RecordID string
	Label    string
}

// DefaultFields returns DATA_SOURCE, RECORD_ID and SOURCE_IPG_ID.
func DefaultFields() Fields {
	return Fields{
		Source:   constants.DefaultSourceField,
		RecordID: constants.DefaultRecordIDField,
		Label:    constants.DefaultLabelField,
	}
}

// WithDefaults fills empty field names.
func (f Fields) WithDefaults() Fields {
	d := DefaultFields()
	if f.Source == "" {
		f.Source = d.Source
	}
	if f.RecordID == "" {
		f.RecordID = d.RecordID
	}
	if f.Label == "" {
		f.Label = d.Label
	}
	return f
}

// trueGroupFields and baselineFields are probed in order on source records.
var (
	trueGroupFields = []string{"SOURCE_TRUE_GROUP_ID", "source_true_group_id", "TRUE_GROUP_ID", "true_group_id", "TRUE_ENTITY_ID", "true_entity_id"}
	baselineFields  = []string{"IPG ID", "IPG_ID", "ipg_id", "SOURCE_IPG_ID", "source_ipg_id"}
	recordIDFields  = []string{"RECORD_ID", "record_id"}
	recordListKeys  = []string{"records", "data", "items"}
	csvDelimiters   = []rune{',', ';', '\t', '|'}
)

// readLabels reads JSON lines. Blank lines are skipped; a line that is not
// a JSON object yields a keyless record and a malformed-row warning.
func readLabels(r io.Reader, name string, fields Fields) ([]records.LabelRecord, []error, error) {
	var (
		out      []records.LabelRecord
		warnings []error
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var obj map[string]any
		dec := json.NewDecoder(bytes.NewReader(text))
		dec.UseNumber()
		if err := dec.Decode(&obj); err != nil || obj == nil {
			warnings = append(warnings, errors.NewMalformedRowError(name, line, "not a JSON object"))
			out = append(out, records.LabelRecord{})
			continue
		}
		out = append(out, records.LabelRecord{
			Source: scalar(obj[fields.Source]),
			ID:     scalar(obj[fields.RecordID]),
			Label:  scalar(obj[fields.Label]),
		})
	}
	if err := scanner.Err(); err != nil {
		return out, warnings, errors.WrapParse("jsonl", name, err)
	}
	return out, warnings, nil
}

// readSources reads the raw input records: a JSON array, or an object
// holding the array under records, data or items.
func readSources(data []byte, name string) ([]records.SourceRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.WrapParse("json", name, err)
	}

	items, ok := doc.([]any)
	if obj, isObj := doc.(map[string]any); isObj {
		for _, k := range recordListKeys {
			if items, ok = obj[k].([]any); ok {
				break
			}
		}
	}
	if !ok {
		return nil, errors.NewParseError("json", name, "no record array", nil)
	}

	out := make([]records.SourceRecord, 0, len(items))
	for i, item := range items {
		obj, _ := item.(map[string]any)
		rec := records.SourceRecord{
			ID:        firstScalar(obj, recordIDFields),
			TrueGroup: firstScalar(obj, trueGroupFields),
			Baseline:  firstScalar(obj, baselineFields),
		}
		if rec.ID == "" {
			rec.ID = strconv.Itoa(i + 1)
		}
		out = append(out, rec)
	}
	return out, nil
}

// readCSV reads a delimited file into rows keyed by normalized header.
// Headers are trimmed of quotes and spaces and lower-cased.
func readCSV(data []byte, name string) ([]map[string]string, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapParse("csv", name, err)
	}
	for i, h := range header {
		header[i] = normalizeHeader(h)
	}

	var rows []map[string]string
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, errors.WrapParse("csv", name, err)
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(fields) {
				row[h] = strings.TrimSpace(fields[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.Trim(h, "\"' \t\r\n"))
}

// sniffDelimiter picks the candidate that occurs most often in the header.
func sniffDelimiter(data []byte) rune {
	first, _, _ := bytes.Cut(data, []byte("\n"))
	best, bestCount := ',', 0
	for _, d := range csvDelimiters {
		if n := bytes.Count(first, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func assignmentsFromRows(rows []map[string]string) []records.Assignment {
	out := make([]records.Assignment, 0, len(rows))
	for _, row := range rows {
		out = append(out, records.Assignment{
			Source:     row["data_source"],
			ID:         row["record_id"],
			GroupID:    row["resolved_entity_id"],
			MatchLevel: atoi(row["match_level"]),
			MatchKey:   row["match_key"],
		})
	}
	return out
}

func pairsFromRows(rows []map[string]string) []records.MatchedPair {
	out := make([]records.MatchedPair, 0, len(rows))
	for _, row := range rows {
		out = append(out, records.MatchedPair{
			GroupID:    row["resolved_entity_id"],
			Anchor:     records.Key{Source: row["anchor_data_source"], ID: row["anchor_record_id"]},
			Matched:    records.Key{Source: row["matched_data_source"], ID: row["matched_record_id"]},
			MatchLevel: atoi(row["match_level"]),
			MatchKey:   row["match_key"],
		})
	}
	return out
}

// atoi parses a match level, treating anything unparseable as 0.
func atoi(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// scalar renders a decoded JSON scalar as a trimmed string.
func scalar(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

func firstScalar(obj map[string]any, keys []string) string {
	for _, k := range keys {
		if s := scalar(obj[k]); s != "" {
			return s
		}
	}
	return ""
}
