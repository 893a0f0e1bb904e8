package sheets

import (
	"bytes"
	"encoding/json"
)

// Cell is one spreadsheet value as text. Strings decode as-is, numbers and
// booleans keep their JSON spelling and null decodes as blank.
type Cell string

// UnmarshalJSON implements json.Unmarshaler
func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*c = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Cell(s)
	default:
		*c = Cell(data)
	}
	return nil
}

// Row is one sheet row
type Row []Cell

// Strings converts the row to plain strings
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = string(c)
	}
	return out
}
