package normalizer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// maxControlRatio is the inverse share of control bytes tolerated in text.
const maxControlRatio = 10

func parseDelimited(data []byte, comma rune) (*Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, invalid("input is empty")
	}
	if isBinary(data) {
		return nil, invalid("input contains binary data")
	}
	if !utf8.Valid(data) {
		return nil, invalid("input is not valid UTF-8")
	}
	// classic Mac files end lines with a lone CR, which encoding/csv does not split on
	if bytes.IndexByte(data, '\n') < 0 {
		data = bytes.ReplaceAll(data, []byte{'\r'}, []byte{'\n'})
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, invalid("read header: %v", err)
	}

	t := &Table{Columns: labelColumns(header)}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, invalid("%v", err)
		}
		if len(rec) > len(t.Columns) {
			line, _ := r.FieldPos(0)
			return nil, invalid("expected %d fields in line %d, saw %d", len(t.Columns), line, len(rec))
		}
		// short rows are padded with empty cells
		row := make([]string, len(t.Columns))
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// isBinary reports whether data looks like a binary blob rather than text.
// Any NUL byte qualifies; other control bytes only when they are dense.
func isBinary(data []byte) bool {
	if bytes.IndexByte(data, 0) >= 0 {
		return true
	}
	var ctrl int
	for _, b := range data {
		if (b < 0x20 && b != '\t' && b != '\n' && b != '\r') || b == 0x7f {
			ctrl++
		}
	}
	return ctrl*maxControlRatio > len(data)
}
