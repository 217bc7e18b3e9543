package normalizer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// parseWorkbook reads the first sheet of an XLSX workbook. The first non-empty
// row is the header; fully empty rows are skipped.
func parseWorkbook(data []byte) (*Table, error) {
	if len(data) == 0 {
		return nil, invalid("input is empty")
	}

	xf, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, invalid("open workbook: %v", err)
	}
	defer xf.Close()

	sheets := xf.GetSheetList()
	if len(sheets) == 0 {
		return nil, invalid("workbook has no sheets")
	}

	rows, err := xf.GetRows(sheets[0])
	if err != nil {
		return nil, invalid("read sheet %q: %v", sheets[0], err)
	}

	var t *Table
	for _, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		if t == nil {
			t = &Table{Columns: labelColumns(row)}
			continue
		}
		// cells beyond the header get generated labels, like a data frame reader
		for len(row) > len(t.Columns) {
			t.Columns = append(t.Columns, fmt.Sprintf("Unnamed: %d", len(t.Columns)))
		}
		t.Rows = append(t.Rows, row)
	}
	if t == nil {
		return nil, invalid("sheet %q is empty", sheets[0])
	}

	for i, row := range t.Rows {
		if len(row) < len(t.Columns) {
			padded := make([]string, len(t.Columns))
			copy(padded, row)
			t.Rows[i] = padded
		}
	}
	return t, nil
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
