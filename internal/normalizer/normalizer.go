// Package normalizer turns tabular input (CSV, TSV, XLSX) into the canonical
// text rendering used as question-answering context, plus its structural
// metadata.
package normalizer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"tabqa/internal/model"
)

// ErrInvalidFormat is returned (wrapped, with a human-readable cause) for any
// input that cannot be parsed as a table.
var ErrInvalidFormat = errors.New("invalid tabular format")

// Format identifies a supported tabular encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

var zipMagic = []byte("PK\x03\x04")

// ContentType returns the MIME type used when archiving input of this format.
func (f Format) ContentType() string {
	switch f {
	case FormatTSV:
		return "text/tab-separated-values"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

// Table is a parsed header plus data rows. Every row has len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Result is the output of Normalize.
type Result struct {
	Text     string
	Metadata model.Metadata
	Format   Format
}

// Normalize reads r completely and renders it. name is only used as a format
// hint; the input is never modified.
func Normalize(r io.Reader, name string) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, invalid("read input: %v", err)
	}

	format := DetectFormat(name, data)
	table, err := Parse(data, format)
	if err != nil {
		return nil, err
	}

	return &Result{
		Text: Render(table),
		Metadata: model.Metadata{
			RowCount:    len(table.Rows),
			ColumnNames: table.Columns,
		},
		Format: format,
	}, nil
}

// DetectFormat picks the format from the file extension, then from content.
func DetectFormat(name string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".tsv", ".tab":
		return FormatTSV
	}
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX
	}
	return FormatCSV
}

// Parse decodes data in the given format.
func Parse(data []byte, format Format) (*Table, error) {
	switch format {
	case FormatXLSX:
		return parseWorkbook(data)
	case FormatTSV:
		return parseDelimited(data, '\t')
	default:
		return parseDelimited(data, ',')
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidFormat, fmt.Sprintf(format, args...))
}

// labelColumns fills blank header cells the way data frame readers do.
func labelColumns(header []string) []string {
	cols := make([]string, len(header))
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		cols[i] = h
	}
	return cols
}
