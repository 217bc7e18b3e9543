package normalizer

import (
	"strconv"
	"strings"
	"text/tabwriter"
)

var cellReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ", "\v", " ", "\f", " ")

// Render writes the table as a right-aligned grid: a header line followed by
// one line per row, prefixed with its zero-based index. The output is
// deterministic and contains every cell.
func Render(t *Table) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)

	writeLine(w, "", t.Columns)
	for i, row := range t.Rows {
		writeLine(w, strconv.Itoa(i), row)
	}
	_ = w.Flush()

	return strings.TrimRight(b.String(), "\n")
}

func writeLine(w *tabwriter.Writer, index string, cells []string) {
	var line strings.Builder
	line.WriteString(index)
	line.WriteByte('\t')
	for _, c := range cells {
		line.WriteString(cellReplacer.Replace(c))
		line.WriteByte('\t')
	}
	line.WriteByte('\n')
	_, _ = w.Write([]byte(line.String()))
}
