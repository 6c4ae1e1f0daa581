package expiryreport

import (
	"io"
	"strings"
)

// WriteListCSV writes comma-delimited rows with every field quoted, prefixed with a BOM.
// Used for list exports where spreadsheet tools must not reinterpret values such as tax ids.
// PRE: header is non-empty
// POST: returns ErrNothingToExport without writing when rows is empty
func WriteListCSV(w io.Writer, header []string, rows [][]string) error {
	if len(rows) == 0 {
		return ErrNothingToExport
	}
	var b strings.Builder
	b.WriteString(bom)
	writeQuoted(&b, header)
	for _, r := range rows {
		writeQuoted(&b, r)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeQuoted(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString("\r\n")
}
