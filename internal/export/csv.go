package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// utf8BOM makes Excel open the file as UTF-8 instead of the system code page.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes the sheet as UTF-8 CSV prefixed with a byte order mark.
func WriteCSV(w io.Writer, s Sheet) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(s.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(s.Header))
	for i, row := range s.Rows {
		for j := range record {
			record[j] = ""
			if j < len(row) {
				record[j] = text(row[j])
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
