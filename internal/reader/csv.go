package reader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// readCSV parses a CSV export into canonical rows. Header detection is
// shared with the spreadsheet readers: bank exports often carry banner rows
// (bank name, address) above the real header, so the first record mapping a
// date plus an amount-ish column wins.
func readCSV(doc *RawDocument) (*ExtractedContent, error) {
	r := csv.NewReader(bytes.NewReader(doc.Data))
	r.FieldsPerRecord = -1 // bank exports pad or truncate trailing columns
	r.TrimLeadingSpace = true

	var table [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reader.readCSV: %q: %v: %w", doc.Name, err, ErrCorruptDocument)
		}
		if isBlankRecord(record) {
			continue
		}
		table = append(table, record)
	}

	return tableContent(doc.Name, table)
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if cell != "" {
			return false
		}
	}
	return true
}
