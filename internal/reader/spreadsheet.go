package reader

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// readXLSX parses a modern Excel workbook. The first sheet is assumed to
// hold the statement; protected workbooks get the same password treatment
// as PDFs.
func readXLSX(doc *RawDocument) (*ExtractedContent, error) {
	candidates := make([]string, 0, len(commonPasswords)+2)
	if doc.Password != "" {
		candidates = append(candidates, doc.Password)
	}
	candidates = append(candidates, "")
	candidates = append(candidates, commonPasswords...)

	var f *excelize.File
	var lastErr error
	for _, pw := range candidates {
		var err error
		f, err = excelize.OpenReader(bytes.NewReader(doc.Data), excelize.Options{Password: pw})
		if err == nil {
			break
		}
		f = nil
		lastErr = err
		if !isPasswordError(err) {
			return nil, fmt.Errorf("reader.readXLSX: %q: %v: %w", doc.Name, err, ErrCorruptDocument)
		}
	}
	if f == nil {
		return nil, fmt.Errorf("reader.readXLSX: %q: %v: %w", doc.Name, lastErr, ErrDecryptionFailed)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("reader.readXLSX: %q: workbook has no sheets: %w", doc.Name, ErrCorruptDocument)
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reader.readXLSX: %q: reading sheet %q: %v: %w", doc.Name, sheets[0], err, ErrCorruptDocument)
	}

	return tableContent(doc.Name, cells)
}

// readXLS parses a legacy Excel workbook. The xls library has no password
// support; protected legacy files surface as corrupt.
func readXLS(doc *RawDocument) (*ExtractedContent, error) {
	wb, err := xls.OpenReader(bytes.NewReader(doc.Data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("reader.readXLS: %q: %v: %w", doc.Name, err, ErrCorruptDocument)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("reader.readXLS: %q: workbook has no sheets: %w", doc.Name, ErrCorruptDocument)
	}

	cells := make([][]string, 0, sheet.MaxRow+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		record := make([]string, 0, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			record = append(record, row.Col(c))
		}
		cells = append(cells, record)
	}

	return tableContent(doc.Name, cells)
}

// tableContent locates the header row inside raw sheet cells and maps the
// remainder to canonical rows. Statements often carry a few banner rows
// (bank name, address) above the real header, so the first row that maps at
// least a date and one amount-ish column wins.
func tableContent(name string, cells [][]string) (*ExtractedContent, error) {
	headerIdx := -1
	var mapping map[string]int
	for i, record := range cells {
		m := mapHeaders(record)
		if _, ok := m["date"]; !ok {
			continue
		}
		if hasAmountColumn(m) {
			headerIdx = i
			mapping = m
			break
		}
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("reader.tableContent: %q: no recognizable header row: %w", name, ErrCorruptDocument)
	}

	rows := rowsFromTable(mapping, cells[headerIdx+1:])
	return &ExtractedContent{Rows: rows, RowCount: len(rows)}, nil
}

func hasAmountColumn(mapping map[string]int) bool {
	for _, key := range []string{"debit", "credit", "amount"} {
		if _, ok := mapping[key]; ok {
			return true
		}
	}
	return false
}
