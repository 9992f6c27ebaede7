package reader

import (
	"context"
	"errors"
	"testing"
)

func TestNormalizeMediaType(t *testing.T) {
	tests := []struct {
		name      string
		mediaType string
		fileName  string
		want      fileFormat
	}{
		{"pdf media type", "application/pdf", "statement.bin", formatPDF},
		{"pdf with charset", "application/pdf; charset=binary", "x", formatPDF},
		{"csv media type", "text/csv", "x", formatCSV},
		{"xlsx media type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "x", formatXLSX},
		{"xls media type", "application/vnd.ms-excel", "x", formatXLS},
		{"extension fallback pdf", "application/octet-stream", "Statement_Mar.PDF", formatPDF},
		{"extension fallback csv", "", "export.csv", formatCSV},
		{"extension fallback xlsx", "", "book.xlsx", formatXLSX},
		{"unknown both ways", "image/png", "scan.png", formatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeMediaType(tt.mediaType, tt.fileName); got != tt.want {
				t.Errorf("normalizeMediaType(%q, %q) = %v, want %v", tt.mediaType, tt.fileName, got, tt.want)
			}
		})
	}
}

func TestReadUnsupportedFormat(t *testing.T) {
	_, err := Read(context.Background(), &RawDocument{
		Name:      "scan.png",
		MediaType: "image/png",
		Data:      []byte{0x89, 0x50},
	})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestReadCSV(t *testing.T) {
	data := []byte("Txn Date,Narration,Withdrawal,Deposit,Closing Balance\n" +
		"\n" +
		"01/03/2024,UPI-SWIGGY,450.00,,51550.00\n" +
		"05/03/2024,SALARY CREDIT,,50000.00,101550.00\n" +
		",,,,\n")

	content, err := Read(context.Background(), &RawDocument{Name: "export.csv", MediaType: "text/csv", Data: data})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if !content.HasRows() {
		t.Fatal("expected tabular content")
	}
	if content.RowCount != 2 {
		t.Fatalf("RowCount = %d, want 2 (blank records dropped)", content.RowCount)
	}

	first := content.Rows[0]
	if first["date"] != "01/03/2024" {
		t.Errorf("date = %q", first["date"])
	}
	if first["description"] != "UPI-SWIGGY" {
		t.Errorf("description = %q", first["description"])
	}
	if first["debit"] != "450.00" {
		t.Errorf("debit = %q", first["debit"])
	}
	if first["credit"] != "" {
		t.Errorf("credit = %q, want empty", first["credit"])
	}
	if first["balance"] != "51550.00" {
		t.Errorf("balance = %q", first["balance"])
	}
}

func TestReadCSVSkipsBannerRows(t *testing.T) {
	data := []byte("HDFC BANK LTD\n" +
		"Branch: MG Road Bengaluru\n" +
		"Statement of account,,,,\n" +
		"Txn Date,Narration,Withdrawal,Deposit,Closing Balance\n" +
		"01/03/2024,UPI-SWIGGY,450.00,,51550.00\n")

	content, err := Read(context.Background(), &RawDocument{Name: "export.csv", MediaType: "text/csv", Data: data})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if content.RowCount != 1 {
		t.Fatalf("RowCount = %d, want 1 (banner rows above the header skipped)", content.RowCount)
	}
	if content.Rows[0]["description"] != "UPI-SWIGGY" {
		t.Errorf("description = %q", content.Rows[0]["description"])
	}
}

func TestReadCSVCorrupt(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unbalanced quote", "Date,Description\n\"unclosed,500\n"},
		{"empty file", ""},
		{"only blank records", ",,\n,,\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(context.Background(), &RawDocument{Name: "bad.csv", MediaType: "text/csv", Data: []byte(tt.data)})
			if !errors.Is(err, ErrCorruptDocument) {
				t.Errorf("err = %v, want ErrCorruptDocument", err)
			}
		})
	}
}

func TestMapHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    map[string]int
	}{
		{
			name:    "standard export",
			headers: []string{"Txn Date", "Particulars", "Debit", "Credit", "Balance"},
			want:    map[string]int{"date": 0, "description": 1, "debit": 2, "credit": 3, "balance": 4},
		},
		{
			name:    "debit amount maps to debit not amount",
			headers: []string{"Value Date", "Narration", "Dr Amount", "Cr Amount"},
			want:    map[string]int{"date": 0, "description": 1, "debit": 2, "credit": 3},
		},
		{
			name:    "single amount column with type",
			headers: []string{"Date", "Details", "Amount", "Dr/Cr"},
			want:    map[string]int{"date": 0, "description": 1, "amount": 2, "type": 3},
		},
		{
			name:    "unrecognized columns absent",
			headers: []string{"Date", "Cheque No", "Narration"},
			want:    map[string]int{"date": 0, "description": 2},
		},
		{
			name:    "first matching column wins",
			headers: []string{"Posting Date", "Value Date", "Memo"},
			want:    map[string]int{"date": 0, "description": 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapHeaders(tt.headers)
			if len(got) != len(tt.want) {
				t.Fatalf("mapHeaders(%v) = %v, want %v", tt.headers, got, tt.want)
			}
			for canonical, idx := range tt.want {
				if got[canonical] != idx {
					t.Errorf("%s = %d, want %d", canonical, got[canonical], idx)
				}
			}
		})
	}
}

func TestRowsFromTable(t *testing.T) {
	mapping := map[string]int{"date": 0, "description": 1, "debit": 2}
	table := [][]string{
		{"01/03/2024", " COFFEE ", "120.00"},
		{"02/03/2024", "SHORT ROW"}, // missing trailing cell, padded
		{"", "", ""},                // all-empty, dropped
	}

	rows := rowsFromTable(mapping, table)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0]["description"] != "COFFEE" {
		t.Errorf("description = %q, want trimmed %q", rows[0]["description"], "COFFEE")
	}
	if rows[1]["debit"] != "" {
		t.Errorf("padded debit = %q, want empty", rows[1]["debit"])
	}
}
