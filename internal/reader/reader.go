// Package reader turns raw uploaded statement bytes into plain text or a
// row table. It knows file formats, not banks or transactions.
package reader

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the per-file failure taxonomy. The pipeline matches
// these with errors.Is to record the failure reason per file.
var (
	// ErrUnsupportedFormat means the declared media type has no extractor.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrDecryptionFailed means the document is password protected and
	// neither the supplied password nor the common candidates opened it.
	ErrDecryptionFailed = errors.New("document decryption failed")
	// ErrCorruptDocument means the bytes could not be read as the declared
	// format at all.
	ErrCorruptDocument = errors.New("corrupt document")
)

// RawDocument is one uploaded file. It is transient: the reader owns it for
// the duration of a single Read call and nothing retains the bytes after.
type RawDocument struct {
	Name      string // original filename, used for diagnostics and fallbacks
	MediaType string // declared media type, e.g. "application/pdf"
	Password  string // optional; empty means none supplied
	Data      []byte
}

// Row is one extracted table row keyed by canonical column name
// (date, description, debit, credit, balance, amount, type).
type Row map[string]string

// ExtractedContent is the reader's output: plain text for PDF-like inputs,
// a row table for CSV/spreadsheet inputs, or both. Immutable once produced.
type ExtractedContent struct {
	Text     string
	Rows     []Row
	Pages    int
	RowCount int
}

// HasRows reports whether tabular extraction produced anything usable.
func (c *ExtractedContent) HasRows() bool {
	return len(c.Rows) > 0
}

// Read extracts content from a raw document based on its declared media
// type. Unknown types fail with ErrUnsupportedFormat.
func Read(ctx context.Context, doc *RawDocument) (*ExtractedContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch normalizeMediaType(doc.MediaType, doc.Name) {
	case formatPDF:
		return readPDF(doc)
	case formatCSV:
		return readCSV(doc)
	case formatXLSX:
		return readXLSX(doc)
	case formatXLS:
		return readXLS(doc)
	default:
		return nil, fmt.Errorf("reader.Read: %q (%s): %w", doc.Name, doc.MediaType, ErrUnsupportedFormat)
	}
}

type fileFormat int

const (
	formatUnknown fileFormat = iota
	formatPDF
	formatCSV
	formatXLSX
	formatXLS
)

// normalizeMediaType maps a declared media type (or, failing that, the file
// extension) to a known format.
func normalizeMediaType(mediaType, name string) fileFormat {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch mt {
	case "application/pdf", "application/x-pdf":
		return formatPDF
	case "text/csv", "application/csv":
		return formatCSV
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return formatXLSX
	case "application/vnd.ms-excel", "application/excel":
		return formatXLS
	}

	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return formatPDF
	case strings.HasSuffix(lower, ".csv"):
		return formatCSV
	case strings.HasSuffix(lower, ".xlsx"):
		return formatXLSX
	case strings.HasSuffix(lower, ".xls"):
		return formatXLS
	}
	return formatUnknown
}
