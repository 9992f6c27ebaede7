package reader

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// commonPasswords is the bounded list of passwords tried when a protected
// statement arrives without one, or with a wrong one. Banks commonly protect
// statements with statement dates, short numerics, or generic words, and
// customers rarely know which. This is a usability heuristic only, not
// credential handling, and the list stays short and fixed.
var commonPasswords = []string{
	// statement-date formats
	"01012024", "31032024", "01012025", "31032025",
	"01/01/2024", "31/03/2024", "01/01/2025", "31/03/2025",
	"2024", "2025",
	// short numerics
	"1234", "12345", "123456", "123456789",
	// generic words
	"password", "Password", "bank", "Bank", "statement", "Statement",
}

// readPDF extracts page text from a PDF, trying the supplied password first
// and then the common-password list for protected files.
func readPDF(doc *RawDocument) (*ExtractedContent, error) {
	candidates := make([]string, 0, len(commonPasswords)+2)
	// Empty password first: most statements are not protected at all.
	if doc.Password != "" {
		candidates = append(candidates, doc.Password)
	}
	candidates = append(candidates, "")
	candidates = append(candidates, commonPasswords...)

	var lastErr error
	for _, pw := range candidates {
		content, err := tryDecrypt(doc.Data, pw)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !isPasswordError(err) {
			// Not a password problem; further candidates cannot help.
			return nil, fmt.Errorf("reader.readPDF: %q: %v: %w", doc.Name, err, ErrCorruptDocument)
		}
	}
	return nil, fmt.Errorf("reader.readPDF: %q: %v: %w", doc.Name, lastErr, ErrDecryptionFailed)
}

// tryDecrypt attempts one password candidate against the PDF bytes and
// returns the extracted text on success. It is the single funnel for the
// password heuristic so the candidate handling stays in one place.
func tryDecrypt(data []byte, password string) (*ExtractedContent, error) {
	rs := bytes.NewReader(data)

	// The pw callback is invoked once per attempt; returning "" on the
	// second call tells the library to give up rather than loop.
	asked := false
	r, err := pdf.NewReaderEncrypted(rs, int64(len(data)), func() string {
		if asked {
			return ""
		}
		asked = true
		return password
	})
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	pages := r.NumPage()
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not sink the document.
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no extractable text in %d pages", pages)
	}

	return &ExtractedContent{Text: text, Pages: pages}, nil
}

func isPasswordError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypted")
}
