// Package normalize turns extracted statement content into the canonical
// transaction list. Unparseable lines are skipped, never fatal; the skip
// count is surfaced so callers can judge extraction quality.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/finlens/statement-analyzer/internal/domain"
	"github.com/finlens/statement-analyzer/internal/reader"
)

// Result is the normalizer output for one document.
type Result struct {
	Transactions []*domain.Transaction
	Skipped      int // lines/rows seen but not parseable as transactions
}

var (
	// DD/MM/YYYY, DD-MM-YYYY or YYYY-MM-DD, mixed separators tolerated.
	datePattern = regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{4}|\d{4}[/-]\d{1,2}[/-]\d{1,2})`)
	// Numeric tokens with optional thousands separators and decimals.
	amountPattern = regexp.MustCompile(`\d+(?:,\d{3})*(?:\.\d{1,2})?`)
)

// Extract routes content to the text or table path. Table rows are
// preferred when present because header mapping beats token heuristics.
func Extract(content *reader.ExtractedContent, sourceID string) *Result {
	var res *Result
	if content.HasRows() {
		res = FromRows(content.Rows, sourceID)
	} else {
		res = FromText(content.Text, sourceID)
	}
	domain.SortByDate(res.Transactions)
	return res
}

// FromText scans free text (typically PDF-extracted) line by line. A line
// qualifies when it carries a date token and at least one numeric token.
//
// The numeric classification is a known-lossy heuristic inherited from the
// statement layouts it was tuned on; in particular a single amount with no
// direction keyword defaults to debit. Do not change the bias: real
// statements rely on it.
func FromText(text string, sourceID string) *Result {
	res := &Result{}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		dateLoc := datePattern.FindStringIndex(line)
		if dateLoc == nil {
			continue
		}
		dateStr := line[dateLoc[0]:dateLoc[1]]
		date, ok := parseDate(dateStr)
		if !ok {
			res.Skipped++
			continue
		}

		rest := line[dateLoc[1]:]
		amountLocs := amountPattern.FindAllStringIndex(rest, -1)
		if len(amountLocs) == 0 {
			res.Skipped++
			continue
		}

		amounts := make([]float64, 0, len(amountLocs))
		for _, loc := range amountLocs {
			v, err := parseAmount(rest[loc[0]:loc[1]])
			if err == nil && v > 0 {
				amounts = append(amounts, v)
			}
		}
		if len(amounts) == 0 {
			res.Skipped++
			continue
		}

		debit, credit, balance := classifyAmounts(amounts, line)

		// Description is whatever sits between the date token and the
		// first numeric token.
		desc := strings.TrimSpace(rest[:amountLocs[0][0]])
		desc = strings.Trim(desc, "-:| ")
		if desc == "" {
			desc = "Transaction"
		}

		tx := &domain.Transaction{
			Date:        date,
			Description: desc,
			Debit:       debit,
			Credit:      credit,
			Balance:     balance,
			SourceID:    sourceID,
		}
		res.Transactions = append(res.Transactions, tx)
	}

	return res
}

// classifyAmounts applies the positional tie-break policy, in order:
//
//	(a) three or more numbers: debit, credit, balance
//	(b) two numbers, second more than double the first: debit, balance
//	(c) two numbers otherwise: debit, credit
//	(d) one number: direction keyword in the line decides, default debit
func classifyAmounts(amounts []float64, line string) (debit, credit, balance *float64) {
	switch {
	case len(amounts) >= 3:
		return &amounts[0], &amounts[1], &amounts[2]
	case len(amounts) == 2 && amounts[1] > amounts[0]*2:
		return &amounts[0], nil, &amounts[1]
	case len(amounts) == 2:
		return &amounts[0], &amounts[1], nil
	default:
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "dr") || strings.Contains(lower, "debit") || strings.Contains(lower, "withdrawal"):
			return &amounts[0], nil, nil
		case strings.Contains(lower, "cr") || strings.Contains(lower, "credit") || strings.Contains(lower, "deposit"):
			return nil, &amounts[0], nil
		default:
			return &amounts[0], nil, nil
		}
	}
}

// FromRows maps canonical table rows to transactions. Amount cells that do
// not parse become 0, matching how exports pad unused columns.
func FromRows(rows []reader.Row, sourceID string) *Result {
	res := &Result{}

	for _, row := range rows {
		date, ok := parseDate(row["date"])
		if !ok {
			res.Skipped++
			continue
		}

		desc := strings.TrimSpace(row["description"])
		if desc == "" {
			desc = "Transaction"
		}

		debitVal := coerceAmount(row["debit"])
		creditVal := coerceAmount(row["credit"])

		// Single signed-amount exports: a combined amount column plus an
		// optional dr/cr type cell.
		if debitVal == 0 && creditVal == 0 {
			if amount := coerceAmount(row["amount"]); amount != 0 {
				if isCreditType(row["type"], amount) {
					creditVal = absAmount(amount)
				} else {
					debitVal = absAmount(amount)
				}
			}
		}

		tx := &domain.Transaction{
			Date:        date,
			Description: desc,
			SourceID:    sourceID,
		}
		if creditVal > 0 && debitVal == 0 {
			tx.Credit = &creditVal
		} else {
			tx.Debit = &debitVal
		}
		if bal := row["balance"]; strings.TrimSpace(bal) != "" {
			if v, err := parseAmount(bal); err == nil {
				tx.Balance = &v
			}
		}

		res.Transactions = append(res.Transactions, tx)
	}

	return res
}

func isCreditType(typeCell string, amount float64) bool {
	t := strings.ToLower(strings.TrimSpace(typeCell))
	if t == "cr" || t == "credit" || t == "deposit" {
		return true
	}
	if t == "dr" || t == "debit" || t == "withdrawal" {
		return false
	}
	// No type column: sign convention, negative means money out.
	return amount > 0
}

func absAmount(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// coerceAmount strips currency symbols and thousands separators before
// parsing. Empty or non-numeric cells become 0, never an error.
func coerceAmount(s string) float64 {
	v, err := parseAmount(s)
	if err != nil {
		return 0
	}
	return v
}

func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	replacer := strings.NewReplacer(
		"₹", "", "£", "", "$", "", "€", "",
		",", "", " ", "", " ", "",
	)
	s = replacer.Replace(s)
	if s == "" || s == "-" {
		return 0, strconv.ErrSyntax
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if negative {
		v = -v
	}
	return v, nil
}

// parseDate accepts the day-first formats Indian statements use plus ISO.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	layouts := []string{
		"02/01/2006", "2/1/2006",
		"02-01-2006", "2-1-2006",
		"2006-01-02", "2006/01/02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
