package reader

import "strings"

// columnSynonyms maps canonical column names to the header spellings seen
// across bank exports. Matching is case-insensitive substring, first hit
// wins, so order within a list reflects specificity.
var columnSynonyms = map[string][]string{
	"date":        {"date", "txn date", "transaction date", "value date", "posting date"},
	"description": {"description", "desc", "narration", "narrative", "particulars", "details", "memo"},
	"debit":       {"debit", "withdrawal", "dr amount"},
	"credit":      {"credit", "deposit", "cr amount"},
	"balance":     {"balance", "closing balance", "running balance", "available balance"},
	"amount":      {"amount", "transaction amount"},
	"type":        {"type", "dr/cr", "cr/dr"},
}

// canonicalOrder fixes the precedence when one header could satisfy several
// canonical names ("debit amount" must map to debit before amount).
var canonicalOrder = []string{"date", "description", "debit", "credit", "balance", "type", "amount"}

// mapHeaders resolves a header row to canonical column indexes. Columns with
// no recognized header are absent from the result.
func mapHeaders(headers []string) map[string]int {
	mapping := make(map[string]int, len(canonicalOrder))
	for idx, h := range headers {
		normalized := strings.ToLower(strings.TrimSpace(h))
		if normalized == "" {
			continue
		}
		for _, canonical := range canonicalOrder {
			if _, taken := mapping[canonical]; taken {
				continue
			}
			if matchesAny(normalized, columnSynonyms[canonical]) {
				mapping[canonical] = idx
				break
			}
		}
	}
	return mapping
}

func matchesAny(header string, synonyms []string) bool {
	for _, syn := range synonyms {
		if strings.Contains(header, syn) {
			return true
		}
	}
	return false
}

// rowsFromTable converts raw cell rows plus a header mapping into canonical
// rows. Rows shorter than the mapped indexes are padded with empty cells
// rather than dropped; the normalizer decides what is usable.
func rowsFromTable(mapping map[string]int, table [][]string) []Row {
	rows := make([]Row, 0, len(table))
	for _, cells := range table {
		row := make(Row, len(mapping))
		empty := true
		for canonical, idx := range mapping {
			var v string
			if idx < len(cells) {
				v = strings.TrimSpace(cells[idx])
			}
			row[canonical] = v
			if v != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}
