package analyze

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/finlens/statement-analyzer/internal/domain"
)

// Counterparty is a recurring transaction description treated as a distinct
// payer/payee entity.
type Counterparty struct {
	Name             string  `json:"name"`
	TotalSent        float64 `json:"total_sent"`     // debits toward this party
	TotalReceived    float64 `json:"total_received"` // credits from this party
	TransactionCount int     `json:"transaction_count"`
}

const (
	// counterpartyKeyLen caps the normalized key so trailing reference
	// numbers do not split one party into many.
	counterpartyKeyLen = 48
	// minRecurrence filters one-off descriptions out of the graph.
	minRecurrence = 3
	// topCounterparties bounds the report size.
	topCounterparties = 10
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	// transport prefixes carry no counterparty information
	channelPrefix = regexp.MustCompile(`(?i)^(upi|neft|imps|rtgs|nach|ach|atm|pos|e-com|debit card|credit card)\s*[-:/]\s*`)
)

// CounterpartyKey normalizes a description into a grouping key: channel
// prefix stripped, lower-cased, whitespace collapsed, truncated.
func CounterpartyKey(description string) string {
	s := channelPrefix.ReplaceAllString(strings.TrimSpace(description), "")
	s = strings.ToLower(s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if len(s) > counterpartyKeyLen {
		// Back up to a rune boundary so the cut never leaves a partial
		// multi-byte character in the key.
		cut := counterpartyKeyLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = strings.TrimSpace(s[:cut])
	}
	return s
}

// Counterparties groups transactions by normalized description key, drops
// groups under the recurrence threshold, and returns the top parties by
// total flow (sent plus received).
func Counterparties(txs []*domain.Transaction) []Counterparty {
	groups := make(map[string]*Counterparty)
	for _, tx := range txs {
		key := CounterpartyKey(tx.Description)
		if key == "" {
			continue
		}
		cp, ok := groups[key]
		if !ok {
			cp = &Counterparty{Name: key}
			groups[key] = cp
		}
		cp.TotalSent += tx.DebitAmount()
		cp.TotalReceived += tx.CreditAmount()
		cp.TransactionCount++
	}

	result := make([]Counterparty, 0, len(groups))
	for _, cp := range groups {
		if cp.TransactionCount < minRecurrence {
			continue
		}
		result = append(result, *cp)
	}

	sort.Slice(result, func(i, j int) bool {
		fi := result[i].TotalSent + result[i].TotalReceived
		fj := result[j].TotalSent + result[j].TotalReceived
		if fi != fj {
			return fi > fj
		}
		return result[i].Name < result[j].Name
	})
	if len(result) > topCounterparties {
		result = result[:topCounterparties]
	}
	return result
}
