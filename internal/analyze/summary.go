// Package analyze holds the analytics suite: independent aggregators that
// all consume the same immutable categorized transaction list. Analyzers
// never mutate shared state, so the suite can fan them out concurrently.
package analyze

import (
	"github.com/finlens/statement-analyzer/internal/domain"
)

// Summary is the headline aggregation over one transaction list.
type Summary struct {
	TotalCredits     float64  `json:"total_credits"`
	TotalDebits      float64  `json:"total_debits"`
	Net              float64  `json:"net"`
	TransactionCount int      `json:"transaction_count"`
	MinBalance       *float64 `json:"min_balance,omitempty"`
	MaxBalance       *float64 `json:"max_balance,omitempty"`
	AvgBalance       *float64 `json:"avg_balance,omitempty"`
}

// Summarize computes totals and, when running balances are present,
// min/max/average balance. Balance stats stay nil when no row carried one.
func Summarize(txs []*domain.Transaction) *Summary {
	s := &Summary{TransactionCount: len(txs)}

	var balanceSum float64
	var balanceCount int
	for _, tx := range txs {
		s.TotalCredits += tx.CreditAmount()
		s.TotalDebits += tx.DebitAmount()
		if tx.Balance == nil {
			continue
		}
		b := *tx.Balance
		if s.MinBalance == nil || b < *s.MinBalance {
			v := b
			s.MinBalance = &v
		}
		if s.MaxBalance == nil || b > *s.MaxBalance {
			v := b
			s.MaxBalance = &v
		}
		balanceSum += b
		balanceCount++
	}
	s.Net = s.TotalCredits - s.TotalDebits

	if balanceCount > 0 {
		avg := balanceSum / float64(balanceCount)
		s.AvgBalance = &avg
	}
	return s
}
