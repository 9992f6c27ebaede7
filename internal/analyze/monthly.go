package analyze

import (
	"sort"
	"time"

	"github.com/finlens/statement-analyzer/internal/domain"
)

// MonthlyBucket is one calendar month of activity. The sum of all buckets'
// Net equals the full list's credits minus debits for the same period.
type MonthlyBucket struct {
	Month            string  `json:"month"` // "2006-01"
	Credits          float64 `json:"credits"`
	Debits           float64 `json:"debits"`
	Net              float64 `json:"net"`
	TransactionCount int     `json:"transaction_count"`
}

// MonthlyTrend groups transactions by calendar year-month. Months with no
// activity are omitted; see MonthlyTrendRange for a zero-filled series.
func MonthlyTrend(txs []*domain.Transaction) []MonthlyBucket {
	byMonth := make(map[string]*MonthlyBucket)
	for _, tx := range txs {
		key := tx.MonthKey()
		bucket, ok := byMonth[key]
		if !ok {
			bucket = &MonthlyBucket{Month: key}
			byMonth[key] = bucket
		}
		bucket.Credits += tx.CreditAmount()
		bucket.Debits += tx.DebitAmount()
		bucket.TransactionCount++
	}

	buckets := make([]MonthlyBucket, 0, len(byMonth))
	for _, b := range byMonth {
		b.Net = b.Credits - b.Debits
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Month < buckets[j].Month })
	return buckets
}

// MonthlyTrendRange is MonthlyTrend with empty months zero-filled between
// from and to inclusive, for callers that chart a continuous series.
func MonthlyTrendRange(txs []*domain.Transaction, from, to time.Time) []MonthlyBucket {
	byMonth := make(map[string]MonthlyBucket)
	for _, b := range MonthlyTrend(txs) {
		byMonth[b.Month] = b
	}

	var buckets []MonthlyBucket
	cursor := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(end) {
		key := cursor.Format("2006-01")
		if b, ok := byMonth[key]; ok {
			buckets = append(buckets, b)
		} else {
			buckets = append(buckets, MonthlyBucket{Month: key})
		}
		cursor = cursor.AddDate(0, 1, 0)
	}
	return buckets
}
