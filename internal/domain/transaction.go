package domain

import (
	"sort"
	"time"
)

// Transaction is one normalized statement row. Exactly one of Debit and
// Credit is set for a parsed row; both nil means the row carried no usable
// amount and should have been skipped by the normalizer.
type Transaction struct {
	Date        time.Time // calendar date, no time component
	Description string
	Debit       *float64 // nil when the row is a credit
	Credit      *float64 // nil when the row is a debit
	Balance     *float64 // running balance when the statement prints one

	Category string // empty until categorized
	Account  string // masked account identifier of the source statement
	SourceID string // document identifier the row came from
}

// DebitAmount returns the debit amount or 0.
func (t *Transaction) DebitAmount() float64 {
	if t.Debit == nil {
		return 0
	}
	return *t.Debit
}

// CreditAmount returns the credit amount or 0.
func (t *Transaction) CreditAmount() float64 {
	if t.Credit == nil {
		return 0
	}
	return *t.Credit
}

// Amount returns the magnitude of the row regardless of direction.
func (t *Transaction) Amount() float64 {
	if t.Credit != nil {
		return *t.Credit
	}
	return t.DebitAmount()
}

// MonthKey returns the calendar bucket key, e.g. "2024-01".
func (t *Transaction) MonthKey() string {
	return t.Date.Format("2006-01")
}

// SortByDate orders transactions by date ascending. Rows on the same date
// keep their original order so statement ordering survives the merge of
// several files.
func SortByDate(txs []*Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.Before(txs[j].Date)
	})
}
