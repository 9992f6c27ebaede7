// Package warehouse streams normalized transactions into BigQuery for
// long-term reporting. It is optional wiring: the pipeline works without it
// and failures here never fail an analysis job.
package warehouse

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/finlens/statement-analyzer/internal/domain"
)

const transactionsTable = "transactions"

// TransactionRow is the warehouse schema for one normalized transaction.
type TransactionRow struct {
	JobID       string               `bigquery:"job_id"`
	TxDate      time.Time            `bigquery:"tx_date"`
	Description string               `bigquery:"description"`
	Debit       bigquery.NullFloat64 `bigquery:"debit"`
	Credit      bigquery.NullFloat64 `bigquery:"credit"`
	Balance     bigquery.NullFloat64 `bigquery:"balance"`
	Category    string               `bigquery:"category"`
	Account     string               `bigquery:"account"`
	BankCode    string               `bigquery:"bank_code"`
	InsertedTS  time.Time            `bigquery:"inserted_ts"`
}

// MonthlyTotalRow is one row of the monthly totals report.
type MonthlyTotalRow struct {
	Month   string  `bigquery:"month" json:"month"`
	Credits float64 `bigquery:"credits" json:"credits"`
	Debits  float64 `bigquery:"debits" json:"debits"`
}

// Sink writes analysis output to a BigQuery dataset.
type Sink struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

// NewSink creates a warehouse sink for the given project and dataset.
func NewSink(ctx context.Context, projectID, datasetID string) (*Sink, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewSink: creating client: %w", err)
	}
	return &Sink{client: client, projectID: projectID, datasetID: datasetID}, nil
}

// Close releases the underlying client.
func (s *Sink) Close() error {
	return s.client.Close()
}

// InsertTransactions streams a job's normalized transactions into the
// transactions table.
func (s *Sink) InsertTransactions(ctx context.Context, jobID, bankCode string, txs []*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]*TransactionRow, 0, len(txs))
	for _, tx := range txs {
		row := &TransactionRow{
			JobID:       jobID,
			TxDate:      tx.Date,
			Description: tx.Description,
			Category:    tx.Category,
			Account:     tx.Account,
			BankCode:    bankCode,
			InsertedTS:  now,
		}
		if tx.Debit != nil {
			row.Debit = bigquery.NullFloat64{Float64: *tx.Debit, Valid: true}
		}
		if tx.Credit != nil {
			row.Credit = bigquery.NullFloat64{Float64: *tx.Credit, Valid: true}
		}
		if tx.Balance != nil {
			row.Balance = bigquery.NullFloat64{Float64: *tx.Balance, Valid: true}
		}
		rows = append(rows, row)
	}

	inserter := s.client.Dataset(s.datasetID).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}

	return nil
}

// MonthlyTotals aggregates stored credits and debits per month for a job.
func (s *Sink) MonthlyTotals(ctx context.Context, jobID string) ([]*MonthlyTotalRow, error) {
	query := fmt.Sprintf(`
		SELECT
			FORMAT_DATE('%%Y-%%m', DATE(tx_date)) AS month,
			SUM(IFNULL(credit, 0)) AS credits,
			SUM(IFNULL(debit, 0)) AS debits
		FROM `+"`%s.%s.%s`"+`
		WHERE job_id = @job_id
		GROUP BY month
		ORDER BY month
	`, s.projectID, s.datasetID, transactionsTable)

	q := s.client.Query(query)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "job_id", Value: jobID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("MonthlyTotals: reading query: %w", err)
	}

	var totals []*MonthlyTotalRow
	for {
		var row MonthlyTotalRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("MonthlyTotals: iterating: %w", err)
		}
		totals = append(totals, &row)
	}

	return totals, nil
}
