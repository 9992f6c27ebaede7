package analyze

import (
	"testing"

	"github.com/finlens/statement-analyzer/internal/domain"
)

func catTx(date string, debit float64, category string) *domain.Transaction {
	t := tx(date, debit, 0, category+" PAYMENT")
	t.Category = category
	return t
}

func TestDetectTrendsNeedsTwoMonths(t *testing.T) {
	txs := []*domain.Transaction{
		catTx("2024-01-05", 1000, "Groceries"),
		catTx("2024-01-20", 1200, "Groceries"),
	}

	report := DetectTrends(txs)

	if report.Reason == "" {
		t.Error("expected a reason when history is too short")
	}
	if len(report.Trends) != 0 {
		t.Errorf("got %d trends, want 0", len(report.Trends))
	}
}

func TestDetectTrendsFlagsDeviation(t *testing.T) {
	txs := []*domain.Transaction{
		// Baseline: two months at 1000/month.
		catTx("2024-01-05", 1000, "Groceries"),
		catTx("2024-02-05", 1000, "Groceries"),
		// Recent month at 1500: +50%.
		catTx("2024-03-05", 1500, "Groceries"),
		// A quiet category stays untrended.
		catTx("2024-01-10", 500, "Fuel"),
		catTx("2024-02-10", 500, "Fuel"),
		catTx("2024-03-10", 550, "Fuel"),
	}

	report := DetectTrends(txs)

	if report.Reason != "" {
		t.Fatalf("unexpected reason: %s", report.Reason)
	}
	if len(report.Trends) != 1 {
		t.Fatalf("got %d trends, want 1", len(report.Trends))
	}
	trend := report.Trends[0]
	if trend.Category != "Groceries" {
		t.Errorf("category = %q", trend.Category)
	}
	if trend.ChangePct != 50 {
		t.Errorf("change = %v%%, want 50", trend.ChangePct)
	}
	if trend.BaselineSpend != 1000 {
		t.Errorf("baseline = %v, want 1000", trend.BaselineSpend)
	}
}

func TestDetectTrendsFlagsDrop(t *testing.T) {
	txs := []*domain.Transaction{
		catTx("2024-01-05", 1000, "Dining"),
		catTx("2024-02-05", 300, "Dining"),
	}

	report := DetectTrends(txs)

	if len(report.Trends) != 1 {
		t.Fatalf("got %d trends, want 1", len(report.Trends))
	}
	if report.Trends[0].ChangePct != -70 {
		t.Errorf("change = %v%%, want -70", report.Trends[0].ChangePct)
	}
}

func TestDetectAnomalies(t *testing.T) {
	txs := []*domain.Transaction{
		catTx("2024-01-05", 100, "Shopping"),
		catTx("2024-01-12", 100, "Shopping"),
		catTx("2024-01-19", 100, "Shopping"),
		catTx("2024-01-26", 2000, "Shopping"), // 2000 > 3 * avg(575)
	}

	anomalies := detectAnomalies(txs)

	if len(anomalies) != 1 {
		t.Fatalf("got %d anomalies, want 1", len(anomalies))
	}
	if anomalies[0].TxRef.Amount != 2000 {
		t.Errorf("anomaly amount = %v, want 2000", anomalies[0].TxRef.Amount)
	}
}

func TestDetectAnomaliesNeedsCompany(t *testing.T) {
	// A single transaction in a category is its own average.
	txs := []*domain.Transaction{
		catTx("2024-01-05", 99999, "Shopping"),
	}

	if anomalies := detectAnomalies(txs); len(anomalies) != 0 {
		t.Errorf("got %d anomalies for a lone transaction, want 0", len(anomalies))
	}
}
