package analyze

import (
	"math"
	"testing"

	"github.com/finlens/statement-analyzer/internal/domain"
)

func TestAssessRiskEMIRatio(t *testing.T) {
	txs := []*domain.Transaction{
		tx("2024-01-01", 0, 50000, "SALARY CREDIT ACME"),
		tx("2024-01-05", 8000, 0, "HOME LOAN EMI"),
	}

	a := AssessRisk(txs)

	if a.EMIToIncomeRatio == nil {
		t.Fatal("emi ratio should be set when salary is present")
	}
	if math.Abs(*a.EMIToIncomeRatio-0.16) > 1e-9 {
		t.Errorf("ratio = %v, want 0.16", *a.EMIToIncomeRatio)
	}
	// 0.16 * 60 = 9.6, rounds to 10
	if a.Score != 10 {
		t.Errorf("score = %d, want 10", a.Score)
	}
	if a.Level != RiskLow {
		t.Errorf("level = %s, want low", a.Level)
	}
	if a.ComplianceScore != 100 {
		t.Errorf("compliance = %d, want 100", a.ComplianceScore)
	}
}

func TestAssessRiskNoSalary(t *testing.T) {
	txs := []*domain.Transaction{
		tx("2024-01-05", 8000, 0, "HOME LOAN EMI"),
	}

	a := AssessRisk(txs)

	if a.EMIToIncomeRatio != nil {
		t.Errorf("ratio = %v, want nil without salary", *a.EMIToIncomeRatio)
	}
	if a.Score != 0 {
		t.Errorf("score = %d, want 0", a.Score)
	}
}

func TestAssessRiskChequeReturns(t *testing.T) {
	txs := []*domain.Transaction{
		tx("2024-01-10", 5000, 0, "CHQ RET 123"),
		tx("2024-01-12", 5000, 0, "CHEQUE RETURN 456"),
	}

	a := AssessRisk(txs)

	if a.ChequeReturns != 2 {
		t.Errorf("cheque returns = %d, want 2", a.ChequeReturns)
	}
	if a.Score != 10 {
		t.Errorf("score = %d, want 10", a.Score)
	}
	if a.ComplianceScore != 90 {
		t.Errorf("compliance = %d, want 90", a.ComplianceScore)
	}
}

func TestAssessRiskHighLevel(t *testing.T) {
	// EMI eats the whole salary: 1.0 * 60 = 60 → high.
	txs := []*domain.Transaction{
		tx("2024-01-01", 0, 20000, "SALARY"),
		tx("2024-01-05", 20000, 0, "EMI AUTO DEBIT"),
	}

	a := AssessRisk(txs)

	if a.Level != RiskHigh {
		t.Errorf("level = %s, want high (score %d)", a.Level, a.Score)
	}
}

func TestAssessRiskScoresStayBounded(t *testing.T) {
	var txs []*domain.Transaction
	txs = append(txs, tx("2024-01-01", 0, 1000, "SALARY"))
	txs = append(txs, tx("2024-01-02", 100000, 0, "MEGA EMI"))
	for i := 0; i < 30; i++ {
		txs = append(txs, tx("2024-01-03", 100, 0, "CHQ RET"))
	}

	a := AssessRisk(txs)

	if a.Score < 0 || a.Score > 100 {
		t.Errorf("score %d out of bounds", a.Score)
	}
	if a.ComplianceScore < 0 || a.ComplianceScore > 100 {
		t.Errorf("compliance %d out of bounds", a.ComplianceScore)
	}
	if a.Score != 100 {
		t.Errorf("score = %d, want clamped 100", a.Score)
	}
	if a.ComplianceScore != 0 {
		t.Errorf("compliance = %d, want clamped 0", a.ComplianceScore)
	}
}
