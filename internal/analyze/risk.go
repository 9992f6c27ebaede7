package analyze

import (
	"fmt"
	"math"
	"regexp"

	"github.com/finlens/statement-analyzer/internal/domain"
)

// RiskLevel grades an assessment.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskFactor is one weighted contribution to the overall score.
type RiskFactor struct {
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// RiskAssessment is the deterministic risk read over one transaction list.
// Score and ComplianceScore are both 0-100; higher score means more risk,
// higher compliance means fewer violations.
type RiskAssessment struct {
	Score            int          `json:"score"`
	Level            RiskLevel    `json:"level"`
	ComplianceScore  int          `json:"compliance_score"`
	EMIToIncomeRatio *float64     `json:"emi_to_income_ratio,omitempty"`
	ChequeReturns    int          `json:"cheque_returns"`
	Factors          []RiskFactor `json:"factors"`
}

var (
	salaryRx       = regexp.MustCompile(`(?i)(salary|payroll|salary credit|salary cr)`)
	emiRx          = regexp.MustCompile(`(?i)(emi|loan\s*emi|si-emi|ecs-emi)`)
	chequeReturnRx = regexp.MustCompile(`(?i)(chq\s*ret|cheque\s*return|return\s*chq|bounced cheque|insufficient funds|refer to drawer|payment stopped)`)
)

const (
	emiRatioWeight      = 60.0
	chequeReturnWeight  = 5.0
	riskMediumThreshold = 30
	riskHighThreshold   = 60
)

// AssessRisk computes the EMI-to-income ratio and cheque-return count and
// folds them into bounded risk and compliance scores via fixed linear
// weights.
func AssessRisk(txs []*domain.Transaction) *RiskAssessment {
	var salaryCredits, emiDebits float64
	var chequeReturns int
	for _, tx := range txs {
		if salaryRx.MatchString(tx.Description) {
			salaryCredits += tx.CreditAmount()
		}
		if emiRx.MatchString(tx.Description) {
			emiDebits += tx.DebitAmount()
		}
		if chequeReturnRx.MatchString(tx.Description) {
			chequeReturns++
		}
	}

	a := &RiskAssessment{ChequeReturns: chequeReturns, Factors: []RiskFactor{}}

	raw := float64(chequeReturns) * chequeReturnWeight
	if salaryCredits > 0 {
		ratio := emiDebits / salaryCredits
		a.EMIToIncomeRatio = &ratio
		raw += ratio * emiRatioWeight
		a.Factors = append(a.Factors, RiskFactor{
			Name:        "emi_to_income",
			Weight:      emiRatioWeight,
			Description: fmt.Sprintf("EMI outflow is %.0f%% of detected salary income", ratio*100),
		})
	}
	if chequeReturns > 0 {
		a.Factors = append(a.Factors, RiskFactor{
			Name:        "cheque_returns",
			Weight:      chequeReturnWeight,
			Description: fmt.Sprintf("%d cheque return(s) detected", chequeReturns),
		})
	}

	a.Score = clampScore(raw)
	a.ComplianceScore = clampScore(100 - float64(chequeReturns)*chequeReturnWeight)

	switch {
	case a.Score >= riskHighThreshold:
		a.Level = RiskHigh
	case a.Score >= riskMediumThreshold:
		a.Level = RiskMedium
	default:
		a.Level = RiskLow
	}
	return a
}

func clampScore(v float64) int {
	return int(math.Round(math.Min(100, math.Max(0, v))))
}
