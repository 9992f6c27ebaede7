package analyze

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/finlens/statement-analyzer/internal/domain"
)

// Severity grades a red alert.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// AlertType identifies the rule that fired.
type AlertType string

const (
	AlertChequeReturn    AlertType = "cheque_return"
	AlertNegativeBalance AlertType = "negative_balance"
	AlertLargeRoundSum   AlertType = "large_round_sum"
	AlertSmallTxnBurst   AlertType = "small_txn_burst"
)

// severityByType fixes the alert type → severity mapping.
var severityByType = map[AlertType]Severity{
	AlertChequeReturn:    SeverityHigh,
	AlertNegativeBalance: SeverityHigh,
	AlertLargeRoundSum:   SeverityMedium,
	AlertSmallTxnBurst:   SeverityLow,
}

// RedAlert is one rule-triggered risk/compliance flag.
type RedAlert struct {
	Type     AlertType `json:"type"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	TxRef    *TxRef    `json:"transaction,omitempty"`
}

// TxRef points a reader at the transaction behind an alert.
type TxRef struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
}

const (
	// roundSumThreshold: alert when an amount at or above the floor divides
	// evenly by this.
	roundSumDivisor = 1000
	roundSumFloor   = 50000

	// burst detection: more than burstLimit sub-burstAmount transactions in
	// one day.
	burstAmount = 500.0
	burstLimit  = 5
)

var chequeReturnKeywords = []string{
	"cheque return", "chq ret", "return chq", "returned cheque", "bounced cheque",
	"insufficient funds", "refer to drawer", "payment stopped",
}

// DetectRedAlerts runs the rule-based scan: cheque returns, negative
// balances, large round-sum transactions, and bursts of small transactions.
func DetectRedAlerts(txs []*domain.Transaction) []RedAlert {
	alerts := []RedAlert{}

	burstByDay := make(map[string]int)

	for _, tx := range txs {
		lower := strings.ToLower(tx.Description)

		if matchesAnyKeyword(lower, chequeReturnKeywords) {
			alerts = append(alerts, RedAlert{
				Type:     AlertChequeReturn,
				Severity: severityByType[AlertChequeReturn],
				Message:  fmt.Sprintf("Cheque return on %s: %s", tx.Date.Format("2006-01-02"), tx.Description),
				TxRef:    refFor(tx),
			})
		}

		if tx.Balance != nil && *tx.Balance < 0 {
			alerts = append(alerts, RedAlert{
				Type:     AlertNegativeBalance,
				Severity: severityByType[AlertNegativeBalance],
				Message:  fmt.Sprintf("Balance went negative (%.2f) on %s", *tx.Balance, tx.Date.Format("2006-01-02")),
				TxRef:    refFor(tx),
			})
		}

		amount := tx.Amount()
		if amount >= roundSumFloor && math.Mod(amount, roundSumDivisor) == 0 {
			alerts = append(alerts, RedAlert{
				Type:     AlertLargeRoundSum,
				Severity: severityByType[AlertLargeRoundSum],
				Message:  fmt.Sprintf("Large round-sum transaction of %.0f on %s", amount, tx.Date.Format("2006-01-02")),
				TxRef:    refFor(tx),
			})
		}

		if amount > 0 && amount < burstAmount {
			burstByDay[tx.Date.Format("2006-01-02")]++
		}
	}

	for day, count := range burstByDay {
		if count > burstLimit {
			alerts = append(alerts, RedAlert{
				Type:     AlertSmallTxnBurst,
				Severity: severityByType[AlertSmallTxnBurst],
				Message:  fmt.Sprintf("%d transactions under %.0f on %s", count, burstAmount, day),
			})
		}
	}

	return alerts
}

func matchesAnyKeyword(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func refFor(tx *domain.Transaction) *TxRef {
	return &TxRef{Date: tx.Date, Description: tx.Description, Amount: tx.Amount()}
}
