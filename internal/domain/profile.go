package domain

import (
	"strings"
	"time"
)

// AccountType classifies the account a statement belongs to.
type AccountType string

const (
	AccountSavings    AccountType = "savings"
	AccountCurrent    AccountType = "current"
	AccountCreditCard AccountType = "credit_card"
	AccountLoan       AccountType = "loan"
	AccountOther      AccountType = "other"
	AccountUnknown    AccountType = "unknown"
)

// BankProfile is the best-effort identification of the issuing bank and the
// account metadata found in a statement. Optional fields stay nil/empty when
// nothing matched; downstream code must not treat that as zero values.
type BankProfile struct {
	BankCode   string `json:"bank_code"`
	BankName   string `json:"bank_name"`
	Confidence int    `json:"confidence"` // 0-100

	AccountNumber string      `json:"account_number,omitempty"` // masked, last 4 digits
	AccountHolder string      `json:"account_holder,omitempty"`
	AccountType   AccountType `json:"account_type"`
	IFSC          string      `json:"ifsc,omitempty"`
	Branch        string      `json:"branch,omitempty"`

	PeriodStart *time.Time `json:"period_start,omitempty"`
	PeriodEnd   *time.Time `json:"period_end,omitempty"`
}

// MaskAccountNumber reduces a raw account number to its last 4 digits.
// Raw numbers never leave the identifier package unmasked.
func MaskAccountNumber(raw string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if len(digits) <= 4 {
		return digits
	}
	return "XXXX" + digits[len(digits)-4:]
}
