// Package bankid identifies the issuing bank and account metadata from
// extracted statement text. Everything here is best-effort: fields the text
// does not yield stay empty/nil and must not be conflated with zero values
// downstream.
package bankid

import (
	"regexp"
	"strings"
	"time"

	"github.com/finlens/statement-analyzer/internal/domain"
)

const (
	// minConfidence is the floor below which a match is discarded and the
	// profile reports Unknown Bank at confidence 0.
	minConfidence = 30
	// maxConfidence caps text-based detection; no heuristic match is ever
	// reported as certain.
	maxConfidence = 95
	// filenameConfidence is assigned when only the filename matched.
	filenameConfidence = 80

	unknownBankName = "Unknown Bank"
)

var (
	accountNumberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)A/C\s*NO[\s:.]*([\d-]{6,})`),
		regexp.MustCompile(`(?i)ACCOUNT\s*NO[\s:.]*([\d-]{6,})`),
		regexp.MustCompile(`(?i)ACC\s*NO[\s:.]*([\d-]{6,})`),
		regexp.MustCompile(`(?i)A/C[\s:]*([\d-]{6,})`),
		regexp.MustCompile(`\b(\d{12,18})\b`),
	}

	holderPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)ACCOUNT\s*HOLDER[\s:]*([A-Z][A-Za-z .]{2,60})`),
		regexp.MustCompile(`(?i)CUSTOMER\s*NAME[\s:]*([A-Z][A-Za-z .]{2,60})`),
		regexp.MustCompile(`(?i)\bNAME[\s:]+([A-Z][A-Za-z .]{2,60})`),
	}

	ifscPattern   = regexp.MustCompile(`\b([A-Z]{4}0[A-Z0-9]{6})\b`)
	branchPattern = regexp.MustCompile(`(?i)BRANCH(?:\s*NAME)?[\s:-]+([^\n\r]{2,60})`)

	// Statement period: "01/04/2024 to 30/06/2024", "01-04-2024 - 30-06-2024",
	// or ISO dates with the same separators.
	periodPattern = regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{4}|\d{4}-\d{2}-\d{2})\s*(?:to|TO|To|-|–)\s*(\d{1,2}[/-]\d{1,2}[/-]\d{4}|\d{4}-\d{2}-\d{2})`)
)

// Identify scans statement text and produces a bank profile. filename is the
// original upload name, used only as a detection fallback.
func Identify(text, filename string) *domain.BankProfile {
	profile := &domain.BankProfile{
		BankName:    unknownBankName,
		AccountType: domain.AccountUnknown,
	}

	code, name, confidence := detectBank(text)
	if confidence == 0 && filename != "" {
		code, name, confidence = detectBankFromFilename(filename)
	}
	if confidence > 0 {
		profile.BankCode = code
		profile.BankName = name
		profile.Confidence = confidence
	}

	if raw := extractAccountNumber(text); raw != "" {
		profile.AccountNumber = domain.MaskAccountNumber(raw)
	}
	profile.AccountHolder = extractHolder(text)
	profile.AccountType = detectAccountType(text)
	profile.IFSC = extractIFSC(text)
	profile.Branch = extractBranch(text)
	profile.PeriodStart, profile.PeriodEnd = extractPeriod(text)

	return profile
}

// detectBank scores every bank pattern against the text and keeps the best.
// Confidence grows with occurrence count and pattern length, capped at 95;
// anything under the floor is treated as no detection.
func detectBank(text string) (code, name string, confidence int) {
	upper := strings.ToUpper(text)

	best := 0
	for _, def := range bankTable {
		for _, pattern := range def.Patterns {
			occurrences := strings.Count(upper, strings.ToUpper(pattern))
			if occurrences == 0 {
				continue
			}
			score := occurrences*20 + len(pattern)*2
			if score > maxConfidence {
				score = maxConfidence
			}
			if score > best {
				best = score
				code = def.Code
				name = def.Name
			}
		}
	}

	if best < minConfidence {
		return "", unknownBankName, 0
	}
	return code, name, best
}

func detectBankFromFilename(filename string) (code, name string, confidence int) {
	upper := strings.ToUpper(filename)
	for _, def := range bankTable {
		for _, pattern := range def.Patterns {
			if strings.Contains(upper, strings.ToUpper(pattern)) {
				return def.Code, def.Name, filenameConfidence
			}
		}
	}
	return "", unknownBankName, 0
}

func detectAccountType(text string) domain.AccountType {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "savings account"):
		return domain.AccountSavings
	case strings.Contains(lower, "current account"):
		return domain.AccountCurrent
	case strings.Contains(lower, "credit card"):
		return domain.AccountCreditCard
	case strings.Contains(lower, "loan account"):
		return domain.AccountLoan
	case strings.Contains(lower, "account"):
		return domain.AccountOther
	default:
		return domain.AccountUnknown
	}
}

func extractAccountNumber(text string) string {
	for _, re := range accountNumberPatterns {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			return strings.NewReplacer("-", "", " ", "").Replace(m[1])
		}
	}
	return ""
}

func extractHolder(text string) string {
	for _, re := range holderPatterns {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func extractIFSC(text string) string {
	return ifscPattern.FindString(text)
}

func extractBranch(text string) string {
	if m := branchPattern.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// extractPeriod looks for an explicit statement date range. Both bounds must
// parse for the period to be reported at all.
func extractPeriod(text string) (*time.Time, *time.Time) {
	m := periodPattern.FindStringSubmatch(text)
	if len(m) < 3 {
		return nil, nil
	}
	start, ok1 := parseDate(m[1])
	end, ok2 := parseDate(m[2])
	if !ok1 || !ok2 || end.Before(start) {
		return nil, nil
	}
	return &start, &end
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{"02/01/2006", "2/1/2006", "02-01-2006", "2-1-2006", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
