package analyze

import (
	"fmt"
	"sort"

	"github.com/finlens/statement-analyzer/internal/domain"
)

// CategoryTrend compares one category's recent spend against its trailing
// baseline.
type CategoryTrend struct {
	Category      string  `json:"category"`
	RecentSpend   float64 `json:"recent_spend"`
	BaselineSpend float64 `json:"baseline_spend"` // trailing monthly average
	ChangePct     float64 `json:"change_pct"`
}

// Anomaly flags one transaction whose amount dwarfs its category's norm.
type Anomaly struct {
	TxRef   TxRef  `json:"transaction"`
	Message string `json:"message"`
}

// TrendReport is the trend/anomaly analyzer output. Reason is set (and the
// slices stay empty) when the list does not span enough months to compare.
type TrendReport struct {
	Trends    []CategoryTrend `json:"trends"`
	Anomalies []Anomaly       `json:"anomalies"`
	Reason    string          `json:"reason,omitempty"`
}

const (
	// trendDeviationPct: a category is trending when recent spend deviates
	// this many percent from its baseline.
	trendDeviationPct = 30.0
	// anomalyMultiple: a transaction is anomalous when its amount exceeds
	// this multiple of its category's average.
	anomalyMultiple = 3.0
	// minTrendMonths: need at least one baseline month plus the recent one.
	minTrendMonths = 2
)

// DetectTrends compares the most recent month's per-category debits against
// the average of all earlier months, and flags individual transactions that
// exceed a multiple of their category average.
func DetectTrends(txs []*domain.Transaction) *TrendReport {
	report := &TrendReport{Trends: []CategoryTrend{}, Anomalies: []Anomaly{}}

	// month -> category -> debit total
	months := map[string]map[string]float64{}
	for _, tx := range txs {
		d := tx.DebitAmount()
		if d <= 0 {
			continue
		}
		key := tx.MonthKey()
		if months[key] == nil {
			months[key] = map[string]float64{}
		}
		cat := tx.Category
		if cat == "" {
			cat = "Uncategorized"
		}
		months[key][cat] += d
	}

	if len(months) < minTrendMonths {
		report.Reason = fmt.Sprintf("need at least %d months of activity, have %d", minTrendMonths, len(months))
		return report
	}

	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	recentKey := keys[len(keys)-1]
	baselineKeys := keys[:len(keys)-1]

	baseline := map[string]float64{}
	for _, k := range baselineKeys {
		for cat, v := range months[k] {
			baseline[cat] += v
		}
	}
	for cat := range baseline {
		baseline[cat] /= float64(len(baselineKeys))
	}

	for cat, recent := range months[recentKey] {
		base, ok := baseline[cat]
		if !ok || base == 0 {
			continue
		}
		change := (recent - base) / base * 100
		if change >= trendDeviationPct || change <= -trendDeviationPct {
			report.Trends = append(report.Trends, CategoryTrend{
				Category:      cat,
				RecentSpend:   recent,
				BaselineSpend: base,
				ChangePct:     change,
			})
		}
	}
	sort.Slice(report.Trends, func(i, j int) bool {
		return report.Trends[i].Category < report.Trends[j].Category
	})

	report.Anomalies = detectAnomalies(txs)
	return report
}

// detectAnomalies flags transactions whose amount exceeds a fixed multiple
// of their category's average debit.
func detectAnomalies(txs []*domain.Transaction) []Anomaly {
	totals := map[string]float64{}
	counts := map[string]int{}
	for _, tx := range txs {
		d := tx.DebitAmount()
		if d <= 0 {
			continue
		}
		totals[tx.Category] += d
		counts[tx.Category]++
	}

	anomalies := []Anomaly{}
	for _, tx := range txs {
		d := tx.DebitAmount()
		if d <= 0 || counts[tx.Category] < 2 {
			continue
		}
		avg := totals[tx.Category] / float64(counts[tx.Category])
		if avg > 0 && d > avg*anomalyMultiple {
			anomalies = append(anomalies, Anomaly{
				TxRef: *refFor(tx),
				Message: fmt.Sprintf("%.2f is %.1fx the %s average of %.2f",
					d, d/avg, displayCategory(tx.Category), avg),
			})
		}
	}
	return anomalies
}

func displayCategory(cat string) string {
	if cat == "" {
		return "Uncategorized"
	}
	return cat
}
