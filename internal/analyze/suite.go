package analyze

import (
	"context"
	"fmt"
	"sync"

	"github.com/finlens/statement-analyzer/internal/domain"
	"github.com/finlens/statement-analyzer/internal/logger"
)

// Report bundles every analyzer's output for one transaction list.
// PartialReasons records analyzers that could not produce a full result;
// their fields hold empty values, and the job still completes.
type Report struct {
	Summary        *Summary        `json:"summary"`
	MonthlyTrend   []MonthlyBucket `json:"monthly_trend"`
	RedAlerts      []RedAlert      `json:"red_alerts"`
	Counterparties []Counterparty  `json:"counterparties"`
	Risk           *RiskAssessment `json:"risk_assessment"`
	Trend          *TrendReport    `json:"trend_report"`

	PartialReasons map[string]string `json:"partial_reasons,omitempty"`
}

// Run executes all analyzers concurrently over the shared immutable list.
// A panic inside one analyzer is converted to a partial result with a
// reason; it never takes the other analyzers or the job down.
func Run(ctx context.Context, txs []*domain.Transaction) *Report {
	log := logger.FromContext(ctx)

	report := &Report{PartialReasons: map[string]string{}}
	var mu sync.Mutex
	var wg sync.WaitGroup

	run := func(name string, fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Error().Str("analyzer", name).Interface("panic", r).Msg("Analyzer failed")
					mu.Lock()
					report.PartialReasons[name] = fmt.Sprintf("analyzer failed: %v", r)
					mu.Unlock()
				}
			}()
			fn()
		}()
	}

	run("summary", func() {
		s := Summarize(txs)
		mu.Lock()
		report.Summary = s
		mu.Unlock()
	})
	run("monthly_trend", func() {
		m := MonthlyTrend(txs)
		mu.Lock()
		report.MonthlyTrend = m
		mu.Unlock()
	})
	run("red_alerts", func() {
		a := DetectRedAlerts(txs)
		mu.Lock()
		report.RedAlerts = a
		mu.Unlock()
	})
	run("counterparties", func() {
		c := Counterparties(txs)
		mu.Lock()
		report.Counterparties = c
		mu.Unlock()
	})
	run("risk", func() {
		r := AssessRisk(txs)
		mu.Lock()
		report.Risk = r
		mu.Unlock()
	})
	run("trend", func() {
		t := DetectTrends(txs)
		mu.Lock()
		report.Trend = t
		if t.Reason != "" {
			report.PartialReasons["trend"] = t.Reason
		}
		mu.Unlock()
	})

	wg.Wait()

	// Analyzers that panicked leave nil fields; normalize to empty values
	// so the persisted report is always shaped the same.
	if report.Summary == nil {
		report.Summary = &Summary{}
	}
	if report.MonthlyTrend == nil {
		report.MonthlyTrend = []MonthlyBucket{}
	}
	if report.RedAlerts == nil {
		report.RedAlerts = []RedAlert{}
	}
	if report.Counterparties == nil {
		report.Counterparties = []Counterparty{}
	}
	if report.Risk == nil {
		report.Risk = &RiskAssessment{Level: RiskLow, ComplianceScore: 100, Factors: []RiskFactor{}}
	}
	if report.Trend == nil {
		report.Trend = &TrendReport{Trends: []CategoryTrend{}, Anomalies: []Anomaly{}}
	}
	if len(report.PartialReasons) == 0 {
		report.PartialReasons = nil
	}
	return report
}
