// Package narrative is the boundary to the external narrative/prediction
// service. The structured analytics never depend on anything produced here:
// a failed or absent summarizer leaves the enrichment fields empty and the
// job still completes.
package narrative

import (
	"context"

	"github.com/finlens/statement-analyzer/internal/analyze"
)

// Snapshot is the read-only analytics payload handed to the summarizer.
type Snapshot struct {
	Summary        *analyze.Summary        `json:"summary"`
	MonthlyTrend   []analyze.MonthlyBucket `json:"monthly_trend"`
	RedAlerts      []analyze.RedAlert      `json:"red_alerts"`
	Counterparties []analyze.Counterparty  `json:"counterparties"`
	Risk           *analyze.RiskAssessment `json:"risk_assessment"`
}

// Projection is a simple next-period cash-flow forecast.
type Projection struct {
	NextPeriodNet float64 `json:"next_period_net"`
	BasisMonths   int     `json:"basis_months"`
}

// Result is what the external service sends back. Every field is an
// optional enrichment.
type Result struct {
	ExecutiveSummary string      `json:"executive_summary,omitempty"`
	FraudLikelihood  *float64    `json:"fraud_likelihood,omitempty"` // 0-100
	FraudPatterns    []string    `json:"fraud_patterns,omitempty"`
	Projection       *Projection `json:"projection,omitempty"`
}

// Summarizer produces a narrative result from an analytics snapshot.
type Summarizer interface {
	Summarize(ctx context.Context, snap *Snapshot) (*Result, error)
}

// Project derives the next-period net cash flow from the average of the
// last three monthly buckets (fewer when the history is shorter). Returns
// nil when there is no monthly history at all.
func Project(monthly []analyze.MonthlyBucket) *Projection {
	if len(monthly) == 0 {
		return nil
	}
	n := 3
	if len(monthly) < n {
		n = len(monthly)
	}
	var sum float64
	for _, b := range monthly[len(monthly)-n:] {
		sum += b.Net
	}
	return &Projection{NextPeriodNet: sum / float64(n), BasisMonths: n}
}

// Noop is the stub summarizer for environments without the external
// service. It returns the deterministic projection and nothing else.
type Noop struct{}

// Summarize implements Summarizer.
func (Noop) Summarize(_ context.Context, snap *Snapshot) (*Result, error) {
	return &Result{Projection: Project(snap.MonthlyTrend)}, nil
}

var _ Summarizer = Noop{}
