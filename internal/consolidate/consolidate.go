// Package consolidate groups completed analysis jobs and produces combined
// analytics across their statements. Consolidated views are recomputed from
// member transactions on every request, never cached.
package consolidate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finlens/statement-analyzer/internal/analyze"
	"github.com/finlens/statement-analyzer/internal/domain"
	"github.com/finlens/statement-analyzer/internal/jobs"
)

var (
	// ErrGroupNotFound is returned when no group exists for an ID.
	ErrGroupNotFound = errors.New("statement group not found")
	// ErrJobNotReady is returned when a member job is not completed yet.
	ErrJobNotReady = errors.New("job is not completed")
	// ErrDuplicateMember is returned when a job is already in the group.
	ErrDuplicateMember = errors.New("job already in group")
)

// GroupType describes why statements are being consolidated.
type GroupType string

const (
	// GroupTypeSingleAccount combines statements of one account over time.
	GroupTypeSingleAccount GroupType = "single_account"
	// GroupTypeMultiAccount combines statements across accounts.
	GroupTypeMultiAccount GroupType = "multi_account"
	// GroupTypeLoanApplication combines statements for a credit review.
	GroupTypeLoanApplication GroupType = "loan_application"
)

// StatementGroup is a named set of analysis jobs consolidated together.
// ReferenceID is an optional caller-supplied correlation key, e.g. a loan
// application number.
type StatementGroup struct {
	GroupID     string    `json:"group_id"`
	Owner       string    `json:"owner"`
	Name        string    `json:"name"`
	Type        GroupType `json:"type"`
	ReferenceID string    `json:"reference_id,omitempty"`
	Members     []Member  `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Member records one job's statement metadata inside a group. The account
// fields come from the job's identified bank profile; the balance fields
// from the first and last transaction carrying a running balance. Optional
// fields stay nil/empty when the statement did not yield them.
type Member struct {
	JobID             string             `json:"job_id"`
	AccountIdentifier string             `json:"account_identifier,omitempty"`
	BankName          string             `json:"bank_name,omitempty"`
	AccountType       domain.AccountType `json:"account_type,omitempty"`
	PeriodStart       *time.Time         `json:"period_start,omitempty"`
	PeriodEnd         *time.Time         `json:"period_end,omitempty"`
	OpeningBalance    *float64           `json:"opening_balance,omitempty"`
	ClosingBalance    *float64           `json:"closing_balance,omitempty"`
}

// Consolidated is the combined view across a group's statements.
type Consolidated struct {
	Group        *StatementGroup         `json:"group"`
	Summary      *analyze.Summary        `json:"summary"`
	MonthlyTrend []analyze.MonthlyBucket `json:"monthly_trend"`
	RedAlerts    []analyze.RedAlert      `json:"red_alerts"`
	Risk         *analyze.RiskAssessment `json:"risk"`
	// Accounts lists the bank profiles contributing to the view.
	Accounts []*domain.BankProfile `json:"accounts"`
	// TransactionCount is the deduplicated union size.
	TransactionCount int `json:"transaction_count"`
	// DuplicatesRemoved counts transactions dropped by deduplication.
	DuplicatesRemoved int `json:"duplicates_removed"`
}

// GroupStore defines persistence for statement groups.
type GroupStore interface {
	SaveGroup(ctx context.Context, group *StatementGroup) error
	GetGroup(ctx context.Context, groupID string) (*StatementGroup, error)
	ListGroups(ctx context.Context, owner string) ([]*StatementGroup, error)
	DeleteGroup(ctx context.Context, groupID string) error
}

// Service manages statement groups and computes consolidated analytics.
type Service struct {
	groups GroupStore
	jobs   jobs.Store
}

// NewService creates a consolidation service over the given stores.
func NewService(groups GroupStore, jobStore jobs.Store) *Service {
	return &Service{groups: groups, jobs: jobStore}
}

// CreateGroup creates an empty statement group. referenceID is optional.
func (s *Service) CreateGroup(ctx context.Context, owner, name string, groupType GroupType, referenceID string) (*StatementGroup, error) {
	switch groupType {
	case GroupTypeSingleAccount, GroupTypeMultiAccount, GroupTypeLoanApplication:
	default:
		return nil, fmt.Errorf("CreateGroup: unknown group type %q", groupType)
	}

	now := time.Now()
	group := &StatementGroup{
		GroupID:     uuid.New().String(),
		Owner:       owner,
		Name:        name,
		Type:        groupType,
		ReferenceID: referenceID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.groups.SaveGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("CreateGroup: save group: %w", err)
	}
	return group, nil
}

// GetGroup retrieves a group by ID.
func (s *Service) GetGroup(ctx context.Context, groupID string) (*StatementGroup, error) {
	return s.groups.GetGroup(ctx, groupID)
}

// ListGroups lists an owner's groups.
func (s *Service) ListGroups(ctx context.Context, owner string) ([]*StatementGroup, error) {
	return s.groups.ListGroups(ctx, owner)
}

// DeleteGroup removes a group. Member jobs are untouched.
func (s *Service) DeleteGroup(ctx context.Context, groupID string) error {
	return s.groups.DeleteGroup(ctx, groupID)
}

// AddMember adds a completed job to the group. Jobs that are pending,
// processing or failed are rejected with ErrJobNotReady.
func (s *Service) AddMember(ctx context.Context, groupID, jobID string) (*StatementGroup, error) {
	group, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("AddMember: %w", err)
	}
	if job.Status != jobs.JobStatusCompleted {
		return nil, fmt.Errorf("AddMember: job %s has status %s: %w", jobID, job.Status, ErrJobNotReady)
	}

	for _, m := range group.Members {
		if m.JobID == jobID {
			return nil, fmt.Errorf("AddMember: job %s: %w", jobID, ErrDuplicateMember)
		}
	}

	group.Members = append(group.Members, memberFromJob(job))
	group.UpdatedAt = time.Now()

	if err := s.groups.SaveGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("AddMember: save group: %w", err)
	}
	return group, nil
}

// RemoveMember removes a job from the group. Removing a job that is not a
// member is a no-op.
func (s *Service) RemoveMember(ctx context.Context, groupID, jobID string) (*StatementGroup, error) {
	group, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	kept := group.Members[:0]
	for _, m := range group.Members {
		if m.JobID != jobID {
			kept = append(kept, m)
		}
	}
	group.Members = kept
	group.UpdatedAt = time.Now()

	if err := s.groups.SaveGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("RemoveMember: save group: %w", err)
	}
	return group, nil
}

// Consolidate recomputes combined analytics over the deduplicated union of
// the group's member transactions.
func (s *Service) Consolidate(ctx context.Context, groupID string) (*Consolidated, error) {
	group, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	var (
		union    []*domain.Transaction
		accounts []*domain.BankProfile
		removed  int
	)
	seen := make(map[string]struct{})

	for _, m := range group.Members {
		job, err := s.jobs.GetJob(ctx, m.JobID)
		if err != nil {
			return nil, fmt.Errorf("Consolidate: %w", err)
		}
		if job.Status != jobs.JobStatusCompleted || job.Result == nil {
			return nil, fmt.Errorf("Consolidate: job %s has status %s: %w", m.JobID, job.Status, ErrJobNotReady)
		}

		for _, tx := range job.Result.Transactions {
			key := dedupKey(tx)
			if _, dup := seen[key]; dup {
				removed++
				continue
			}
			seen[key] = struct{}{}
			union = append(union, tx)
		}

		for _, rec := range job.Result.Files {
			if rec.Bank != nil {
				accounts = append(accounts, rec.Bank)
			}
		}
	}

	domain.SortByDate(union)

	return &Consolidated{
		Group:             group,
		Summary:           analyze.Summarize(union),
		MonthlyTrend:      analyze.MonthlyTrend(union),
		RedAlerts:         analyze.DetectRedAlerts(union),
		Risk:              analyze.AssessRisk(union),
		Accounts:          accounts,
		TransactionCount:  len(union),
		DuplicatesRemoved: removed,
	}, nil
}

// memberFromJob snapshots a completed job's statement metadata. Groups keep
// this copy so the member listing stays meaningful even if job results are
// later pruned.
func memberFromJob(job *jobs.AnalyzeStatementsJob) Member {
	m := Member{JobID: job.JobID}
	if job.Result == nil {
		return m
	}

	for _, rec := range job.Result.Files {
		if rec.Bank == nil {
			continue
		}
		m.AccountIdentifier = rec.Bank.AccountNumber
		m.BankName = rec.Bank.BankName
		m.AccountType = rec.Bank.AccountType
		m.PeriodStart = rec.Bank.PeriodStart
		m.PeriodEnd = rec.Bank.PeriodEnd
		break
	}

	// Transactions are date-sorted by the pipeline; the first and last
	// printed running balances bracket the statement.
	for _, tx := range job.Result.Transactions {
		if tx.Balance != nil {
			m.OpeningBalance = tx.Balance
			break
		}
	}
	for i := len(job.Result.Transactions) - 1; i >= 0; i-- {
		if tx := job.Result.Transactions[i]; tx.Balance != nil {
			m.ClosingBalance = tx.Balance
			break
		}
	}
	return m
}

// dedupKey identifies a transaction across overlapping statements. Two
// entries with the same date, description, amounts and account are treated
// as the same underlying transaction.
func dedupKey(tx *domain.Transaction) string {
	var b strings.Builder
	b.WriteString(tx.Date.Format("2006-01-02"))
	b.WriteByte('|')
	b.WriteString(strings.ToLower(strings.TrimSpace(tx.Description)))
	b.WriteByte('|')
	fmt.Fprintf(&b, "%.2f|%.2f", tx.DebitAmount(), tx.CreditAmount())
	b.WriteByte('|')
	b.WriteString(tx.Account)
	return b.String()
}
