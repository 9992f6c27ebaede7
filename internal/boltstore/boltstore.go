// Package boltstore persists jobs and statement groups in a local bolt
// database. It backs single-instance deployments where results must survive
// a restart; raw statement bytes are never written, only job metadata and
// analysis results.
package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/boltdb/bolt"

	"github.com/finlens/statement-analyzer/internal/consolidate"
	"github.com/finlens/statement-analyzer/internal/jobs"
)

var (
	jobsBucket   = []byte("jobs")
	groupsBucket = []byte("groups")
)

// Store is a bolt-backed implementation of jobs.Store and
// consolidate.GroupStore.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the database at path and ensures the buckets
// exist.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("Open: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(jobsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(groupsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("Open: create buckets: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveJob implements the jobs.Store interface. Inline statement bytes are
// stripped before encoding.
func (s *Store) SaveJob(ctx context.Context, job *jobs.AnalyzeStatementsJob) error {
	if job.JobID == "" {
		return fmt.Errorf("SaveJob: job ID is required")
	}

	cp := *job
	cp.Inputs = make([]jobs.FileInput, len(job.Inputs))
	for i, in := range job.Inputs {
		in.Data = nil
		in.Password = ""
		cp.Inputs[i] = in
	}

	val, err := json.Marshal(&cp)
	if err != nil {
		return fmt.Errorf("SaveJob: encode job %s: %w", job.JobID, err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(jobsBucket).Put([]byte(job.JobID), val)
	})
}

// GetJob implements the jobs.Store interface.
func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.AnalyzeStatementsJob, error) {
	var job *jobs.AnalyzeStatementsJob

	err := s.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(jobsBucket).Get([]byte(jobID))
		if val == nil {
			return fmt.Errorf("%w: %s", jobs.ErrJobNotFound, jobID)
		}
		job = &jobs.AnalyzeStatementsJob{}
		if err := json.Unmarshal(val, job); err != nil {
			return fmt.Errorf("decode job %s: %w", jobID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// ListJobs implements the jobs.Store interface. Results are newest first.
func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.AnalyzeStatementsJob, error) {
	var result []*jobs.AnalyzeStatementsJob

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(jobsBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var job jobs.AnalyzeStatementsJob
			if err := json.Unmarshal(v, &job); err != nil {
				return fmt.Errorf("decode job %s: %w", k, err)
			}
			if filter.Owner != "" && job.Owner != filter.Owner {
				continue
			}
			if filter.Status != "" && job.Status != filter.Status {
				continue
			}
			result = append(result, &job)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ListJobs: %w", err)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*jobs.AnalyzeStatementsJob{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

// SaveGroup implements the consolidate.GroupStore interface.
func (s *Store) SaveGroup(ctx context.Context, group *consolidate.StatementGroup) error {
	if group.GroupID == "" {
		return fmt.Errorf("SaveGroup: group ID is required")
	}

	val, err := json.Marshal(group)
	if err != nil {
		return fmt.Errorf("SaveGroup: encode group %s: %w", group.GroupID, err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(groupsBucket).Put([]byte(group.GroupID), val)
	})
}

// GetGroup implements the consolidate.GroupStore interface.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*consolidate.StatementGroup, error) {
	var group *consolidate.StatementGroup

	err := s.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(groupsBucket).Get([]byte(groupID))
		if val == nil {
			return fmt.Errorf("%w: %s", consolidate.ErrGroupNotFound, groupID)
		}
		group = &consolidate.StatementGroup{}
		if err := json.Unmarshal(val, group); err != nil {
			return fmt.Errorf("decode group %s: %w", groupID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// ListGroups implements the consolidate.GroupStore interface.
func (s *Store) ListGroups(ctx context.Context, owner string) ([]*consolidate.StatementGroup, error) {
	var result []*consolidate.StatementGroup

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(groupsBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var group consolidate.StatementGroup
			if err := json.Unmarshal(v, &group); err != nil {
				return fmt.Errorf("decode group %s: %w", k, err)
			}
			if owner != "" && group.Owner != owner {
				continue
			}
			result = append(result, &group)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ListGroups: %w", err)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteGroup implements the consolidate.GroupStore interface.
func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(groupsBucket)
		if b.Get([]byte(groupID)) == nil {
			return fmt.Errorf("%w: %s", consolidate.ErrGroupNotFound, groupID)
		}
		return b.Delete([]byte(groupID))
	})
}

// Ensure Store implements both store interfaces.
var _ jobs.Store = (*Store)(nil)
var _ consolidate.GroupStore = (*Store)(nil)
