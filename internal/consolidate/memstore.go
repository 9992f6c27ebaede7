package consolidate

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemGroupStore is an in-memory GroupStore, safe for concurrent use.
// Data is lost on restart - for persistence, use the bolt-backed store.
type MemGroupStore struct {
	mu     sync.RWMutex
	groups map[string]*StatementGroup
}

// NewMemGroupStore creates an empty in-memory group store.
func NewMemGroupStore() *MemGroupStore {
	return &MemGroupStore{groups: make(map[string]*StatementGroup)}
}

// SaveGroup saves or updates a group.
func (s *MemGroupStore) SaveGroup(ctx context.Context, group *StatementGroup) error {
	if group.GroupID == "" {
		return fmt.Errorf("group ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *group
	cp.Members = append([]Member(nil), group.Members...)
	s.groups[group.GroupID] = &cp
	return nil
}

// GetGroup retrieves a group by ID.
func (s *MemGroupStore) GetGroup(ctx context.Context, groupID string) (*StatementGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
	}

	cp := *group
	cp.Members = append([]Member(nil), group.Members...)
	return &cp, nil
}

// ListGroups lists groups for an owner, newest first.
func (s *MemGroupStore) ListGroups(ctx context.Context, owner string) ([]*StatementGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*StatementGroup
	for _, group := range s.groups {
		if owner != "" && group.Owner != owner {
			continue
		}
		cp := *group
		cp.Members = append([]Member(nil), group.Members...)
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteGroup removes a group by ID.
func (s *MemGroupStore) DeleteGroup(ctx context.Context, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[groupID]; !ok {
		return fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
	}
	delete(s.groups, groupID)
	return nil
}

// Ensure MemGroupStore implements GroupStore.
var _ GroupStore = (*MemGroupStore)(nil)
