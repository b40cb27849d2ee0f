package lists

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/secretsanta/internal/common"
	"github.com/dmitrijs2005/secretsanta/internal/server/models"
)

// MemoryRepository keeps lists in process memory. Values are deep-copied on
// the way in and out so callers never share state with the store.
type MemoryRepository struct {
	mu    sync.RWMutex
	lists map[string]*models.List
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{lists: make(map[string]*models.List)}
}

func (r *MemoryRepository) Create(_ context.Context, l *models.List) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lists[l.ID]; ok {
		return common.ErrVersionConflict
	}
	l.Version = 1
	r.lists[l.ID] = l.Clone()
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.List, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.lists[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return l.Clone(), nil
}

func (r *MemoryRepository) collect(keep func(*models.List) bool) []*models.List {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*models.List{}
	for _, l := range r.lists {
		if keep(l) {
			result = append(result, l.Clone())
		}
	}
	slices.SortFunc(result, func(a, b *models.List) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return result
}

func (r *MemoryRepository) All(_ context.Context) ([]*models.List, error) {
	return r.collect(func(*models.List) bool { return true }), nil
}

func (r *MemoryRepository) ByOwner(_ context.Context, ownerID string) ([]*models.List, error) {
	return r.collect(func(l *models.List) bool { return l.OwnerID == ownerID }), nil
}

func (r *MemoryRepository) check(l *models.List) error {
	stored, ok := r.lists[l.ID]
	if !ok {
		return common.ErrorNotFound
	}
	if stored.Version != l.Version {
		return common.ErrVersionConflict
	}
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, l *models.List) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.check(l); err != nil {
		return err
	}
	l.Version++
	r.lists[l.ID] = l.Clone()
	return nil
}

func (r *MemoryRepository) SaveAll(_ context.Context, ls []*models.List) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(ls))
	for _, l := range ls {
		if _, dup := seen[l.ID]; dup {
			return fmt.Errorf("list %s: %w", l.ID, common.ErrVersionConflict)
		}
		seen[l.ID] = struct{}{}

		if l.Version == 0 {
			if _, ok := r.lists[l.ID]; ok {
				return fmt.Errorf("list %s: %w", l.ID, common.ErrVersionConflict)
			}
			continue
		}
		if err := r.check(l); err != nil {
			return fmt.Errorf("list %s: %w", l.ID, err)
		}
	}

	for _, l := range ls {
		l.Version++
		r.lists[l.ID] = l.Clone()
	}
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lists[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.lists, id)
	return nil
}
