package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/secretsanta/internal/common"
	"github.com/dmitrijs2005/secretsanta/internal/server/models"
	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	byEmail map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepository) Upsert(_ context.Context, email string, now time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byEmail[email]; ok {
		u := r.byID[id]
		u.LastLoginAt = now
		c := *u
		return &c, nil
	}

	u := &models.User{ID: uuid.NewString(), Email: email, CreatedAt: now, LastLoginAt: now}
	r.byID[u.ID] = u
	r.byEmail[email] = u.ID
	c := *u
	return &c, nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}
