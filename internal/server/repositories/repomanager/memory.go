package repomanager

import (
	"context"

	"github.com/dmitrijs2005/secretsanta/internal/server/repositories/lists"
	"github.com/dmitrijs2005/secretsanta/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process memory. It is used
// when no database is configured and in tests.
type MemoryRepositoryManager struct {
	lists *lists.MemoryRepository
	users *users.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		lists: lists.NewMemoryRepository(),
		users: users.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Lists() lists.Repository { return m.lists }

func (m *MemoryRepositoryManager) Users() users.Repository { return m.users }

func (m *MemoryRepositoryManager) Close() error { return nil }
