package repomanager

import (
	"context"

	"github.com/dmitrijs2005/secretsanta/internal/server/repositories/lists"
	"github.com/dmitrijs2005/secretsanta/internal/server/repositories/users"
)

// RepositoryManager vends the repositories of one storage backend.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Lists() lists.Repository
	Users() users.Repository
	Close() error
}
