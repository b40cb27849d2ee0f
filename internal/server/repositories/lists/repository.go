// Package lists stores gift-exchange lists one record per list, guarded by
// an optimistic version stamp.
package lists

import (
	"context"

	"github.com/dmitrijs2005/secretsanta/internal/server/models"
)

// Repository persists lists.
//
// Writes compare the caller's List.Version with the stored one and fail with
// common.ErrVersionConflict when they differ. A successful write bumps the
// version of the passed list in place.
type Repository interface {
	// Create inserts a new list with version 1. A duplicate id is a conflict.
	Create(ctx context.Context, l *models.List) error
	Get(ctx context.Context, id string) (*models.List, error)
	All(ctx context.Context) ([]*models.List, error)
	ByOwner(ctx context.Context, ownerID string) ([]*models.List, error)
	// Update replaces the stored list if its version still matches.
	Update(ctx context.Context, l *models.List) error
	// SaveAll writes a batch atomically. Version 0 means insert; any conflict
	// aborts the whole batch.
	SaveAll(ctx context.Context, ls []*models.List) error
	Delete(ctx context.Context, id string) error
}
