// Package users stores the owner identities created by e-mail login.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/secretsanta/internal/server/models"
)

type Repository interface {
	// Upsert creates the user for email or records a new login time for an
	// existing one.
	Upsert(ctx context.Context, email string, now time.Time) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
}
