// Package services contains the server-side business logic: list and
// participant management, the draw orchestrator and e-mail login.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/secretsanta/internal/common"
)

// maxWriteAttempts bounds the reload-and-retry loop on version conflicts.
const maxWriteAttempts = 3

// Authenticator resolves an identity token to a user id.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// storeErr passes through the repository sentinels callers act on and marks
// everything else as a persistence failure.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrVersionConflict) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrPersistence, err)
}
