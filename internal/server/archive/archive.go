// Package archive keeps finalized draw records in S3-compatible object
// storage and hands out presigned download links for them.
package archive

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/secretsanta/internal/common"
	"github.com/dmitrijs2005/secretsanta/internal/server/models"
)

// ErrDisabled is returned by Nop.URL. It matches common.ErrorNotFound.
var ErrDisabled = fmt.Errorf("draw archive disabled: %w", common.ErrorNotFound)

type Archive interface {
	Put(ctx context.Context, listID string, rec models.DrawRecord) error
	URL(ctx context.Context, listID, drawID string) (string, error)
}

// Key is the object key of a draw record.
func Key(listID, drawID string) string {
	return fmt.Sprintf("draws/%s/%s.json", listID, drawID)
}

// Nop is used when no bucket is configured.
type Nop struct{}

func (Nop) Put(context.Context, string, models.DrawRecord) error { return nil }

func (Nop) URL(context.Context, string, string) (string, error) { return "", ErrDisabled }
