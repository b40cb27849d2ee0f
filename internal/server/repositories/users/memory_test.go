package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/secretsanta/internal/common"
)

func TestMemoryRepository_UpsertIsIdempotentPerEmail(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	first := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(24 * time.Hour)

	u1, err := r.Upsert(ctx, "alice@example.com", first)
	if err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
	u2, err := r.Upsert(ctx, "alice@example.com", second)
	if err != nil {
		t.Fatalf("Upsert error: %v", err)
	}

	if u1.ID != u2.ID {
		t.Fatalf("same email must map to one user: %s != %s", u1.ID, u2.ID)
	}
	if !u2.CreatedAt.Equal(first) || !u2.LastLoginAt.Equal(second) {
		t.Fatalf("unexpected timestamps: %+v", u2)
	}

	got, err := r.Get(ctx, u1.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !got.LastLoginAt.Equal(second) {
		t.Fatalf("login time not stored: %+v", got)
	}
}

func TestMemoryRepository_GetNotFound(t *testing.T) {
	_, err := NewMemoryRepository().Get(context.Background(), "nope")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}
