package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/secretsanta/internal/common"
	"github.com/dmitrijs2005/secretsanta/internal/dbx"
	"github.com/dmitrijs2005/secretsanta/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db    dbx.DBTX
	newID func() string
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, newID: uuid.NewString}
}

func (r *PostgresRepository) Upsert(ctx context.Context, email string, now time.Time) (*models.User, error) {
	query :=
		`INSERT INTO users (id, email, created_at, last_login_at)
		 VALUES ($1, $2, $3, $3)
		 ON CONFLICT (email) DO UPDATE SET last_login_at = EXCLUDED.last_login_at
		 RETURNING id, email, created_at, last_login_at
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, r.newID(), email, now).
		Scan(&user.ID, &user.Email, &user.CreatedAt, &user.LastLoginAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, email, created_at, last_login_at FROM users
		 WHERE id = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Email, &user.CreatedAt, &user.LastLoginAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
