package lists

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/secretsanta/internal/common"
	"github.com/dmitrijs2005/secretsanta/internal/dbx"
	"github.com/dmitrijs2005/secretsanta/internal/server/models"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `SELECT id, name, owner_id, created_at, version, participants, draws FROM lists`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanList(s rowScanner) (*models.List, error) {
	var (
		l            models.List
		owner        sql.NullString
		participants []byte
		draws        []byte
	)
	if err := s.Scan(&l.ID, &l.Name, &owner, &l.CreatedAt, &l.Version, &participants, &draws); err != nil {
		return nil, err
	}
	l.OwnerID = owner.String
	if err := json.Unmarshal(participants, &l.Participants); err != nil {
		return nil, fmt.Errorf("decode participants of list %s: %w", l.ID, err)
	}
	if err := json.Unmarshal(draws, &l.Draws); err != nil {
		return nil, fmt.Errorf("decode draws of list %s: %w", l.ID, err)
	}
	if l.Participants == nil {
		l.Participants = []models.Participant{}
	}
	if l.Draws == nil {
		l.Draws = []models.DrawRecord{}
	}
	return &l, nil
}

func encodeList(l *models.List) (participants string, draws string, err error) {
	p := l.Participants
	if p == nil {
		p = []models.Participant{}
	}
	d := l.Draws
	if d == nil {
		d = []models.DrawRecord{}
	}
	pb, err := json.Marshal(p)
	if err != nil {
		return "", "", err
	}
	dd, err := json.Marshal(d)
	if err != nil {
		return "", "", err
	}
	return string(pb), string(dd), nil
}

func ownerArg(ownerID string) sql.NullString {
	return sql.NullString{String: ownerID, Valid: ownerID != ""}
}

func insert(ctx context.Context, db dbx.DBTX, l *models.List) error {
	participants, draws, err := encodeList(l)
	if err != nil {
		return err
	}

	query :=
		`INSERT INTO lists (id, name, owner_id, created_at, version, participants, draws)
		 VALUES ($1, $2, $3, $4, 1, $5, $6)
		 ON CONFLICT (id) DO NOTHING
		 `

	return dbx.ExecAffecting(ctx, db, common.ErrVersionConflict, query,
		l.ID, l.Name, ownerArg(l.OwnerID), l.CreatedAt, participants, draws)
}

func update(ctx context.Context, tx dbx.DBTX, l *models.List) error {
	var current int64
	err := tx.QueryRowContext(ctx,
		`SELECT version FROM lists WHERE id = $1 FOR UPDATE`, l.ID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	if current != l.Version {
		return common.ErrVersionConflict
	}

	participants, draws, err := encodeList(l)
	if err != nil {
		return err
	}

	query :=
		`UPDATE lists SET name = $2, owner_id = $3, participants = $4, draws = $5, version = version + 1
		 WHERE id = $1
		 `

	if _, err := tx.ExecContext(ctx, query,
		l.ID, l.Name, ownerArg(l.OwnerID), participants, draws); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, l *models.List) error {
	if err := insert(ctx, r.db, l); err != nil {
		return err
	}
	l.Version = 1
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.List, error) {
	l, err := scanList(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return l, nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.List, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.List{}
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) All(ctx context.Context) ([]*models.List, error) {
	return r.query(ctx, selectColumns+` ORDER BY created_at, id`)
}

func (r *PostgresRepository) ByOwner(ctx context.Context, ownerID string) ([]*models.List, error) {
	return r.query(ctx, selectColumns+` WHERE owner_id = $1 ORDER BY created_at, id`, ownerID)
}

func (r *PostgresRepository) Update(ctx context.Context, l *models.List) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return update(ctx, tx, l)
	})
	if err != nil {
		return err
	}
	l.Version++
	return nil
}

func (r *PostgresRepository) SaveAll(ctx context.Context, ls []*models.List) error {
	next := make([]int64, len(ls))
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for i, l := range ls {
			if l.Version == 0 {
				if err := insert(ctx, tx, l); err != nil {
					return fmt.Errorf("list %s: %w", l.ID, err)
				}
				next[i] = 1
				continue
			}
			if err := update(ctx, tx, l); err != nil {
				return fmt.Errorf("list %s: %w", l.ID, err)
			}
			next[i] = l.Version + 1
		}
		return nil
	})
	if err != nil {
		return err
	}
	for i, l := range ls {
		l.Version = next[i]
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return dbx.ExecAffecting(ctx, r.db, common.ErrorNotFound, `DELETE FROM lists WHERE id = $1`, id)
}
