package lists

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/secretsanta/internal/common"
	"github.com/dmitrijs2005/secretsanta/internal/server/models"
)

var created = time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func listColumns() []string {
	return []string{"id", "name", "owner_id", "created_at", "version", "participants", "draws"}
}

const (
	insertQuery = `(?s)^INSERT\s+INTO\s+lists\s*\(id,\s*name,\s*owner_id,\s*created_at,\s*version,\s*participants,\s*draws\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*1,\s*\$5,\s*\$6\)\s*ON\s+CONFLICT\s*\(id\)\s*DO\s+NOTHING\s*$`
	lockQuery   = `(?s)^SELECT\s+version\s+FROM\s+lists\s+WHERE\s+id\s*=\s*\$1\s+FOR\s+UPDATE$`
	updateQuery = `(?s)^UPDATE\s+lists\s+SET\s+name\s*=\s*\$2,\s*owner_id\s*=\s*\$3,\s*participants\s*=\s*\$4,\s*draws\s*=\s*\$5,\s*version\s*=\s*version\s*\+\s*1\s+WHERE\s+id\s*=\s*\$1\s*$`
	getQuery    = `(?s)^SELECT\s+id,\s*name,\s*owner_id,\s*created_at,\s*version,\s*participants,\s*draws\s+FROM\s+lists\s+WHERE\s+id\s*=\s*\$1$`
	allQuery    = `(?s)^SELECT\s+id,.*\s+FROM\s+lists\s+ORDER\s+BY\s+created_at,\s*id$`
	ownerQuery  = `(?s)^SELECT\s+id,.*\s+FROM\s+lists\s+WHERE\s+owner_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at,\s*id$`
	deleteQuery = `^DELETE\s+FROM\s+lists\s+WHERE\s+id\s*=\s*\$1$`
)

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQuery).
		WithArgs("l-1", "Office", nil, created, "[]", "[]").
		WillReturnResult(sqlmock.NewResult(0, 1))

	l := &models.List{ID: "l-1", Name: "Office", CreatedAt: created}
	if err := repo.Create(context.Background(), l); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if l.Version != 1 {
		t.Fatalf("want version 1, got %d", l.Version)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DuplicateIsConflict(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQuery).
		WithArgs("l-1", "Office", "u-1", created, "[]", "[]").
		WillReturnResult(sqlmock.NewResult(0, 0))

	l := &models.List{ID: "l-1", Name: "Office", OwnerID: "u-1", CreatedAt: created}
	err := repo.Create(context.Background(), l)
	if !errors.Is(err, common.ErrVersionConflict) {
		t.Fatalf("want ErrVersionConflict, got %v", err)
	}
	if l.Version != 0 {
		t.Fatalf("version must not change on failure, got %d", l.Version)
	}
}

func TestGet_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	participants := `[{"id":"p-1","name":"Alice","email":"alice@example.com","addedAt":"2024-12-01T10:00:00Z"}]`
	draws := `[{"id":"d-1","createdAt":"2024-12-02T10:00:00Z","status":"confirmed","pairs":[]}]`
	rows := sqlmock.NewRows(listColumns()).
		AddRow("l-1", "Office", "u-1", created, int64(3), []byte(participants), []byte(draws))
	mock.ExpectQuery(getQuery).WithArgs("l-1").WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "l-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.ID != "l-1" || got.OwnerID != "u-1" || got.Version != 3 {
		t.Fatalf("unexpected list: %+v", got)
	}
	if len(got.Participants) != 1 || got.Participants[0].Email != "alice@example.com" {
		t.Fatalf("unexpected participants: %+v", got.Participants)
	}
	if len(got.Draws) != 1 || got.Draws[0].Status != models.DrawConfirmed {
		t.Fatalf("unexpected draws: %+v", got.Draws)
	}
}

func TestGet_NullOwnerAndEmptyCollections(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(listColumns()).
		AddRow("l-1", "Office", nil, created, int64(1), []byte(`null`), []byte(`[]`))
	mock.ExpectQuery(getQuery).WithArgs("l-1").WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "l-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.OwnerID != "" || got.Participants == nil || got.Draws == nil {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(getQuery).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGet_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(getQuery).WithArgs("l-1").WillReturnError(errors.New("db down"))

	_, err := repo.Get(context.Background(), "l-1")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestAllAndByOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(allQuery).WillReturnRows(sqlmock.NewRows(listColumns()).
		AddRow("l-1", "A", nil, created, int64(1), []byte(`[]`), []byte(`[]`)).
		AddRow("l-2", "B", "u-1", created, int64(2), []byte(`[]`), []byte(`[]`)))
	mock.ExpectQuery(ownerQuery).WithArgs("u-1").WillReturnRows(sqlmock.NewRows(listColumns()).
		AddRow("l-2", "B", "u-1", created, int64(2), []byte(`[]`), []byte(`[]`)))

	all, err := repo.All(context.Background())
	if err != nil {
		t.Fatalf("All error: %v", err)
	}
	if len(all) != 2 || all[0].ID != "l-1" || all[1].ID != "l-2" {
		t.Fatalf("unexpected lists: %+v", all)
	}

	owned, err := repo.ByOwner(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ByOwner error: %v", err)
	}
	if len(owned) != 1 || owned[0].OwnerID != "u-1" {
		t.Fatalf("unexpected lists: %+v", owned)
	}
}

func TestUpdate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).WithArgs("l-1").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(4)))
	mock.ExpectExec(updateQuery).
		WithArgs("l-1", "Office", nil, "[]", "[]").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	l := &models.List{ID: "l-1", Name: "Office", Version: 4}
	if err := repo.Update(context.Background(), l); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if l.Version != 5 {
		t.Fatalf("want version 5, got %d", l.Version)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdate_StaleVersion(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).WithArgs("l-1").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(5)))
	mock.ExpectRollback()

	l := &models.List{ID: "l-1", Name: "Office", Version: 4}
	err := repo.Update(context.Background(), l)
	if !errors.Is(err, common.ErrVersionConflict) {
		t.Fatalf("want ErrVersionConflict, got %v", err)
	}
	if l.Version != 4 {
		t.Fatalf("version must not change on conflict, got %d", l.Version)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdate_Missing(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).WithArgs("l-1").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &models.List{ID: "l-1", Version: 1})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestSaveAll_InsertAndUpdateInOneTx(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(insertQuery).
		WithArgs("l-new", "New", nil, created, "[]", "[]").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(lockQuery).WithArgs("l-old").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(2)))
	mock.ExpectExec(updateQuery).
		WithArgs("l-old", "Old", nil, "[]", "[]").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	fresh := &models.List{ID: "l-new", Name: "New", CreatedAt: created}
	old := &models.List{ID: "l-old", Name: "Old", Version: 2}
	if err := repo.SaveAll(context.Background(), []*models.List{fresh, old}); err != nil {
		t.Fatalf("SaveAll error: %v", err)
	}
	if fresh.Version != 1 || old.Version != 3 {
		t.Fatalf("unexpected versions: new=%d old=%d", fresh.Version, old.Version)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSaveAll_ConflictAbortsBatch(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(insertQuery).
		WithArgs("l-new", "New", nil, created, "[]", "[]").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(lockQuery).WithArgs("l-old").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(9)))
	mock.ExpectRollback()

	fresh := &models.List{ID: "l-new", Name: "New", CreatedAt: created}
	old := &models.List{ID: "l-old", Name: "Old", Version: 2}
	err := repo.SaveAll(context.Background(), []*models.List{fresh, old})
	if !errors.Is(err, common.ErrVersionConflict) {
		t.Fatalf("want ErrVersionConflict, got %v", err)
	}
	if fresh.Version != 0 || old.Version != 2 {
		t.Fatalf("versions must be untouched: new=%d old=%d", fresh.Version, old.Version)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(deleteQuery).WithArgs("l-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deleteQuery).WithArgs("l-1").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "l-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := repo.Delete(context.Background(), "l-1"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}
