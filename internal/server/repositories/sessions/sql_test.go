package sessions

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/scorekeeper/internal/common"
	"github.com/dmitrijs2005/scorekeeper/internal/server/models"
)

var (
	fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	playDay  = time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
)

const qSelect = `(?s)^SELECT\s+id,\s*name,\s*location,\s*date,\s*owner_id,\s*scoring_type,\s*should_use_victory_points,\s*created_at,\s*updated_at\s+FROM\s+sessions`

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	repo := NewSQLRepository(db)
	repo.now = func() time.Time { return fixedNow }
	return repo, mock, db
}

func sessionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "location", "date", "owner_id", "scoring_type", "should_use_victory_points", "created_at", "updated_at"})
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	loc := "Riga"
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+sessions\s*\(id,.*\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7,\s*\$8,\s*\$9\)\s*$`).
		WithArgs(sqlmock.AnyArg(), "Tuesday club", loc, playDay, "u-1", "IMP", true, fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := &models.Session{
		Name:                   "Tuesday club",
		Location:               &loc,
		Date:                   playDay,
		OwnerID:                "u-1",
		ScoringType:            models.ScoringIMP,
		ShouldUseVictoryPoints: true,
	}
	got, err := repo.Create(context.Background(), s)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID == "" || !got.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected session: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+sessions`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Session{Name: "x", OwnerID: "u-1", ScoringType: models.ScoringMP})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestList_WithAndWithoutFilter(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qSelect + `\s+ORDER\s+BY\s+date\s+DESC,\s*created_at\s+DESC\s*$`).
		WillReturnRows(sessionRows().
			AddRow("s-1", "A", nil, playDay, "u-1", "IMP", false, fixedNow, fixedNow).
			AddRow("s-2", "B", "Riga", playDay, "u-2", "MP", true, fixedNow, fixedNow))

	all, err := repo.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("want 2 sessions, got %d", len(all))
	}
	if all[0].Location != nil || all[1].Location == nil || *all[1].Location != "Riga" {
		t.Fatalf("unexpected locations: %+v %+v", all[0], all[1])
	}
	if all[1].ScoringType != models.ScoringMP || !all[1].ShouldUseVictoryPoints {
		t.Fatalf("unexpected session: %+v", all[1])
	}

	mp := models.ScoringMP
	mock.ExpectQuery(qSelect+`\s+WHERE\s+scoring_type\s*=\s*\$1\s+ORDER\s+BY`).
		WithArgs("MP").
		WillReturnRows(sessionRows())

	filtered, err := repo.List(context.Background(), &mp)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(filtered) != 0 {
		t.Fatalf("want none, got %d", len(filtered))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListByOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qSelect+`\s+WHERE\s+owner_id\s*=\s*\$1`).
		WithArgs("u-1").
		WillReturnRows(sessionRows().AddRow("s-1", "A", nil, playDay, "u-1", "IMP", false, fixedNow, fixedNow))

	got, err := repo.ListByOwner(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(got) != 1 || got[0].OwnerID != "u-1" || !got[0].Date.Equal(playDay) {
		t.Fatalf("unexpected sessions: %+v", got)
	}
}

func TestListByOwner_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qSelect).WillReturnError(errors.New("db err"))

	_, err := repo.ListByOwner(context.Background(), "u-1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUpdate_ScopedToOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	name := "Renamed"
	vp := false
	q := `(?s)^UPDATE\s+sessions\s+SET\s+name\s*=\s*\$1,\s*should_use_victory_points\s*=\s*\$2,\s*updated_at\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$4\s+AND\s+owner_id\s*=\s*\$5\s*$`

	mock.ExpectExec(q).
		WithArgs(name, vp, fixedNow, "s-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	upd := models.SessionUpdate{ID: "s-1", Name: &name, ShouldUseVictoryPoints: &vp}
	if err := repo.Update(context.Background(), "u-1", upd); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	mock.ExpectExec(q).
		WithArgs(name, vp, fixedNow, "s-1", "u-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Update(context.Background(), "u-2", upd); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
