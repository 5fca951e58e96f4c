package sessions

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/scorekeeper/internal/common"
	"github.com/dmitrijs2005/scorekeeper/internal/dbx"
	"github.com/dmitrijs2005/scorekeeper/internal/server/models"
	"github.com/google/uuid"
)

const sessionColumns = `id, name, location, date, owner_id, scoring_type, should_use_victory_points, created_at, updated_at`

type SQLRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, now: time.Now}
}

func (r *SQLRepository) Create(ctx context.Context, s *models.Session) (*models.Session, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := r.now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now

	query :=
		`INSERT INTO sessions (` + sessionColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 `

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.Location, dbx.Time{Time: s.Date}, s.OwnerID,
		string(s.ScoringType), s.ShouldUseVictoryPoints,
		dbx.Time{Time: now}, dbx.Time{Time: now})

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", common.ErrorAlreadyExists, err)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *SQLRepository) List(ctx context.Context, scoringType *models.ScoringType) ([]*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions`
	var args []any
	if scoringType != nil {
		query += ` WHERE scoring_type = $1`
		args = append(args, string(*scoringType))
	}
	query += ` ORDER BY date DESC, created_at DESC`

	return r.query(ctx, query, args...)
}

func (r *SQLRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE owner_id = $1 ORDER BY date DESC, created_at DESC`

	return r.query(ctx, query, ownerID)
}

func (r *SQLRepository) Update(ctx context.Context, ownerID string, update models.SessionUpdate) error {
	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.Name != nil {
		set("name", *update.Name)
	}
	if update.Location != nil {
		set("location", *update.Location)
	}
	if update.ScoringType != nil {
		set("scoring_type", string(*update.ScoringType))
	}
	if update.ShouldUseVictoryPoints != nil {
		set("should_use_victory_points", *update.ShouldUseVictoryPoints)
	}
	set("updated_at", dbx.Time{Time: r.now()})

	args = append(args, update.ID, ownerID)
	query := fmt.Sprintf(`UPDATE sessions SET %s WHERE id = $%d AND owner_id = $%d`,
		strings.Join(sets, ", "), len(args)-1, len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLRepository) query(ctx context.Context, query string, args ...any) ([]*models.Session, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Session
	for rows.Next() {
		var (
			s                          models.Session
			location                   sql.NullString
			scoringType                string
			date, createdAt, updatedAt dbx.Time
		)
		err := rows.Scan(&s.ID, &s.Name, &location, &date, &s.OwnerID,
			&scoringType, &s.ShouldUseVictoryPoints, &createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if location.Valid {
			s.Location = &location.String
		}
		s.ScoringType = models.ScoringType(scoringType)
		s.Date, s.CreatedAt, s.UpdatedAt = date.Time, createdAt.Time, updatedAt.Time
		result = append(result, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
