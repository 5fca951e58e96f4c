package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/scorekeeper/internal/common"
	"github.com/dmitrijs2005/scorekeeper/internal/dbx"
	"github.com/dmitrijs2005/scorekeeper/internal/server/models"
	"github.com/google/uuid"
)

const userColumns = `id, username, email, password, salt, created_at, updated_at`

// SQLRepository implements Repository with queries that run unchanged on
// PostgreSQL and SQLite.
type SQLRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, now: time.Now}
}

func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := r.now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	query :=
		`INSERT INTO users (id, username, email, password, salt, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 `

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.UserName, user.Email, user.Password, user.Salt,
		dbx.Time{Time: now}, dbx.Time{Time: now})

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", common.ErrorAlreadyExists, err)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLRepository) AssignRole(ctx context.Context, userID, roleName string) error {
	query :=
		`INSERT INTO user_roles (user_id, role_id)
		 SELECT $1, id FROM roles WHERE name = $2
		 `

	res, err := r.db.ExecContext(ctx, query, userID, roleName)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", common.ErrorAlreadyExists, err)
		}
		return fmt.Errorf("db error: %w", err)
	}

	return expectAffected(res)
}

func (r *SQLRepository) FindByUsername(ctx context.Context, userName string) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	return r.queryUsers(ctx, query, userName)
}

func (r *SQLRepository) FindByIDAndSalt(ctx context.Context, id, salt string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND salt = $2`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id, salt))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := r.loadRoles(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Find returns users matching every non-empty field of filter, ordered by
// username. An empty filter returns all users.
func (r *SQLRepository) Find(ctx context.Context, filter models.UserFilter) ([]*models.User, error) {
	var (
		conds []string
		args  []any
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("id", filter.ID)
	add("username", filter.UserName)
	add("email", filter.Email)

	query := `SELECT ` + userColumns + ` FROM users`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY username`

	return r.queryUsers(ctx, query, args...)
}

func (r *SQLRepository) UpdateSalt(ctx context.Context, id, salt string) error {
	query :=
		`UPDATE users SET salt = $1, updated_at = $2
		 WHERE id = $3
		 `

	res, err := r.db.ExecContext(ctx, query, salt, dbx.Time{Time: r.now()}, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return expectAffected(res)
}

// Update applies the non-nil fields of update. A no-op update still bumps
// updated_at and reports ErrorNotFound for an unknown id.
func (r *SQLRepository) Update(ctx context.Context, update models.UserUpdate) error {
	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.UserName != nil {
		set("username", *update.UserName)
	}
	if update.Email != nil {
		set("email", *update.Email)
	}
	if update.PasswordHash != nil {
		set("password", *update.PasswordHash)
	}
	if update.Salt != nil {
		set("salt", *update.Salt)
	}
	set("updated_at", dbx.Time{Time: r.now()})

	args = append(args, update.ID)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", common.ErrorAlreadyExists, err)
		}
		return fmt.Errorf("db error: %w", err)
	}

	return expectAffected(res)
}

func (r *SQLRepository) queryUsers(ctx context.Context, query string, args ...any) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	for _, user := range result {
		if err := r.loadRoles(ctx, user); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (r *SQLRepository) loadRoles(ctx context.Context, user *models.User) error {
	query :=
		`SELECT r.id, r.name, r.created_at, r.updated_at
		 FROM roles r JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = $1
		 ORDER BY r.name
		 `

	rows, err := r.db.QueryContext(ctx, query, user.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	user.Roles = user.Roles[:0]
	for rows.Next() {
		var (
			role                 models.Role
			createdAt, updatedAt dbx.Time
		)
		if err := rows.Scan(&role.ID, &role.Name, &createdAt, &updatedAt); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		role.CreatedAt, role.UpdatedAt = createdAt.Time, updatedAt.Time
		user.Roles = append(user.Roles, role)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*models.User, error) {
	var (
		user                 models.User
		createdAt, updatedAt dbx.Time
	)
	err := s.Scan(&user.ID, &user.UserName, &user.Email, &user.Password, &user.Salt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	user.CreatedAt, user.UpdatedAt = createdAt.Time, updatedAt.Time
	return &user, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
