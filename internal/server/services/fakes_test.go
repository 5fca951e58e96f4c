package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/scorekeeper/internal/common"
	"github.com/dmitrijs2005/scorekeeper/internal/dbx"
	"github.com/dmitrijs2005/scorekeeper/internal/logging"
	"github.com/dmitrijs2005/scorekeeper/internal/server/auth"
	"github.com/dmitrijs2005/scorekeeper/internal/server/config"
	"github.com/dmitrijs2005/scorekeeper/internal/server/models"
	sessionsrepo "github.com/dmitrijs2005/scorekeeper/internal/server/repositories/sessions"
	usersrepo "github.com/dmitrijs2005/scorekeeper/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func newVerifier(t *testing.T) *auth.PasswordVerifier {
	t.Helper()
	v, err := auth.NewPasswordVerifier(bcrypt.MinCost, 2)
	if err != nil {
		t.Fatalf("NewPasswordVerifier error: %v", err)
	}
	return v
}

func mustHash(t *testing.T, plaintext string) string {
	t.Helper()
	h, err := auth.HashPassword(plaintext, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	return h
}

var testKeys = auth.NewKeys([]byte("k"))

func newUserService(t *testing.T, db *sql.DB, rm *fakeRepoManager) *UserService {
	t.Helper()
	cfg := &config.Config{AccessTokenValidityDuration: 24 * time.Hour}
	return NewUserService(db, rm, testKeys, newVerifier(t), cfg, logging.NewNop())
}

// fakeUsersRepo is an in-memory users.Repository.
type fakeUsersRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
	roles map[string][]models.Role

	findErr   error
	createErr error
	updateErr error
	assignErr error
}

func newFakeUsersRepo(users ...*models.User) *fakeUsersRepo {
	f := &fakeUsersRepo{users: map[string]*models.User{}, roles: map[string][]models.Role{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsersRepo) clone(u *models.User) *models.User {
	c := *u
	c.Roles = append([]models.Role(nil), f.roles[u.ID]...)
	return &c
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.users {
		if existing.UserName == u.UserName {
			return nil, common.ErrorAlreadyExists
		}
	}
	if u.ID == "" {
		u.ID = "u-" + u.UserName
	}
	c := *u
	f.users[u.ID] = &c
	return u, nil
}

func (f *fakeUsersRepo) AssignRole(ctx context.Context, userID, roleName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.assignErr != nil {
		return f.assignErr
	}
	f.roles[userID] = append(f.roles[userID], models.Role{ID: "r-" + roleName, Name: roleName})
	return nil
}

func (f *fakeUsersRepo) FindByUsername(ctx context.Context, userName string) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []*models.User
	for _, u := range f.users {
		if u.UserName == userName {
			out = append(out, f.clone(u))
		}
	}
	return out, nil
}

func (f *fakeUsersRepo) FindByIDAndSalt(ctx context.Context, id, salt string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.users[id]
	if !ok || u.Salt != salt {
		return nil, common.ErrorNotFound
	}
	return f.clone(u), nil
}

func (f *fakeUsersRepo) Find(ctx context.Context, filter models.UserFilter) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []*models.User
	for _, u := range f.users {
		if filter.ID != "" && u.ID != filter.ID {
			continue
		}
		if filter.UserName != "" && u.UserName != filter.UserName {
			continue
		}
		if filter.Email != "" && u.Email != filter.Email {
			continue
		}
		out = append(out, f.clone(u))
	}
	return out, nil
}

func (f *fakeUsersRepo) UpdateSalt(ctx context.Context, id, salt string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	u, ok := f.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.Salt = salt
	return nil
}

func (f *fakeUsersRepo) Update(ctx context.Context, upd models.UserUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	u, ok := f.users[upd.ID]
	if !ok {
		return common.ErrorNotFound
	}
	if upd.UserName != nil {
		u.UserName = *upd.UserName
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.PasswordHash != nil {
		u.Password = *upd.PasswordHash
	}
	if upd.Salt != nil {
		u.Salt = *upd.Salt
	}
	return nil
}

// fakeSessionsRepo is an in-memory sessions.Repository.
type fakeSessionsRepo struct {
	sessions []*models.Session
	err      error
}

func (f *fakeSessionsRepo) Create(ctx context.Context, s *models.Session) (*models.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	if s.ID == "" {
		s.ID = "s-" + s.Name
	}
	f.sessions = append(f.sessions, s)
	return s, nil
}

func (f *fakeSessionsRepo) List(ctx context.Context, st *models.ScoringType) ([]*models.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Session
	for _, s := range f.sessions {
		if st == nil || s.ScoringType == *st {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionsRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Session
	for _, s := range f.sessions {
		if s.OwnerID == ownerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionsRepo) Update(ctx context.Context, ownerID string, upd models.SessionUpdate) error {
	if f.err != nil {
		return f.err
	}
	for _, s := range f.sessions {
		if s.ID == upd.ID && s.OwnerID == ownerID {
			if upd.Name != nil {
				s.Name = *upd.Name
			}
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	s *fakeSessionsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *fakeRepoManager) Sessions(db dbx.DBTX) sessionsrepo.Repository { return m.s }
