// Package services contains server-side business logic. This file implements
// UserService: login, logout by salt rotation, signup, identity lookup and
// profile maintenance.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/scorekeeper/internal/common"
	"github.com/dmitrijs2005/scorekeeper/internal/dbx"
	"github.com/dmitrijs2005/scorekeeper/internal/logging"
	"github.com/dmitrijs2005/scorekeeper/internal/server/auth"
	"github.com/dmitrijs2005/scorekeeper/internal/server/config"
	"github.com/dmitrijs2005/scorekeeper/internal/server/models"
	"github.com/dmitrijs2005/scorekeeper/internal/server/repositories/repomanager"
)

// DefaultRole is granted to every new account.
const DefaultRole = "user"

// LoginResult is the public profile plus the freshly issued access token.
type LoginResult struct {
	ID          string
	UserName    string
	Email       string
	Roles       []string
	AccessToken string
}

// SignupRequest carries the fields of a new account.
type SignupRequest struct {
	UserName string
	Email    string
	Password string
}

// ProfileUpdate carries optional profile changes. A new password also
// rotates the salt, signing the user out everywhere.
type ProfileUpdate struct {
	ID       string
	UserName *string
	Email    *string
	Password *string
}

// UserService provides authentication-related operations:
// - Login: verify credentials and mint an access token
// - Logout: rotate the salt, invalidating every issued token
// - Identify: resolve token claims into the current user
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	keys                        *auth.Keys
	verifier                    *auth.PasswordVerifier
	logger                      logging.Logger
	accessTokenValidityDuration time.Duration
	now                         func() time.Time
}

// NewUserService constructs a UserService. keys and verifier are shared,
// immutable process-wide values built once at startup.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, keys *auth.Keys, verifier *auth.PasswordVerifier, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		keys:                        keys,
		verifier:                    verifier,
		logger:                      logger,
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		now:                         time.Now,
	}
}

// Login checks userName and password and returns a token bound to the
// user's current salt. Every credential failure is common.ErrorUnauthorized;
// whether the username exists is never revealed.
func (s *UserService) Login(ctx context.Context, userName, password string) (*LoginResult, error) {
	repo := s.repomanager.Users(s.db)

	found, err := repo.FindByUsername(ctx, userName)
	if err != nil {
		return nil, fmt.Errorf("%w: error searching user: %v", common.ErrorInternal, err)
	}

	switch len(found) {
	case 1:
	case 0:
		s.verifier.Equalize(ctx, password)
		s.logger.Info(ctx, "login failed", "username", userName, "reason", "user not found")
		return nil, common.ErrorUnauthorized
	default:
		s.logger.Warn(ctx, "login failed", "username", userName, "reason", "username is not unique", "matches", len(found))
		return nil, common.ErrorUnauthorized
	}

	user := found[0]
	ok, err := s.verifier.Verify(ctx, password, user.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: error verifying password for %s: %v", common.ErrorInternal, user.ID, err)
	}
	if !ok {
		s.logger.Info(ctx, "login failed", "username", userName, "reason", "wrong password")
		return nil, common.ErrorUnauthorized
	}

	token, err := s.keys.Encode(auth.NewClaims(user.ID, user.Salt, s.now(), s.accessTokenValidityDuration))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	s.logger.Debug(ctx, "user logged in", "user_id", user.ID)

	return &LoginResult{
		ID:          user.ID,
		UserName:    user.UserName,
		Email:       user.Email,
		Roles:       user.RoleNames(),
		AccessToken: token,
	}, nil
}

// Logout rotates the user's salt. All tokens issued before the call stop
// resolving to an identity; repeated calls rotate again and succeed.
func (s *UserService) Logout(ctx context.Context, user *models.User) error {
	salt, err := auth.NewSalt()
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	repo := s.repomanager.Users(s.db)
	if err := repo.UpdateSalt(ctx, user.ID, salt); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Info(ctx, "logout failed", "user_id", user.ID, "reason", "user not found")
			return common.ErrorUnauthorized
		}
		return fmt.Errorf("%w: error rotating salt: %v", common.ErrorInternal, err)
	}

	user.Salt = salt
	s.logger.Info(ctx, "user logged out", "user_id", user.ID)
	return nil
}

// Identify resolves claims to the user they were issued for, provided the
// salt they carry is still current.
func (s *UserService) Identify(ctx context.Context, claims auth.Claims) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByIDAndSalt(ctx, claims.ID, claims.Salt)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Info(ctx, "identity lookup failed", "user_id", claims.ID, "reason", "unknown user or rotated salt")
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("%w: error looking up identity: %v", common.ErrorInternal, err)
	}

	return user, nil
}

// Signup creates an account with the default role in one transaction.
func (s *UserService) Signup(ctx context.Context, req SignupRequest) (*models.User, error) {
	if err := validateSignup(req); err != nil {
		return nil, err
	}

	hash, err := s.verifier.Hash(ctx, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	salt, err := auth.NewSalt()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	var created *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		u, err := repo.Create(ctx, &models.User{
			UserName: req.UserName,
			Email:    req.Email,
			Password: hash,
			Salt:     salt,
		})
		if err != nil {
			return err
		}
		if err := repo.AssignRole(ctx, u.ID, DefaultRole); err != nil {
			return fmt.Errorf("error assigning role %s: %w", DefaultRole, err)
		}

		created, err = repo.FindByIDAndSalt(ctx, u.ID, salt)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.logger.Info(ctx, "signup rejected", "username", req.UserName, "reason", "already exists")
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("%w: error creating user: %v", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "user signed up", "user_id", created.ID, "username", created.UserName)
	return created, nil
}

// Search returns users matching filter; an empty filter returns everyone.
func (s *UserService) Search(ctx context.Context, filter models.UserFilter) ([]*models.User, error) {
	repo := s.repomanager.Users(s.db)

	found, err := repo.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: error searching users: %v", common.ErrorInternal, err)
	}
	return found, nil
}

// Update applies a profile change for upd.ID. A password change hashes the
// new password and rotates the salt in the same write.
func (s *UserService) Update(ctx context.Context, upd ProfileUpdate) error {
	change := models.UserUpdate{ID: upd.ID, UserName: upd.UserName, Email: upd.Email}

	if upd.UserName != nil && strings.TrimSpace(*upd.UserName) == "" {
		return fmt.Errorf("%w: username must not be empty", common.ErrorValidation)
	}
	if upd.Email != nil && !strings.Contains(*upd.Email, "@") {
		return fmt.Errorf("%w: invalid email", common.ErrorValidation)
	}

	if upd.Password != nil {
		if *upd.Password == "" {
			return fmt.Errorf("%w: password must not be empty", common.ErrorValidation)
		}
		hash, err := s.verifier.Hash(ctx, *upd.Password)
		if err != nil {
			if errors.Is(err, common.ErrorValidation) {
				return err
			}
			return fmt.Errorf("%w: %v", common.ErrorInternal, err)
		}
		salt, err := auth.NewSalt()
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrorInternal, err)
		}
		change.PasswordHash = &hash
		change.Salt = &salt
	}

	repo := s.repomanager.Users(s.db)
	if err := repo.Update(ctx, change); err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return common.ErrorNotFound
		case errors.Is(err, common.ErrorAlreadyExists):
			return common.ErrorAlreadyExists
		default:
			return fmt.Errorf("%w: error updating user: %v", common.ErrorInternal, err)
		}
	}

	s.logger.Info(ctx, "user updated", "user_id", upd.ID, "password_changed", upd.Password != nil)
	return nil
}

func validateSignup(req SignupRequest) error {
	switch {
	case strings.TrimSpace(req.UserName) == "":
		return fmt.Errorf("%w: username must not be empty", common.ErrorValidation)
	case !strings.Contains(req.Email, "@"):
		return fmt.Errorf("%w: invalid email", common.ErrorValidation)
	case req.Password == "":
		return fmt.Errorf("%w: password must not be empty", common.ErrorValidation)
	}
	return nil
}
