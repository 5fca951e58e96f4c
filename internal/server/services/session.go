package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/scorekeeper/internal/common"
	"github.com/dmitrijs2005/scorekeeper/internal/logging"
	"github.com/dmitrijs2005/scorekeeper/internal/server/models"
	"github.com/dmitrijs2005/scorekeeper/internal/server/repositories/repomanager"
)

// SessionService manages scorecard sessions. Ownership of the path user is
// established by the HTTP layer; the service additionally scopes writes to
// that owner.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *SessionService {
	return &SessionService{db: db, repomanager: m, logger: logger}
}

func (s *SessionService) List(ctx context.Context, scoringType *models.ScoringType) ([]*models.Session, error) {
	found, err := s.repomanager.Sessions(s.db).List(ctx, scoringType)
	if err != nil {
		return nil, fmt.Errorf("%w: error listing sessions: %v", common.ErrorInternal, err)
	}
	return found, nil
}

func (s *SessionService) ListForOwner(ctx context.Context, ownerID string) ([]*models.Session, error) {
	found, err := s.repomanager.Sessions(s.db).ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: error listing sessions: %v", common.ErrorInternal, err)
	}
	return found, nil
}

// Create stores session for ownerID. A session naming any other owner is
// rejected with common.ErrorUnauthorized.
func (s *SessionService) Create(ctx context.Context, ownerID string, session *models.Session) (*models.Session, error) {
	if session.OwnerID != ownerID {
		s.logger.Warn(ctx, "session owner mismatch", "user_id", ownerID, "attempted_owner", session.OwnerID)
		return nil, common.ErrorUnauthorized
	}
	if strings.TrimSpace(session.Name) == "" {
		return nil, fmt.Errorf("%w: session name must not be empty", common.ErrorValidation)
	}
	if _, err := models.ParseScoringType(string(session.ScoringType)); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	if session.Date.IsZero() {
		return nil, fmt.Errorf("%w: session date is required", common.ErrorValidation)
	}

	created, err := s.repomanager.Sessions(s.db).Create(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("%w: error creating session: %v", common.ErrorInternal, err)
	}

	s.logger.Debug(ctx, "session created", "session_id", created.ID, "owner_id", ownerID)
	return created, nil
}

// Update changes a session owned by ownerID. Sessions of other owners look
// the same as missing ones: common.ErrorNotFound.
func (s *SessionService) Update(ctx context.Context, ownerID string, upd models.SessionUpdate) error {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return fmt.Errorf("%w: session name must not be empty", common.ErrorValidation)
	}
	if upd.ScoringType != nil {
		if _, err := models.ParseScoringType(string(*upd.ScoringType)); err != nil {
			return fmt.Errorf("%w: %v", common.ErrorValidation, err)
		}
	}

	err := s.repomanager.Sessions(s.db).Update(ctx, ownerID, upd)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("%w: error updating session: %v", common.ErrorInternal, err)
	}
	return nil
}
