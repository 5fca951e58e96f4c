// Package sessions persists bridge scoring sessions.
package sessions

import (
	"context"

	"github.com/dmitrijs2005/scorekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, session *models.Session) (*models.Session, error)
	// List returns all sessions, optionally restricted to one scoring type,
	// newest first.
	List(ctx context.Context, scoringType *models.ScoringType) ([]*models.Session, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Session, error)
	// Update applies update to a session owned by ownerID. ErrorNotFound is
	// returned when no such session exists for that owner.
	Update(ctx context.Context, ownerID string, update models.SessionUpdate) error
}
