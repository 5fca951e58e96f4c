package models

import (
	"fmt"
	"time"
)

// ScoringType is the bridge scoring method of a session.
type ScoringType string

const (
	ScoringIMP ScoringType = "IMP"
	ScoringMP  ScoringType = "MP"
)

// ParseScoringType validates s as a ScoringType.
func ParseScoringType(s string) (ScoringType, error) {
	switch ScoringType(s) {
	case ScoringIMP, ScoringMP:
		return ScoringType(s), nil
	default:
		return "", fmt.Errorf("invalid scoring type string: %s", s)
	}
}

// Session is one bridge scorecard record owned by a user.
type Session struct {
	ID                     string
	Name                   string
	Location               *string
	Date                   time.Time
	OwnerID                string
	ScoringType            ScoringType
	ShouldUseVictoryPoints bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// SessionUpdate carries the optional changes applied to a session.
type SessionUpdate struct {
	ID                     string
	Name                   *string
	Location               *string
	ScoringType            *ScoringType
	ShouldUseVictoryPoints *bool
}
