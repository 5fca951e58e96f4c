package rest

import (
	"time"

	"github.com/dmitrijs2005/scorekeeper/internal/server/models"
	"github.com/dmitrijs2005/scorekeeper/internal/server/services"
)

const dateLayout = "2006-01-02"

// signinRequest leaves empty fields to Login, so they fail like any other
// wrong credential.
type signinRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	AccessToken string   `json:"accessToken"`
}

func newLoginResponse(res *services.LoginResult) loginResponse {
	roles := res.Roles
	if roles == nil {
		roles = []string{}
	}
	return loginResponse{
		ID:          res.ID,
		Username:    res.UserName,
		Email:       res.Email,
		Roles:       roles,
		AccessToken: res.AccessToken,
	}
}

type signupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// userResponse is the public profile; hash and salt never leave the server.
type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.UserName,
		Email:     u.Email,
		Roles:     u.RoleNames(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type searchRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	UserID   string `json:"user_id"`
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type sessionRequest struct {
	Name                   string  `json:"name" binding:"required"`
	Location               *string `json:"location"`
	Date                   string  `json:"date" binding:"required"`
	OwnerID                string  `json:"owner_id" binding:"required"`
	ScoringType            string  `json:"scoring_type" binding:"required"`
	ShouldUseVictoryPoints bool    `json:"should_use_victory_points"`
}

type sessionUpdateRequest struct {
	Name                   *string `json:"name"`
	Location               *string `json:"location"`
	ScoringType            *string `json:"scoring_type"`
	ShouldUseVictoryPoints *bool   `json:"should_use_victory_points"`
}

type sessionResponse struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name"`
	Location               *string   `json:"location"`
	Date                   string    `json:"date"`
	OwnerID                string    `json:"owner_id"`
	ScoringType            string    `json:"scoring_type"`
	ShouldUseVictoryPoints bool      `json:"should_use_victory_points"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func newSessionResponse(s *models.Session) sessionResponse {
	return sessionResponse{
		ID:                     s.ID,
		Name:                   s.Name,
		Location:               s.Location,
		Date:                   s.Date.Format(dateLayout),
		OwnerID:                s.OwnerID,
		ScoringType:            string(s.ScoringType),
		ShouldUseVictoryPoints: s.ShouldUseVictoryPoints,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}
}

func newSessionResponses(in []*models.Session) []sessionResponse {
	out := make([]sessionResponse, 0, len(in))
	for _, s := range in {
		out = append(out, newSessionResponse(s))
	}
	return out
}
