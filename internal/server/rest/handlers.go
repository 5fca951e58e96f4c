package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/scorekeeper/internal/common"
	"github.com/dmitrijs2005/scorekeeper/internal/server/identity"
	"github.com/dmitrijs2005/scorekeeper/internal/server/models"
	"github.com/dmitrijs2005/scorekeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

// UserService is the user side of the API: credentials, profiles and the
// identity lookup used by the middleware.
type UserService interface {
	Identifier
	Login(ctx context.Context, userName, password string) (*services.LoginResult, error)
	Logout(ctx context.Context, user *models.User) error
	Signup(ctx context.Context, req services.SignupRequest) (*models.User, error)
	Search(ctx context.Context, filter models.UserFilter) ([]*models.User, error)
	Update(ctx context.Context, upd services.ProfileUpdate) error
}

// SessionService manages scorecard sessions on behalf of their owners.
type SessionService interface {
	List(ctx context.Context, scoringType *models.ScoringType) ([]*models.Session, error)
	ListForOwner(ctx context.Context, ownerID string) ([]*models.Session, error)
	Create(ctx context.Context, ownerID string, session *models.Session) (*models.Session, error)
	Update(ctx context.Context, ownerID string, upd models.SessionUpdate) error
}

func (s *HTTPServer) hello(c *gin.Context) {
	c.JSON(http.StatusOK, messageResponse{Message: "Hello, World!"})
}

func (s *HTTPServer) protectedHello(c *gin.Context) {
	c.JSON(http.StatusOK, messageResponse{Message: "Hello, World!  You are authenticated!"})
}

func (s *HTTPServer) signin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	res, err := s.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			c.JSON(http.StatusUnauthorized, messageResponse{Message: "Unable to login"})
			return
		}
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newLoginResponse(res))
}

func (s *HTTPServer) logout(c *gin.Context) {
	user, ok := identity.UserFrom(c.Request.Context())
	if !ok {
		abortUnauthorized(c)
		return
	}

	if err := s.users.Logout(c.Request.Context(), user); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "Successfully logged out"})
}

func (s *HTTPServer) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	u, err := s.users.Signup(c.Request.Context(), services.SignupRequest{
		UserName: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(u))
}

func (s *HTTPServer) searchUsers(c *gin.Context) {
	var req searchRequest
	// an empty body searches without filters
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid request body")
		return
	}

	found, err := s.users.Search(c.Request.Context(), models.UserFilter{
		ID:       req.UserID,
		UserName: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := make([]userResponse, 0, len(found))
	for _, u := range found {
		out = append(out, newUserResponse(u))
	}
	c.JSON(http.StatusOK, out)
}

func (s *HTTPServer) updateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	err := s.users.Update(c.Request.Context(), services.ProfileUpdate{
		ID:       c.Param(ownerParam),
		UserName: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) listSessions(c *gin.Context) {
	var filter *models.ScoringType
	if raw := c.Query("scoring_type"); raw != "" {
		st, err := models.ParseScoringType(raw)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		filter = &st
	}

	found, err := s.sessions.List(c.Request.Context(), filter)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSessionResponses(found))
}

func (s *HTTPServer) listUserSessions(c *gin.Context) {
	found, err := s.sessions.ListForOwner(c.Request.Context(), c.Param(ownerParam))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSessionResponses(found))
}

func (s *HTTPServer) createSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		badRequest(c, "date must be YYYY-MM-DD")
		return
	}

	created, err := s.sessions.Create(c.Request.Context(), c.Param(ownerParam), &models.Session{
		Name:                   req.Name,
		Location:               req.Location,
		Date:                   date,
		OwnerID:                req.OwnerID,
		ScoringType:            models.ScoringType(req.ScoringType),
		ShouldUseVictoryPoints: req.ShouldUseVictoryPoints,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newSessionResponse(created))
}

func (s *HTTPServer) updateSession(c *gin.Context) {
	var req sessionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	upd := models.SessionUpdate{
		ID:                     c.Param("session_id"),
		Name:                   req.Name,
		Location:               req.Location,
		ShouldUseVictoryPoints: req.ShouldUseVictoryPoints,
	}
	if req.ScoringType != nil {
		st := models.ScoringType(*req.ScoringType)
		upd.ScoringType = &st
	}

	if err := s.sessions.Update(c.Request.Context(), c.Param(ownerParam), upd); err != nil {
		s.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
