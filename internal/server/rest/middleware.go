package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/scorekeeper/internal/common"
	"github.com/dmitrijs2005/scorekeeper/internal/logging"
	"github.com/dmitrijs2005/scorekeeper/internal/server/auth"
	"github.com/dmitrijs2005/scorekeeper/internal/server/identity"
	"github.com/dmitrijs2005/scorekeeper/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/net/http/httpguts"
)

var (
	errMissingBearer = errors.New("missing authorization header")
	errInvalidBearer = errors.New("malformed authorization header")
)

// Identifier resolves verified claims into the current user.
type Identifier interface {
	Identify(ctx context.Context, claims auth.Claims) (*models.User, error)
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header.
// An absent header yields errMissingBearer; a header that is not valid
// header text, lacks the prefix or carries an empty token yields
// errInvalidBearer.
func BearerToken(r *http.Request) (string, error) {
	values := r.Header.Values(common.AuthorizationHeaderName)
	if len(values) == 0 {
		return "", errMissingBearer
	}

	h := values[0]
	if !httpguts.ValidHeaderFieldValue(h) {
		return "", errInvalidBearer
	}
	token, ok := strings.CutPrefix(h, common.BearerPrefix)
	if !ok || token == "" {
		return "", errInvalidBearer
	}
	return token, nil
}

func setContext(c *gin.Context, ctx context.Context) {
	c.Request = c.Request.WithContext(ctx)
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
}

// requestID tags each request with a UUIDv7, exposed in the response header
// and the request context.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.NewV7()
		if err != nil {
			id = uuid.New()
		}
		rid := id.String()

		c.Header(common.RequestIDHeaderName, rid)
		setContext(c, identity.WithRequestID(c.Request.Context(), rid))
		c.Next()
	}
}

func accessLog(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Info(c.Request.Context(), "HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"request_id", identity.RequestIDFrom(c.Request.Context()),
		)
	}
}

// RequireClaims rejects the request with 401 unless it carries a valid,
// unexpired bearer token. The decoded claims are stored in the context.
func RequireClaims(keys *auth.Keys, logger logging.Logger) gin.HandlerFunc {
	return claims(keys, logger, false)
}

// OptionalClaims behaves like RequireClaims, except that a request without
// an Authorization header continues with no claims. A header that is present
// but invalid is still rejected.
func OptionalClaims(keys *auth.Keys, logger logging.Logger) gin.HandlerFunc {
	return claims(keys, logger, true)
}

func claims(keys *auth.Keys, logger logging.Logger, optional bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		token, err := BearerToken(c.Request)
		if err != nil {
			if optional && errors.Is(err, errMissingBearer) {
				setContext(c, identity.WithClaims(ctx, nil))
				c.Next()
				return
			}
			logger.Info(ctx, "authentication failed", "path", c.Request.URL.Path, "reason", err.Error())
			abortUnauthorized(c)
			return
		}

		cl, err := keys.Decode(token)
		if err != nil {
			logger.Info(ctx, "authentication failed", "path", c.Request.URL.Path, "reason", err.Error())
			abortUnauthorized(c)
			return
		}

		setContext(c, identity.WithClaims(ctx, &cl))
		c.Next()
	}
}

// LookupUser resolves the claims left by RequireClaims into the current
// user, rejecting tokens whose salt has since been rotated.
func LookupUser(ident Identifier, logger logging.Logger) gin.HandlerFunc {
	return lookup(ident, logger, false)
}

// OptionalLookupUser resolves claims when present and records an anonymous
// identity otherwise. Claims that no longer resolve are still rejected.
func OptionalLookupUser(ident Identifier, logger logging.Logger) gin.HandlerFunc {
	return lookup(ident, logger, true)
}

func lookup(ident Identifier, logger logging.Logger, optional bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		cl, ok := identity.ClaimsFrom(ctx)
		if !ok {
			if optional {
				setContext(c, identity.WithIdentity(ctx, identity.Anonymous()))
				c.Next()
				return
			}
			logger.Error(ctx, "identity lookup without claims", "path", c.Request.URL.Path)
			abortUnauthorized(c)
			return
		}

		user, err := ident.Identify(ctx, *cl)
		if err != nil {
			if errors.Is(err, common.ErrorUnauthorized) {
				abortUnauthorized(c)
				return
			}
			logger.Error(ctx, "identity lookup error", "user_id", cl.ID, "error", err.Error())
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}

		setContext(c, identity.WithIdentity(ctx, identity.Authenticated(user)))
		c.Next()
	}
}

// OwnerGuard admits the request only when the authenticated user's id equals
// the path parameter param.
func OwnerGuard(param string, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		user, ok := identity.UserFrom(ctx)
		if !ok {
			logger.Error(ctx, "owner guard without identity", "path", c.Request.URL.Path)
			abortUnauthorized(c)
			return
		}

		target := c.Param(param)
		if user.ID != target {
			logger.Warn(ctx, "cross-user access rejected", "subject", user.ID, "target", target, "path", c.Request.URL.Path)
			abortUnauthorized(c)
			return
		}

		c.Next()
	}
}
