// Package rest serves the scorekeeper HTTP API: the REST endpoints and the
// GraphQL endpoint, behind the authentication middleware pipeline
// (bearer extraction, claims verification, identity lookup, owner guard).
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/scorekeeper/internal/logging"
	"github.com/dmitrijs2005/scorekeeper/internal/server/auth"
	"github.com/dmitrijs2005/scorekeeper/internal/server/graph"
	"github.com/gin-gonic/gin"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
)

const ownerParam = "user_id"

// HTTPServer serves the REST and GraphQL endpoints over one gin engine.
type HTTPServer struct {
	address         string
	logger          logging.Logger
	users           UserService
	sessions        SessionService
	keys            *auth.Keys
	schema          *graphql.Schema
	engine          *gin.Engine
	shutdownTimeout time.Duration
}

// NewHTTPServer builds the gin engine and registers every route.
func NewHTTPServer(address string, l logging.Logger, us UserService, ss SessionService, keys *auth.Keys, schema *graphql.Schema, shutdownTimeout time.Duration) *HTTPServer {
	s := &HTTPServer{
		address:         address,
		logger:          l.With("module", "http_server"),
		users:           us,
		sessions:        ss,
		keys:            keys,
		schema:          schema,
		shutdownTimeout: shutdownTimeout,
	}

	gin.SetMode(gin.ReleaseMode)
	s.engine = gin.New()
	s.engine.Use(gin.Recovery())
	s.engine.Use(requestID())
	s.engine.Use(accessLog(s.logger))

	s.registerRoutes()
	return s
}

// Handler exposes the engine, mainly for httptest.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

func (s *HTTPServer) registerRoutes() {
	requireClaims := RequireClaims(s.keys, s.logger)
	lookupUser := LookupUser(s.users, s.logger)
	ownerGuard := OwnerGuard(ownerParam, s.logger)

	s.engine.GET("/", s.hello)
	s.engine.GET("/api/sessions", s.listSessions)

	authGroup := s.engine.Group("/api/auth")
	{
		authGroup.POST("/signin", s.signin)
		authGroup.POST("/signup", s.signup)
		authGroup.POST("/logout", requireClaims, lookupUser, s.logout)
		authGroup.POST("/signout", requireClaims, lookupUser, s.logout)
	}

	protected := s.engine.Group("/api", requireClaims, lookupUser)
	{
		protected.GET("/protected", s.protectedHello)
		protected.POST("/user/search", s.searchUsers)
	}

	owned := s.engine.Group("/api/user/:"+ownerParam, requireClaims, lookupUser, ownerGuard)
	{
		owned.PUT("", s.updateUser)
		owned.GET("/sessions", s.listUserSessions)
		owned.POST("/session", s.createSession)
		owned.PUT("/session/:session_id", s.updateSession)
	}

	gql := s.engine.Group("/graphql", OptionalClaims(s.keys, s.logger), OptionalLookupUser(s.users, s.logger))
	{
		gql.GET("", func(c *gin.Context) {
			c.Data(http.StatusOK, "text/html; charset=utf-8", graph.GraphiQLPage)
		})
		gql.POST("", gin.WrapH(&relay.Handler{Schema: s.schema}))
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully, giving
// in-flight requests up to the shutdown timeout.
func (s *HTTPServer) Run(ctx context.Context) error {
	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "HTTP server shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-done
	return nil
}
