// Package server assembles the scorekeeper server: it opens and migrates the
// database, builds the services and runs the HTTP endpoint until a signal
// arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/scorekeeper/internal/dbx"
	"github.com/dmitrijs2005/scorekeeper/internal/logging"
	"github.com/dmitrijs2005/scorekeeper/internal/server/auth"
	"github.com/dmitrijs2005/scorekeeper/internal/server/config"
	"github.com/dmitrijs2005/scorekeeper/internal/server/graph"
	"github.com/dmitrijs2005/scorekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/scorekeeper/internal/server/rest"
	"github.com/dmitrijs2005/scorekeeper/internal/server/services"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *rest.HTTPServer
}

// NewApp validates c and wires every component. The returned App owns the
// database handle and closes it when Run returns.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, logging.NewJSONLogger(os.Stdout, c.LogLevel))
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if c.UsesDefaultSecret() {
		logger.Warn(ctx, "signing tokens with the built-in development secret; set JWT_SECRET")
	}

	db, rm, err := OpenDatabase(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	keys, verifier, err := NewAuth(c)
	if err != nil {
		db.Close()
		return nil, err
	}

	us := services.NewUserService(db, rm, keys, verifier, c, logger)
	ss := services.NewSessionService(db, rm, logger)

	schema, err := graph.NewSchema(us)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("graphql schema error: %w", err)
	}

	srv := rest.NewHTTPServer(c.EndpointAddrHTTP, logger, us, ss, keys, schema, c.ShutdownTimeout)

	return &App{config: c, logger: logger, db: db, httpServer: srv}, nil
}

// OpenDatabase connects to the configured database and brings its schema up
// to date.
func OpenDatabase(ctx context.Context, c *config.Config, logger logging.Logger) (*sql.DB, repomanager.RepositoryManager, error) {
	db, err := dbx.Open(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewSQLRepositoryManager(c.DatabaseDriver, logger)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("db migration error: %w", err)
	}

	logger.Info(ctx, "database ready", "driver", c.DatabaseDriver)
	return db, rm, nil
}

// NewAuth derives the token keys and the password verifier from c.
func NewAuth(c *config.Config) (*auth.Keys, *auth.PasswordVerifier, error) {
	verifier, err := auth.NewPasswordVerifier(c.BcryptCost, int64(c.MaxConcurrentHashes))
	if err != nil {
		return nil, nil, fmt.Errorf("password verifier error: %w", err)
	}
	return auth.NewKeys([]byte(c.SecretKey)), verifier, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err.Error())
	}
	app.logger.Info(context.Background(), "App stopped")
}
