// Package config handles configuration for the server component: defaults,
// a JSON file overlay, environment variables and command-line flags, applied
// in that order.
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/dmitrijs2005/scorekeeper/internal/dbx"
	"golang.org/x/crypto/bcrypt"
)

// DefaultSecretKey is the development signing secret. Running with it is
// reported as a warning at startup.
const DefaultSecretKey = "fortestingonly"

// Config holds runtime settings for the scorekeeper server.
//
// Fields:
//   - EndpointAddrHTTP: bind address of the HTTP (REST + GraphQL) endpoint.
//   - DatabaseDriver / DatabaseDSN: "pgx" (PostgreSQL) or "sqlite" and its DSN.
//   - SecretKey: HMAC secret for signing JWTs (HS256).
//   - AccessTokenValidityDuration: lifetime of issued tokens.
//   - BcryptCost: work factor for new password hashes.
//   - MaxConcurrentHashes: bcrypt operations allowed to run at once.
//   - LogLevel: debug, info, warn or error.
//   - ShutdownTimeout: grace period for in-flight requests on shutdown.
type Config struct {
	EndpointAddrHTTP            string
	DatabaseDriver              string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	BcryptCost                  int
	MaxConcurrentHashes         int
	LogLevel                    string
	ShutdownTimeout             time.Duration
}

// LoadDefaults populates Config with development defaults. The database is
// an in-memory SQLite instance so the server starts without dependencies.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDriver = dbx.DriverSQLite
	c.DatabaseDSN = "file:scorekeeper?mode=memory&cache=shared"
	c.SecretKey = DefaultSecretKey
	c.AccessTokenValidityDuration = 24 * time.Hour
	c.BcryptCost = bcrypt.DefaultCost
	c.MaxConcurrentHashes = runtime.GOMAXPROCS(0)
	c.LogLevel = "debug"
	c.ShutdownTimeout = 10 * time.Second
}

// UsesDefaultSecret reports whether tokens are signed with DefaultSecretKey.
func (c *Config) UsesDefaultSecret() bool {
	return c.SecretKey == DefaultSecretKey
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case dbx.DriverPostgres, dbx.DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret key must not be empty")
	}
	if c.AccessTokenValidityDuration <= 0 {
		return fmt.Errorf("access token validity must be positive, got %s", c.AccessTokenValidityDuration)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost %d out of range [%d, %d]", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.MaxConcurrentHashes < 1 {
		return fmt.Errorf("max concurrent hashes must be at least 1, got %d", c.MaxConcurrentHashes)
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
