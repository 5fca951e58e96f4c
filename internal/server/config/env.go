package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvConfig lists the environment variables understood by the server. Every
// field is a pointer so an unset variable leaves the current value alone.
type EnvConfig struct {
	EndpointAddrHTTP            *string        `env:"ADDRESS"`
	Port                        *string        `env:"PORT"`
	DatabaseDriver              *string        `env:"DATABASE_DRIVER"`
	DatabaseDSN                 *string        `env:"DATABASE_DSN"`
	SecretKey                   *string        `env:"JWT_SECRET"`
	AccessTokenValidityDuration *time.Duration `env:"ACCESS_TOKEN_TTL"`
	BcryptCost                  *int           `env:"BCRYPT_COST"`
	MaxConcurrentHashes         *int           `env:"MAX_CONCURRENT_HASHES"`
	LogLevel                    *string        `env:"LOG_LEVEL"`
	ShutdownTimeout             *time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

// parseEnv overlays environment variables onto config. PORT is a shorthand
// for ADDRESS=":<port>"; ADDRESS wins when both are set. Malformed values
// panic, like a malformed JSON file does.
func parseEnv(config *Config) {
	c := EnvConfig{}
	if err := env.Parse(&c); err != nil {
		panic(err)
	}

	if c.Port != nil {
		config.EndpointAddrHTTP = ":" + *c.Port
	}
	setIf(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setIf(&config.DatabaseDriver, c.DatabaseDriver)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.SecretKey, c.SecretKey)
	setIf(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setIf(&config.BcryptCost, c.BcryptCost)
	setIf(&config.MaxConcurrentHashes, c.MaxConcurrentHashes)
	setIf(&config.LogLevel, c.LogLevel)
	setIf(&config.ShutdownTimeout, c.ShutdownTimeout)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
