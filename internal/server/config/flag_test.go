package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-b", "pgx", "-d", "db", "-s", "secret",
			"-t", "30", "-k", "11", "-w", "2", "-l", "error",
		}, expected: &Config{
			EndpointAddrHTTP:            "127.0.0.1:9090",
			DatabaseDriver:              "pgx",
			DatabaseDSN:                 "db",
			SecretKey:                   "secret",
			AccessTokenValidityDuration: 30 * time.Minute,
			BcryptCost:                  11,
			MaxConcurrentHashes:         2,
			LogLevel:                    "error",
		}},
		{name: "foreign flags ignored", args: []string{"cmd", "-c", "conf.json", "-a", ":1", "-t", "5"},
			expected: &Config{
				EndpointAddrHTTP:            ":1",
				AccessTokenValidityDuration: 5 * time.Minute,
			}},
		{name: "bad int panics", args: []string{"cmd", "-k", "many"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
