package di

import (
	"context"
	"net"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"currencies-app/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		App:   config.AppConfig{Env: "test", HTTPPort: "0", GRPCPort: "0", ShutdownTimeoutSeconds: 1},
		About: config.AboutConfig{AppName: "Currencies App", AppVersion: "1.0.0", AuthorName: "Kamila", AuthorGroup: "P3124"},
		DB:    config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:", Seed: true},
		Rates: config.RatesConfig{URL: "http://127.0.0.1:1/daily_json.js", TimeoutSeconds: 1},
		RateLimit: config.RateLimitConfig{
			RequestsPerSecond: 10,
			BurstCapacity:     20,
		},
		Logger: config.LoggerConfig{Level: "info", Format: "console", OutputPath: "stdout", ServiceName: "currencies-app"},
	}
}

func TestNewContainer(t *testing.T) {
	c, err := NewContainer(context.Background(), testConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, c.Close()) })

	users, err := c.UserService.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)

	assert.Nil(t, c.RedisClient)
	assert.Nil(t, c.RateLimiter)

	deps := c.RouterDeps()
	assert.NotNil(t, deps.Pages)
	assert.NotNil(t, deps.MetricsHandler)
}

func TestNewContainer_WithoutSeed(t *testing.T) {
	cfg := testConfig()
	cfg.DB.Seed = false

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	currencies, err := c.CurrencyService.ListCurrencies(context.Background())
	require.NoError(t, err)
	assert.Empty(t, currencies)
}

func TestNewContainer_RateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)

	cfg := testConfig()
	cfg.RateLimit.Enabled = true
	cfg.Redis = config.RedisConfig{Host: host, Port: port, PoolSize: 2}

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, c.Close()) })

	assert.NotNil(t, c.RedisClient)
	assert.NotNil(t, c.RateLimiter)
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.DB.Driver = "oracle"

	_, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "config validation failed")
}
