package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"currencies-app/cmd/api/infrastructure"
	"currencies-app/internal/adapter/db/sqlstore"
	"currencies-app/internal/adapter/gin/handler"
	"currencies-app/internal/adapter/gin/middleware"
	ginrouter "currencies-app/internal/adapter/gin/router"
	"currencies-app/internal/adapter/metrics"
	"currencies-app/internal/adapter/rates"
	"currencies-app/internal/config"
	"currencies-app/internal/domain/about"
	"currencies-app/internal/usecase/currency"
	"currencies-app/internal/usecase/user"
	redisclient "currencies-app/pkg/redis"
	"currencies-app/web"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	Store       *sqlstore.Store
	RedisClient *redisclient.Client // nil when rate limiting is off
	Registry    *prometheus.Registry

	CurrencyService *currency.Service
	UserService     *user.Service
	Rates           *rates.CBRClient

	HTTPMetrics   *metrics.HTTPMetrics
	RateMetrics   *metrics.RateMetrics
	RateLimiter   *middleware.RateLimiter
	PageHandler   *handler.PageHandler
	HealthHandler *handler.HealthHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (_ *Container, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{Config: cfg, Logger: l}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	author, err := about.NewAuthor(cfg.About.AuthorName, cfg.About.AuthorGroup)
	if err != nil {
		return nil, fmt.Errorf("invalid author: %w", err)
	}
	app, err := about.NewApp(cfg.About.AppName, cfg.About.AppVersion, *author)
	if err != nil {
		return nil, fmt.Errorf("invalid app info: %w", err)
	}

	c.DB, err = infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	c.Store = sqlstore.New(c.DB, l)
	if err := c.Store.Migrate(ctx); err != nil {
		return nil, err
	}
	if cfg.DB.Seed {
		if _, err := c.Store.Seed(ctx); err != nil {
			return nil, err
		}
	}

	if cfg.NeedsRedis() {
		c.RedisClient, err = infrastructure.NewRedisClient(ctx, cfg, l)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
	}

	c.CurrencyService = currency.New(c.Store, l)
	c.UserService = user.New(c.Store, l)

	c.Rates = rates.NewCBRClient(cfg.Rates.URL, time.Duration(cfg.Rates.TimeoutSeconds)*time.Second, l)

	c.Registry = metrics.NewRegistry()
	c.HTTPMetrics = metrics.NewHTTPMetrics(c.Registry)
	c.RateMetrics = metrics.NewRateMetrics(c.Registry)

	pages, err := handler.NewRenderer(web.TemplateFiles)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	c.PageHandler = handler.NewPageHandler(c.CurrencyService, c.UserService, c.Rates, *app, pages, c.RateMetrics, l)
	c.HealthHandler = handler.NewHealthHandler(c.Store, cfg.Logger.ServiceName, l)

	if cfg.RateLimit.Enabled {
		c.RateLimiter = middleware.NewRateLimiter(
			c.RedisClient.Client,
			middleware.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				BurstCapacity:     cfg.RateLimit.BurstCapacity,
				Enabled:           cfg.RateLimit.Enabled,
			},
			c.PageHandler.RenderError,
			l,
		)
	}

	return c, nil
}

// RouterDeps returns what the gin router needs from the container.
func (c *Container) RouterDeps() ginrouter.Deps {
	var metricsHandler http.Handler
	if c.Registry != nil {
		metricsHandler = metrics.Handler(c.Registry)
	}
	return ginrouter.Deps{
		Pages:          c.PageHandler,
		Health:         c.HealthHandler,
		HTTPMetrics:    c.HTTPMetrics,
		MetricsHandler: metricsHandler,
		RateLimiter:    c.RateLimiter,
		Log:            c.Logger,
	}
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
