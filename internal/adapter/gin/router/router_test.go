package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"currencies-app/internal/adapter/db/sqlstore"
	"currencies-app/internal/adapter/gin/handler"
	"currencies-app/internal/adapter/gin/middleware"
	"currencies-app/internal/adapter/metrics"
	"currencies-app/internal/domain/about"
	currencyuc "currencies-app/internal/usecase/currency"
	useruc "currencies-app/internal/usecase/user"
	"currencies-app/web"
)

type noRates struct{}

func (noRates) Rates(context.Context, []string) (map[string]float64, error) {
	return map[string]float64{}, nil
}

func setupRouter(t *testing.T, limit middleware.RateLimiterConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)

	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := sqlstore.New(db, log)
	require.NoError(t, store.Migrate(context.Background()))

	pages, err := handler.NewRenderer(web.TemplateFiles)
	require.NoError(t, err)

	reg := metrics.NewRegistry()
	app := about.App{Name: "Currencies App", Version: "test", Author: about.Author{Name: "Kamila", Group: "P3124"}}
	pageHandler := handler.NewPageHandler(currencyuc.New(store, log), useruc.New(store, log), noRates{}, app, pages,
		metrics.NewRateMetrics(reg), log)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return SetupRouter(Deps{
		Pages:          pageHandler,
		Health:         handler.NewHealthHandler(store, "currencies-app", log),
		HTTPMetrics:    metrics.NewHTTPMetrics(reg),
		MetricsHandler: metrics.Handler(reg),
		RateLimiter:    middleware.NewRateLimiter(client, limit, pageHandler.RenderError, log),
		Log:            log,
	})
}

func serve(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestRouter_Pages(t *testing.T) {
	r := setupRouter(t, middleware.RateLimiterConfig{})

	w := serve(r, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = serve(r, "/does-not-exist")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "404 - Page not found")
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	r := setupRouter(t, middleware.RateLimiterConfig{})

	w := serve(r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy"`)

	serve(r, "/author")

	w = serve(r, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `currencies_http_requests_total{method="GET",route="/author",status_code="200"} 1`)
	assert.Contains(t, body, "currencies_rates_currencies_updated_total")
	assert.NotContains(t, body, `route="/health"`)
}

func TestRouter_RateLimitRendersErrorPage(t *testing.T) {
	r := setupRouter(t, middleware.RateLimiterConfig{RequestsPerSecond: 0.001, BurstCapacity: 1, Enabled: true})

	assert.Equal(t, http.StatusOK, serve(r, "/author").Code)

	w := serve(r, "/author")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "429 - Too many requests")
	assert.Contains(t, w.Body.String(), "alert-danger")

	// health is outside the limited group
	assert.Equal(t, http.StatusOK, serve(r, "/health").Code)
}
