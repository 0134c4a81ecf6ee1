package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	ginrouter "currencies-app/internal/adapter/gin/router"
)

// SetupGinServer creates the HTTP server for the web pages.
func SetupGinServer(deps ginrouter.Deps, addr string, l *zap.Logger) *http.Server {
	router := ginrouter.SetupRouter(deps)

	l.Info("gin server configured", zap.String("address", addr))

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		// /currencies waits for the rate source
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
