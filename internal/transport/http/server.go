// Package http provides the HTTP server wiring for the CodeBuddy API.
package http

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/codebuddy/server/internal/auth"
	"github.com/codebuddy/server/internal/metrics"
	"github.com/codebuddy/server/internal/service"
	"github.com/codebuddy/server/internal/transport/http/v1"
)

// NewServer creates and configures the echo server. wsHandler, when non-nil,
// is mounted on the authenticated WebSocket endpoint.
func NewServer(svc *service.Service, authManager *auth.Manager, m *metrics.Metrics, gatherer prometheus.Gatherer, wsHandler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(requestLogger(m))

	protected := auth.Middleware(authManager)

	handler := v1.NewHandler(svc)
	handler.RegisterRoutes(e, protected)

	if wsHandler != nil {
		e.GET("/v1/ws", wsHandler, protected)
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return e
}

// requestLogger logs each request and records HTTP metrics. m may be nil.
func requestLogger(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			elapsed := time.Since(start)

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", status).
				Dur("elapsed", elapsed).
				Msg("request")

			if m != nil {
				// Use the route pattern, not the raw path, to bound label
				// cardinality.
				m.HTTPRequestsTotal.WithLabelValues(req.Method, c.Path(), strconv.Itoa(status)).Inc()
				m.HTTPRequestDuration.WithLabelValues(req.Method, c.Path()).Observe(elapsed.Seconds())
			}
			return nil
		}
	}
}
