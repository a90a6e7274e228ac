// Package server wires the echo HTTP server for the query API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hn-pulse/rest"
)

// Server owns the echo instance and its lifecycle.
type Server struct {
	echo   *echo.Echo
	port   int
	logger *slog.Logger
}

// New builds the echo server with middleware and routes registered.
func New(handler *rest.Handler, port int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Healthcheck and metrics scrapes would drown the log.
			return c.Path() == "/api/healthcheck" || c.Path() == "/metrics"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			if v.Error == nil {
				slog.InfoContext(ctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				slog.ErrorContext(ctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.GET("/api/latest", handler.Latest)
	e.GET("/api/kafka/latest", handler.Latest) // legacy route name
	e.GET("/api/history", handler.History)
	e.GET("/api/sources", handler.Sources)
	e.GET("/api/top-domains", handler.TopDomains)
	e.GET("/api/healthcheck", handler.Healthcheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return &Server{
		echo:   e,
		port:   port,
		logger: logger,
	}
}

// Start serves until Shutdown is called. http.ErrServerClosed at
// shutdown is reported as a clean exit.
func (s *Server) Start() error {
	s.logger.Info("starting http server", "port", s.port)
	if err := s.echo.Start(fmt.Sprintf(":%d", s.port)); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
