// Package rest exposes the read-only query API over the history store.
package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"hn-pulse/domain"
	"hn-pulse/store"
	"hn-pulse/usecase"
)

// Config holds query API shaping parameters.
type Config struct {
	// TopN is how many authors/domains each digest ranks.
	TopN int
	// StoryLimit caps the stories listed per digest.
	StoryLimit int
	// SourcesLimit caps the /api/sources ranking.
	SourcesLimit int
}

// DefaultConfig returns a default query API configuration.
func DefaultConfig() Config {
	return Config{
		TopN:         10,
		StoryLimit:   100,
		SourcesLimit: 100,
	}
}

// HealthChecker reports broker connectivity for the health endpoint.
type HealthChecker interface {
	HealthCheck(ctx context.Context) *usecase.HealthStatus
}

// Handler contains the HTTP handlers for the query API.
type Handler struct {
	history *store.HistoryStore
	health  HealthChecker
	config  Config
	logger  *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(history *store.HistoryStore, health HealthChecker, config Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		history: history,
		health:  health,
		config:  config,
		logger:  logger,
	}
}

// HistoryResponse is the /api/history payload, hours newest-first.
type HistoryResponse struct {
	Hours      []domain.HourlyDigest `json:"hours"`
	LastUpdate *time.Time            `json:"last_update,omitempty"`
}

// DomainEntry is one entry of the /api/top-domains ranking.
type DomainEntry struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// TopDomainsResponse is the /api/top-domains payload.
type TopDomainsResponse struct {
	Domains []DomainEntry `json:"domains"`
}

// Latest serves GET /api/latest: the most recent finalized digest, or
// null before the first hour rolls over.
func (h *Handler) Latest(c echo.Context) error {
	bucket, ok := h.history.Latest()
	if !ok {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, bucket.Digest(h.config.TopN, h.config.StoryLimit))
}

// History serves GET /api/history: all retained hours, newest first.
func (h *Handler) History(c echo.Context) error {
	buckets := h.history.Recent(h.history.Retention())

	resp := HistoryResponse{
		Hours: make([]domain.HourlyDigest, 0, len(buckets)),
	}
	for _, b := range buckets {
		resp.Hours = append(resp.Hours, b.Digest(h.config.TopN, h.config.StoryLimit))
	}
	if t, ok := h.history.LastUpdate(); ok {
		resp.LastUpdate = &t
	}

	return c.JSON(http.StatusOK, resp)
}

// Sources serves GET /api/sources: the cumulative source-domain ranking
// as [domain, count] pairs.
func (h *Handler) Sources(c echo.Context) error {
	entries := h.history.TopDomains(h.config.SourcesLimit)

	pairs := make([][2]any, 0, len(entries))
	for _, e := range entries {
		pairs = append(pairs, [2]any{e.Key, e.Count})
	}

	return c.JSON(http.StatusOK, pairs)
}

// TopDomains serves GET /api/top-domains: the cumulative domain ranking.
func (h *Handler) TopDomains(c echo.Context) error {
	entries := h.history.TopDomains(h.config.TopN)

	resp := TopDomainsResponse{
		Domains: make([]DomainEntry, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Domains = append(resp.Domains, DomainEntry{Domain: e.Key, Count: e.Count})
	}

	return c.JSON(http.StatusOK, resp)
}

// HealthResponse is the /api/healthcheck payload.
type HealthResponse struct {
	Status        string `json:"status"`
	RedisStatus   string `json:"redis_status,omitempty"`
	StreamLength  int64  `json:"stream_length,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// Healthcheck serves GET /api/healthcheck. Liveness stays 200 while the
// workers run; a broken broker shows up as a degraded status in the body
// rather than a 5xx, since the read path keeps serving from memory.
func (h *Handler) Healthcheck(c echo.Context) error {
	resp := HealthResponse{Status: "ok"}

	if h.health != nil {
		status := h.health.HealthCheck(c.Request().Context())
		resp.RedisStatus = status.RedisStatus
		resp.StreamLength = status.StreamLength
		resp.UptimeSeconds = status.UptimeSeconds
		if !status.Healthy {
			resp.Status = "degraded"
		}
	}

	return c.JSON(http.StatusOK, resp)
}
