package server

import (
	"net/http"

	"github.com/bqmcp/bqmcp/internal/config"
	"github.com/bqmcp/bqmcp/internal/handler"
	"github.com/bqmcp/bqmcp/internal/mcpserver"
	"github.com/bqmcp/bqmcp/internal/middleware"
	"github.com/bqmcp/bqmcp/internal/observability"
	"github.com/bqmcp/bqmcp/internal/tools"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	mcpgo "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
)

// Routes holds what the HTTP router serves.
type Routes struct {
	Version    string
	Dispatcher *tools.Dispatcher
	MCP        *mcpserver.Server
	// Health may be nil when BigQuery is not configured.
	Health handler.HealthChecker
	// SSE is mounted at /sse and /message when non-nil; otherwise the
	// streamable transport is mounted at /mcp.
	SSE *mcpgo.SSEServer
}

// NewRouter builds the chi router for the sse and http transports.
func NewRouter(cfg *config.Config, rt Routes) http.Handler {
	healthH := handler.NewHealthHandler(rt.Version, rt.Health)
	toolsH := handler.NewToolsHandler(rt.Dispatcher)

	if cfg.EnableAuth && len(cfg.APIKeys) == 0 {
		log.Warn().Msg("auth enabled but no API keys configured - API requests are not authenticated")
	}

	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	r.Use(chiMiddleware.RealIP)

	// Public routes
	r.Get("/health", healthH.Health)
	r.Get("/", healthH.Live)
	r.Handle("/metrics", observability.Handler())

	// Auth + rate limiting for API and MCP routes
	apiMiddleware := []func(http.Handler) http.Handler{
		middleware.RateLimit(cfg.RateLimitPerMinute),
	}
	if cfg.EnableAuth && len(cfg.APIKeys) > 0 {
		apiMiddleware = append(apiMiddleware, middleware.Auth(cfg.APIKeys, cfg.APIKeyHeader))
	}

	r.Group(func(r chi.Router) {
		for _, m := range apiMiddleware {
			r.Use(m)
		}

		r.Route(cfg.APIPrefix, func(r chi.Router) {
			r.Get("/tools", toolsH.List)
			r.Post("/tools/{name}", toolsH.Call)
		})

		if rt.SSE != nil {
			r.Handle("/sse", rt.SSE)
			r.Handle("/message", rt.SSE)
		} else {
			r.Handle("/mcp", rt.MCP.StreamableHTTP())
		}
	})

	return r
}
