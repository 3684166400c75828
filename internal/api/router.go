// Package api wires the HTTP routes of the voicemail service.
package api

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/api/handlers"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/api/middleware"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/logger"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/metrics"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/services"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/websocket"
	"gorm.io/gorm"
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	DB         *gorm.DB
	Identity   services.IdentityResolver
	Voicemails services.VoicemailService
	Hub        *websocket.Hub
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	Security   *logger.SecurityLogger

	// Security configuration
	APIKey         string   // Bearer key for /metrics (empty = open)
	AllowedOrigins []string // Allowed CORS and WebSocket origins
	AppEnv         string
	RateLimiter    *middleware.IPRateLimiter // nil builds one from RateLimit/RateBurst
	RateLimit      float64                   // Requests per second
	RateBurst      int                       // Burst size for rate limiter
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Security Middleware (applied in correct order)
	// 1. Recover from panics
	e.Use(middleware.Recover(cfg.Logger))

	// 2. Security headers (applied to all responses)
	e.Use(middleware.SecureHeaders())

	// 3. CORS
	e.Use(middleware.SecureCORS(cfg.AllowedOrigins, cfg.AppEnv))

	// 4. Rate limiting
	limiter := cfg.RateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
	}
	e.Use(middleware.RateLimit(limiter, cfg.Security))

	// 5. Request logging
	if cfg.Logger != nil {
		e.Use(middleware.RequestLogger(cfg.Logger))
	}

	healthHandler := handlers.NewHealthHandler(cfg.DB)
	accountHandler := handlers.NewAccountHandler(cfg.Identity, cfg.Security)
	voicemailHandler := handlers.NewVoicemailHandler(cfg.Voicemails)
	wsHandler := handlers.NewWebSocketHandler(cfg.Hub, websocket.NewSecureUpgrader(cfg.AllowedOrigins, cfg.Security), cfg.Logger)

	// Health routes (no identity required)
	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)

	// Operator routes
	e.GET("/metrics", echo.WrapHandler(cfg.Metrics.Handler()), middleware.APIKeyAuth(cfg.APIKey, cfg.Logger))

	identity := middleware.AccountIdentity(cfg.Identity, cfg.Security)

	// Live notifications for the caller's account
	e.GET("/ws", wsHandler.Serve, identity)

	api := e.Group("/api")

	// Session bootstrap resolves its own candidate
	api.POST("/session", accountHandler.Session)
	api.POST("/accounts", accountHandler.Create)
	api.DELETE("/accounts/me", accountHandler.DeleteMe, identity)

	// Voicemail routes, scoped to the resolved account
	voicemails := api.Group("/voicemails", identity)
	voicemails.GET("", voicemailHandler.List)
	voicemails.POST("", voicemailHandler.Create)
	voicemails.DELETE("/:id", voicemailHandler.Delete)
	voicemails.PATCH("/:id/returned", voicemailHandler.MarkReturned)

	return e
}
