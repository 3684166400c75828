package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gosmtp "github.com/emersion/go-smtp"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/api"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/api/middleware"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/config"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/database"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/logger"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/metrics"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/repository"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/services"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/smtp"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/websocket"
)

const (
	shutdownTimeout     = 15 * time.Second
	limiterCleanupEvery = 5 * time.Minute
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.LoadWithValidation()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(cfg.LogLevel, cfg.AppEnv)
	slog.SetDefault(log)
	slog.Info("Starting Voicemail Backend Server...")
	cfg.LogConfig(log)

	// Database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error("failed to close database", slog.Any("error", err))
		}
	}()

	if err := database.Migrate(db); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories
	accountRepo := repository.NewAccountRepository(db)
	voicemailRepo := repository.NewVoicemailRepository(db, repository.WithReturnPolicy(cfg.ReturnPolicy))

	// Shared infrastructure
	m := metrics.New()
	security := logger.NewSecurityLogger()
	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	// Services
	identity := services.NewIdentityResolver(accountRepo, services.IdentityResolverConfig{
		OnLookupError: cfg.LookupErrorPolicy,
	}, m, security, log)
	voicemails := services.NewVoicemailService(voicemailRepo, hub, m, log)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitBurst)
	go limiter.RunCleanup(ctx, limiterCleanupEvery)

	// HTTP server
	e := api.NewRouter(&api.RouterConfig{
		DB:             db,
		Identity:       identity,
		Voicemails:     voicemails,
		Hub:            hub,
		Metrics:        m,
		Logger:         log,
		Security:       security,
		APIKey:         cfg.APIKey,
		AllowedOrigins: cfg.AllowedOrigins,
		AppEnv:         cfg.AppEnv,
		RateLimiter:    limiter,
	})

	errCh := make(chan error, 2)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.APIPort)
		log.Info("HTTP server listening", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// SMTP intake
	var smtpServer *gosmtp.Server
	if cfg.SMTPEnabled {
		tlsConfig, err := smtp.LoadTLSConfig(cfg.SMTPTLSCert, cfg.SMTPTLSKey)
		if err != nil {
			return err
		}

		backend := smtp.NewBackend(&smtp.BackendConfig{
			Accounts:   accountRepo,
			Voicemails: voicemails,
			Domain:     cfg.SMTPDomain,
			TakenBy:    cfg.SMTPTakenBy,
			Logger:     log,
		})
		smtpServer = smtp.NewSecureServer(backend, &smtp.ServerConfig{
			Addr:      fmt.Sprintf(":%d", cfg.SMTPPort),
			Domain:    cfg.SMTPDomain,
			TLSConfig: tlsConfig,
		})

		go func() {
			log.Info("SMTP server listening",
				slog.String("addr", smtpServer.Addr),
				slog.String("domain", cfg.SMTPDomain),
				slog.Bool("starttls", tlsConfig != nil))
			if err := smtpServer.ListenAndServe(); err != nil && !errors.Is(err, gosmtp.ErrServerClosed) {
				errCh <- fmt.Errorf("smtp server: %w", err)
			}
		}()
	}

	// Graceful shutdown
	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("Shutting down server...")
	case runErr = <-errCh:
		log.Error("server failed", slog.Any("error", runErr))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shut down HTTP server", slog.Any("error", err))
	}
	if smtpServer != nil {
		if err := smtpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to shut down SMTP server", slog.Any("error", err))
		}
	}

	slog.Info("Server stopped")
	return runErr
}
