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
	"github.com/welldanyogia/folio-backend/internal/api"
	"github.com/welldanyogia/folio-backend/internal/config"
	"github.com/welldanyogia/folio-backend/internal/database"
	"github.com/welldanyogia/folio-backend/internal/logger"
	"github.com/welldanyogia/folio-backend/internal/repository"
	"github.com/welldanyogia/folio-backend/internal/services"
	"github.com/welldanyogia/folio-backend/internal/smtp"
	"github.com/welldanyogia/folio-backend/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfg, err := config.LoadWithValidation()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, logCloser := logger.New(logger.Options{
		Level:       cfg.LogLevel,
		File:        cfg.LogFile,
		Environment: cfg.AppEnv,
	})
	defer logCloser.Close()
	slog.SetDefault(log)

	secLogger := logger.NewSecurityLogger(log)

	log.Info("Starting Folio backend")
	cfg.LogConfig(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := database.Connect(cfg.DatabaseURL, database.Options{
		Production: cfg.IsProduction(),
		Logger:     log,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error("failed to close database", slog.Any("error", err))
		}
	}()

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	// Notification relay
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := websocket.NewHub(log.With(slog.String("component", "websocket")))
	go hub.Run(hubCtx)

	inbox := services.NewInboxService(repository.NewMessageRepository(db), hub, log)

	// HTTP API
	e := api.NewRouter(&api.RouterConfig{
		DB:             db,
		Inbox:          inbox,
		Hub:            hub,
		Logger:         log,
		SecurityLogger: secLogger,
		AdminToken:     cfg.AdminToken,
		AllowedOrigins: cfg.AllowedOrigins,
		Production:     cfg.IsProduction(),
		RateLimit:      cfg.RateLimitRequests,
		RateBurst:      cfg.RateLimitBurst,
		Context:        hubCtx,
	})

	errCh := make(chan error, 2)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.APIPort)
		log.Info("HTTP API listening", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// Mail-to-inbox bridge
	var smtpServer *gosmtp.Server
	if cfg.SMTPEnabled {
		backend := smtp.NewBackend(&smtp.BackendConfig{
			Inbox:            inbox,
			ContactAddresses: cfg.ContactAddresses,
			Logger:           log,
			SecurityLogger:   secLogger,
		})
		smtpServer = smtp.NewSecureServer(backend, &smtp.ServerConfig{
			Addr:   fmt.Sprintf(":%d", cfg.SMTPPort),
			Domain: cfg.SMTPDomain,
		})

		go func() {
			log.Info("SMTP bridge listening",
				slog.String("addr", smtpServer.Addr),
				slog.Any("recipients", cfg.ContactAddresses))
			if err := smtpServer.ListenAndServe(); err != nil && !errors.Is(err, gosmtp.ErrServerClosed) {
				errCh <- fmt.Errorf("smtp server: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case runErr = <-errCh:
		log.Error("server failed", slog.Any("error", runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shut down HTTP API", slog.Any("error", err))
	}
	if smtpServer != nil {
		if err := smtpServer.Close(); err != nil {
			log.Error("failed to shut down SMTP bridge", slog.Any("error", err))
		}
	}
	stopHub()

	log.Info("Server stopped")
	return runErr
}
