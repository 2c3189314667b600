package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ridebook/config"
	"ridebook/pkg/api"
	"ridebook/pkg/auth"
	"ridebook/pkg/logger"
	"ridebook/pkg/mailer"
	"ridebook/pkg/notify"
	"ridebook/service"
	"ridebook/storage/postgres"
	"ridebook/storage/redis"
)

func main() {
	// 1. Load and check config
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// 2. Logger
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	ctx := context.Background()

	// 3. Postgres (runs migrations) and schema check
	pgStore, err := postgres.New(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to connect to postgres", logger.Error(err))
		os.Exit(1)
	}
	defer pgStore.Close()

	version, err := pgStore.SchemaVersion(ctx)
	if err != nil {
		log.Error("Failed to read schema version", logger.Error(err))
		os.Exit(1)
	}
	if version < cfg.RequiredSchemaVersion {
		log.Error("Database schema is behind",
			logger.Uint("version", version),
			logger.Uint("required", cfg.RequiredSchemaVersion),
		)
		os.Exit(1)
	}

	// 4. Redis sessions
	sessions, err := redis.New(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to connect to redis", logger.Error(err))
		os.Exit(1)
	}
	defer sessions.Close()

	// 5. Outbound channels
	mail := mailer.New(cfg, log)

	var adminNotifier service.AdminNotifier = notify.Nop{}
	var adminBot *notify.Bot
	if cfg.AdminBotToken != "" {
		adminBot, err = notify.New(cfg, log)
		if err != nil {
			log.Warning("Admin bot disabled", logger.Error(err))
		} else {
			adminNotifier = adminBot
		}
	}

	// 6. Services
	tokens := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	svc := service.New(pgStore, sessions, tokens, mail, adminNotifier, log)

	if cfg.AdminEmail != "" {
		if err := svc.Account().EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Error("Failed to bootstrap admin", logger.Error(err))
			os.Exit(1)
		}
	}

	if adminBot != nil {
		adminBot.HandlePending(svc.Provisioning())
		go adminBot.Start()
		defer adminBot.Stop()
	}

	// 7. HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           api.NewRouter(svc, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server is starting", logger.Int("port", cfg.AppPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server stopped", logger.Error(err))
			os.Exit(1)
		}
	}()

	// 8. Graceful shutdown listener
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", logger.Error(err))
	}
}
