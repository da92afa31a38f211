package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"placelists/config"
	"placelists/internal/adapters/auth"
	"placelists/internal/adapters/notify"
	"placelists/internal/adapters/profile"
	delivery "placelists/internal/delivery/http"
	"placelists/internal/delivery/http/controllers"
	"placelists/internal/delivery/http/middleware"
	"placelists/internal/domain"
	"placelists/internal/repository/postgres"
	"placelists/internal/services"
)

// @title Placelists API
// @version 1.0
// @description Collaborative place list coordination service.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("database ping failed: %v", err)
	}
	if err := postgres.EnsureSchema(db); err != nil {
		log.Fatalf("schema setup failed: %v", err)
	}

	listRepo := postgres.NewListRepository(db)

	var profiles domain.ProfileStore
	profiles = profile.NewHTTPStore(&http.Client{Timeout: 5 * time.Second}, cfg.ProfileAPIURL)
	if strings.TrimSpace(cfg.RedisURL) != "" {
		logger.Info("using redis profile cache")
		cache, err := profile.NewRedisCache(cfg.RedisURL, profiles, 5*time.Minute)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer cache.Close()
		profiles = cache
	}

	mailer, err := notify.NewMailer(notify.MailerConfig{
		Provider:    cfg.MailerProvider,
		FromAddress: cfg.MailerFrom,
		FromName:    cfg.MailerFromName,
		SES: notify.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		},
	})
	if err != nil {
		log.Fatalf("mailer setup failed: %v", err)
	}
	notifier := notify.NewEmailNotifier(mailer, notify.NewTemplateRenderer(), profiles)

	shareCodes := auth.NewBcryptShareCodes(0)
	tokens := auth.NewJWTTokens(cfg.JWTSecret)

	listService := services.NewListService(listRepo, profiles, notifier, shareCodes, logger, 10*time.Second)
	listController := controllers.NewListController(logger, listService)

	requireAuth := middleware.RequireAuth(tokens, logger)
	mux := delivery.NewRouter(listController, requireAuth)

	var origins []string
	if cfg.CORSOrigins != "" {
		origins = strings.Split(cfg.CORSOrigins, ",")
	}
	handler := middleware.CORS(origins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("placelists API listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}
