package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/resourcetech/meajuda-auth/internal/account/repository"
	"github.com/resourcetech/meajuda-auth/internal/config"
	"github.com/resourcetech/meajuda-auth/internal/db"
	"github.com/resourcetech/meajuda-auth/internal/identity/handler"
	"github.com/resourcetech/meajuda-auth/internal/identity/oauth"
	"github.com/resourcetech/meajuda-auth/internal/identity/service"
	"github.com/resourcetech/meajuda-auth/internal/security"
	"github.com/resourcetech/meajuda-auth/internal/server"
	"github.com/resourcetech/meajuda-auth/internal/telemetry"
	otelsetup "github.com/resourcetech/meajuda-auth/internal/telemetry/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, "meajuda-auth")
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close()

	key, err := security.DeriveSigningKey(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("signing key: %v", err)
	}
	tokens := security.NewTokenProvider(key, cfg.TokenTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	store := repository.NewPostgresStore(database)
	events := telemetry.NewAuthEventEmitter(providers.LoggerProvider)
	auth := service.NewAuthService(store, hasher, tokens, service.NewReconciler(store), events)

	var provider handler.ProviderClient
	if cfg.GoogleClientID != "" {
		provider = oauth.NewGoogleClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuth2CallbackURL)
	}

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: server.NewHandler(server.Deps{
			Auth:        auth,
			Tokens:      tokens,
			Provider:    provider,
			RedirectURI: cfg.OAuth2RedirectURI,
			DB:          database,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
