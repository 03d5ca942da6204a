package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"denialdesk.org/internal/auth"
	"denialdesk.org/internal/claims"
	"denialdesk.org/internal/config"
	"denialdesk.org/internal/httpapi"
	"denialdesk.org/internal/obs"
	"denialdesk.org/internal/store/pg"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)
	log := obs.Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	store, err := pg.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer store.Close()

	sessionTTL, err := cfg.SessionDuration()
	if err != nil {
		log.Fatal().Err(err).Msg("parse session ttl")
	}
	tokens, err := auth.NewTokens(cfg.TokenIssuer, cfg.SessionSecret, auth.WithSessionTTL(sessionTTL))
	if err != nil {
		log.Fatal().Err(err).Msg("init tokens")
	}
	users, err := auth.NewService(store)
	if err != nil {
		log.Fatal().Err(err).Msg("init user service")
	}
	claimsSvc, err := claims.NewService(store)
	if err != nil {
		log.Fatal().Err(err).Msg("init claim service")
	}

	api := httpapi.New(users, claimsSvc, tokens, httpapi.ReadyProbe{DB: store.DB()}, httpapi.Options{
		Version:        version,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		MaxUploadBytes: cfg.MaxUploadBytes,
		CookieSecure:   cfg.CookieSecure || cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info().Str("version", version).Str("addr", cfg.ListenAddr).Msg("starting denialdesk-api")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info().Msg("stopped")
}
