package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/oggyb/udinder/internal/app"
	"github.com/oggyb/udinder/internal/auth"
	"github.com/oggyb/udinder/internal/config"
	"github.com/oggyb/udinder/internal/db"
	"github.com/oggyb/udinder/internal/events"
	"github.com/oggyb/udinder/internal/logger"
	"github.com/oggyb/udinder/internal/server"
	"github.com/oggyb/udinder/internal/service/admin"
	"github.com/oggyb/udinder/internal/service/matches"
	"github.com/oggyb/udinder/internal/service/messages"
	"github.com/oggyb/udinder/internal/service/profiles"
	"github.com/oggyb/udinder/internal/service/users"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	// Init event publisher (Nop without REDIS_ADDR)
	publisher, closeEvents, err := events.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to init events", "err", err)
		os.Exit(1)
	}
	defer closeEvents()

	tokens := auth.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)

	appCtx := app.New(database, publisher, tokens, log)
	appCtx.BcryptCost = cfg.Auth.BcryptCost

	registrars := []server.Registrar{
		server.NewHealthRegistrar(database),
		users.NewRegistrar(appCtx),
		profiles.NewRegistrar(appCtx),
		matches.NewRegistrar(appCtx),
		messages.NewRegistrar(appCtx),
		admin.NewRegistrar(appCtx),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	router := server.NewRouter(cfg, log, registrars...)

	log.Info("starting HTTP server", "addr", cfg.Addr(), "db_driver", cfg.DB.Driver)
	if err := server.StartHTTPServer(ctx, cfg, router); err != nil {
		log.Error("HTTP server stopped", "err", err)
		os.Exit(1)
	}
	log.Info("HTTP server stopped")
}
