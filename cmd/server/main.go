package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sitecrew/api/internal/config"
	"github.com/sitecrew/api/internal/infra/http"
	"github.com/sitecrew/api/internal/infra/http/routes"
	"github.com/sitecrew/api/internal/infra/postgres"
	"github.com/sitecrew/api/pkg/logger"
	"github.com/sitecrew/api/pkg/migrations"
	"github.com/sitecrew/api/pkg/validator"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log := logger.NewDefault()
		log.Error("failed to load configuration", "error", err)
		return 1
	}

	log := initLogger(cfg)
	log.Info("starting application", "app", cfg.App.Name, "env", cfg.App.Env)

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		return 1
	}
	defer closeWithLog(db, "database", log)
	log.Info("database connected")

	if err := migrations.NewRunner(db.DB).Up(ctx); err != nil {
		log.Error("failed to run migrations", "error", err)
		return 1
	}
	log.Info("migrations applied")

	repos := NewRepositories(db)
	services := NewServices(cfg, repos, log)
	log.Info("services initialized")

	v := validator.New()
	handlers := NewHandlers(db, services, v, log)

	server := http.NewServer(cfg, log)
	stopRouteLimiter := routes.Register(server.Router(), handlers, cfg, log, routes.AuthConfig{
		Tokens: services.JWTGenerator,
		Users:  repos.User,
	})
	defer stopRouteLimiter()

	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", "error", err)
		}
	}()
	log.Info("application started", "http_addr", cfg.Server.Addr())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	if err := server.Shutdown(cfg.Server.ShutdownTimeout); err != nil {
		log.Error("shutdown error", "error", err)
		return 1
	}

	log.Info("application stopped")
	return 0
}

func initLogger(cfg *config.Config) *logger.Logger {
	var log *logger.Logger
	if cfg.App.Env == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}
	log.SetDefault()
	return log
}

type closer interface {
	Close() error
}

func closeWithLog(c closer, name string, log *logger.Logger) {
	if err := c.Close(); err != nil {
		log.Error("failed to close "+name, "error", err)
	}
}
