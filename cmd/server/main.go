// Package main provides the entry point for the Sho core API server.
package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/sho-platform/sho-core/domain/health"
	"github.com/sho-platform/sho-core/domain/provider"
	"github.com/sho-platform/sho-core/internal/config"
	"github.com/sho-platform/sho-core/internal/database"
	"github.com/sho-platform/sho-core/internal/migrate"
	"github.com/sho-platform/sho-core/internal/server"
	"github.com/sho-platform/sho-core/pkg/logger"
)

func main() {
	// Load .env files if present (for local development)
	// Order matters: .env.local overrides .env
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	fx.New(
		// Logging
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		// Infrastructure modules
		logger.Module,
		config.Module,
		database.Module,
		migrate.Module,
		server.Module,

		// Domain modules
		health.Module,
		provider.Module,
	).Run()
}
