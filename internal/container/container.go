package container

import (
	"database/sql"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"financial-import-platform/internal/config"
	"financial-import-platform/internal/database"
	"financial-import-platform/internal/handlers"
	"financial-import-platform/internal/logger"
	"financial-import-platform/internal/middleware"
	"financial-import-platform/internal/models"
	"financial-import-platform/internal/repositories"
	"financial-import-platform/internal/server"
	"financial-import-platform/internal/services"
)

// Module provides dependency injection configuration
var Module = fx.Options(
	// Configuration
	fx.Provide(config.LoadConfig),

	// Logging
	fx.Provide(logger.NewLogger),

	// Database
	fx.Provide(database.NewConnection),
	fx.Provide(func(conn *database.Connection) *gorm.DB {
		return conn.DB
	}),
	fx.Provide(func(conn *database.Connection) (*sql.DB, error) {
		return conn.DB.DB()
	}),
	fx.Provide(database.NewMigrator),
	fx.Provide(database.NewRedisClient),

	// Repositories
	fx.Provide(repositories.NewMappingConfigurationRepository),

	// Services
	fx.Provide(services.NewMappingService),
	fx.Provide(services.NewConfigurationService),
	fx.Provide(services.NewCacheService),

	// Handlers
	fx.Provide(handlers.NewMappingHandler),
	fx.Provide(handlers.NewConfigurationHandler),
	fx.Provide(handlers.NewHealthHandler),

	// Middleware
	fx.Provide(middleware.NewLoggingMiddleware),

	// Server
	fx.Provide(server.NewServer),

	// Models (for validation and serialization)
	fx.Provide(models.NewValidationService),

	// Invoke migrations on startup
	fx.Invoke(func(migrator *database.Migrator) error {
		return migrator.Up()
	}),
)
