package bootstrap

import (
	"context"
	"fmt"

	"tracker_server/adapter/out/persistence"
	"tracker_server/config"
	"tracker_server/infra/database"
	"tracker_server/pkg/logger"
)

// RunMigrations creates the relational schema and exits. It needs only
// DATABASE_URL.
func RunMigrations(ctx context.Context, cfg *config.Config) error {
	logger.Init(logger.Config{
		Level:   logger.ParseLevel(cfg.LogLevel),
		Service: "tracker-migrate",
	})

	db, err := database.NewSQLX(ctx, cfg.DatabaseURL, database.DefaultPostgresConfig(2, 1))
	if err != nil {
		return fmt.Errorf("connect sqlx: %w", err)
	}
	defer db.Close()

	return persistence.Migrate(ctx, db)
}
