package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/climate-finance-tracker/cft-backend/config"
	"github.com/climate-finance-tracker/cft-backend/internal/storage/postgres"
)

const connectTimeout = 10 * time.Second

// OpenDB connects to Postgres and applies pending migrations when
// DB_AUTO_MIGRATE is set.
func OpenDB(ctx context.Context, cfg *config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	db, err := postgres.NewConnection(cctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.AutoMigrate {
		if err := postgres.MigrateUp(db, logger); err != nil {
			db.Close()
			return nil, fmt.Errorf("db migrate: %w", err)
		}
	} else {
		logger.Info("automatic migrations disabled", "hint", "run `cft-api migrate up`")
	}

	return db, nil
}
