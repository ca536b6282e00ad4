package migrate

import (
	"context"
	"fmt"

	"github.com/quotedesk/quotedesk-backend/pkg/config"
	"github.com/quotedesk/quotedesk-backend/pkg/db"
	"github.com/quotedesk/quotedesk-backend/pkg/logger"
)

// MaybeRunDev executes migrations automatically when the app runs in dev
// mode with auto-run enabled.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.Migrate.AutoRun {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	dir := cfg.Migrate.Dir
	if dir == "" {
		dir = DefaultDir
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": dir})
	logg.Info(ctx, "running Goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, dir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}
