package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/carhire-backend/pkg/config"
	"github.com/angelmondragon/carhire-backend/pkg/db"
	"github.com/angelmondragon/carhire-backend/pkg/logger"
)

// MaybeRunDev applies the embedded migrations when the app runs in dev mode
// and the auto-migrate flag is enabled.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "source": "embedded"})
	logg.Info(ctx, "applying migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, Embedded(), "up"); err != nil {
		return err
	}

	logg.Info(ctx, "migrations applied")
	return nil
}
