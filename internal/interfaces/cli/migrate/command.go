package migrate

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/orris-inc/tracksync/internal/infrastructure/config"
	"github.com/orris-inc/tracksync/internal/infrastructure/database"
	"github.com/orris-inc/tracksync/internal/infrastructure/migration"
	"github.com/orris-inc/tracksync/internal/shared/logger"
)

var (
	env        string
	configPath string
	steps      int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Apply, roll back and inspect the versioned SQL migrations embedded in the binary.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStrategy(cmd.Context(), func(ctx context.Context, s *migration.GooseStrategy, db *gorm.DB, log logger.Interface) error {
				log.Infow("running up migrations", "environment", env)
				return s.Migrate(ctx, db)
			})
		},
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			return withStrategy(cmd.Context(), func(ctx context.Context, s *migration.GooseStrategy, db *gorm.DB, log logger.Interface) error {
				log.Infow("rolling back migrations", "environment", env, "steps", steps)
				return s.MigrateDown(ctx, db, steps)
			})
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStrategy(cmd.Context(), func(ctx context.Context, s *migration.GooseStrategy, db *gorm.DB, log logger.Interface) error {
				version, err := s.Version(ctx, db)
				if err != nil {
					return err
				}
				log.Infow("current migration version", "version", version)
				return s.Status(ctx, db)
			})
		},
	}
}

func withStrategy(ctx context.Context, fn func(context.Context, *migration.GooseStrategy, *gorm.DB, logger.Interface) error) error {
	cfg, err := config.Load(env, config.Options{ConfigFile: configPath, Optional: true})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(&cfg.Logger, "release"); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	db, err := database.Open(&cfg.Database, log, false)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warnw("failed to close database", "error", err)
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, migration.NewGooseStrategy(cfg.Database.Driver, log), db, log)
}
