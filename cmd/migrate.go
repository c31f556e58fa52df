package cmd

import (
	"context"
	"log"

	"github.com/frahmantamala/leave-management/db"
	"github.com/frahmantamala/leave-management/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "apply the embedded sql migrations for the configured database driver",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	database, err := initDB(cfg.Database)
	if err != nil {
		log.Fatalf("migrate: failed to open DB: %v\n", err)
	}
	defer database.Close()

	if migrateRollback {
		if err := db.Down(ctx, database.DB(), cfg.Database.Driver); err != nil {
			log.Fatalf("goose down: %v", err)
		}
	} else if err := db.Up(ctx, database.DB(), cfg.Database.Driver); err != nil {
		log.Fatalf("goose up: %v", err)
	}

	version, err := db.Version(ctx, database.DB(), cfg.Database.Driver)
	if err != nil {
		return err
	}
	logger.L().Info("migrations applied", "driver", cfg.Database.Driver, "version", version)
	return nil
}
