package cmd

import (
	"context"
	"log"

	"github.com/frahmantamala/evaluation-criteria/db"
	"github.com/frahmantamala/evaluation-criteria/internal"
	"github.com/frahmantamala/evaluation-criteria/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run the embedded db migration files against the configured database",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(configDir)
	if err != nil {
		log.Fatal(err)
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	lg := logger.LoggerWrapper()

	conn, err := initDB(cfg.Database)
	if err != nil {
		log.Fatalf("migrate: failed to open DB: %v\n", err)
	}
	defer conn.Close()

	if cfg.Database.Driver == internal.DriverSQLite {
		if migrateRollback {
			log.Fatal("migrate: rollback is not supported for sqlite")
		}
		gdb, err := initGorm(cfg.Database, conn, lg)
		if err != nil {
			log.Fatal(err)
		}
		if err := autoMigrate(gdb); err != nil {
			log.Fatalf("migrate: automigrate: %v", err)
		}
		lg.Info("sqlite schema migrated")
		return nil
	}

	if err := db.Migrate(ctx, conn.DB, migrateRollback); err != nil {
		log.Fatal(err)
	}
	lg.Info("migrations applied", "rollback", migrateRollback)
	return nil
}
