package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/evaluation-criteria/internal"
	categoryDatamodel "github.com/frahmantamala/evaluation-criteria/internal/core/datamodel/category"
	criteriaDatamodel "github.com/frahmantamala/evaluation-criteria/internal/core/datamodel/criteria"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// initDB opens the shared connection pool. Postgres goes through the pgx
// stdlib driver, sqlite through mattn/go-sqlite3 registered by the gorm driver.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	driver := "pgx"
	if cfg.Driver == internal.DriverSQLite {
		driver = "sqlite3"
	}

	dbConn, err := sqlx.Open(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	if cfg.Driver == internal.DriverSQLite {
		// sqlite serialises writers; a single connection also keeps :memory: alive
		dbConn.SetMaxOpenConns(1)
	}

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm wraps the existing pool so gorm and sqlx share connections.
func initGorm(cfg internal.DatabaseConfig, db *sqlx.DB, logger *slog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case internal.DriverSQLite:
		dialector = &sqlite.Dialector{DriverName: "sqlite3", DSN: cfg.GetDSN(), Conn: db.DB}
	default:
		dialector = postgres.New(postgres.Config{Conn: db.DB})
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel(logger)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	return gdb, nil
}

// autoMigrate creates the schema for sqlite, where the SQL migrations do not apply.
func autoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&categoryDatamodel.Category{}, &criteriaDatamodel.Criteria{})
}

func gormLogLevel(logger *slog.Logger) gormlogger.LogLevel {
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		return gormlogger.Info
	}
	return gormlogger.Warn
}
