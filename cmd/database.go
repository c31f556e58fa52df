package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// database bundles the raw pool used for health checks and migrations with
// the gorm handle the repositories use. Both share one connection pool.
type database struct {
	SQL  *sqlx.DB
	Gorm *gorm.DB
}

func (d *database) DB() *sql.DB {
	return d.SQL.DB
}

func (d *database) Close() error {
	return d.SQL.Close()
}

func initDB(cfg internal.DatabaseConfig) (*database, error) {
	gormConfig := &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
	}

	var (
		gdb *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "postgres":
		dbConn, connErr := sqlx.Connect("pgx", cfg.Source)
		if connErr != nil {
			return nil, fmt.Errorf("failed to open db connection: %w", connErr)
		}
		gdb, err = gorm.Open(postgres.New(postgres.Config{Conn: dbConn.DB}), gormConfig)
		if err != nil {
			_ = dbConn.Close()
			return nil, fmt.Errorf("failed to open gorm: %w", err)
		}
	case "sqlite":
		gdb, err = gorm.Open(sqlite.Open(cfg.Source), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// sqlite serialises writers; one connection avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	driverName := "pgx"
	if cfg.Driver == "sqlite" {
		driverName = "sqlite3"
	}
	return &database{SQL: sqlx.NewDb(sqlDB, driverName), Gorm: gdb}, nil
}
