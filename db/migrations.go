// Package db holds the SQL schema migrations, applied with goose.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

const versionTable = "schema_migrations"

// dialects maps a configured database driver onto its goose dialect and
// migration directory.
var dialects = map[string]string{
	"postgres": "postgres",
	"sqlite":   "sqlite3",
}

func prepare(driver string) (string, error) {
	dialect, ok := dialects[driver]
	if !ok {
		return "", fmt.Errorf("no migrations for driver %q", driver)
	}

	goose.SetBaseFS(migrations)
	goose.SetTableName(versionTable)
	if err := goose.SetDialect(dialect); err != nil {
		return "", err
	}
	return path.Join("migrations", driver), nil
}

// Up applies every pending migration for driver.
func Up(ctx context.Context, sqlDB *sql.DB, driver string) error {
	dir, err := prepare(driver)
	if err != nil {
		return err
	}
	return goose.UpContext(ctx, sqlDB, dir)
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, sqlDB *sql.DB, driver string) error {
	dir, err := prepare(driver)
	if err != nil {
		return err
	}
	return goose.DownContext(ctx, sqlDB, dir)
}

func Version(ctx context.Context, sqlDB *sql.DB, driver string) (int64, error) {
	if _, err := prepare(driver); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, sqlDB)
}
