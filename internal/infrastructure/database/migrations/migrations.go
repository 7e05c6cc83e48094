package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"tour-booking/internal/logger"
)

//go:embed sql/*.sql
var embedMigrations embed.FS

const dir = "sql"

// gooseLogger routes goose output through the application logger.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	logger.Info("migration", zap.String("detail", fmt.Sprintf(format, v...)))
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	logger.Fatal("migration failed", zap.String("detail", fmt.Sprintf(format, v...)))
}

func setup() error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(gooseLogger{})
	return goose.SetDialect("postgres")
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return fmt.Errorf("goose: set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("goose: failed to run migrations: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return fmt.Errorf("goose: set dialect: %w", err)
	}
	return goose.DownContext(ctx, db, dir)
}
