package postgres

import (
	"context"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tasktrack/internal/config"
	"tasktrack/internal/platform/gormdb"
)

func New(ctx context.Context, dsn string, pool gormdb.Pool) (*gorm.DB, error) {
	return gormdb.Open(ctx, config.DriverPostgres, postgres.Open(dsn), pool)
}
