// Package sqlite opens the embedded database used for local development and
// tests.
package sqlite

import (
	"context"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"tasktrack/internal/config"
	"tasktrack/internal/platform/gormdb"
)

func New(ctx context.Context, path string) (*gorm.DB, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	// sqlite allows a single writer; one connection serializes writes.
	return gormdb.Open(ctx, config.DriverSQLite, sqlite.Open(dsn), gormdb.Pool{MaxOpenConns: 1})
}
