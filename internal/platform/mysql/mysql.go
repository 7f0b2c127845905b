package mysql

import (
	"context"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"tasktrack/internal/config"
	"tasktrack/internal/platform/gormdb"
)

func New(ctx context.Context, cfg config.MySQLConfig, pool gormdb.Pool) (*gorm.DB, error) {
	return gormdb.Open(ctx, config.DriverMySQL, mysql.Open(DSN(cfg)), pool)
}

// DSN renders cfg in go-sql-driver form. Params is appended verbatim.
func DSN(cfg config.MySQLConfig) string {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DB)
	if cfg.Params != "" {
		dsn += "?" + cfg.Params
	}
	return dsn
}
