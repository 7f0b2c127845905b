package repository

import (
	"fmt"

	"gorm.io/gorm"

	"tasktrack/internal/model"
)

// Migrate creates or updates the tables and unique indexes the
// repositories rely on.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Task{}, &model.AuthEvent{}); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}
