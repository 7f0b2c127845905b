// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"tasktrack/internal/model"
	"tasktrack/internal/platform/sqlite"
)

// NewSQLiteDB opens a migrated sqlite database in a temp dir that is removed
// when the test ends.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Task{}, &model.AuthEvent{}); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user row directly, bypassing password hashing.
func CreateUser(t testing.TB, db *gorm.DB, username string) *model.User {
	t.Helper()

	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    username,
		LastName:     "Test",
		PasswordHash: "not-a-real-hash",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}
