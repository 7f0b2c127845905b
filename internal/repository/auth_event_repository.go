package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"tasktrack/internal/model"
)

type AuthEventRepository struct {
	db *gorm.DB
}

func NewAuthEventRepository(db *gorm.DB) *AuthEventRepository {
	return &AuthEventRepository{db: db}
}

func (r *AuthEventRepository) Create(ctx context.Context, event *model.AuthEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("create auth event failed: %w", err)
	}
	return nil
}

func (r *AuthEventRepository) ListByUserID(ctx context.Context, userID uint, limit int) ([]model.AuthEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	events := make([]model.AuthEvent, 0)
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("occurred_at DESC").Order("id DESC").Limit(limit).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list auth events failed: %w", err)
	}
	return events, nil
}
