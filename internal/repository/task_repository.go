package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"tasktrack/internal/model"
)

// TaskRepository scopes every query by owner. There is no method that reads
// or writes a task by id alone.
type TaskRepository struct {
	db *gorm.DB
}

type TaskUpdate struct {
	Title        string
	Description  string
	DueDate      *time.Time
	ReminderTime *time.Time
	Completed    bool
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task failed: %w", err)
	}
	return nil
}

func (r *TaskRepository) ListByUserID(ctx context.Context, userID uint) ([]model.Task, error) {
	tasks := make([]model.Task, 0)
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks failed: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) GetByIDAndUserID(ctx context.Context, taskID, userID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task failed: %w", err)
	}
	return &task, nil
}

// UpdateByIDAndUserID replaces the mutable fields of an owned task and
// returns the stored row, or nil when the caller does not own taskID.
func (r *TaskRepository) UpdateByIDAndUserID(ctx context.Context, taskID, userID uint, upd TaskUpdate) (*model.Task, error) {
	var updated *model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.Task
		if err := tx.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if err := tx.Model(&task).Where("user_id = ?", userID).Updates(map[string]any{
			"title":         upd.Title,
			"description":   upd.Description,
			"due_date":      upd.DueDate,
			"reminder_time": upd.ReminderTime,
			"completed":     upd.Completed,
		}).Error; err != nil {
			return err
		}

		if err := tx.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
			return err
		}
		updated = &task
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update task failed: %w", err)
	}
	return updated, nil
}

// DeleteByIDAndUserID reports whether an owned task was removed.
func (r *TaskRepository) DeleteByIDAndUserID(ctx context.Context, taskID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", taskID, userID).Delete(&model.Task{})
	if res.Error != nil {
		return false, fmt.Errorf("delete task failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
