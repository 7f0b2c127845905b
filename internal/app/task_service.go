package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"tasktrack/internal/model"
	"tasktrack/internal/repository"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskService only ever touches tasks owned by the user id it is given. A
// task id that exists under another user is reported as ErrTaskNotFound.
type TaskService struct {
	taskRepo *repository.TaskRepository
}

type TaskInput struct {
	Title        string
	Description  string
	DueDate      *time.Time
	ReminderTime *time.Time
	Completed    bool
}

func NewTaskService(taskRepo *repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

func (s *TaskService) CreateTask(ctx context.Context, userID uint, input TaskInput) (*model.Task, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrInvalidInput
	}

	task := &model.Task{
		UserID:       userID,
		Title:        title,
		Description:  strings.TrimSpace(input.Description),
		DueDate:      input.DueDate,
		ReminderTime: input.ReminderTime,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) ListTasks(ctx context.Context, userID uint) ([]model.Task, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.taskRepo.ListByUserID(ctx, userID)
}

func (s *TaskService) GetTask(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	if userID == 0 || taskID == 0 {
		return nil, ErrInvalidInput
	}
	task, err := s.taskRepo.GetByIDAndUserID(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID uint, input TaskInput) (*model.Task, error) {
	if userID == 0 || taskID == 0 {
		return nil, ErrInvalidInput
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrInvalidInput
	}

	task, err := s.taskRepo.UpdateByIDAndUserID(ctx, taskID, userID, repository.TaskUpdate{
		Title:        title,
		Description:  strings.TrimSpace(input.Description),
		DueDate:      input.DueDate,
		ReminderTime: input.ReminderTime,
		Completed:    input.Completed,
	})
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID uint) error {
	if userID == 0 || taskID == 0 {
		return ErrInvalidInput
	}
	deleted, err := s.taskRepo.DeleteByIDAndUserID(ctx, taskID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTaskNotFound
	}
	return nil
}
