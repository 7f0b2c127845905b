package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktrack/internal/repository"
	"tasktrack/internal/testutil"
)

func TestTaskService_Isolation(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	svc := NewTaskService(repository.NewTaskRepository(db))
	ctx := context.Background()

	bobTask, err := svc.CreateTask(ctx, bob.ID, TaskInput{Title: "bob only"})
	require.NoError(t, err)

	_, err = svc.GetTask(ctx, alice.ID, bobTask.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = svc.UpdateTask(ctx, alice.ID, bobTask.ID, TaskInput{Title: "mine now", Completed: true})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	assert.ErrorIs(t, svc.DeleteTask(ctx, alice.ID, bobTask.ID), ErrTaskNotFound)

	list, err := svc.ListTasks(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	still, err := svc.GetTask(ctx, bob.ID, bobTask.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob only", still.Title)
	assert.False(t, still.Completed)
}

func TestTaskService_Lifecycle(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	alice := testutil.CreateUser(t, db, "alice")
	svc := NewTaskService(repository.NewTaskRepository(db))
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, alice.ID, TaskInput{Title: "  buy milk  ", Description: "2L"})
	require.NoError(t, err)
	assert.Equal(t, "buy milk", task.Title)
	assert.Equal(t, alice.ID, task.UserID)

	updated, err := svc.UpdateTask(ctx, alice.ID, task.ID, TaskInput{Title: "buy milk", Completed: true})
	require.NoError(t, err)
	assert.True(t, updated.Completed)

	require.NoError(t, svc.DeleteTask(ctx, alice.ID, task.ID))
	assert.ErrorIs(t, svc.DeleteTask(ctx, alice.ID, task.ID), ErrTaskNotFound)
}

func TestTaskService_Validation(t *testing.T) {
	svc := NewTaskService(repository.NewTaskRepository(testutil.NewSQLiteDB(t)))
	ctx := context.Background()

	_, err := svc.CreateTask(ctx, 0, TaskInput{Title: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.CreateTask(ctx, 1, TaskInput{Title: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.ListTasks(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.UpdateTask(ctx, 1, 0, TaskInput{Title: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, svc.DeleteTask(ctx, 1, 0), ErrInvalidInput)
}
