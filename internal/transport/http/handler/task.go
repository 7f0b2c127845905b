package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tasktrack/internal/app"
	"tasktrack/internal/transport/http/middleware"
	"tasktrack/internal/transport/http/response"
)

const msgTaskNotFound = "Task not found"

type TaskHandler struct {
	taskService *app.TaskService
	logger      *slog.Logger
}

// TaskRequest carries timestamps in RFC 3339 form.
type TaskRequest struct {
	Title        string     `json:"title" binding:"required,max=255"`
	Description  string     `json:"description"`
	DueDate      *time.Time `json:"due_date"`
	ReminderTime *time.Time `json:"reminder_time"`
	Completed    bool       `json:"completed"`
}

func NewTaskHandler(taskService *app.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{taskService: taskService, logger: logger}
}

func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), userID)
	if err != nil {
		h.internalError(c, "list tasks failed", err)
		return
	}
	response.JSON(c, http.StatusOK, tasks)
}

func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.MsgInvalidPayload)
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), userID, req.input())
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.MsgInvalidPayload)
			return
		}
		h.internalError(c, "create task failed", err)
		return
	}
	response.JSON(c, http.StatusCreated, task)
}

func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.MsgInvalidPayload)
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), userID, taskID, req.input())
	if err != nil {
		switch {
		case errors.Is(err, app.ErrTaskNotFound):
			response.Error(c, http.StatusNotFound, msgTaskNotFound)
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.MsgInvalidPayload)
		default:
			h.internalError(c, "update task failed", err)
		}
		return
	}
	response.JSON(c, http.StatusOK, task)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), userID, taskID); err != nil {
		if errors.Is(err, app.ErrTaskNotFound) {
			response.Error(c, http.StatusNotFound, msgTaskNotFound)
			return
		}
		h.internalError(c, "delete task failed", err)
		return
	}
	response.Message(c, http.StatusOK, "Task deleted successfully")
}

func (r TaskRequest) input() app.TaskInput {
	return app.TaskInput{
		Title:        r.Title,
		Description:  r.Description,
		DueDate:      r.DueDate,
		ReminderTime: r.ReminderTime,
		Completed:    r.Completed,
	}
}

func currentUserID(c *gin.Context) (uint, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.MsgUnauthenticated)
		return 0, false
	}
	return id.ID, true
}

// parseTaskID answers malformed ids with 404 so they look like any other
// task the caller cannot see.
func parseTaskID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusNotFound, msgTaskNotFound)
		return 0, false
	}
	return uint(id), true
}

func (h *TaskHandler) internalError(c *gin.Context, msg string, err error) {
	h.logger.ErrorContext(c.Request.Context(), msg,
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetRequestID(c.Request.Context())),
	)
	response.Error(c, http.StatusInternalServerError, response.MsgInternalError)
}
