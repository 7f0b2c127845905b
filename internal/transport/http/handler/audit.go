package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tasktrack/internal/app"
	"tasktrack/internal/transport/http/middleware"
	"tasktrack/internal/transport/http/response"
)

type AuditHandler struct {
	auditService *app.AuditService
	logger       *slog.Logger
}

func NewAuditHandler(auditService *app.AuditService, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{auditService: auditService, logger: logger}
}

// List returns the caller's own auth events, newest first. An optional
// ?limit= caps the count.
func (h *AuditHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.Error(c, http.StatusBadRequest, response.MsgInvalidPayload)
			return
		}
		limit = n
	}

	events, err := h.auditService.ListEvents(c.Request.Context(), userID, limit)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.MsgInvalidPayload)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "list auth events failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(c.Request.Context())),
		)
		response.Error(c, http.StatusInternalServerError, response.MsgInternalError)
		return
	}
	response.JSON(c, http.StatusOK, events)
}
